package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/aryanma11ick/Neura/internal/gcal"
	"github.com/aryanma11ick/Neura/internal/identity"
)

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"status":"ok"}`)
}

// handleAuth starts the Google consent flow for one WhatsApp user. The state
// token carries their identity through the redirect round trip.
func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	wa := identity.Normalize(r.URL.Query().Get("wa"))
	if wa == "" || wa == "+" {
		respondHTML(w, http.StatusBadRequest, "Missing Number",
			"The link is missing your WhatsApp number. Ask the assistant for a fresh link.")
		return
	}

	state := s.states.Put(wa)
	authURL := s.oauthConfig.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))

	s.logger.Info("starting google link", zap.String("whatsapp_id", wa))
	http.Redirect(w, r, authURL, http.StatusFound)
}

// handleOAuthCallback completes the flow: validates state, exchanges the
// code, stores the credential and confirms over WhatsApp.
func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		respondHTML(w, http.StatusBadRequest, "Authorization Declined",
			"Google reported: "+errMsg+". You can restart the link from WhatsApp any time.")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		respondHTML(w, http.StatusBadRequest, "Missing Code",
			"No authorization code received from Google.")
		return
	}

	whatsappID, ok := s.states.Take(r.URL.Query().Get("state"))
	if !ok {
		respondHTML(w, http.StatusBadRequest, "Link Expired",
			"This link has expired or was already used. Ask the assistant for a fresh one.")
		return
	}

	token, err := s.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		s.logger.Error("oauth code exchange failed",
			zap.String("whatsapp_id", whatsappID), zap.Error(err))
		respondHTML(w, http.StatusInternalServerError, "Linking Failed",
			"Could not exchange the authorization code with Google. Please try again.")
		return
	}

	cred := gcal.CredentialFromToken(s.oauthConfig, token)
	if err := s.db.UpsertCredential(whatsappID, cred); err != nil {
		s.logger.Error("failed to store credential",
			zap.String("whatsapp_id", whatsappID), zap.Error(err))
		respondHTML(w, http.StatusInternalServerError, "Linking Failed",
			"Your Google account was authorized but the credential could not be saved.")
		return
	}

	s.logger.Info("google account linked", zap.String("whatsapp_id", whatsappID))

	if s.notifier != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		confirmation := "✅ Your Google Calendar is now linked! You can ask me to create events, move them around, or show your schedule."
		if err := s.notifier.Send(ctx, whatsappID, confirmation); err != nil {
			s.logger.Warn("failed to send link confirmation",
				zap.String("whatsapp_id", whatsappID), zap.Error(err))
		}
	}

	respondHTML(w, http.StatusOK, "Calendar Linked",
		"All set! Head back to WhatsApp and start scheduling.")
}

func respondHTML(w http.ResponseWriter, status int, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>%s</title></head>
<body style="font-family: sans-serif; max-width: 480px; margin: 80px auto; text-align: center;">
<h2>%s</h2>
<p>%s</p>
</body>
</html>
`, title, title, body)
}
