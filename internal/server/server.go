package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/aryanma11ick/Neura/internal/database"
)

// Notifier sends a message back to a WhatsApp user. Satisfied by
// whatsapp.Client.
type Notifier interface {
	Send(ctx context.Context, recipient, body string) error
}

type Server struct {
	db          *database.DB
	oauthConfig *oauth2.Config
	states      *StateCache
	notifier    Notifier
	logger      *zap.Logger
	httpSrv     *http.Server
	port        int
}

type Config struct {
	DB          *database.DB
	OAuthConfig *oauth2.Config
	States      *StateCache
	Notifier    Notifier
	Logger      *zap.Logger
	Port        int
}

func New(cfg Config) *Server {
	s := &Server{
		db:          cfg.DB,
		oauthConfig: cfg.OAuthConfig,
		states:      cfg.States,
		notifier:    cfg.Notifier,
		logger:      cfg.Logger,
		port:        cfg.Port,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealthCheck)
	mux.HandleFunc("GET /auth", s.handleAuth)
	mux.HandleFunc("GET /oauth/callback", s.handleOAuthCallback)
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.Int("port", s.port))
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Handler returns the server's HTTP handler for testing purposes
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// AuthURL builds the link a user opens to start the Google consent flow.
func AuthURL(baseURL, whatsappID string) string {
	return fmt.Sprintf("%s/auth?wa=%s", baseURL, url.QueryEscape(whatsappID))
}
