package database

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Credential is one user's Google authorization material. Created on first
// successful authorization, updated on re-authorization, never deleted by the
// assistant itself.
type Credential struct {
	AccessToken  string
	RefreshToken string
	TokenURI     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	Expiry       time.Time
}

// getEncryptionKey derives a 32-byte key for AES-256 encryption
func getEncryptionKey() ([]byte, error) {
	if envKey := os.Getenv("NEURA_ENCRYPTION_KEY"); envKey != "" {
		hash := sha256.Sum256([]byte(envKey))
		return hash[:], nil
	}

	// Fall back to deriving from GROQ_API_KEY
	if apiKey := os.Getenv("GROQ_API_KEY"); apiKey != "" {
		hash := sha256.Sum256([]byte("neura-encryption-" + apiKey))
		return hash[:], nil
	}

	return nil, fmt.Errorf("no encryption key available: set NEURA_ENCRYPTION_KEY or GROQ_API_KEY")
}

// encryptToken encrypts an OAuth token for storage
func encryptToken(token string) ([]byte, error) {
	key, err := getEncryptionKey()
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return gcm.Seal(nonce, nonce, []byte(token), nil), nil
}

// decryptToken decrypts an OAuth token from storage
func decryptToken(ciphertext []byte) (string, error) {
	key, err := getEncryptionKey()
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt: %w", err)
	}

	return string(plaintext), nil
}

// GetCredential retrieves the stored credential for a user identity.
// Returns (nil, nil) when the user has never linked an account.
func (d *DB) GetCredential(userID string) (*Credential, error) {
	var accessEnc, refreshEnc []byte
	var tokenURI, clientID, clientSecret string
	var scopes sql.NullString
	var expiry sql.NullTime

	err := d.QueryRow(`
		SELECT access_token_encrypted, refresh_token_encrypted, token_uri, client_id, client_secret, scopes, expiry
		FROM google_tokens WHERE whatsapp_id = ?
	`, userID).Scan(&accessEnc, &refreshEnc, &tokenURI, &clientID, &clientSecret, &scopes, &expiry)

	if err == sql.ErrNoRows {
		return nil, nil // Not linked
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	accessToken, err := decryptToken(accessEnc)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}
	refreshToken, err := decryptToken(refreshEnc)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt refresh token: %w", err)
	}

	cred := &Credential{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenURI:     tokenURI,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	}
	if expiry.Valid {
		cred.Expiry = expiry.Time
	}
	if scopes.Valid && scopes.String != "" {
		if err := json.Unmarshal([]byte(scopes.String), &cred.Scopes); err != nil {
			return nil, fmt.Errorf("failed to parse scopes: %w", err)
		}
	}

	return cred, nil
}

// UpsertCredential stores or replaces the credential for a user identity.
func (d *DB) UpsertCredential(userID string, cred *Credential) error {
	accessEnc, err := encryptToken(cred.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt access token: %w", err)
	}
	refreshEnc, err := encryptToken(cred.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	scopesJSON, err := json.Marshal(cred.Scopes)
	if err != nil {
		return fmt.Errorf("failed to marshal scopes: %w", err)
	}

	var expiry *time.Time
	if !cred.Expiry.IsZero() {
		expiry = &cred.Expiry
	}

	_, err = d.Exec(`
		INSERT INTO google_tokens (whatsapp_id, access_token_encrypted, refresh_token_encrypted, token_uri, client_id, client_secret, scopes, expiry, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(whatsapp_id) DO UPDATE SET
			access_token_encrypted = excluded.access_token_encrypted,
			refresh_token_encrypted = excluded.refresh_token_encrypted,
			token_uri = excluded.token_uri,
			client_id = excluded.client_id,
			client_secret = excluded.client_secret,
			scopes = excluded.scopes,
			expiry = excluded.expiry,
			updated_at = CURRENT_TIMESTAMP
	`, userID, accessEnc, refreshEnc, cred.TokenURI, cred.ClientID, cred.ClientSecret, scopesJSON, expiry)

	if err != nil {
		return fmt.Errorf("failed to upsert credential: %w", err)
	}
	return nil
}

// ListLinkedUsers returns every user identity with a stored credential.
func (d *DB) ListLinkedUsers() ([]string, error) {
	rows, err := d.Query(`SELECT whatsapp_id FROM google_tokens ORDER BY whatsapp_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list linked users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		users = append(users, id)
	}

	return users, rows.Err()
}
