package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCredential() *Credential {
	return &Credential{
		AccessToken:  "ya29.access",
		RefreshToken: "1//refresh",
		TokenURI:     "https://oauth2.googleapis.com/token",
		ClientID:     "client-id.apps.googleusercontent.com",
		ClientSecret: "shhh",
		Scopes:       []string{"https://www.googleapis.com/auth/calendar"},
		Expiry:       time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestGetCredentialNotLinked(t *testing.T) {
	db := NewTestDB(t)

	cred, err := db.GetCredential("+919876543210")
	require.NoError(t, err)
	assert.Nil(t, cred, "unlinked user yields nil credential, not an error")
}

func TestUpsertAndGetCredential(t *testing.T) {
	db := NewTestDB(t)
	userID := "+919876543210"

	require.NoError(t, db.UpsertCredential(userID, sampleCredential()))

	got, err := db.GetCredential(userID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "ya29.access", got.AccessToken)
	assert.Equal(t, "1//refresh", got.RefreshToken)
	assert.Equal(t, "https://oauth2.googleapis.com/token", got.TokenURI)
	assert.Equal(t, []string{"https://www.googleapis.com/auth/calendar"}, got.Scopes)
	assert.True(t, got.Expiry.Equal(sampleCredential().Expiry))
}

func TestUpsertCredentialReplacesExisting(t *testing.T) {
	db := NewTestDB(t)
	userID := "+919876543210"

	require.NoError(t, db.UpsertCredential(userID, sampleCredential()))

	updated := sampleCredential()
	updated.AccessToken = "ya29.rotated"
	require.NoError(t, db.UpsertCredential(userID, updated))

	got, err := db.GetCredential(userID)
	require.NoError(t, err)
	assert.Equal(t, "ya29.rotated", got.AccessToken)
	assert.Equal(t, "1//refresh", got.RefreshToken)

	users, err := db.ListLinkedUsers()
	require.NoError(t, err)
	assert.Len(t, users, 1, "upsert must not create a second row")
}

func TestCredentialsAreEncryptedAtRest(t *testing.T) {
	db := NewTestDB(t)
	userID := "+919876543210"
	require.NoError(t, db.UpsertCredential(userID, sampleCredential()))

	var accessEnc []byte
	err := db.QueryRow(`SELECT access_token_encrypted FROM google_tokens WHERE whatsapp_id = ?`, userID).Scan(&accessEnc)
	require.NoError(t, err)
	assert.NotContains(t, string(accessEnc), "ya29.access", "raw token must not appear on disk")
}

func TestListLinkedUsers(t *testing.T) {
	db := NewTestDB(t)

	users, err := db.ListLinkedUsers()
	require.NoError(t, err)
	assert.Empty(t, users)

	require.NoError(t, db.UpsertCredential("+14155550123", sampleCredential()))
	require.NoError(t, db.UpsertCredential("+919876543210", sampleCredential()))

	users, err = db.ListLinkedUsers()
	require.NoError(t, err)
	assert.Equal(t, []string{"+14155550123", "+919876543210"}, users)
}
