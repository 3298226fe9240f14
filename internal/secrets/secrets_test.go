package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestSourceAPIKey_RoundTrip(t *testing.T) {
	keyring.MockInit()

	require.NoError(t, SetSourceAPIKey("jobradar:source:boardx", "sekrit"))

	key, err := SourceAPIKey("jobradar:source:boardx")
	require.NoError(t, err)
	assert.Equal(t, "sekrit", key)
}

func TestSourceAPIKey_Missing(t *testing.T) {
	keyring.MockInit()

	_, err := SourceAPIKey("jobradar:source:ghost")
	assert.Error(t, err)

	_, err = SourceAPIKey("  ")
	assert.Error(t, err)
}

func TestSetSourceAPIKey_RejectsEmpty(t *testing.T) {
	keyring.MockInit()

	assert.Error(t, SetSourceAPIKey("", "x"))
	assert.Error(t, SetSourceAPIKey("jobradar:source:boardx", " "))
}

func TestIMAPAccount(t *testing.T) {
	assert.Equal(t, "jobradar:imap:me@imap.example.com",
		IMAPAccount("me", "imap.example.com"))
}

func TestIMAPPassword(t *testing.T) {
	keyring.MockInit()

	account := IMAPAccount("me", "imap.example.com")
	require.NoError(t, keyring.Set(KeyringService, account, "hunter2"))

	pw, err := IMAPPassword(account)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", pw)

	_, err = IMAPPassword("jobradar:imap:ghost@nowhere")
	assert.Error(t, err)
}
