// Package secrets resolves source credentials from the OS keyring. API keys
// and the IMAP password never live in the config file.
package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups this app's secrets in the OS keychain.
const KeyringService = "jobradar"

// SourceAPIKey fetches the API key stored under a source's keyring account.
func SourceAPIKey(account string) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", errors.New("keyring account name is empty")
	}
	key, err := keyring.Get(KeyringService, account)
	if err != nil {
		return "", fmt.Errorf("keyring get %q: %w", account, err)
	}
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("keyring entry %q is empty", account)
	}
	return key, nil
}

// SetSourceAPIKey stores an API key for a source's keyring account.
func SetSourceAPIKey(account, key string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("key is empty")
	}
	return keyring.Set(KeyringService, account, key)
}

// IMAPAccount names the keyring entry for the mailbox source's password.
func IMAPAccount(username, host string) string {
	return fmt.Sprintf("jobradar:imap:%s@%s", username, host)
}

// IMAPPassword fetches the mailbox password for the given account.
func IMAPPassword(account string) (string, error) {
	pw, err := keyring.Get(KeyringService, account)
	if err != nil || strings.TrimSpace(pw) == "" {
		return "", errors.New("IMAP password not found in keychain")
	}
	return pw, nil
}
