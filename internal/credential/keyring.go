// Package credential stores the tracker API token in the system keyring
// so runs can omit --password.
package credential

import (
	"fmt"

	"github.com/99designs/keyring"
)

const serviceName = "issuebox"

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/issuebox/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("issuebox-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// tokenKey namespaces stored tokens by the API user they belong to.
func tokenKey(user string) string {
	return "token:" + user
}

// Token retrieves the stored API token for user.
func Token(user string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(tokenKey(user))
	if err != nil {
		return "", fmt.Errorf("getting token for %q: %w", user, err)
	}

	return string(item.Data), nil
}

// SetToken stores the API token for user.
func SetToken(user, token string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  tokenKey(user),
		Data: []byte(token),
	})
	if err != nil {
		return fmt.Errorf("storing token for %q: %w", user, err)
	}

	return nil
}

// DeleteToken removes the stored API token for user.
func DeleteToken(user string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	if err := ring.Remove(tokenKey(user)); err != nil {
		return fmt.Errorf("deleting token for %q: %w", user, err)
	}

	return nil
}
