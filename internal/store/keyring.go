package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"
)

const serviceName = "neura"

// LocalUserKey names the keyring entry holding the CLI user's ID.
const LocalUserKey = "local_user"

var _ TokenStore = (*KeyringSecretStore)(nil)

// ErrSecretNotFound is returned when a keyring entry does not exist.
var ErrSecretNotFound = errors.New("secret not found")

// KeyringSecretStore keeps secrets and the CLI user's OAuth2 token in the OS
// keyring (macOS Keychain, Windows Credential Manager, or Linux Secret Service).
type KeyringSecretStore struct{}

func NewKeyringSecretStore() *KeyringSecretStore {
	return &KeyringSecretStore{}
}

// Get returns the secret stored under name.
func (k *KeyringSecretStore) Get(name string) (string, error) {
	v, err := keyring.Get(serviceName, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrSecretNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s from keyring: %w", name, err)
	}
	return v, nil
}

func (k *KeyringSecretStore) Set(name, value string) error {
	if err := keyring.Set(serviceName, name, value); err != nil {
		return fmt.Errorf("failed to save %s to keyring: %w", name, err)
	}
	return nil
}

func (k *KeyringSecretStore) Delete(name string) error {
	err := keyring.Delete(serviceName, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrSecretNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete %s from keyring: %w", name, err)
	}
	return nil
}

func tokenKey(userID string) string {
	return "token:" + userID
}

// SaveToken stores the given OAuth2 token in the OS keyring under the user ID.
func (k *KeyringSecretStore) SaveToken(_ context.Context, userID string, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	return k.Set(tokenKey(userID), string(data))
}

// LoadToken retrieves the OAuth2 token for the given user ID.
func (k *KeyringSecretStore) LoadToken(_ context.Context, userID string) (*oauth2.Token, error) {
	data, err := k.Get(tokenKey(userID))
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal([]byte(data), &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	return &token, nil
}

func (k *KeyringSecretStore) DeleteToken(userID string) error {
	return k.Delete(tokenKey(userID))
}
