package store

import (
	"encoding/json"
	"fmt"

	"github.com/jayan110105/neura/internal/domain"
	"golang.org/x/oauth2"
)

// MarshalToken encodes a token for a nullable text column. A nil token
// encodes as nil.
func MarshalToken(token *oauth2.Token) (*string, error) {
	if token == nil {
		return nil, nil
	}
	data, err := json.Marshal(token)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token: %w", err)
	}
	s := string(data)
	return &s, nil
}

func UnmarshalToken(data *string) (*oauth2.Token, error) {
	if data == nil || *data == "" {
		return nil, nil
	}
	var token oauth2.Token
	if err := json.Unmarshal([]byte(*data), &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	return &token, nil
}

// MarshalMessages serializes a transcript's messages as one JSON array.
func MarshalMessages(msgs []domain.Message) (string, error) {
	if msgs == nil {
		msgs = []domain.Message{}
	}
	data, err := json.Marshal(msgs)
	if err != nil {
		return "", fmt.Errorf("failed to marshal messages: %w", err)
	}
	return string(data), nil
}

func UnmarshalMessages(data string) ([]domain.Message, error) {
	msgs := []domain.Message{}
	if data == "" {
		return msgs, nil
	}
	if err := json.Unmarshal([]byte(data), &msgs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal messages: %w", err)
	}
	return msgs, nil
}
