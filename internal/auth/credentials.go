package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// HashSecret hashes a plaintext client secret with configured cost.
func HashSecret(secret string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CompareSecret verifies a secret against its hashed value.
func CompareSecret(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// ClientStore holds API client credentials, client id to hashed secret.
type ClientStore struct {
	clients map[string]string
}

// NewClientStore builds a store from pre-hashed secrets.
func NewClientStore(clients map[string]string) *ClientStore {
	if clients == nil {
		clients = map[string]string{}
	}
	return &ClientStore{clients: clients}
}

// Verify checks the client id and secret pair.
func (s *ClientStore) Verify(clientID, secret string) bool {
	hashed, ok := s.clients[clientID]
	if !ok {
		return false
	}
	return CompareSecret(hashed, secret) == nil
}
