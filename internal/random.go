package internal

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hashicorp/go-secure-stdlib/base62"
)

const symbolNonceLength = 22

// NewTokenSymbol derives an opaque session token for a user and endpoint
// class. The digest covers the identity fields, a random UUID and a base62
// nonce, so two calls with equal inputs never collide.
func NewTokenSymbol(userID, userName, endType string) (string, error) {
	if userID == "" || endType == "" {
		return "", errors.New("token symbol requires user id and end type")
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generating uuid: %w", err)
	}
	nonce, err := base62.Random(symbolNonceLength)
	if err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	h := sha256.New()
	for _, part := range []string{userID, userName, endType, id.String(), nonce} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil)), nil
}
