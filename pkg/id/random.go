// Package id generates random identifiers such as OAuth state values.
package id

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
)

// ErrInvalidLength is returned when a non-positive length is requested.
var ErrInvalidLength = errors.New("id: length must be positive")

// Hex generates lowercase hexadecimal strings from crypto/rand.
// The zero value is ready to use.
type Hex struct{}

// RandomString returns a random hex string of exactly length characters.
func (Hex) RandomString(length int) (string, error) {
	if length <= 0 {
		return "", ErrInvalidLength
	}

	buf := make([]byte, (length+1)/2)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf)[:length], nil
}
