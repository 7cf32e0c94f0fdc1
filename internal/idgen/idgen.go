// Package idgen produces the short random tokens used as room ids.
package idgen

import (
	"crypto/rand"
	"encoding/hex"
)

const roomIDBytes = 3

// NewRoomID returns a 6-char lowercase hex token.
func NewRoomID() (string, error) {
	b := make([]byte, roomIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
