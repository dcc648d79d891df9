package game

import (
	"crypto/rand"
	"errors"
)

// Session codes are read out loud and typed on phones, so the alphabet
// drops 0/O, 1/I and lowercase entirely.
const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 6
)

var errCodeSpaceExhausted = errors.New("failed to generate unique session code")

// newCode returns a fresh code for which exists reports false. The caller
// holds the registry lock, so a returned code stays unique for the session
// lifetime.
func newCode(exists func(string) bool) (string, error) {
	for attempts := 0; attempts < 10; attempts++ {
		b := make([]byte, codeLength)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}
		code := make([]byte, codeLength)
		for i := range code {
			code[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
		}
		if !exists(string(code)) {
			return string(code), nil
		}
	}
	return "", errCodeSpaceExhausted
}
