package service

import (
	"crypto/rand"
	"math/big"
)

const (
	// CodeLength is the length of a team join code.
	CodeLength  = 6
	codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// CodeGenerator produces candidate join codes.
type CodeGenerator func() (string, error)

// RandomCode draws CodeLength characters uniformly from [A-Z0-9].
func RandomCode() (string, error) {
	b := make([]byte, CodeLength)
	max := big.NewInt(int64(len(codeCharset)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = codeCharset[n.Int64()]
	}
	return string(b), nil
}

// IsValidCode reports whether code has the join code shape.
func IsValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}
