// Package generator produces short codes from a random source.
package generator

import (
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const base62Chars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// DefaultLength is used when a non-positive length is requested.
const DefaultLength = 6

// NewCode returns a code of exactly length base62 characters, derived from
// a fresh 128-bit random value. Two draws collide only by chance on the
// truncated prefix, so callers racing on a code must rely on the store's
// unique constraint, not on this function.
func NewCode(length int) string {
	if length <= 0 {
		length = DefaultLength
	}
	u := uuid.New()
	code := base62Encode(new(big.Int).SetBytes(u[:]))
	if len(code) < length {
		code = strings.Repeat(string(base62Chars[0]), length-len(code)) + code
	}
	return code[:length]
}

// IsValidCode reports whether s is non-empty and drawn entirely from the
// base62 alphabet.
func IsValidCode(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !strings.ContainsRune(base62Chars, c) {
			return false
		}
	}
	return true
}

func base62Encode(num *big.Int) string {
	if num.Sign() == 0 {
		return string(base62Chars[0])
	}
	base := big.NewInt(int64(len(base62Chars)))
	rem := new(big.Int)
	b := make([]byte, 0, 22)
	for num.Sign() > 0 {
		num.DivMod(num, base, rem)
		b = append(b, base62Chars[rem.Int64()])
	}
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
