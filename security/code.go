package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"math/big"
)

const digits = "0123456789"

// GenerateCode returns a random numeric code of the given length.
func GenerateCode(length int) (string, error) {
	max := big.NewInt(int64(len(digits)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = digits[n.Int64()]
	}
	return string(b), nil
}

// HashCode hashes a one-time code for storage. Codes are short-lived and
// attempt-limited, so a fast hash is enough.
func HashCode(email, code string) string {
	sum := sha256.Sum256([]byte(email + ":" + code))
	return hex.EncodeToString(sum[:])
}

// CodeMatches compares a stored hash with a submitted code in constant time.
func CodeMatches(hash, email, code string) bool {
	return subtle.ConstantTimeCompare([]byte(hash), []byte(HashCode(email, code))) == 1
}
