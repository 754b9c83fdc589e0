package util

import (
	"crypto/rand"
	"math/big"
)

// Alphabet for viewer-facing access keys: no I/O/0/1, the codes get read
// aloud and typed from a projector.
const accessKeyChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const AccessKeyLength = 6

// GenerateAccessKey returns a short human-typeable code. Uniqueness among
// active sessions is enforced by the store; callers retry on collision.
func GenerateAccessKey() string {
	chars := []byte(accessKeyChars)
	key := make([]byte, AccessKeyLength)

	for i := 0; i < AccessKeyLength; i++ {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		key[i] = chars[n.Int64()]
	}

	return string(key)
}
