package pkg

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/google/uuid"
)

// GenerateSessionID - generates a random session identifier with 64 bits of
// entropy. Collisions are checked (and the id regenerated) by the caller.
func GenerateSessionID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the process is in no state to serve
		panic(err)
	}

	return base64.RawURLEncoding.EncodeToString(b)
}

// GeneratePlayerID - mints a durable player identifier for clients that
// connect without one.
func GeneratePlayerID() string {
	return uuid.NewString()
}
