package core

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// NonceActionGenerateKey scopes nonces to the feed key regeneration action.
const NonceActionGenerateKey = "stream_generate_key"

// nonceWindow is the lifetime of one nonce tick. A token is accepted for
// the current and the previous tick, so its effective lifetime is between
// one and two windows.
const nonceWindow = 12 * time.Hour

const nonceLength = 16 // hex characters

// NonceService issues and verifies anti-forgery tokens bound to an action
// and a user identity.
type NonceService struct {
	secret []byte
	now    func() time.Time
}

// NewNonceService creates a NonceService keyed by the given secret.
func NewNonceService(secret string) *NonceService {
	return &NonceService{secret: []byte(secret), now: time.Now}
}

// Create returns a token valid for the action and user in the current
// time window.
func (s *NonceService) Create(action, userID string) string {
	return s.tokenAt(action, userID, s.tick())
}

// Verify reports whether the token is valid for the action and user in the
// current or previous time window. It never errors: anything malformed,
// expired, or forged is simply false, and callers fall back silently.
func (s *NonceService) Verify(token, action, userID string) bool {
	if token == "" {
		return false
	}
	for offset := int64(0); offset <= 1; offset++ {
		expected := s.tokenAt(action, userID, s.tick()-offset)
		if hmac.Equal([]byte(token), []byte(expected)) {
			return true
		}
	}
	return false
}

func (s *NonceService) tick() int64 {
	return s.now().Unix() / int64(nonceWindow.Seconds())
}

func (s *NonceService) tokenAt(action, userID string, tick int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%d|%s|%s", tick, action, userID)
	return hex.EncodeToString(mac.Sum(nil))[:nonceLength]
}
