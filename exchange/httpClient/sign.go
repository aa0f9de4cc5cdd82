package httpClient

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"bitsoBuyer/util"
)

var (
	ErrMissingKey    = errors.New("api key is empty")
	ErrMissingSecret = errors.New("api secret is empty")
)

// Credentials are the key pair issued by Bitso. The secret only keys the HMAC
// and is never sent.
type Credentials struct {
	Key    string
	Secret string
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Key) == "" {
		return ErrMissingKey
	}
	if strings.TrimSpace(c.Secret) == "" {
		return ErrMissingSecret
	}
	return nil
}

// Sign produces Bitso authorization headers. Nonces are issued in strictly
// increasing order per Sign, so one Sign must be shared by everything that
// uses the same key.
type Sign struct {
	key    string
	secret []byte
	clock  util.Clock

	mu        sync.Mutex
	lastNonce int64
}

func NewSign(creds Credentials) (*Sign, error) {
	return NewSignWithClock(creds, util.RealClock{})
}

func NewSignWithClock(creds Credentials, clock util.Clock) (*Sign, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return &Sign{key: creds.Key, secret: []byte(creds.Secret), clock: clock}, nil
}

// Nonce returns the current unix time in milliseconds, bumped past the last
// issued value when the clock has not moved forward.
func (s *Sign) Nonce() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.clock.Now().UnixMilli()
	if n <= s.lastNonce {
		n = s.lastNonce + 1
	}
	s.lastNonce = n
	return n
}

// Signature is hex(HMAC-SHA256(secret, nonce+method+path+body)).
func (s *Sign) Signature(nonce int64, method, path, body string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(strconv.FormatInt(nonce, 10)))
	mac.Write([]byte(method))
	mac.Write([]byte(path))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

// Header returns a fresh "Bitso key:nonce:signature" value.
func (s *Sign) Header(method, path, body string) string {
	nonce := s.Nonce()
	return fmt.Sprintf("%s %s:%d:%s", AUTH_SCHEME, s.key, nonce, s.Signature(nonce, method, path, body))
}
