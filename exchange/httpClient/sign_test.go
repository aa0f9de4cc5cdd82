package httpClient

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestSign(t *testing.T, secret string) *Sign {
	t.Helper()
	s, err := NewSignWithClock(Credentials{Key: "key-1", Secret: secret}, fixedClock{time.UnixMilli(1700000000000)})
	if err != nil {
		t.Fatalf("new sign: %v", err)
	}
	return s
}

func TestNewSignRejectsMissingCredentials(t *testing.T) {
	if _, err := NewSign(Credentials{Key: "k"}); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
	if _, err := NewSign(Credentials{Secret: "s"}); !errors.Is(err, ErrMissingKey) {
		t.Fatalf("expected ErrMissingKey, got %v", err)
	}
	if _, err := NewSign(Credentials{Key: "k", Secret: "   "}); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected blank secret to be rejected, got %v", err)
	}
}

func TestSignatureMatchesHMAC(t *testing.T) {
	s := newTestSign(t, "secret")
	body := `{"book":"usd_mxn","minor":"500","side":"buy","type":"market"}`
	got := s.Signature(1700000000000, "POST", OrdersPath, body)

	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte("1700000000000POST" + OrdersPath + body))
	want := hex.EncodeToString(mac.Sum(nil))
	if got != want {
		t.Fatalf("signature mismatch: got %s want %s", got, want)
	}
	if got != strings.ToLower(got) || len(got) != 64 {
		t.Fatalf("expected lowercase 64-char hex, got %s", got)
	}
}

func TestSignatureDeterministic(t *testing.T) {
	s := newTestSign(t, "secret")
	a := s.Signature(42, "GET", BalancePath, "")
	b := s.Signature(42, "GET", BalancePath, "")
	if a != b {
		t.Fatalf("expected identical signatures, got %s and %s", a, b)
	}
}

func TestSignatureSensitivity(t *testing.T) {
	s := newTestSign(t, "secret")
	other := newTestSign(t, "secret2")
	base := s.Signature(42, "POST", OrdersPath, "{}")

	variants := map[string]string{
		"nonce":  s.Signature(43, "POST", OrdersPath, "{}"),
		"method": s.Signature(42, "GET", OrdersPath, "{}"),
		"path":   s.Signature(42, "POST", BalancePath, "{}"),
		"body":   s.Signature(42, "POST", OrdersPath, "{ }"),
		"secret": other.Signature(42, "POST", OrdersPath, "{}"),
	}
	for field, sig := range variants {
		if sig == base {
			t.Fatalf("changing %s did not change the signature", field)
		}
	}
}

func TestNonceNeverRegresses(t *testing.T) {
	s := newTestSign(t, "secret")
	first := s.Nonce()
	if first != 1700000000000 {
		t.Fatalf("expected clock reading as first nonce, got %d", first)
	}
	// clock is frozen, so every call must still move forward
	prev := first
	for i := 0; i < 5; i++ {
		n := s.Nonce()
		if n <= prev {
			t.Fatalf("nonce regressed: %d after %d", n, prev)
		}
		prev = n
	}
}

func TestNonceConcurrentUnique(t *testing.T) {
	s := newTestSign(t, "secret")
	const workers = 50
	seen := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- s.Nonce()
		}()
	}
	wg.Wait()
	close(seen)

	uniq := map[int64]bool{}
	for n := range seen {
		if uniq[n] {
			t.Fatalf("duplicate nonce %d", n)
		}
		uniq[n] = true
	}
}

func TestHeaderFormat(t *testing.T) {
	s := newTestSign(t, "secret")
	h := s.Header("GET", BalancePath, "")
	want := fmt.Sprintf("Bitso key-1:1700000000000:%s", s.Signature(1700000000000, "GET", BalancePath, ""))
	if h != want {
		t.Fatalf("unexpected header: %s", h)
	}
}
