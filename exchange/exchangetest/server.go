// Package exchangetest runs an in-process stand-in for the Bitso private API.
// It checks every Authorization header against the configured secret and
// records what it was sent.
package exchangetest

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"bitsoBuyer/exchange/httpClient"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
)

const invalidCredentials = `{"success":false,"error":{"code":"0201","message":"Invalid Nonce or Invalid Credentials"}}`

type Request struct {
	Method        string
	Path          string
	Body          string
	ContentType   string
	Authorization string
	Nonce         int64
	Authorized    bool
	Order         *httpClient.OrderRequest
}

type Server struct {
	*httptest.Server

	creds httpClient.Credentials

	mu        sync.Mutex
	requests  []Request
	lastNonce int64
	balances  string
	orders    map[string]string
	fallback  string
}

func NewServer(creds httpClient.Credentials) *Server {
	s := &Server{
		creds:    creds,
		balances: `{"success":true,"payload":{"balances":[]}}`,
		orders:   map[string]string{},
		fallback: `{"success":false,"error":{"code":"0301","message":"Unknown OrderBook"}}`,
	}

	r := mux.NewRouter()
	r.Use(s.authenticate)
	r.HandleFunc(httpClient.BalancePath, s.handleBalance).Methods(http.MethodGet)
	r.HandleFunc(httpClient.OrdersPath, s.handleOrder).Methods(http.MethodPost)
	s.Server = httptest.NewServer(r)
	return s
}

// SetBalances replaces the raw JSON served by the balance endpoint.
func (s *Server) SetBalances(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances = raw
}

// SetOrderResponse sets the raw JSON returned for orders on book.
func (s *Server) SetOrderResponse(book, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[book] = raw
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Orders returns the order bodies received, in arrival order.
func (s *Server) Orders() []httpClient.OrderRequest {
	var out []httpClient.OrderRequest
	for _, r := range s.Requests() {
		if r.Order != nil {
			out = append(out, *r.Order)
		}
	}
	return out
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		rec := Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Body:          string(body),
			ContentType:   r.Header.Get("Content-Type"),
			Authorization: r.Header.Get("Authorization"),
		}
		if r.Method == http.MethodPost && len(body) > 0 {
			var order httpClient.OrderRequest
			if err := json.Unmarshal(body, &order); err == nil {
				rec.Order = &order
			}
		}

		nonce, ok := s.verify(rec.Authorization, r.Method, r.URL.Path, string(body))
		rec.Nonce = nonce

		s.mu.Lock()
		if ok && nonce <= s.lastNonce {
			ok = false
		}
		if ok {
			s.lastNonce = nonce
		}
		rec.Authorized = ok
		s.requests = append(s.requests, rec)
		s.mu.Unlock()

		if !ok {
			writeJSON(w, http.StatusUnauthorized, invalidCredentials)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) verify(header, method, path, body string) (int64, bool) {
	rest, found := strings.CutPrefix(header, httpClient.AUTH_SCHEME+" ")
	if !found {
		return 0, false
	}
	parts := strings.Split(rest, ":")
	if len(parts) != 3 || parts[0] != s.creds.Key {
		return 0, false
	}
	nonce, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, false
	}
	mac := hmac.New(sha256.New, []byte(s.creds.Secret))
	fmt.Fprintf(mac, "%s%s%s%s", parts[1], method, path, body)
	want := hex.EncodeToString(mac.Sum(nil))
	return nonce, hmac.Equal([]byte(want), []byte(parts[2]))
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	raw := s.balances
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, raw)
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	var order httpClient.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		writeJSON(w, http.StatusBadRequest, `{"success":false,"error":{"code":"0101","message":"Unknown error"}}`)
		return
	}
	s.mu.Lock()
	raw, ok := s.orders[order.Book]
	if !ok {
		raw = s.fallback
	}
	s.mu.Unlock()

	status := http.StatusOK
	if strings.Contains(raw, `"success":false`) {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, raw)
}

func writeJSON(w http.ResponseWriter, status int, raw string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, raw)
}
