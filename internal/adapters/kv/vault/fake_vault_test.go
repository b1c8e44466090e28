package vault

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const (
	testToken    = "a8c914c6-2b71-11e7-93ae-92361f002671"
	testBasePath = "/v1/secret/myinstance"
)

// fakeVault mimics a KV v1 mount: POST stores the JSON body as the secret's
// data and answers 204, GET wraps stored data in the read envelope.
type fakeVault struct {
	mu      sync.Mutex
	secrets map[string]json.RawMessage
}

func newFakeVault(t *testing.T) (*fakeVault, *httptest.Server) {
	t.Helper()

	vault := &fakeVault{secrets: map[string]json.RawMessage{}}
	server := httptest.NewServer(vault)
	t.Cleanup(server.Close)

	return vault, server
}

func (f *fakeVault) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get(tokenHeader) != testToken {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	name, ok := strings.CutPrefix(r.URL.Path, testBasePath+"/")
	if !ok || name == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPost:
		var data json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.secrets[name] = data
		w.WriteHeader(http.StatusNoContent)
	case http.MethodGet:
		data, found := f.secrets[name]
		if !found {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[]}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"auth":           nil,
			"data":           data,
			"lease_duration": 2764800,
			"lease_id":       "",
			"renewable":      false,
		})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeVault) stored(name string) json.RawMessage {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.secrets[name]
}

func newTestStore(server *httptest.Server) *Store {
	return NewStore(Config{
		BaseURL:    server.URL + testBasePath,
		Token:      testToken,
		HTTPClient: server.Client(),
	})
}

func newStatusServer(t *testing.T, status int) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}))
}
