package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/bnema/vault-kv-cli/internal/domain"
	"github.com/bnema/vault-kv-cli/internal/logging"
	"github.com/bnema/vault-kv-cli/internal/ports"
	cleanhttp "github.com/hashicorp/go-cleanhttp"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single request when Config.Timeout is not set.
const DefaultTimeout = 5 * time.Second

// DefaultMaxResponseSize matches Vault's default max_request_size.
const DefaultMaxResponseSize int64 = 32 << 20

const (
	tokenHeader = "X-Vault-Token"

	// envelopeHeadroom is kept free in a read response for the KV envelope
	// around the encoded state (data, lease fields, request id, warnings).
	envelopeHeadroom = 4 << 10
	// drainLimit bounds how much of a write response body is discarded.
	drainLimit = 64 << 10
)

type Config struct {
	// BaseURL is the KV path entries live under, e.g.
	// http://vault:8200/v1/secret/app. It is not validated.
	BaseURL string
	Token   string
	Timeout time.Duration
	// MaxResponseSize caps a read response body. States whose encoded form
	// would not fit back into it are rejected on write.
	MaxResponseSize int64

	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Store reads and writes one state string per name below BaseURL. It holds
// no mutable state, so concurrent use is safe.
type Store struct {
	baseURL string
	token   string
	timeout time.Duration
	maxBody int64
	client  *http.Client
	logger  *zap.Logger
}

var _ ports.KeyValueStore = (*Store)(nil)

func NewStore(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	maxBody := cfg.MaxResponseSize
	if maxBody <= 0 {
		maxBody = DefaultMaxResponseSize
	}

	client := cfg.HTTPClient
	if client == nil {
		client = cleanhttp.DefaultClient()
	}

	return &Store{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		timeout: timeout,
		maxBody: maxBody,
		client:  client,
		logger:  logging.OrNop(cfg.Logger).Named("vault"),
	}
}

// NewFactory returns a ports.KeyValueStoreFactory sharing client and logger
// across the stores it opens.
func NewFactory(client *http.Client, logger *zap.Logger) ports.KeyValueStoreFactory {
	return func(target domain.Target) ports.KeyValueStore {
		return NewStore(Config{
			BaseURL:    target.BaseURL,
			Token:      target.Token,
			Timeout:    target.Timeout,
			HTTPClient: client,
			Logger:     logger,
		})
	}
}

type setRequest struct {
	State string `json:"state"`
}

type getResponse struct {
	Data *struct {
		State *string `json:"state"`
	} `json:"data"`
}

// SetValue writes value under name. Only 204 No Content counts as success.
// Transport failures, including the timeout, are returned as the HTTP
// client reported them. value must be valid UTF-8 and small enough to be
// read back; otherwise nothing is sent.
func (s *Store) SetValue(ctx context.Context, name string, value string) error {
	s.logger.Debug("setting value", zap.String("name", name))

	if !utf8.ValidString(value) {
		return ErrInvalidUTF8
	}

	body, err := json.Marshal(setRequest{State: value})
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if limit := s.maxStateSize(); int64(len(body)) > limit {
		return &StateTooLargeError{Size: int64(len(body)), Limit: limit}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.do(ctx, http.MethodPost, name, body)
	if err != nil {
		s.logger.Debug("error when saving in vault", zap.String("name", name), zap.Error(err))
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, drainLimit))

	s.logger.Debug("received response from vault", zap.String("name", name), zap.Int("status", resp.StatusCode))
	if resp.StatusCode != http.StatusNoContent {
		return &StatusError{Op: OpPersist, StatusCode: resp.StatusCode}
	}

	return nil
}

// GetValue reads the state stored under name. A 404 reports found=false with
// a nil error.
func (s *Store) GetValue(ctx context.Context, name string) (string, bool, error) {
	s.logger.Debug("getting value", zap.String("name", name))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.do(ctx, http.MethodGet, name, nil)
	if err != nil {
		s.logger.Debug("error when getting state from vault", zap.String("name", name), zap.Error(err))
		return "", false, err
	}
	defer func() { _ = resp.Body.Close() }()

	s.logger.Debug("received response from vault", zap.String("name", name), zap.Int("status", resp.StatusCode))
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return "", false, nil
	default:
		return "", false, &StatusError{Op: OpRead, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBody+1))
	if err != nil {
		return "", false, err
	}
	if int64(len(raw)) > s.maxBody {
		return "", false, &ResponseTooLargeError{Limit: s.maxBody}
	}

	state, err := decodeState(raw)
	if err != nil {
		return "", false, err
	}

	return state, true, nil
}

func (s *Store) do(ctx context.Context, method string, name string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.entryURL(name), reader)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set(tokenHeader, s.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return s.client.Do(req)
}

// maxStateSize is the largest encoded write body whose state still fits in a
// read response.
func (s *Store) maxStateSize() int64 {
	return max(s.maxBody-envelopeHeadroom, 0)
}

// entryURL appends name verbatim; escaping path-unsafe names is left to the
// caller.
func (s *Store) entryURL(name string) string {
	return s.baseURL + "/" + name
}

func decodeState(raw []byte) (string, error) {
	var payload getResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.Data == nil {
		return "", fmt.Errorf("%w: missing data", ErrMalformedResponse)
	}
	if payload.Data.State == nil {
		return "", fmt.Errorf("%w: missing data.state", ErrMalformedResponse)
	}

	return *payload.Data.State, nil
}
