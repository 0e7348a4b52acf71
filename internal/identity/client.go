package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrInvalidSession is returned when the provider rejects the bearer token.
var ErrInvalidSession = errors.New("identity: invalid session")

// Session identifies the signed-in reader.
type Session struct {
	UserID      string
	DisplayName string
}

// Verifier resolves bearer tokens into sessions.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Session, error)
}

// HTTPClient implements Verifier against the identity provider's REST API.
type HTTPClient struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPClient constructs a new HTTP-backed verifier.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) (*HTTPClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse identity url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("identity url must be absolute: %q", baseURL)
	}
	return &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger.Named("identity"),
	}, nil
}

// Verify asks the provider who owns token.
func (c *HTTPClient) Verify(ctx context.Context, token string) (*Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrInvalidSession
	}
	endpoint := c.baseURL.ResolveReference(&url.URL{Path: c.baseURL.Path + "/v1/sessions/verify"})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload sessionPayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("decode identity response: %w", err)
		}
		return convertToSession(payload)
	case http.StatusUnauthorized, http.StatusNotFound:
		return nil, ErrInvalidSession
	default:
		c.logger.Warn("unexpected status", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("identity: upstream returned %d", resp.StatusCode)
	}
}

type sessionPayload struct {
	UID         string  `json:"uid"`
	DisplayName *string `json:"displayName"`
	Email       *string `json:"email"`
}

func convertToSession(payload sessionPayload) (*Session, error) {
	uid := strings.TrimSpace(payload.UID)
	if uid == "" {
		return nil, ErrInvalidSession
	}
	name := ""
	if payload.DisplayName != nil {
		name = strings.TrimSpace(*payload.DisplayName)
	}
	if name == "" && payload.Email != nil {
		local, _, _ := strings.Cut(strings.TrimSpace(*payload.Email), "@")
		name = local
	}
	return &Session{UserID: uid, DisplayName: name}, nil
}
