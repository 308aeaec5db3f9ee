package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fekuna/omnipos-replenishment-service/internal/model"
)

type Config struct {
	URL     string
	AnonKey string
	Timeout time.Duration
}

// Client talks to a GoTrue-compatible identity provider.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
}

func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		anonKey: cfg.AnonKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SignUp returns the provider's response body untouched.
func (c *Client) SignUp(ctx context.Context, email, password string) (json.RawMessage, error) {
	return c.post(ctx, "/auth/v1/signup", credentials{Email: email, Password: password})
}

// SignIn exchanges email and password for a session; the body is returned untouched.
func (c *Client) SignIn(ctx context.Context, email, password string) (json.RawMessage, error) {
	return c.post(ctx, "/auth/v1/token?grant_type=password", credentials{Email: email, Password: password})
}

// GetUser returns the raw user document for token.
func (c *Client) GetUser(ctx context.Context, token string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)

	body, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, model.ErrUnauthenticated.Withf("%s", providerMessage(body))
	}
	return body, nil
}

// VerifyToken resolves token to a tenant id. Every failure, including
// transport and decode errors, collapses to ok == false.
func (c *Client) VerifyToken(ctx context.Context, token string) (string, bool) {
	body, err := c.GetUser(ctx, token)
	if err != nil {
		return "", false
	}
	var u User
	if err := json.Unmarshal(body, &u); err != nil || u.ID == "" {
		return "", false
	}
	return u.ID, true
}

func (c *Client) post(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")

	body, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, model.ErrIdentityProvider.Withf("%s", providerMessage(body))
	}
	return body, nil
}

func (c *Client) do(req *http.Request) (json.RawMessage, int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("identity provider: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read identity provider response: %w", err)
	}
	return body, resp.StatusCode, nil
}

// providerMessage picks the human message out of a GoTrue error body.
func providerMessage(body []byte) string {
	var e struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err == nil {
		for _, s := range []string{e.ErrorDescription, e.Msg, e.Message, e.Error} {
			if s != "" {
				return s
			}
		}
	}
	return "identity provider rejected the request"
}
