// Package auth talks to the remote authentication service and keeps the
// session token on the local machine.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

const genericMessage = "Something went wrong. Please try again."

// ErrNotAuthenticated is returned when no session token is stored.
var ErrNotAuthenticated = errors.New("not signed in")

// Error is a failed auth call. Message is safe to show to the user.
type Error struct {
	// Status is the HTTP status, or 0 when no response was received.
	Status  int
	Message string
	cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

type User struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is the login/register answer.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Config struct {
	// BaseURL is the API root, e.g. http://localhost:5000/api.
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default client built from Timeout.
	HTTPClient *http.Client
	Logger     *zap.SugaredLogger
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	store      TokenStore
	log        *zap.SugaredLogger
}

func NewClient(cfg Config, store TokenStore) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		store:      store,
		log:        log,
	}
}

// Login signs in and stores the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	if err := (LoginForm{Email: email, Password: password}).Validate(); err != nil {
		return nil, err
	}
	return c.authenticate(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Register creates an account and stores the returned token.
func (c *Client) Register(ctx context.Context, name, email, password string) (*Session, error) {
	form := RegisterForm{Name: name, Email: email, Password: password, Confirm: password}
	if err := form.Validate(); err != nil {
		return nil, err
	}
	return c.authenticate(ctx, "/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
}

// CurrentUser resolves the stored token. A token the server no longer
// accepts is cleared.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	token, err := c.store.Token(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &out); err != nil {
		if clearErr := c.store.Clear(ctx); clearErr != nil {
			c.log.Warnw("failed to clear rejected token", "error", clearErr)
		}
		return nil, err
	}
	return &out.User, nil
}

// Logout forgets the stored token. The server keeps no session to end.
func (c *Client) Logout(ctx context.Context) error {
	return c.store.Clear(ctx)
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*Session, error) {
	var session Session
	if err := c.do(ctx, http.MethodPost, path, "", body, &session); err != nil {
		return nil, err
	}
	if session.Token == "" {
		return nil, &Error{Message: genericMessage, cause: errors.Newf("%s: response carried no token", path)}
	}
	if err := c.store.SetToken(ctx, session.Token); err != nil {
		return nil, err
	}
	c.log.Debugw("Signed in", "email", session.User.Email)
	return &session, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "failed to encode request")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debugw("auth request failed", "path", path, "error", err)
		return &Error{Message: genericMessage, cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &Error{Status: resp.StatusCode, Message: genericMessage, cause: err}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var payload struct {
			Message string `json:"message"`
		}
		msg := genericMessage
		if json.Unmarshal(raw, &payload) == nil && payload.Message != "" {
			msg = payload.Message
		}
		return &Error{
			Status:  resp.StatusCode,
			Message: msg,
			cause:   errors.Newf("%s %s: status %d", method, path, resp.StatusCode),
		}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &Error{Status: resp.StatusCode, Message: genericMessage, cause: err}
		}
	}
	return nil
}
