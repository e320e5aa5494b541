// Package client talks to the Secret App HTTP API and holds the state the
// browser pages keep for the profile form, the secret form and the friends
// page.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HammerMeetNail/secretapp/internal/models"
)

const csrfHeaderName = "X-CSRF-Token"

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// MessageOf returns the server's message for err, falling back to err.Error().
func MessageOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	csrfToken  string
	bearer     string
}

type Option func(*Client)

// WithHTTPClient replaces the default client. The caller's client should
// carry a cookie jar for session auth to work.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBearerToken authenticates every request with a service-role token.
func WithBearerToken(token string) Option {
	return func(c *Client) { c.bearer = token }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Jar: jar, Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User *models.User `json:"user"`
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", credentials{email, password}, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", credentials{email, password}, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/account", nil, nil)
}

// DeleteUser removes any account. Requires WithBearerToken.
func (c *Client) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/admin/users/"+userID.String(), nil, nil)
}

// ProfileResult is the server's view of the caller's profile.
type ProfileResult struct {
	Email   string          `json:"email"`
	Profile *models.Profile `json:"profile"`
	Exists  bool            `json:"exists"`
	Message string          `json:"message"`
}

func (c *Client) GetProfile(ctx context.Context) (*ProfileResult, error) {
	var resp ProfileResult
	if err := c.do(ctx, http.MethodGet, "/api/profile", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SaveProfile(ctx context.Context, params models.UpsertProfileParams) (*ProfileResult, error) {
	var resp ProfileResult
	if err := c.do(ctx, http.MethodPut, "/api/profile", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type secretBody struct {
	Message string `json:"message"`
}

type secretResponse struct {
	Secret *models.Secret `json:"secret"`
}

func (c *Client) ListSecrets(ctx context.Context) ([]models.Secret, error) {
	var resp struct {
		Secrets []models.Secret `json:"secrets"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/secrets", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Secrets, nil
}

func (c *Client) CreateSecret(ctx context.Context, message string) (*models.Secret, error) {
	var resp secretResponse
	if err := c.do(ctx, http.MethodPost, "/api/secrets", secretBody{message}, &resp); err != nil {
		return nil, err
	}
	return resp.Secret, nil
}

func (c *Client) UpdateSecret(ctx context.Context, id uuid.UUID, message string) (*models.Secret, error) {
	var resp secretResponse
	if err := c.do(ctx, http.MethodPut, "/api/secrets/"+id.String(), secretBody{message}, &resp); err != nil {
		return nil, err
	}
	return resp.Secret, nil
}

func (c *Client) DeleteSecret(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/secrets/"+id.String(), nil, nil)
}

func (c *Client) FriendView(ctx context.Context) (*models.FriendView, error) {
	var view models.FriendView
	if err := c.do(ctx, http.MethodGet, "/api/friends", nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// FriendRequestResult is an edge write plus the view reloaded after it.
type FriendRequestResult struct {
	Request *models.FriendEdge `json:"request"`
	View    *models.FriendView `json:"view"`
}

func (c *Client) SendFriendRequest(ctx context.Context, friendID uuid.UUID) (*FriendRequestResult, error) {
	var resp FriendRequestResult
	body := models.SendFriendRequestParams{FriendID: friendID}
	if err := c.do(ctx, http.MethodPost, "/api/friends/requests", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) AcceptFriendRequest(ctx context.Context, requesterID uuid.UUID) (*FriendRequestResult, error) {
	var resp FriendRequestResult
	if err := c.do(ctx, http.MethodPost, "/api/friends/requests/"+requesterID.String()+"/accept", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) FriendSecret(ctx context.Context, friendID uuid.UUID) (*models.FriendSecret, error) {
	var resp models.FriendSecret
	if err := c.do(ctx, http.MethodGet, "/api/friends/"+friendID.String()+"/secret", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ensureCSRF(ctx context.Context) error {
	if c.csrfToken != "" || c.bearer != "" {
		return nil
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.send(ctx, http.MethodGet, "/api/csrf", nil, &resp); err != nil {
		return fmt.Errorf("fetching csrf token: %w", err)
	}
	c.csrfToken = resp.Token
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if method != http.MethodGet {
		if err := c.ensureCSRF(ctx); err != nil {
			return err
		}
	}
	return c.send(ctx, method, path, body, out)
}

func (c *Client) send(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.csrfToken != "" {
		req.Header.Set(csrfHeaderName, c.csrfToken)
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&envelope)
		if envelope.Error == "" {
			envelope.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: envelope.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}
