package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dayflow/dayflow-backend/internal/hr/registration"
	"github.com/dayflow/dayflow-backend/internal/hr/repository"
	"github.com/dayflow/dayflow-backend/pkg/errors"
	"github.com/dayflow/dayflow-backend/pkg/httputil"
	"github.com/dayflow/dayflow-backend/pkg/logger"
)

// RegistrationClient runs the registration workflow against a remote
// hr-service over its REST contract.
type RegistrationClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logger.Logger
}

var _ registration.API = (*RegistrationClient)(nil)

// NewRegistrationClient creates a client for the hr-service at baseURL.
// token is sent as a bearer token on admin operations.
func NewRegistrationClient(baseURL, token string, log *logger.Logger) *RegistrationClient {
	return &RegistrationClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     log.WithComponent("registration-client"),
	}
}

// WithHTTPClient replaces the underlying HTTP client
func (c *RegistrationClient) WithHTTPClient(hc *http.Client) *RegistrationClient {
	c.httpClient = hc
	return c
}

// envelope is the hr-service response wrapper
type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Message string              `json:"message"`
	Error   *httputil.ErrorBody `json:"error"`
}

func (c *RegistrationClient) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if id := httputil.GetRequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("failed to call hr-service")
		return fmt.Errorf("failed to call hr-service: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode >= 300 || !env.Success {
		if env.Error == nil {
			return fmt.Errorf("%s %s failed with status %d", method, path, resp.StatusCode)
		}
		c.logger.Debug().
			Int("status", resp.StatusCode).
			Str("code", env.Error.Code).
			Str("path", path).
			Msg("hr-service returned an error")
		return errors.FromResponse(resp.StatusCode, env.Error.Code, env.Error.Message, env.Error.Details)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

// Submit implements registration.API
func (c *RegistrationClient) Submit(ctx context.Context, req registration.SubmitRequest) (*repository.Registration, error) {
	var reg repository.Registration
	if err := c.do(ctx, http.MethodPost, "/api/registrations", req, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Approve implements registration.API
func (c *RegistrationClient) Approve(ctx context.Context, id string) (*repository.ApprovedUser, error) {
	var user repository.ApprovedUser
	body := registration.DecideRequest{Action: registration.ActionApprove}
	if err := c.do(ctx, http.MethodPatch, "/api/registrations/"+url.PathEscape(id), body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Reject implements registration.API
func (c *RegistrationClient) Reject(ctx context.Context, id string) error {
	body := registration.DecideRequest{Action: registration.ActionReject}
	return c.do(ctx, http.MethodPatch, "/api/registrations/"+url.PathEscape(id), body, nil)
}

// ListPending implements registration.API
func (c *RegistrationClient) ListPending(ctx context.Context) ([]repository.Registration, error) {
	var regs []repository.Registration
	if err := c.do(ctx, http.MethodGet, "/api/registrations", nil, &regs); err != nil {
		return nil, err
	}
	return regs, nil
}

// FindApproved implements registration.API
func (c *RegistrationClient) FindApproved(ctx context.Context, email string) (*repository.ApprovedUser, error) {
	var user repository.ApprovedUser
	path := "/api/approved-users?email=" + url.QueryEscape(email)
	if err := c.do(ctx, http.MethodGet, path, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListApproved implements registration.API
func (c *RegistrationClient) ListApproved(ctx context.Context) ([]repository.ApprovedUser, error) {
	var users []repository.ApprovedUser
	if err := c.do(ctx, http.MethodGet, "/api/approved-users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SignIn checks credentials against the remote service and returns the
// session it resolves. Accounts approved there are unknown locally.
func (c *RegistrationClient) SignIn(ctx context.Context, email, password string) (*repository.Session, error) {
	var resp struct {
		User repository.Session `json:"user"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/signin", body, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}
