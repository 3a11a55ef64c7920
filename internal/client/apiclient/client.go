// Package apiclient - типизированный JSON-клиент для HTTP API MarketVUE.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"marketvue_backend/internal/client/session"
	"marketvue_backend/internal/services/dto"
	"marketvue_backend/pkg/apperrors"
)

const apiPrefix = "/api/v1"

type Client struct {
	baseURL  string
	http     *http.Client
	sessions *session.FileStore
	now      func() time.Time
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, sessions *session.FileStore, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 15 * time.Second},
		sessions: sessions,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session возвращает текущий снимок сессии (nil - аноним).
func (c *Client) Session() (*session.Session, error) {
	return c.sessions.Load()
}

// ============================================
// Auth
// ============================================

func (c *Client) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	var user dto.UserResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, false, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login сохраняет сессию при успехе.
func (c *Client) Login(ctx context.Context, email, password string) (*session.Session, error) {
	var resp dto.AuthResponse
	req := &dto.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, false, &resp); err != nil {
		return nil, err
	}

	sess := session.FromAuth(&resp, c.now())
	if err := c.sessions.Save(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Logout отзывает refresh-токен на сервере и всегда очищает локальную сессию.
func (c *Client) Logout(ctx context.Context) error {
	sess, err := c.sessions.Load()
	if err != nil {
		return err
	}
	var remoteErr error
	if sess.Authenticated() && sess.RefreshToken != "" {
		req := &dto.LogoutRequest{RefreshToken: sess.RefreshToken}
		remoteErr = c.do(ctx, http.MethodPost, "/auth/logout", req, false, nil)
	}
	if err := c.sessions.Clear(); err != nil {
		return err
	}
	if remoteErr != nil && !apperrors.HasCode(remoteErr, apperrors.CodeInvalidToken) {
		return remoteErr
	}
	return nil
}

func (c *Client) Me(ctx context.Context) (*dto.UserResponse, error) {
	var user dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, true, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// refresh обменивает refresh-токен на новую пару и сохраняет сессию.
func (c *Client) refresh(ctx context.Context) error {
	sess, err := c.sessions.Load()
	if err != nil {
		return err
	}
	if !sess.Authenticated() || sess.RefreshToken == "" {
		return apperrors.ErrMissingToken
	}

	var resp dto.AuthResponse
	req := &dto.RefreshTokenRequest{RefreshToken: sess.RefreshToken}
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", req, false, &resp); err != nil {
		if apperrors.HasCode(err, apperrors.CodeInvalidToken) {
			_ = c.sessions.Clear()
		}
		return err
	}
	return c.sessions.Save(session.FromAuth(&resp, c.now()))
}

// ============================================
// Posts
// ============================================

type ListOptions struct {
	Query      string
	CategoryID string
	Page       int
	PageSize   int
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	if o.Query != "" {
		v.Set("q", o.Query)
	}
	if o.CategoryID != "" {
		v.Set("category_id", o.CategoryID)
	}
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(o.PageSize))
	}
	return v
}

func (c *Client) ListPosts(ctx context.Context, opts ListOptions) (*dto.PostListResponse, error) {
	var resp dto.PostListResponse
	if err := c.do(ctx, http.MethodGet, withQuery("/posts", opts.values()), nil, false, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) MyPosts(ctx context.Context, opts ListOptions) (*dto.PostListResponse, error) {
	var resp dto.PostListResponse
	if err := c.do(ctx, http.MethodGet, withQuery("/posts/mine", opts.values()), nil, true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPost отправляет токен, если он есть: владелец и админ видят скрытые посты.
func (c *Client) GetPost(ctx context.Context, id string) (*dto.PostResponse, error) {
	var post dto.PostResponse
	if err := c.do(ctx, http.MethodGet, "/posts/"+url.PathEscape(id), nil, c.hasSession(), &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// ============================================
// Admin
// ============================================

func (c *Client) Overview(ctx context.Context) (*dto.OverviewResponse, error) {
	var resp dto.OverviewResponse
	if err := c.do(ctx, http.MethodGet, "/admin/overview", nil, true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) PendingUsers(ctx context.Context) ([]*dto.UserResponse, error) {
	var users []*dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/users/pending", nil, true, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) ApproveUser(ctx context.Context, id string) (*dto.UserResponse, error) {
	return c.decide(ctx, id, "approve")
}

func (c *Client) DenyUser(ctx context.Context, id string) (*dto.UserResponse, error) {
	return c.decide(ctx, id, "deny")
}

func (c *Client) decide(ctx context.Context, id, action string) (*dto.UserResponse, error) {
	var user dto.UserResponse
	path := "/users/" + url.PathEscape(id) + "/" + action
	if err := c.do(ctx, http.MethodPost, path, nil, true, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ============================================
// Transport
// ============================================

func (c *Client) hasSession() bool {
	sess, err := c.sessions.Load()
	return err == nil && sess.Authenticated()
}

// do выполняет запрос; при 401 INVALID_TOKEN один раз обновляет токены и повторяет.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, authed bool, out interface{}) error {
	err := c.send(ctx, method, path, body, authed, out)
	if authed && apperrors.HasCode(err, apperrors.CodeInvalidToken) {
		if refreshErr := c.refresh(ctx); refreshErr != nil {
			return err
		}
		return c.send(ctx, method, path, body, authed, out)
	}
	return err
}

func (c *Client) send(ctx context.Context, method, path string, body interface{}, authed bool, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		sess, err := c.sessions.Load()
		if err != nil {
			return err
		}
		if !sess.Authenticated() {
			return apperrors.ErrMissingToken
		}
		req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError восстанавливает AppError из тела {"error": {...}}.
func decodeError(status int, raw []byte) error {
	var envelope struct {
		Error *apperrors.AppError `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Error == nil || envelope.Error.Code == "" {
		return apperrors.New(apperrors.CodeInternalError, "client",
			fmt.Sprintf("unexpected response %d", status), status)
	}
	envelope.Error.HTTPCode = status
	return envelope.Error
}

func withQuery(path string, v url.Values) string {
	if len(v) == 0 {
		return path
	}
	return path + "?" + v.Encode()
}
