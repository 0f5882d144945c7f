// Package gateway talks to the chat backend over HTTP/JSON.
//
// Responses are decoded with gjson rather than fixed structs because the
// backend is loose about shapes: ids arrive as "_id" or "id", and the message
// list is either a bare array or wrapped in {"messages": [...]}.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"chatwave/chat"
	"chatwave/config"
)

const DefaultTimeout = 60 * time.Second

// ErrMalformedResponse is returned when a 2xx body does not have the expected shape
var ErrMalformedResponse = errors.New("malformed backend response")

// StatusError is a non-2xx reply from the backend
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: backend returned %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s: backend returned %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// User is the backend's record of the signed-in person
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// Session is a backend conversation
type Session struct {
	ID        string
	Title     string
	CreatedAt time.Time
}

// Summary converts a session for the sidebar grouper
func (s Session) Summary() chat.SessionSummary {
	return chat.SessionSummary{ID: s.ID, Title: s.Title, CreatedAt: s.CreatedAt}
}

// GoogleProfile is the identity forwarded to POST /auth/google
type GoogleProfile struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	GoogleID string `json:"google_id"`
}

// Login is the result of exchanging a Google identity
type Login struct {
	AccessToken string
	User        User
}

// Client is safe for concurrent use
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// WithHTTPClient replaces the underlying HTTP client
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// BaseURL returns the backend address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetAccessToken sets the bearer token sent with every request. Empty clears it.
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) accessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// LoginWithGoogle exchanges a Google identity for a backend token and user
func (c *Client) LoginWithGoogle(ctx context.Context, profile GoogleProfile) (Login, error) {
	body, err := c.do(ctx, http.MethodPost, "/auth/google", profile)
	if err != nil {
		return Login{}, err
	}

	res := gjson.ParseBytes(body)
	token := res.Get("accessToken")
	if !token.Exists() {
		token = res.Get("access_token")
	}
	user := res.Get("user")
	if token.String() == "" || !user.IsObject() {
		return Login{}, fmt.Errorf("login: %w", ErrMalformedResponse)
	}

	return Login{AccessToken: token.String(), User: parseUser(user)}, nil
}

// CreateSession starts a backend session for userID, titled after the first prompt
func (c *Client) CreateSession(ctx context.Context, userID, title string) (Session, error) {
	body, err := c.do(ctx, http.MethodPost, "/chat/session", map[string]string{
		"user_id": userID,
		"title":   title,
	})
	if err != nil {
		return Session{}, err
	}

	res := gjson.ParseBytes(body)
	node := res.Get("session")
	if !node.IsObject() {
		node = res
	}
	s := parseSession(node)
	if s.ID == "" {
		return Session{}, fmt.Errorf("create session: %w", ErrMalformedResponse)
	}
	if s.Title == "" {
		s.Title = title
	}
	return s, nil
}

// ListSessions returns the user's sessions in backend order
func (c *Client) ListSessions(ctx context.Context, userID string) ([]Session, error) {
	body, err := c.do(ctx, http.MethodGet, "/chat/"+url.PathEscape(userID)+"/session", nil)
	if err != nil {
		return nil, err
	}

	list := gjson.GetBytes(body, "sessions")
	if !list.Exists() {
		list = gjson.ParseBytes(body)
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("list sessions: %w", ErrMalformedResponse)
	}

	var sessions []Session
	for _, item := range list.Array() {
		s := parseSession(item)
		if s.ID == "" {
			continue
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// FetchMessages returns a session's messages as stored by the backend
func (c *Client) FetchMessages(ctx context.Context, sessionID string) ([]chat.RemoteMessage, error) {
	body, err := c.do(ctx, http.MethodGet, "/chat/"+url.PathEscape(sessionID)+"/messages", nil)
	if err != nil {
		return nil, err
	}

	list := gjson.ParseBytes(body)
	if list.IsObject() {
		list = list.Get("messages")
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("fetch messages: %w", ErrMalformedResponse)
	}

	items := list.Array()
	msgs := make([]chat.RemoteMessage, 0, len(items))
	for _, item := range items {
		msgs = append(msgs, chat.RemoteMessage{
			ID:        idOf(item),
			SessionID: item.Get("session_id").String(),
			UserID:    item.Get("user_id").String(),
			Role:      parseRole(item.Get("role").String()),
			Content:   item.Get("content").String(),
			Timestamp: parseTime(item.Get("timestamp")),
		})
	}
	return msgs, nil
}

// SendMessage posts a prompt and returns the complete assistant answer
func (c *Client) SendMessage(ctx context.Context, sessionID, userID, message string) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/chat/message", map[string]string{
		"session_id": sessionID,
		"user_id":    userID,
		"message":    message,
	})
	if err != nil {
		return "", err
	}

	answer := gjson.GetBytes(body, "assistant_answer")
	if answer.Type != gjson.String {
		return "", fmt.Errorf("send message: %w", ErrMalformedResponse)
	}
	return answer.String(), nil
}

// DeleteSession removes a session on the backend
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/chat/"+url.PathEscape(sessionID), nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.accessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	config.Logf("[gateway] %s %s", method, path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		config.Logf("[gateway] %s %s failed: %v", method, path, err)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: failed to read response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: errorDetail(body)}
		config.Logf("[gateway] %v", serr)
		return nil, serr
	}

	return body, nil
}

// errorDetail pulls a readable message out of an error body
func errorDetail(body []byte) string {
	for _, key := range []string{"detail", "message", "error"} {
		if v := gjson.GetBytes(body, key); v.Type == gjson.String {
			return v.String()
		}
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

func idOf(v gjson.Result) string {
	if id := v.Get("_id"); id.Exists() {
		return id.String()
	}
	return v.Get("id").String()
}

func parseUser(v gjson.Result) User {
	return User{
		ID:     idOf(v),
		Name:   v.Get("name").String(),
		Email:  v.Get("email").String(),
		Avatar: v.Get("avatar").String(),
	}
}

func parseSession(v gjson.Result) Session {
	created := v.Get("createdAt")
	if !created.Exists() {
		created = v.Get("created_at")
	}
	return Session{
		ID:        idOf(v),
		Title:     v.Get("title").String(),
		CreatedAt: parseTime(created),
	}
}

func parseRole(s string) chat.Role {
	if strings.EqualFold(s, string(chat.RoleUser)) {
		return chat.RoleUser
	}
	return chat.RoleAssistant
}

// parseTime accepts RFC 3339 (with or without zone) or unix seconds
func parseTime(v gjson.Result) time.Time {
	switch v.Type {
	case gjson.Number:
		return time.Unix(v.Int(), 0).UTC()
	case gjson.String:
		s := v.String()
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}
