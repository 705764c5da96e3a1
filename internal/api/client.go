// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the document-chat backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"docchat/internal/model"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the backend client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeUnreachable
	ErrTypeTimeout
	ErrTypeUnauthorized
	ErrTypeNotFound
	ErrTypeBackend
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrUnreachable  = &ClientError{Type: ErrTypeUnreachable, Message: "backend is not reachable"}
	ErrTimeout      = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrUnauthorized = &ClientError{Type: ErrTypeUnauthorized, Message: "not authorized"}
	ErrNotFound     = &ClientError{Type: ErrTypeNotFound, Message: "not found"}
)

// IsUnauthorized checks whether an error is an auth failure.
func IsUnauthorized(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeUnauthorized
	}
	return false
}

// IsTimeout checks whether an error is a timeout.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return false
}

// IsUnreachable checks whether an error indicates the backend is down.
func IsUnreachable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeUnreachable
	}
	return false
}

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend base URL (default: http://localhost:8000)
	BaseURL string

	// Timeout per request (default: 30s). The session layer has no timeout
	// policy of its own; a timeout surfaces exactly like any other
	// transport failure.
	Timeout time.Duration

	// RequestsPerSec throttles outbound calls (default: 5, 0 disables)
	RequestsPerSec float64
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:        "http://localhost:8000",
		Timeout:        30 * time.Second,
		RequestsPerSec: 5,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the document-chat backend.
//
// The bearer token is set only at defined transition points (startup, login,
// logout) by the session layer; no request reads ambient state. The Client
// is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter

	mu    sync.RWMutex
	token string
}

// NewClient creates a backend client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a backend client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:8000"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if config.RequestsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSec), int(config.RequestsPerSec)+1)
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    limiter,
	}
}

// SetToken installs the bearer token used on subsequent requests. An empty
// token means anonymous requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// bearer returns the current token.
func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do issues one request with throttling, auth header, and error mapping.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &ClientError{Type: ErrTypeTimeout, Message: "request throttled past deadline", Cause: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnreachable, Message: "failed to create request", Cause: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok := c.bearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, ErrTimeout
		}
		return nil, &ClientError{Type: ErrTypeUnreachable, Message: "backend is not reachable", Cause: err}
	}
	return resp, nil
}

// checkStatus maps a non-2xx response to a ClientError, draining the body
// for the backend's {"error": ...} detail when present.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer resp.Body.Close()

	var detail backendError
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&detail)

	msg := detail.Error
	if msg == "" {
		msg = "request failed: " + resp.Status
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &ClientError{Type: ErrTypeUnauthorized, Message: msg}
	case http.StatusNotFound:
		return &ClientError{Type: ErrTypeNotFound, Message: msg}
	default:
		return &ClientError{Type: ErrTypeBackend, Message: msg}
	}
}

// decode reads a JSON body into v, closing the body.
func decode(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// postJSON marshals body and issues a POST.
func (c *Client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(data), "application/json")
}

// =============================================================================
// CHAT OPERATIONS
// =============================================================================

// ListChats retrieves all chats owned by the current session.
func (c *Client) ListChats(ctx context.Context) ([]model.ChatSummary, error) {
	resp, err := c.do(ctx, http.MethodGet, "/rag/chats/", nil, "")
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var payload []chatPayload
	if err := decode(resp, &payload); err != nil {
		return nil, err
	}

	chats := make([]model.ChatSummary, 0, len(payload))
	for _, p := range payload {
		chats = append(chats, p.toSummary())
	}
	return chats, nil
}

// CreateChat creates a chat with the given name.
func (c *Client) CreateChat(ctx context.Context, name string) (model.ChatSummary, error) {
	resp, err := c.postJSON(ctx, "/rag/chats/", createChatRequest{Name: name})
	if err != nil {
		return model.ChatSummary{}, err
	}
	if err := checkStatus(resp); err != nil {
		return model.ChatSummary{}, err
	}

	var payload chatPayload
	if err := decode(resp, &payload); err != nil {
		return model.ChatSummary{}, err
	}
	return payload.toSummary(), nil
}

// =============================================================================
// MESSAGE OPERATIONS
// =============================================================================

// ListMessages retrieves the ordered message log for a chat.
func (c *Client) ListMessages(ctx context.Context, chatID string) ([]model.Message, error) {
	resp, err := c.do(ctx, http.MethodGet, "/rag/chats/"+chatID+"/messages/", nil, "")
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var payload messagesResponse
	if err := decode(resp, &payload); err != nil {
		return nil, err
	}

	msgs := make([]model.Message, 0, len(payload.Messages))
	for _, p := range payload.Messages {
		msgs = append(msgs, p.toMessage())
	}
	return msgs, nil
}

// StoreMessage appends a message to a chat's server-side log.
func (c *Client) StoreMessage(ctx context.Context, chatID string, msg model.Message) error {
	resp, err := c.postJSON(ctx, "/rag/chats/"+chatID+"/messages/", storeMessageRequest{
		Content: msg.Content,
		Sender:  msg.Sender.String(),
	})
	if err != nil {
		return err
	}
	if err := checkStatus(resp); err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// =============================================================================
// QUERY OPERATION
// =============================================================================

// Query sends a question to the RAG pipeline and returns the answer.
func (c *Client) Query(ctx context.Context, chatID, question string) (string, error) {
	resp, err := c.postJSON(ctx, "/rag/chats/"+chatID+"/query/", queryRequest{Question: question})
	if err != nil {
		return "", err
	}
	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var payload queryResponse
	if err := decode(resp, &payload); err != nil {
		return "", err
	}
	return payload.Answer, nil
}

// =============================================================================
// DOCUMENT UPLOAD
// =============================================================================

// UploadDocument sends a document's bytes for ingestion into the chat's
// retrieval index. The backend expects a multipart form with a "file" part.
func (c *Client) UploadDocument(ctx context.Context, chatID, filename string, r io.Reader) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to build multipart form", Cause: err}
	}
	if _, err := io.Copy(part, r); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to read document", Cause: err}
	}
	if err := w.WriteField("chat_name", filename); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to build multipart form", Cause: err}
	}
	if err := w.Close(); err != nil {
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to finish multipart form", Cause: err}
	}

	resp, err := c.do(ctx, http.MethodPost, "/rag/chats/"+chatID+"/upload_pdf/", &buf, w.FormDataContentType())
	if err != nil {
		return err
	}
	if err := checkStatus(resp); err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// =============================================================================
// KNOWLEDGE GRAPH
// =============================================================================

// KnowledgeGraph fetches the graph payload for a chat. The payload is
// returned verbatim; the caller decides how to display it.
func (c *Client) KnowledgeGraph(ctx context.Context, chatID string) (map[string]any, error) {
	resp, err := c.do(ctx, http.MethodGet, "/rag/chats/"+chatID+"/knowledge_graph/", nil, "")
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var payload graphResponse
	if err := decode(resp, &payload); err != nil {
		return nil, err
	}
	return payload.GraphData, nil
}

// =============================================================================
// AUTH OPERATIONS
// =============================================================================

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, username, password string) (Tokens, error) {
	resp, err := c.postJSON(ctx, "/api/auth/login/", loginRequest{Username: username, Password: password})
	if err != nil {
		return Tokens{}, err
	}
	if err := checkStatus(resp); err != nil {
		return Tokens{}, err
	}

	var payload authResponse
	if err := decode(resp, &payload); err != nil {
		return Tokens{}, err
	}
	if payload.Data.Tokens.Access == "" {
		return Tokens{}, &ClientError{Type: ErrTypeInvalidResponse, Message: "login response carried no access token"}
	}
	return payload.Data.Tokens, nil
}

// Register creates an account and returns the issued token pair.
func (c *Client) Register(ctx context.Context, params RegisterParams) (Tokens, error) {
	if params.Password != params.Password2 {
		return Tokens{}, fmt.Errorf("passwords do not match")
	}

	resp, err := c.postJSON(ctx, "/api/auth/register/", params)
	if err != nil {
		return Tokens{}, err
	}
	if err := checkStatus(resp); err != nil {
		return Tokens{}, err
	}

	var payload authResponse
	if err := decode(resp, &payload); err != nil {
		return Tokens{}, err
	}
	if payload.Data.Tokens.Access == "" {
		return Tokens{}, &ClientError{Type: ErrTypeInvalidResponse, Message: "register response carried no access token"}
	}
	return payload.Data.Tokens, nil
}
