// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/model"
)

// newTestClient returns a client pointed at the given handler with the
// limiter disabled so tests don't sleep.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL, RequestsPerSec: -1})
	return c, srv
}

// =============================================================================
// CHAT OPERATIONS
// =============================================================================

func TestListChats(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/rag/chats/", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		io.WriteString(w, `[
			{"id": 1, "name": "Research", "created_at": "2024-05-01T10:00:00Z",
			 "messages": [{"content":"hi","sender":"user","timestamp":"2024-05-01T10:01:00Z"}]},
			{"id": 2, "name": "Notes", "created_at": "2024-05-02T10:00:00Z"}
		]`)
	}))
	c.SetToken("tok123")

	chats, err := c.ListChats(context.Background())
	require.NoError(t, err)
	require.Len(t, chats, 2)

	assert.Equal(t, "Bearer tok123", gotAuth)
	assert.Equal(t, "1", chats[0].ID)
	assert.Equal(t, "Research", chats[0].Title)
	assert.Equal(t, 1, chats[0].MessageCount)
	assert.Equal(t, "2", chats[1].ID)
	assert.Equal(t, 0, chats[1].MessageCount)
}

func TestListChats_NoTokenNoHeader(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("anonymous request carried an Authorization header")
		}
		io.WriteString(w, `[]`)
	}))

	_, err := c.ListChats(context.Background())
	require.NoError(t, err)
}

func TestCreateChat(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "Research", body["name"])

		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id": 7, "name": "Research", "created_at": "2024-05-01T10:00:00Z"}`)
	}))

	chat, err := c.CreateChat(context.Background(), "Research")
	require.NoError(t, err)
	assert.Equal(t, "7", chat.ID)
	assert.Equal(t, "Research", chat.Title)
	assert.Equal(t, 0, chat.MessageCount)
}

func TestCreateChat_BackendError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error": "name already taken"}`)
	}))

	_, err := c.CreateChat(context.Background(), "Research")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name already taken")
}

// =============================================================================
// MESSAGE OPERATIONS
// =============================================================================

func TestListMessages(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rag/chats/42/messages/", r.URL.Path)
		io.WriteString(w, `{"messages": [
			{"content": "question", "sender": "user", "timestamp": "2024-05-01T10:00:00Z"},
			{"content": "answer", "sender": "assistant", "timestamp": "2024-05-01T10:00:05Z"}
		]}`)
	}))

	msgs, err := c.ListMessages(context.Background(), "42")
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, model.SenderUser, msgs[0].Sender)
	assert.Equal(t, "question", msgs[0].Content)
	assert.Equal(t, model.SenderAssistant, msgs[1].Sender)
	assert.NotEmpty(t, msgs[0].ID, "decoded messages get local IDs")
	assert.NotEqual(t, msgs[0].ID, msgs[1].ID)
}

func TestStoreMessage(t *testing.T) {
	var got storeMessageRequest
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rag/chats/42/messages/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))

	err := c.StoreMessage(context.Background(), "42", model.NewUserMessage("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)
	assert.Equal(t, "user", got.Sender)
}

// =============================================================================
// QUERY
// =============================================================================

func TestQuery(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rag/chats/42/query/", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "what is this about?", body["question"])
		io.WriteString(w, `{"answer": "It is about Go."}`)
	}))

	answer, err := c.Query(context.Background(), "42", "what is this about?")
	require.NoError(t, err)
	assert.Equal(t, "It is about Go.", answer)
}

func TestQuery_Unauthorized(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error": "token expired"}`)
	}))

	_, err := c.Query(context.Background(), "42", "q")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err), "expected unauthorized, got %v", err)
}

// =============================================================================
// UPLOAD
// =============================================================================

func TestUploadDocument(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rag/chats/42/upload_pdf/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()

		data, _ := io.ReadAll(f)
		assert.Equal(t, "report.pdf", hdr.Filename)
		assert.Equal(t, "%PDF-1.4 fake", string(data))
		w.WriteHeader(http.StatusOK)
	}))

	err := c.UploadDocument(context.Background(), "42", "report.pdf",
		bytesReader("%PDF-1.4 fake"))
	require.NoError(t, err)
}

func TestUploadDocument_IngestionFailure(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error": "Ingestion failed: bad pdf"}`)
	}))

	err := c.UploadDocument(context.Background(), "42", "report.pdf", bytesReader("junk"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Ingestion failed")
}

// =============================================================================
// KNOWLEDGE GRAPH
// =============================================================================

func TestKnowledgeGraph(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rag/chats/42/knowledge_graph/", r.URL.Path)
		io.WriteString(w, `{"graph_data": {"nodes": ["a", "b"], "edges": []}}`)
	}))

	graph, err := c.KnowledgeGraph(context.Background(), "42")
	require.NoError(t, err)
	assert.Contains(t, graph, "nodes")
}

// =============================================================================
// AUTH
// =============================================================================

func TestLogin(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login/", r.URL.Path)
		io.WriteString(w, `{"data": {"tokens": {"access": "acc", "refresh": "ref"}}}`)
	}))

	tokens, err := c.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "acc", tokens.Access)
	assert.Equal(t, "ref", tokens.Refresh)
}

func TestLogin_EmptyTokens(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data": {}}`)
	}))

	_, err := c.Login(context.Background(), "alice", "secret")
	require.Error(t, err)
}

func TestRegister_PasswordMismatch(t *testing.T) {
	called := false
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	_, err := c.Register(context.Background(), RegisterParams{
		Username: "alice", Password: "a", Password2: "b",
	})
	require.Error(t, err)
	assert.False(t, called, "validation failures must not reach the network")
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

func TestUnreachable(t *testing.T) {
	// Point at a server that is already closed.
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClientWithConfig(&ClientConfig{BaseURL: url, RequestsPerSec: -1})
	_, err := c.ListChats(context.Background())
	require.Error(t, err)
	assert.True(t, IsUnreachable(err), "expected unreachable, got %v", err)
}

func bytesReader(s string) io.Reader {
	return strings.NewReader(s)
}
