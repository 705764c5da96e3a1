// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the client's view of the document-chat state: the
// authenticated identity, the chat list, the selected chat and its message
// log, the file staging list, and the knowledge-graph overlay.
//
// The controller follows a command/event shape. Operations validate and
// apply their optimistic local mutation synchronously, then return a
// Command holding the network work. The caller runs the command off the
// event loop and feeds the resulting Event back through Apply, which is
// the only place fetched state is folded in. All controller methods must
// be called from the one event-loop goroutine; only commands run
// elsewhere.
package session

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"docchat/internal/auth"
	"docchat/internal/files"
	"docchat/internal/logging"
	"docchat/internal/model"
)

// =============================================================================
// ERRORS AND NOTICES
// =============================================================================

var (
	// ErrNoChatSelected is returned by operations that need a chat.
	ErrNoChatSelected = errors.New("no chat selected")

	// ErrEmptyChatName rejects blank chat names before any network call.
	ErrEmptyChatName = errors.New("chat name must not be empty")
)

// queryFailureNotice is appended as the assistant's reply when a query
// fails. The optimistic user message is never rolled back.
const queryFailureNotice = "Sorry, I couldn't reach the assistant. Please try again."

// graphFailureNotice is the displayable marker stored when a graph fetch
// fails. The overlay opens and shows it like any other payload.
const graphFailureNotice = "Could not fetch knowledge graph."

// uploadSummaryPrefix leads the synthetic user message recorded when files
// are staged.
const uploadSummaryPrefix = "\U0001F4CE Uploaded file: "

// =============================================================================
// COLLABORATOR INTERFACES
// =============================================================================

// Command is one unit of network work produced by an operation. It runs
// off the event loop and its Event is handed back to Apply.
type Command func(ctx context.Context) Event

// Backend is the slice of the API client the controller drives.
type Backend interface {
	ListChats(ctx context.Context) ([]model.ChatSummary, error)
	CreateChat(ctx context.Context, name string) (model.ChatSummary, error)
	ListMessages(ctx context.Context, chatID string) ([]model.Message, error)
	StoreMessage(ctx context.Context, chatID string, msg model.Message) error
	Query(ctx context.Context, chatID, question string) (string, error)
	UploadDocument(ctx context.Context, chatID, filename string, r io.Reader) error
	KnowledgeGraph(ctx context.Context, chatID string) (map[string]any, error)
	SetToken(token string)
}

// Archiver receives every locally-originated message for the offline
// history archive. May be nil.
type Archiver interface {
	Append(chatID string, msg model.Message) error
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller holds the authoritative local session state.
type Controller struct {
	backend Backend
	tokens  *auth.Store
	archive Archiver

	identity auth.Identity

	chats      []model.ChatSummary
	selectedID string
	messages   []model.Message

	staging   files.Staging
	uploadErr string

	graph     *model.GraphView
	graphOpen bool

	querying bool

	// fetchSeq is bumped every time the message pane changes owner. A
	// message fetch carries the value at issue time; Apply drops any fetch
	// whose seq is no longer current, so a slow response for an abandoned
	// selection cannot overwrite the current chat's log.
	fetchSeq uint64
}

// New creates a controller. archive may be nil to disable local history.
func New(backend Backend, tokens *auth.Store, archive Archiver) *Controller {
	return &Controller{
		backend: backend,
		tokens:  tokens,
		archive: archive,
	}
}

// Bootstrap reads the persisted token, derives the identity, and returns
// the initial chat-list fetch. An absent or undecodable token degrades to
// anonymous; it is never cleared here. Bootstrap itself never blocks on
// the network.
func (c *Controller) Bootstrap() Command {
	pair, err := c.tokens.Load()
	if err != nil {
		logging.L().Warn("failed to read token store", zap.Error(err))
	}

	c.backend.SetToken(pair.Access)
	c.identity = auth.DeriveIdentity(pair.Access)
	return c.LoadChats()
}

// AuthComplete installs a freshly issued token pair after login or
// registration, persists it, re-derives the identity, and returns the
// chat-list fetch for the new session.
func (c *Controller) AuthComplete(pair auth.TokenPair) Command {
	if err := c.tokens.Save(pair); err != nil {
		logging.L().Error("failed to persist tokens", zap.Error(err))
	}

	c.backend.SetToken(pair.Access)
	c.identity = auth.DeriveIdentity(pair.Access)
	return c.LoadChats()
}

// =============================================================================
// STATE ACCESSORS
// =============================================================================

// Identity returns the current session identity.
func (c *Controller) Identity() auth.Identity { return c.identity }

// Chats returns the chat list in server-reported order.
func (c *Controller) Chats() []model.ChatSummary { return c.chats }

// SelectedID returns the selected chat's ID, or "" when none is selected.
func (c *Controller) SelectedID() string { return c.selectedID }

// Selected returns the selected chat summary, or nil.
func (c *Controller) Selected() *model.ChatSummary {
	for i := range c.chats {
		if c.chats[i].ID == c.selectedID {
			return &c.chats[i]
		}
	}
	return nil
}

// Messages returns the selected chat's message log.
func (c *Controller) Messages() []model.Message { return c.messages }

// Staged returns the file staging list.
func (c *Controller) Staged() []files.StagedFile { return c.staging.List() }

// UploadError returns the chat-independent ingestion error, or "".
func (c *Controller) UploadError() string { return c.uploadErr }

// Graph returns the last fetched graph view, or nil.
func (c *Controller) Graph() *model.GraphView { return c.graph }

// GraphOpen reports whether the graph overlay is showing.
func (c *Controller) GraphOpen() bool { return c.graphOpen }

// Querying reports whether an assistant query is in flight.
func (c *Controller) Querying() bool { return c.querying }

// =============================================================================
// OPERATIONS
// =============================================================================

// LoadChats returns the chat-list fetch. Failures degrade to an empty
// list; rendering is never blocked on this call.
func (c *Controller) LoadChats() Command {
	return func(ctx context.Context) Event {
		chats, err := c.backend.ListChats(ctx)
		return ChatsLoaded{Chats: chats, Err: err}
	}
}

// CreateChat validates the name and returns the create request. Blank
// names are rejected locally with no network call. Nothing changes
// optimistically; the new chat is appended and selected when the backend
// confirms it.
func (c *Controller) CreateChat(name string) (Command, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyChatName
	}

	return func(ctx context.Context) Event {
		chat, err := c.backend.CreateChat(ctx, name)
		return ChatCreated{Chat: chat, Err: err}
	}, nil
}

// SelectChat switches the selection. Selecting the already-selected chat
// is a no-op and issues no fetch. Otherwise the message pane is cleared
// immediately and the new chat's log is fetched; the fetch carries the
// current generation so a stale response cannot land.
func (c *Controller) SelectChat(id string) Command {
	if id == c.selectedID {
		return nil
	}

	c.selectedID = id
	c.messages = nil
	c.fetchSeq++
	seq := c.fetchSeq

	return func(ctx context.Context) Event {
		msgs, err := c.backend.ListMessages(ctx, id)
		return MessagesFetched{ChatID: id, Seq: seq, Messages: msgs, Err: err}
	}
}

// SendMessage appends the user's message optimistically, marks the query
// in flight, and returns the command that persists the message, runs the
// query, and persists the assistant's reply. Blank text is a no-op.
func (c *Controller) SendMessage(text string) (Command, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	if c.selectedID == "" {
		return nil, ErrNoChatSelected
	}

	chatID := c.selectedID
	userMsg := model.NewUserMessage(text)
	c.messages = append(c.messages, userMsg)
	c.syncSelectedCount()
	c.archiveMessage(chatID, userMsg)
	c.querying = true

	return func(ctx context.Context) Event {
		if err := c.backend.StoreMessage(ctx, chatID, userMsg); err != nil {
			logging.L().Warn("failed to persist user message",
				zap.String("chat_id", chatID), zap.Error(err))
		}

		answer, err := c.backend.Query(ctx, chatID, text)
		if err != nil {
			// The failure notice is local-only; nothing is persisted for a
			// failed query and the optimistic user message stays.
			return AnswerReceived{ChatID: chatID, Message: model.NewAssistantMessage(queryFailureNotice), Err: err}
		}

		reply := model.NewAssistantMessage(answer)
		if storeErr := c.backend.StoreMessage(ctx, chatID, reply); storeErr != nil {
			logging.L().Warn("failed to persist assistant message",
				zap.String("chat_id", chatID), zap.Error(storeErr))
		}
		return AnswerReceived{ChatID: chatID, Message: reply, Err: nil}
	}, nil
}

// StageFiles filters paths to accepted document types, appends them to the
// staging list, and records a synthetic user message summarizing the
// upload even when no chat is selected. When a chat is selected, the
// returned command persists the summary and sends the first accepted
// file's bytes for ingestion. Nothing happens when every path is
// rejected.
func (c *Controller) StageFiles(paths []string) Command {
	accepted := c.staging.Add(paths)
	if len(accepted) == 0 {
		return nil
	}

	names := make([]string, len(accepted))
	for i, f := range accepted {
		names[i] = f.Name
	}
	summary := model.NewUserMessage(uploadSummaryPrefix + strings.Join(names, ", "))
	c.messages = append(c.messages, summary)
	c.syncSelectedCount()

	if c.selectedID == "" {
		return nil
	}

	chatID := c.selectedID
	c.archiveMessage(chatID, summary)
	first := accepted[0]

	return func(ctx context.Context) Event {
		if err := c.backend.StoreMessage(ctx, chatID, summary); err != nil {
			logging.L().Warn("failed to persist upload summary",
				zap.String("chat_id", chatID), zap.Error(err))
		}

		f, err := first.Open()
		if err != nil {
			return UploadFinished{ChatID: chatID, Filename: first.Name, Err: err}
		}
		defer f.Close()

		err = c.backend.UploadDocument(ctx, chatID, first.Name, f)
		return UploadFinished{ChatID: chatID, Filename: first.Name, Err: err}
	}
}

// RemoveFile deletes a staged file by position. Files already ingested
// server-side are unaffected.
func (c *Controller) RemoveFile(index int) {
	c.staging.Remove(index)
}

// ShowGraph returns the knowledge-graph fetch for the selected chat. The
// overlay opens when the event lands, whether the fetch succeeded or not.
func (c *Controller) ShowGraph() (Command, error) {
	if c.selectedID == "" {
		return nil, ErrNoChatSelected
	}

	chatID := c.selectedID
	return func(ctx context.Context) Event {
		data, err := c.backend.KnowledgeGraph(ctx, chatID)
		return GraphFetched{ChatID: chatID, Data: data, Err: err}
	}, nil
}

// HideGraph closes the graph overlay.
func (c *Controller) HideGraph() {
	c.graphOpen = false
}

// Logout erases the persisted tokens, drops the identity, and resets the
// whole session to its fresh-load shape. Token and identity go together:
// the single token file is removed atomically and the in-memory identity
// is replaced in the same step.
func (c *Controller) Logout() error {
	err := c.tokens.Clear()

	c.backend.SetToken("")
	c.identity = auth.Identity{}
	c.chats = nil
	c.selectedID = ""
	c.messages = nil
	c.staging = files.Staging{}
	c.uploadErr = ""
	c.graph = nil
	c.graphOpen = false
	c.querying = false
	c.fetchSeq++

	return err
}

// =============================================================================
// EVENT APPLICATION
// =============================================================================

// Apply folds a command's event into controller state. It must be called
// from the event-loop goroutine.
func (c *Controller) Apply(ev Event) {
	ev.apply(c)
}

func (ev ChatsLoaded) apply(c *Controller) {
	if ev.Err != nil {
		logging.L().Warn("failed to load chat list", zap.Error(ev.Err))
		c.chats = nil
		return
	}
	c.chats = ev.Chats
}

func (ev ChatCreated) apply(c *Controller) {
	if ev.Err != nil {
		logging.L().Error("failed to create chat", zap.Error(ev.Err))
		return
	}

	c.chats = append(c.chats, ev.Chat)
	c.selectedID = ev.Chat.ID
	c.messages = nil
	c.fetchSeq++
}

func (ev MessagesFetched) apply(c *Controller) {
	if ev.Seq != c.fetchSeq {
		logging.L().Debug("discarding stale message fetch",
			zap.String("chat_id", ev.ChatID))
		return
	}
	if ev.Err != nil {
		logging.L().Warn("failed to fetch messages",
			zap.String("chat_id", ev.ChatID), zap.Error(ev.Err))
		return
	}
	c.messages = ev.Messages
	c.syncSelectedCount()
}

func (ev AnswerReceived) apply(c *Controller) {
	c.querying = false
	if ev.Err != nil {
		logging.L().Warn("query failed",
			zap.String("chat_id", ev.ChatID), zap.Error(ev.Err))
	}

	c.archiveMessage(ev.ChatID, ev.Message)
	if ev.ChatID != c.selectedID {
		return
	}
	c.messages = append(c.messages, ev.Message)
	c.syncSelectedCount()
}

func (ev UploadFinished) apply(c *Controller) {
	if ev.Err == nil {
		c.uploadErr = ""
		return
	}
	logging.L().Error("document ingestion failed",
		zap.String("file", ev.Filename), zap.Error(ev.Err))
	c.uploadErr = "Failed to upload " + ev.Filename + ". The file is still staged."
}

func (ev GraphFetched) apply(c *Controller) {
	view := model.GraphView{ChatID: ev.ChatID, Data: ev.Data}
	if ev.Err != nil {
		logging.L().Warn("failed to fetch knowledge graph",
			zap.String("chat_id", ev.ChatID), zap.Error(ev.Err))
		view.Err = graphFailureNotice
	}
	c.graph = &view
	c.graphOpen = true
}

// =============================================================================
// INTERNAL HELPERS
// =============================================================================

// syncSelectedCount keeps the selected chat's summary count in step with
// the locally-known message log.
func (c *Controller) syncSelectedCount() {
	for i := range c.chats {
		if c.chats[i].ID == c.selectedID {
			c.chats[i].MessageCount = len(c.messages)
			return
		}
	}
}

// archiveMessage hands a message to the history archive, if one is wired.
func (c *Controller) archiveMessage(chatID string, msg model.Message) {
	if c.archive == nil || chatID == "" {
		return
	}
	if err := c.archive.Append(chatID, msg); err != nil {
		logging.L().Warn("failed to archive message", zap.Error(err))
	}
}
