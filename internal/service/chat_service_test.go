package service

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"cardes-ai-be/internal/apperr"
	"cardes-ai-be/internal/dto"
	"cardes-ai-be/internal/entity"
	"cardes-ai-be/internal/repository/contract"
	"cardes-ai-be/internal/repository/specification"
	"cardes-ai-be/internal/repository/unitofwork"
	"cardes-ai-be/pkg/genai"
	"cardes-ai-be/pkg/ratelimit"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeActivityPublisher struct {
	events []string
}

func (f *fakeActivityPublisher) PublishChatSessionCreated(ctx context.Context, userId, sessionId uuid.UUID) {
	f.events = append(f.events, EventChatSessionCreated)
}

func (f *fakeActivityPublisher) PublishChatExchangeCompleted(ctx context.Context, userId, sessionId uuid.UUID, degraded bool, latency time.Duration) {
	f.events = append(f.events, EventChatExchangeCompleted)
}

func (f *fakeActivityPublisher) PublishTtsSynthesized(ctx context.Context, userId uuid.UUID, slow bool) {
	f.events = append(f.events, EventTtsSynthesized)
}

type fakeCompleter struct {
	completion *genai.Completion
	calls      int
	lastTurns  []*genai.Turn
}

func (f *fakeCompleter) Complete(ctx context.Context, turns []*genai.Turn) (*genai.Completion, error) {
	f.calls++
	f.lastTurns = turns
	return f.completion, nil
}

// fakeStore is the in-memory state shared by the fake repositories.
type fakeStore struct {
	users    map[uuid.UUID]*entity.User
	sessions map[uuid.UUID]*entity.ChatSession
	messages map[uuid.UUID]*entity.ChatMessage
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[uuid.UUID]*entity.User),
		sessions: make(map[uuid.UUID]*entity.ChatSession),
		messages: make(map[uuid.UUID]*entity.ChatMessage),
	}
}

// specFilter extracts the filters the chat service actually uses.
type specFilter struct {
	id            *uuid.UUID
	userId        *uuid.UUID
	chatSessionId *uuid.UUID
}

func parseSpecs(specs []specification.Specification) specFilter {
	var f specFilter
	for _, s := range specs {
		switch spec := s.(type) {
		case specification.ByID:
			id := spec.ID
			f.id = &id
		case specification.UserOwnedBy:
			id := spec.UserID
			f.userId = &id
		case specification.ByChatSessionID:
			id := spec.ChatSessionID
			f.chatSessionId = &id
		}
	}
	return f
}

type fakeUserRepo struct{ store *fakeStore }

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.store.users[user.Id] = user
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.store.users[user.Id] = user
	return nil
}

func (r *fakeUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	f := parseSpecs(specs)
	if f.id != nil {
		if u, ok := r.store.users[*f.id]; ok {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.store.users)), nil
}

type fakeSessionRepo struct{ store *fakeStore }

func (r *fakeSessionRepo) Create(ctx context.Context, session *entity.ChatSession) error {
	copied := *session
	r.store.sessions[session.Id] = &copied
	return nil
}

func (r *fakeSessionRepo) Update(ctx context.Context, session *entity.ChatSession) error {
	if _, ok := r.store.sessions[session.Id]; !ok {
		return fmt.Errorf("session %s does not exist", session.Id)
	}
	copied := *session
	r.store.sessions[session.Id] = &copied
	return nil
}

func (r *fakeSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.store.sessions, id)
	return nil
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	for _, s := range r.match(specs) {
		copied := *s
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	return r.match(specs), nil
}

func (r *fakeSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.match(specs))), nil
}

func (r *fakeSessionRepo) match(specs []specification.Specification) []*entity.ChatSession {
	f := parseSpecs(specs)
	var out []*entity.ChatSession
	for _, s := range r.store.sessions {
		if f.id != nil && s.Id != *f.id {
			continue
		}
		if f.userId != nil && s.UserId != *f.userId {
			continue
		}
		out = append(out, s)
	}
	return out
}

type fakeMessageRepo struct{ store *fakeStore }

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.ChatMessage) error {
	copied := *message
	r.store.messages[message.Id] = &copied
	return nil
}

func (r *fakeMessageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.store.messages, id)
	return nil
}

func (r *fakeMessageRepo) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	for id, m := range r.store.messages {
		if m.ChatSessionId == sessionId {
			delete(r.store.messages, id)
		}
	}
	return nil
}

func (r *fakeMessageRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatMessage, error) {
	for _, m := range r.match(specs) {
		return m, nil
	}
	return nil, nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	out := r.match(specs)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.match(specs))), nil
}

func (r *fakeMessageRepo) match(specs []specification.Specification) []*entity.ChatMessage {
	f := parseSpecs(specs)
	var out []*entity.ChatMessage
	for _, m := range r.store.messages {
		if f.chatSessionId != nil && m.ChatSessionId != *f.chatSessionId {
			continue
		}
		out = append(out, m)
	}
	return out
}

type fakeUnitOfWork struct {
	store *fakeStore
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error                   { return nil }
func (u *fakeUnitOfWork) Rollback() error                 { return nil }

func (u *fakeUnitOfWork) UserRepository() contract.UserRepository {
	return &fakeUserRepo{store: u.store}
}

func (u *fakeUnitOfWork) ChatSessionRepository() contract.ChatSessionRepository {
	return &fakeSessionRepo{store: u.store}
}

func (u *fakeUnitOfWork) ChatMessageRepository() contract.ChatMessageRepository {
	return &fakeMessageRepo{store: u.store}
}

func (u *fakeUnitOfWork) CategoryRepository() contract.CategoryRepository { return nil }
func (u *fakeUnitOfWork) CardSetRepository() contract.CardSetRepository   { return nil }
func (u *fakeUnitOfWork) CardRepository() contract.CardRepository         { return nil }

type fakeUowFactory struct{ store *fakeStore }

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{store: f.store}
}

// --- harness ---

type chatHarness struct {
	service   IChatService
	store     *fakeStore
	completer *fakeCompleter
	publisher *fakeActivityPublisher
	clock     *time.Time
	userId    uuid.UUID
	sessionId uuid.UUID
}

func newChatHarness(t *testing.T, role entity.UserRole) *chatHarness {
	t.Helper()

	store := newFakeStore()
	userId := uuid.New()
	store.users[userId] = &entity.User{
		Id:       userId,
		Email:    "student@example.com",
		Username: "student",
		Role:     role,
	}

	sessionId := uuid.New()
	store.sessions[sessionId] = &entity.ChatSession{
		Id:        sessionId,
		UserId:    userId,
		Title:     defaultSessionTitle,
		CreatedAt: time.Now(),
	}

	clock := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), ratelimit.NewMessagePicker(1), ratelimit.LimiterConfig{
		MaxSessionMessages: 50,
		Cooldown:           3 * time.Second,
		Now:                func() time.Time { return clock },
	})

	completer := &fakeCompleter{completion: &genai.Completion{Text: "Here is your answer."}}
	publisher := &fakeActivityPublisher{}

	svc := NewChatService(
		&fakeUowFactory{store: store},
		limiter,
		completer,
		publisher,
		nopLogger{},
		45*time.Second,
		50,
	)

	return &chatHarness{
		service:   svc,
		store:     store,
		completer: completer,
		publisher: publisher,
		clock:     &clock,
		userId:    userId,
		sessionId: sessionId,
	}
}

func (h *chatHarness) sessionMessages() []*entity.ChatMessage {
	var out []*entity.ChatMessage
	for _, m := range h.store.messages {
		if m.ChatSessionId == h.sessionId {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// --- tests ---

func TestChatService_CreateSession_DefaultTitle(t *testing.T) {
	h := newChatHarness(t, entity.UserRoleUser)

	res, err := h.service.CreateSession(context.Background(), h.userId, &dto.CreateSessionRequest{})
	require.NoError(t, err)

	assert.Equal(t, defaultSessionTitle, res.Title)
	assert.Contains(t, h.publisher.events, EventChatSessionCreated)

	stored := h.store.sessions[res.Id]
	require.NotNil(t, stored)
	assert.Equal(t, h.userId, stored.UserId)
}

func TestChatService_SendMessage_HappyPath(t *testing.T) {
	h := newChatHarness(t, entity.UserRoleUser)

	res, err := h.service.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{
		ChatSessionId: h.sessionId,
		Content:       "What is mitosis?",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.ChatMessageRoleUser, res.Sent.Role)
	assert.Equal(t, "What is mitosis?", res.Sent.Content)
	assert.Equal(t, entity.ChatMessageRoleAssistant, res.Reply.Role)
	assert.Equal(t, "Here is your answer.", res.Reply.Content)

	messages := h.sessionMessages()
	require.Len(t, messages, 2)
	assert.Equal(t, entity.ChatMessageRoleUser, messages[0].Role)
	assert.Equal(t, entity.ChatMessageRoleAssistant, messages[1].Role)

	assert.Equal(t, 1, h.completer.calls)
	require.Len(t, h.completer.lastTurns, 1, "provider sees the history including the new user turn")
	assert.Equal(t, genai.RoleUser, h.completer.lastTurns[0].Role)

	stored := h.store.sessions[h.sessionId]
	assert.NotNil(t, stored.UpdatedAt)
	assert.Contains(t, h.publisher.events, EventChatExchangeCompleted)
}

func TestChatService_SendMessage_WhitespaceRejectedAndNeverPersisted(t *testing.T) {
	h := newChatHarness(t, entity.UserRoleUser)

	_, err := h.service.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{
		ChatSessionId: h.sessionId,
		Content:       "   \n\t  ",
	})
	require.ErrorIs(t, err, apperr.ErrInvalidInput)

	assert.Empty(t, h.sessionMessages(), "rejected input must never be persisted")
	assert.Zero(t, h.completer.calls)

	// The rejected submission handed its cooldown slot back, so a valid
	// message right after is not throttled.
	_, err = h.service.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{
		ChatSessionId: h.sessionId,
		Content:       "a real question",
	})
	require.NoError(t, err)
}

func TestChatService_SendMessage_WhitespaceToUnknownSessionIsNotFound(t *testing.T) {
	h := newChatHarness(t, entity.UserRoleUser)

	// Session resolution precedes validation, so a bad session wins.
	_, err := h.service.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{
		ChatSessionId: uuid.New(),
		Content:       "   ",
	})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestChatService_SendMessage_TitleDerivedFromFirstMessage(t *testing.T) {
	h := newChatHarness(t, entity.UserRoleUser)

	_, err := h.service.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{
		ChatSessionId: h.sessionId,
		Content:       "Explain mitosis in simple terms please now",
	})
	require.NoError(t, err)

	stored := h.store.sessions[h.sessionId]
	assert.Equal(t, "Explain mitosis in simple terms please...", stored.Title)
}

func TestChatService_SendMessage_ShortFirstMessageTitleNotTruncated(t *testing.T) {
	h := newChatHarness(t, entity.UserRoleUser)

	_, err := h.service.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{
		ChatSessionId: h.sessionId,
		Content:       "Define osmosis",
	})
	require.NoError(t, err)

	stored := h.store.sessions[h.sessionId]
	assert.Equal(t, "Define osmosis", stored.Title)
}

func TestChatService_SendMessage_TitleNotRederivedOnLaterMessages(t *testing.T) {
	h := newChatHarness(t, entity.UserRoleUser)

	_, err := h.service.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{
		ChatSessionId: h.sessionId,
		Content:       "First question",
	})
	require.NoError(t, err)

	*h.clock = h.clock.Add(5 * time.Second)
	_, err = h.service.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{
		ChatSessionId: h.sessionId,
		Content:       "Second totally different question",
	})
	require.NoError(t, err)

	stored := h.store.sessions[h.sessionId]
	assert.Equal(t, "First question", stored.Title)
}

func TestChatService_SendMessage_CooldownDenied(t *testing.T) {
	h := newChatHarness(t, entity.UserRoleUser)

	_, err := h.service.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{
		ChatSessionId: h.sessionId,
		Content:       "first",
	})
	require.NoError(t, err)

	*h.clock = h.clock.Add(1 * time.Second)
	_, err = h.service.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{
		ChatSessionId: h.sessionId,
		Content:       "too fast",
	})

	var cooldownErr *apperr.CooldownError
	require.ErrorAs(t, err, &cooldownErr)
	assert.NotEmpty(t, cooldownErr.Message)
	assert.Equal(t, 2*time.Second, cooldownErr.RetryAfter)

	assert.Len(t, h.sessionMessages(), 2, "the denied message must not be persisted")
	assert.Equal(t, 1, h.completer.calls)
}

func TestChatService_SendMessage_QuotaExceeded(t *testing.T) {
	h := newChatHarness(t, entity.UserRoleUser)

	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		id := uuid.New()
		h.store.messages[id] = &entity.ChatMessage{
			Id:            id,
			ChatSessionId: h.sessionId,
			Role:          entity.ChatMessageRoleUser,
			Content:       "old",
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
	}

	_, err := h.service.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{
		ChatSessionId: h.sessionId,
		Content:       "one more",
	})

	var quotaErr *apperr.QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, 50, quotaErr.Limit)
	assert.Equal(t, 50, quotaErr.Used)
	assert.Zero(t, h.completer.calls)
}

func TestChatService_SendMessage_AdminBypassesLimits(t *testing.T) {
	h := newChatHarness(t, entity.UserRoleAdmin)

	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		id := uuid.New()
		h.store.messages[id] = &entity.ChatMessage{
			Id:            id,
			ChatSessionId: h.sessionId,
			Role:          entity.ChatMessageRoleUser,
			Content:       "old",
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
	}

	_, err := h.service.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{
		ChatSessionId: h.sessionId,
		Content:       "admin question",
	})
	require.NoError(t, err)

	// Immediately again, no cooldown either
	_, err = h.service.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{
		ChatSessionId: h.sessionId,
		Content:       "another one",
	})
	require.NoError(t, err)
}

func TestChatService_SendMessage_DegradedReplyPersisted(t *testing.T) {
	h := newChatHarness(t, entity.UserRoleUser)
	h.completer.completion = &genai.Completion{
		Text:     "The AI service is currently busy. Please try again in a moment.",
		Degraded: true,
		Reason:   genai.DegradedUnavailable,
	}

	res, err := h.service.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{
		ChatSessionId: h.sessionId,
		Content:       "hello",
	})
	require.NoError(t, err, "a degraded reply is a normal outcome, not an error")

	assert.Equal(t, h.completer.completion.Text, res.Reply.Content)

	messages := h.sessionMessages()
	require.Len(t, messages, 2)
	assert.Equal(t, entity.ChatMessageRoleAssistant, messages[1].Role)
	assert.Equal(t, h.completer.completion.Text, messages[1].Content)
}

func TestChatService_SendMessage_ForeignSessionIsNotFound(t *testing.T) {
	h := newChatHarness(t, entity.UserRoleUser)

	stranger := uuid.New()
	h.store.users[stranger] = &entity.User{Id: stranger, Role: entity.UserRoleUser}

	_, err := h.service.SendMessage(context.Background(), stranger, &dto.SendMessageRequest{
		ChatSessionId: h.sessionId,
		Content:       "hi",
	})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestChatService_GetChatHistory_AscendingOrder(t *testing.T) {
	h := newChatHarness(t, entity.UserRoleUser)

	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	contents := []string{"first", "second", "third"}
	for i, c := range contents {
		id := uuid.New()
		h.store.messages[id] = &entity.ChatMessage{
			Id:            id,
			ChatSessionId: h.sessionId,
			Role:          entity.ChatMessageRoleUser,
			Content:       c,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}
	}

	history, err := h.service.GetChatHistory(context.Background(), h.userId, h.sessionId)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i, c := range contents {
		assert.Equal(t, c, history[i].Content)
	}
}

func TestChatService_GetChatHistory_ForeignSessionIsNotFound(t *testing.T) {
	h := newChatHarness(t, entity.UserRoleUser)

	_, err := h.service.GetChatHistory(context.Background(), uuid.New(), h.sessionId)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestChatService_DeleteSession_CascadesMessages(t *testing.T) {
	h := newChatHarness(t, entity.UserRoleUser)

	_, err := h.service.SendMessage(context.Background(), h.userId, &dto.SendMessageRequest{
		ChatSessionId: h.sessionId,
		Content:       "hello",
	})
	require.NoError(t, err)
	require.NotEmpty(t, h.sessionMessages())

	require.NoError(t, h.service.DeleteSession(context.Background(), h.userId, h.sessionId))

	assert.NotContains(t, h.store.sessions, h.sessionId)
	assert.Empty(t, h.sessionMessages())
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{"short message kept whole", "Define osmosis", "Define osmosis"},
		{"exactly six words kept whole", "one two three four five six", "one two three four five six"},
		{"seven words truncated", "Explain mitosis in simple terms please now", "Explain mitosis in simple terms please..."},
		{"extra whitespace collapsed", "  what   is \n photosynthesis ", "what is photosynthesis"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, deriveTitle(tt.content))
		})
	}
}
