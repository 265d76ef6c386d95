package service

import (
	"context"
	"strings"
	"time"

	"cardes-ai-be/internal/apperr"
	"cardes-ai-be/internal/dto"
	"cardes-ai-be/internal/entity"
	"cardes-ai-be/internal/pkg/logger"
	"cardes-ai-be/internal/repository/specification"
	"cardes-ai-be/internal/repository/unitofwork"
	"cardes-ai-be/pkg/genai"
	"cardes-ai-be/pkg/ratelimit"

	"github.com/google/uuid"
)

const defaultSessionTitle = "New chat"

// titleWordLimit bounds the auto-derived session title. Longer messages are
// cut to this many words with an ellipsis appended.
const titleWordLimit = 6

// Completer is the slice of the generation client the chat service needs.
type Completer interface {
	Complete(ctx context.Context, turns []*genai.Turn) (*genai.Completion, error)
}

type IChatService interface {
	CreateSession(ctx context.Context, userId uuid.UUID, request *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	SendMessage(ctx context.Context, userId uuid.UUID, request *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
}

type chatService struct {
	uowFactory        unitofwork.RepositoryFactory
	limiter           *ratelimit.Limiter
	completer         Completer
	activityPublisher IActivityPublisherService
	logger            logger.ILogger
	requestTimeout    time.Duration
	maxMessages       int
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	limiter *ratelimit.Limiter,
	completer Completer,
	activityPublisher IActivityPublisherService,
	logger logger.ILogger,
	requestTimeout time.Duration,
	maxMessages int,
) IChatService {
	return &chatService{
		uowFactory:        uowFactory,
		limiter:           limiter,
		completer:         completer,
		activityPublisher: activityPublisher,
		logger:            logger,
		requestTimeout:    requestTimeout,
		maxMessages:       maxMessages,
	}
}

func (cs *chatService) CreateSession(ctx context.Context, userId uuid.UUID, request *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	title := strings.TrimSpace(request.Title)
	if title == "" {
		title = defaultSessionTitle
	}

	chatSession := entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     title,
		CreatedAt: now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Create(ctx, &chatSession); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	cs.activityPublisher.PublishChatSessionCreated(ctx, userId, chatSession.Id)

	return &dto.CreateSessionResponse{
		Id:        chatSession.Id,
		Title:     chatSession.Title,
		CreatedAt: chatSession.CreatedAt,
	}, nil
}

func (cs *chatService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chatSessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetAllSessionsResponse, 0, len(chatSessions))
	for _, s := range chatSessions {
		response = append(response, &dto.GetAllSessionsResponse{
			Id:        s.Id,
			Title:     s.Title,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}

	return response, nil
}

func (cs *chatService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if _, err := cs.findOwnedSession(ctx, uow, userId, sessionId); err != nil {
		return nil, err
	}

	chatMessages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.GetChatHistoryResponse, 0, len(chatMessages))
	for _, msg := range chatMessages {
		response = append(response, &dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}

	return response, nil
}

// SendMessage runs one full exchange: resolve the session, gate, validate,
// persist the user turn, call the provider, persist the reply. The two
// persists commit separately so an upstream stall never holds a database
// transaction open.
func (cs *chatService) SendMessage(ctx context.Context, userId uuid.UUID, request *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chatSession, err := cs.findOwnedSession(ctx, uow, userId, request.ChatSessionId)
	if err != nil {
		return nil, err
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	privileged := user != nil && user.IsPrivileged()

	messageCount, err := uow.ChatMessageRepository().Count(ctx,
		specification.ByChatSessionID{ChatSessionID: request.ChatSessionId},
	)
	if err != nil {
		return nil, err
	}

	decision, err := cs.limiter.CheckAndReserve(ctx, userId, request.ChatSessionId, privileged, messageCount)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		switch decision.Reason {
		case ratelimit.ReasonQuotaExceeded:
			return nil, &apperr.QuotaExceededError{
				Message: decision.Message,
				Limit:   cs.maxMessages,
				Used:    int(messageCount),
			}
		default:
			return nil, &apperr.CooldownError{
				Message:    decision.Message,
				RetryAfter: decision.RetryAfter,
			}
		}
	}

	// Validation comes after the gate, so a rejected submission has already
	// claimed the cooldown slot and must hand it back.
	content := strings.TrimSpace(request.Content)
	if content == "" {
		if rerr := cs.limiter.Release(ctx, userId, request.ChatSessionId); rerr != nil {
			cs.logger.Warn("CHAT", "Failed to release cooldown slot", map[string]interface{}{
				"session_id": request.ChatSessionId.String(),
				"error":      rerr.Error(),
			})
		}
		return nil, apperr.InvalidInput("message content must not be empty")
	}

	now := time.Now()
	userMessage := entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: chatSession.Id,
		Role:          entity.ChatMessageRoleUser,
		Content:       content,
		CreatedAt:     now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().Create(ctx, &userMessage); err != nil {
		return nil, err
	}
	if err := cs.touchSession(ctx, uow, chatSession, content, now); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	history, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: chatSession.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	turns := make([]genai.HistoryMessage, 0, len(history))
	for _, msg := range history {
		turns = append(turns, genai.HistoryMessage{Role: msg.Role, Content: msg.Content})
	}

	completionCtx, cancel := context.WithTimeout(ctx, cs.requestTimeout)
	defer cancel()

	started := time.Now()
	completion, err := cs.completer.Complete(completionCtx, genai.BuildTurns(turns))
	if err != nil {
		return nil, err
	}
	latency := time.Since(started)

	if completion.Degraded {
		cs.logger.Warn("CHAT", "Upstream completion degraded", map[string]interface{}{
			"session_id": chatSession.Id.String(),
			"reason":     completion.Reason,
		})
	}

	replyAt := time.Now()
	assistantMessage := entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: chatSession.Id,
		Role:          entity.ChatMessageRoleAssistant,
		Content:       completion.Text,
		CreatedAt:     replyAt,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().Create(ctx, &assistantMessage); err != nil {
		return nil, err
	}
	chatSession.UpdatedAt = &replyAt
	if err := uow.ChatSessionRepository().Update(ctx, chatSession); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	cs.activityPublisher.PublishChatExchangeCompleted(ctx, userId, chatSession.Id, completion.Degraded, latency)

	return &dto.SendMessageResponse{
		ChatSessionId:    chatSession.Id,
		ChatSessionTitle: chatSession.Title,
		Sent: &dto.SendMessageResponseChat{
			Id:        userMessage.Id,
			Role:      userMessage.Role,
			Content:   userMessage.Content,
			CreatedAt: userMessage.CreatedAt,
		},
		Reply: &dto.SendMessageResponseChat{
			Id:        assistantMessage.Id,
			Role:      assistantMessage.Role,
			Content:   assistantMessage.Content,
			CreatedAt: assistantMessage.CreatedAt,
		},
	}, nil
}

func (cs *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if _, err := cs.findOwnedSession(ctx, uow, userId, sessionId); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, sessionId); err != nil {
		return err
	}

	return uow.Commit()
}

// findOwnedSession resolves a session scoped to its owner. Foreign sessions
// read as not found so ownership cannot be probed.
func (cs *chatService) findOwnedSession(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) (*entity.ChatSession, error) {
	sess, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, apperr.NotFound("chat session")
	}
	return sess, nil
}

// touchSession bumps the session's updated_at and, when the title is still
// the placeholder, derives one from the first message.
func (cs *chatService) touchSession(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.ChatSession, content string, now time.Time) error {
	if session.Title == "" || session.Title == defaultSessionTitle {
		session.Title = deriveTitle(content)
	}
	session.UpdatedAt = &now
	return uow.ChatSessionRepository().Update(ctx, session)
}

// deriveTitle takes the first titleWordLimit words of the message, marking
// truncation with an ellipsis.
func deriveTitle(content string) string {
	words := strings.Fields(content)
	if len(words) <= titleWordLimit {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:titleWordLimit], " ") + "..."
}
