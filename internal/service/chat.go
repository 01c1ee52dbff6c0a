package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vanshika/astronum/backend/internal/domain"
	"github.com/vanshika/astronum/backend/internal/insight"
	"github.com/vanshika/astronum/backend/internal/metrics"
	"github.com/vanshika/astronum/backend/internal/storage/sqlite"
)

// ErrSessionNotFound reports an unknown chat session ID.
var ErrSessionNotFound = errors.New("chat session not found")

// DefaultHistoryLimit is how many earlier messages accompany a question.
const DefaultHistoryLimit = 12

// ChatStore is the persistence contract for chat sessions.
type ChatStore interface {
	CreateChatSession(ctx context.Context, session domain.ChatSession) error
	GetChatSession(ctx context.Context, id string) (domain.ChatSession, error)
	AppendChatMessages(ctx context.Context, msgs ...domain.ChatMessage) error
	ListChatMessages(ctx context.Context, sessionID string, limit int) ([]domain.ChatMessage, error)
	GetReading(ctx context.Context, id string) (domain.Reading, error)
}

// ChatService runs the reading-grounded chat assistant.
type ChatService struct {
	store        ChatStore
	insights     insight.Generator
	metrics      *metrics.Metrics
	logger       *slog.Logger
	tracer       trace.Tracer
	historyLimit int
	nowFn        func() time.Time
}

// NewChatService wires a ChatService. A historyLimit of zero or less uses
// DefaultHistoryLimit.
func NewChatService(store ChatStore, insights insight.Generator, m *metrics.Metrics, logger *slog.Logger, historyLimit int) *ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &ChatService{
		store:        store,
		insights:     insights,
		metrics:      m,
		logger:       logger.With("component", "chat_service"),
		tracer:       otel.Tracer("github.com/vanshika/astronum/backend/internal/service"),
		historyLimit: historyLimit,
		nowFn:        time.Now,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (s *ChatService) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// StartSession opens a session, optionally grounded in a stored reading.
func (s *ChatService) StartSession(ctx context.Context, readingID, title string) (domain.ChatSession, error) {
	readingID = strings.TrimSpace(readingID)
	title, err := validateTitle(title)
	if err != nil {
		return domain.ChatSession{}, err
	}

	if readingID != "" {
		r, err := s.store.GetReading(ctx, readingID)
		if errors.Is(err, sqlite.ErrNotFound) {
			return domain.ChatSession{}, ErrReadingNotFound
		}
		if err != nil {
			return domain.ChatSession{}, fmt.Errorf("load reading %s: %w", readingID, err)
		}
		if title == "" {
			title = "About " + r.FullName
		}
	}
	if title == "" {
		title = "New conversation"
	}

	now := s.nowFn().UTC()
	session := domain.ChatSession{
		ID:        uuid.NewString(),
		ReadingID: readingID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateChatSession(ctx, session); err != nil {
		return domain.ChatSession{}, fmt.Errorf("create chat session: %w", err)
	}
	return session, nil
}

// GetSession returns a session with its full message history.
func (s *ChatService) GetSession(ctx context.Context, id string) (domain.ChatSession, error) {
	session, err := s.loadSession(ctx, id)
	if err != nil {
		return domain.ChatSession{}, err
	}
	messages, err := s.store.ListChatMessages(ctx, session.ID, 0)
	if err != nil {
		return domain.ChatSession{}, fmt.Errorf("list chat messages: %w", err)
	}
	session.Messages = messages
	return session, nil
}

// SendMessage asks the generator to answer content, grounded in the session's
// reading and recent history. The question and the reply are stored together
// once the reply exists; a failed reply leaves the session unchanged.
func (s *ChatService) SendMessage(ctx context.Context, sessionID, content string) (exchange ChatExchange, err error) {
	ctx, span := s.tracer.Start(ctx, "ChatService.SendMessage")
	defer func() { endSpan(span, err) }()

	content, err = validateMessage(content)
	if err != nil {
		return ChatExchange{}, err
	}
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return ChatExchange{}, err
	}

	history, err := s.store.ListChatMessages(ctx, session.ID, s.historyLimit)
	if err != nil {
		return ChatExchange{}, fmt.Errorf("load chat history: %w", err)
	}

	userMsg := domain.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      insight.RoleUser,
		Content:   content,
		CreatedAt: s.nowFn().UTC(),
	}
	chat := insight.ChatContext{
		Reading:  s.readingContext(ctx, session.ReadingID),
		History:  toInsightHistory(history),
		Question: content,
	}
	text, err := s.insights.Reply(ctx, chat)
	if err != nil {
		return ChatExchange{}, fmt.Errorf("generate reply: %w", err)
	}
	s.metrics.InsightGenerated("chat", string(text.Source))

	reply := domain.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Role:      insight.RoleAssistant,
		Content:   text.Body,
		Source:    string(text.Source),
		CreatedAt: s.nowFn().UTC(),
	}
	if err := s.store.AppendChatMessages(ctx, userMsg, reply); err != nil {
		return ChatExchange{}, s.mapSessionErr(err)
	}
	s.metrics.ChatMessage(insight.RoleUser)
	s.metrics.ChatMessage(insight.RoleAssistant)

	span.SetAttributes(
		attribute.String("chat.session_id", session.ID),
		attribute.Int("chat.history", len(history)),
	)
	return ChatExchange{SessionID: session.ID, User: userMsg, Assistant: reply}, nil
}

func (s *ChatService) loadSession(ctx context.Context, id string) (domain.ChatSession, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ChatSession{}, ErrSessionNotFound
	}
	session, err := s.store.GetChatSession(ctx, id)
	if err != nil {
		return domain.ChatSession{}, s.mapSessionErr(err)
	}
	return session, nil
}

func (s *ChatService) mapSessionErr(err error) error {
	if errors.Is(err, sqlite.ErrNotFound) {
		return ErrSessionNotFound
	}
	return fmt.Errorf("chat store: %w", err)
}

// readingContext returns nil when the session has no reading or the reading
// has since been removed.
func (s *ChatService) readingContext(ctx context.Context, readingID string) *insight.ReadingContext {
	if readingID == "" {
		return nil
	}
	r, err := s.store.GetReading(ctx, readingID)
	if err != nil {
		if !errors.Is(err, sqlite.ErrNotFound) {
			s.logger.WarnContext(ctx, "load chat reading failed", "reading_id", readingID, "error", err)
		}
		return nil
	}
	rc := r.InsightContext()
	return &rc
}

func toInsightHistory(messages []domain.ChatMessage) []insight.Message {
	out := make([]insight.Message, 0, len(messages))
	for _, m := range messages {
		out = append(out, insight.Message{Role: m.Role, Content: m.Content})
	}
	return out
}
