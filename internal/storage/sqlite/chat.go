package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vanshika/astronum/backend/internal/domain"
)

// CreateChatSession inserts session. Messages are ignored.
func (s *Store) CreateChatSession(ctx context.Context, session domain.ChatSession) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(session.ID) == "" {
		return fmt.Errorf("session id is required")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO chat_sessions (id, reading_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		session.ID,
		nullString(session.ReadingID),
		session.Title,
		toMillis(session.CreatedAt),
		toMillis(session.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create chat session: %w", err)
	}
	return nil
}

// GetChatSession returns the session without its messages.
func (s *Store) GetChatSession(ctx context.Context, id string) (domain.ChatSession, error) {
	if err := s.ready(ctx); err != nil {
		return domain.ChatSession{}, err
	}
	var (
		session            domain.ChatSession
		readingID          sql.NullString
		createdAt, updated int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, reading_id, title, created_at, updated_at FROM chat_sessions WHERE id = ?`,
		strings.TrimSpace(id),
	).Scan(&session.ID, &readingID, &session.Title, &createdAt, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ChatSession{}, ErrNotFound
		}
		return domain.ChatSession{}, fmt.Errorf("get chat session: %w", err)
	}
	session.ReadingID = readingID.String
	session.CreatedAt = fromMillis(createdAt)
	session.UpdatedAt = fromMillis(updated)
	return session, nil
}

// AppendChatMessages stores msgs in one transaction, so either all of them
// are recorded or none. They must belong to the same session, whose
// updated_at moves to the last message's time.
func (s *Store) AppendChatMessages(ctx context.Context, msgs ...domain.ChatMessage) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	sessionID := msgs[0].SessionID
	for _, m := range msgs[1:] {
		if m.SessionID != sessionID {
			return fmt.Errorf("append chat messages: mixed sessions %s and %s", sessionID, m.SessionID)
		}
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append chat messages: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE chat_sessions SET updated_at = ? WHERE id = ?`,
		toMillis(msgs[len(msgs)-1].CreatedAt), sessionID,
	)
	if err != nil {
		return fmt.Errorf("append chat messages: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	for _, m := range msgs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO chat_messages (id, session_id, role, content, source, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			m.ID, m.SessionID, m.Role, m.Content, m.Source, toMillis(m.CreatedAt),
		); err != nil {
			return fmt.Errorf("append chat messages: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append chat messages: %w", err)
	}
	return nil
}

// ListChatMessages returns a session's messages in order. A positive limit
// keeps only the most recent ones.
func (s *Store) ListChatMessages(ctx context.Context, sessionID string, limit int) ([]domain.ChatMessage, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	query := `SELECT id, session_id, role, content, source, created_at FROM (
	            SELECT id, session_id, role, content, source, created_at, rowid AS seq
	              FROM chat_messages
	             WHERE session_id = ?
	             ORDER BY created_at DESC, seq DESC`
	args := []any{sessionID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	query += `) ORDER BY created_at ASC, seq ASC`

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	var out []domain.ChatMessage
	for rows.Next() {
		var m domain.ChatMessage
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.Source, &createdAt); err != nil {
			return nil, fmt.Errorf("list chat messages: %w", err)
		}
		m.CreatedAt = fromMillis(createdAt)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	return out, nil
}
