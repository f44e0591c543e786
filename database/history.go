package database

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/BasmaFrajElhadi/unirag/core/keywords"
	"github.com/BasmaFrajElhadi/unirag/helper"
	"github.com/BasmaFrajElhadi/unirag/model"
	"github.com/BasmaFrajElhadi/unirag/sql"
)

// Message roles stored in the chat history
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session represents one chat session
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Message represents one stored chat message
type Message struct {
	ID        int64          `json:"id"`
	SessionID string         `json:"session_id"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Metadata  model.Metadata `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// HistoryDBHandlerFunctions defines the interface for chat history operations.
type HistoryDBHandlerFunctions interface {
	CreateSession(sessionID string, name string) (*Session, error)
	SelectSession(sessionID string) (*Session, error)
	SelectAllSessions() ([]*Session, error)
	RenameSession(sessionID string, name string) error
	Append(ctx context.Context, query model.Query, answer *model.Answer) error
	SelectMessages(sessionID string) ([]*Message, error)
	DeleteSession(sessionID string) error
}

// HistoryDBHandler handles chat session and message persistence
type HistoryDBHandler struct {
	db *helper.Database
}

// NewHistoryDBHandler creates a new chat history database handler.
// If force is true, it will reload the SQL functions even if they already exist.
func NewHistoryDBHandler(db *helper.Database, force bool) (*HistoryDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	historyDbHandler := &HistoryDBHandler{
		db: db,
	}

	err := sql.LoadHistorySql(historyDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load history sql", err)
	}

	err = historyDbHandler.CreateTables()
	if err != nil {
		return nil, helper.NewError("create tables", err)
	}

	db.Logger.Info("Initialized HistoryDBHandler")

	return historyDbHandler, nil
}

// CreateTables creates the 'sessions' and 'messages' tables in the database.
// If the tables already exist, it does not create them again.
func (h *HistoryDBHandler) CreateTables() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_history();`)
	if err != nil {
		log.Panicf("error initializing history tables: %#v", err)
	}

	h.db.Logger.Info("Checked/created tables sessions and messages")

	return nil
}

// NewSessionID generates a unique session id from the current timestamp
// and a random suffix
func NewSessionID() string {
	return fmt.Sprintf("session_%d_%04d", time.Now().UnixMilli(), rand.Intn(9000)+1000)
}

// CreateSession creates a session if it does not exist yet.
// An empty name is auto-filled later from the first query's keywords.
func (h *HistoryDBHandler) CreateSession(sessionID string, name string) (*Session, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_session($1, $2)`,
		sessionID,
		name,
	)

	session := &Session{}
	err := row.Scan(&session.ID, &session.Name, &session.CreatedAt)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return session, nil
}

// SelectSession retrieves a session by id
func (h *HistoryDBHandler) SelectSession(sessionID string) (*Session, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_session($1)`,
		sessionID,
	)

	session := &Session{}
	err := row.Scan(&session.ID, &session.Name, &session.CreatedAt)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return session, nil
}

// SelectAllSessions retrieves all sessions, newest first
func (h *HistoryDBHandler) SelectAllSessions() ([]*Session, error) {
	rows, err := h.db.Instance.Query(`SELECT * FROM select_all_sessions()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		session := &Session{}
		if err := rows.Scan(&session.ID, &session.Name, &session.CreatedAt); err != nil {
			return nil, helper.NewError("scan", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return sessions, nil
}

// RenameSession sets the display name of a session
func (h *HistoryDBHandler) RenameSession(sessionID string, name string) error {
	_, err := h.db.Instance.Exec(
		`SELECT rename_session($1, $2)`,
		sessionID,
		name,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}

	return nil
}

// Append stores a completed query and its answer as a user/assistant message
// pair. It is called once per query after the pipeline reaches a terminal
// state. The session is created on first use and auto-named from the query's
// keywords.
func (h *HistoryDBHandler) Append(ctx context.Context, query model.Query, answer *model.Answer) error {
	sessionID := query.SessionID
	if sessionID == "" {
		sessionID = NewSessionID()
	}

	session, err := h.CreateSession(sessionID, "")
	if err != nil {
		return err
	}
	if session.Name == "" {
		name := keywords.Compress(query.Raw, 4)
		if name == "" {
			name = sessionID
		}
		if err := h.RenameSession(sessionID, name); err != nil {
			return err
		}
	}

	_, err = h.db.Instance.ExecContext(
		ctx,
		`SELECT insert_message($1, $2, $3, $4)`,
		sessionID,
		RoleUser,
		query.Raw,
		model.Metadata{"query_id": query.ID.String()},
	)
	if err != nil {
		return helper.NewError("insert user message", err)
	}

	metadata := model.Metadata{
		"query_id":   query.ID.String(),
		"provenance": string(answer.Provenance),
	}
	if len(answer.Sources) > 0 {
		metadata["sources"] = strings.Join(answer.Sources, ",")
	}

	_, err = h.db.Instance.ExecContext(
		ctx,
		`SELECT insert_message($1, $2, $3, $4)`,
		sessionID,
		RoleAssistant,
		answer.Text,
		metadata,
	)
	if err != nil {
		return helper.NewError("insert assistant message", err)
	}

	return nil
}

// SelectMessages retrieves all messages of a session in chronological order
func (h *HistoryDBHandler) SelectMessages(sessionID string) ([]*Message, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_messages_by_session($1)`,
		sessionID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		message := &Message{}
		err := rows.Scan(
			&message.ID,
			&message.SessionID,
			&message.Role,
			&message.Content,
			&message.Metadata,
			&message.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return messages, nil
}

// DeleteSession deletes a session and all its messages
func (h *HistoryDBHandler) DeleteSession(sessionID string) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_session($1)`,
		sessionID,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}

	return nil
}
