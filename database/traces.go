package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/BasmaFrajElhadi/unirag/helper"
	"github.com/BasmaFrajElhadi/unirag/model"
	"github.com/BasmaFrajElhadi/unirag/sql"
)

// StoredTrace is a persisted pipeline trace row
type StoredTrace struct {
	ID           int64              `json:"id"`
	QueryID      uuid.UUID          `json:"query_id"`
	SessionID    string             `json:"session_id,omitempty"`
	Query        string             `json:"query"`
	Provenance   string             `json:"provenance"`
	FallbackUsed bool               `json:"fallback_used"`
	Trace        *model.AnswerTrace `json:"trace"`
	CreatedAt    time.Time          `json:"created_at"`
}

// TracesDBHandlerFunctions defines the interface for trace persistence.
type TracesDBHandlerFunctions interface {
	InsertTrace(ctx context.Context, trace *model.AnswerTrace) error
	SelectTracesByQuery(queryID uuid.UUID) ([]*StoredTrace, error)
	SelectRecentTraces(limit int) ([]*StoredTrace, error)
}

// TracesDBHandler persists answer traces for debugging
type TracesDBHandler struct {
	db *helper.Database
}

// NewTracesDBHandler creates a new traces database handler.
// If force is true, it will reload the SQL functions even if they already exist.
func NewTracesDBHandler(db *helper.Database, force bool) (*TracesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	tracesDbHandler := &TracesDBHandler{
		db: db,
	}

	err := sql.LoadTracesSql(tracesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load traces sql", err)
	}

	err = tracesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized TracesDBHandler")

	return tracesDbHandler, nil
}

// CreateTable creates the 'traces' table in the database.
// If the table already exists, it does not create it again.
func (h *TracesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_traces();`)
	if err != nil {
		log.Panicf("error initializing traces table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table traces")

	return nil
}

// InsertTrace persists one completed answer trace
func (h *TracesDBHandler) InsertTrace(ctx context.Context, trace *model.AnswerTrace) error {
	payload, err := json.Marshal(trace)
	if err != nil {
		return helper.NewError("marshal trace", err)
	}

	_, err = h.db.Instance.ExecContext(
		ctx,
		`SELECT insert_trace($1, $2, $3, $4, $5, $6)`,
		trace.QueryID,
		trace.SessionID,
		trace.Query,
		string(trace.Provenance),
		trace.FallbackUsed,
		payload,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}

	return nil
}

// SelectTracesByQuery retrieves all stored traces for a query id
func (h *TracesDBHandler) SelectTracesByQuery(queryID uuid.UUID) ([]*StoredTrace, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_traces_by_query($1)`,
		queryID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanTraces(rows)
}

// SelectRecentTraces retrieves up to limit traces, newest first
func (h *TracesDBHandler) SelectRecentTraces(limit int) ([]*StoredTrace, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_recent_traces($1)`,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanTraces(rows)
}

func scanTraces(rows rowsScanner) ([]*StoredTrace, error) {
	var traces []*StoredTrace
	for rows.Next() {
		stored := &StoredTrace{}
		var payload []byte
		err := rows.Scan(
			&stored.ID,
			&stored.QueryID,
			&stored.SessionID,
			&stored.Query,
			&stored.Provenance,
			&stored.FallbackUsed,
			&payload,
			&stored.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		if err := json.Unmarshal(payload, &stored.Trace); err != nil {
			return nil, helper.NewError("unmarshal trace", err)
		}
		traces = append(traces, stored)
	}
	if err := rows.Err(); err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return traces, nil
}
