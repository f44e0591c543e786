package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BasmaFrajElhadi/unirag/helper"
)

// DropVectorIndex drops the embedding index on the chunks table
func (h *ChunksDBHandler) DropVectorIndex(ctx context.Context) error {
	_, err := h.db.Instance.ExecContext(ctx, `DROP INDEX IF EXISTS idx_chunks_embedding;`)
	if err != nil {
		return helper.NewError("drop index", err)
	}
	return nil
}

// ChangeIndexType changes the vector index on the chunks embedding column
// between HNSW and IVFFlat. Optional params: "m" and "ef_construction" for
// hnsw, "lists" for ivfflat.
func (h *ChunksDBHandler) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	var createStmt string

	switch indexType {
	case "hnsw":
		m := 16
		efConstruction := 64
		if v, ok := params["m"].(int); ok {
			m = v
		}
		if v, ok := params["ef_construction"].(int); ok {
			efConstruction = v
		}
		createStmt = fmt.Sprintf(
			`CREATE INDEX idx_chunks_embedding ON chunks USING hnsw (embedding vector_cosine_ops) WITH (m = %d, ef_construction = %d);`,
			m, efConstruction,
		)
	case "ivfflat":
		lists := 100
		if v, ok := params["lists"].(int); ok {
			lists = v
		}
		createStmt = fmt.Sprintf(
			`CREATE INDEX idx_chunks_embedding ON chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = %d);`,
			lists,
		)
	default:
		return helper.NewError("change index type", fmt.Errorf("unsupported index type: %s (use 'hnsw' or 'ivfflat')", indexType))
	}

	if err := h.DropVectorIndex(ctx); err != nil {
		return err
	}

	_, err := h.db.Instance.ExecContext(ctx, createStmt)
	if err != nil {
		return helper.NewError("create index", err)
	}

	h.db.Logger.Info("Changed vector index type", slog.String("index_type", indexType))

	return nil
}
