package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/BasmaFrajElhadi/unirag/helper"
	"github.com/BasmaFrajElhadi/unirag/model"
	"github.com/BasmaFrajElhadi/unirag/sql"
)

// ChunksDBHandlerFunctions defines the interface for Chunks database operations.
type ChunksDBHandlerFunctions interface {
	InsertChunk(chunk *model.Chunk) error
	SelectChunk(rid uuid.UUID) (*model.Chunk, error)
	SelectChunksByDocument(documentID int64) ([]*model.Chunk, error)
	SelectChunksBySimilarity(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*model.Chunk, error)
	CountChunks() (int64, error)
	DeleteChunk(rid uuid.UUID) error
}

// ChunksDBHandler handles chunk-related database operations
type ChunksDBHandler struct {
	db *helper.Database
}

// NewChunksDBHandler creates a new chunks database handler.
// It initializes the database connection and loads chunk-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewChunksDBHandler(db *helper.Database, embeddingDim int, force bool) (*ChunksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	chunksDbHandler := &ChunksDBHandler{
		db: db,
	}

	err := sql.LoadChunksSql(chunksDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load chunks sql", err)
	}

	err = chunksDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ChunksDBHandler")

	return chunksDbHandler, nil
}

// CreateTable creates the 'chunks' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary extensions and indexes.
func (h *ChunksDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_chunks($1);`, embeddingDim)
	if err != nil {
		log.Panicf("error initializing chunks table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table chunks")

	return nil
}

// InsertChunk inserts a new chunk
func (h *ChunksDBHandler) InsertChunk(chunk *model.Chunk) error {
	embeddingVector := pgvector.NewVector(chunk.Embedding)
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_chunk($1, $2, $3, $4, $5, $6, $7, $8)`,
		chunk.DocumentID,
		chunk.Content,
		chunk.SourceURL,
		chunk.University,
		chunk.SectionTag,
		embeddingVector,
		chunk.ChunkIndex,
		chunk.Metadata,
	)

	var embedding pgvector.Vector
	err := row.Scan(
		&chunk.ID,
		&chunk.RID,
		&chunk.DocumentID,
		&chunk.Content,
		&chunk.SourceURL,
		&chunk.University,
		&chunk.SectionTag,
		&embedding,
		&chunk.ChunkIndex,
		&chunk.Metadata,
		&chunk.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}
	chunk.Embedding = embedding.Slice()

	return nil
}

// SelectChunk retrieves a chunk by RID
func (h *ChunksDBHandler) SelectChunk(rid uuid.UUID) (*model.Chunk, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_chunk($1)`,
		rid,
	)

	chunk := &model.Chunk{}
	var embedding pgvector.Vector
	err := row.Scan(
		&chunk.ID,
		&chunk.RID,
		&chunk.DocumentID,
		&chunk.Content,
		&chunk.SourceURL,
		&chunk.University,
		&chunk.SectionTag,
		&embedding,
		&chunk.ChunkIndex,
		&chunk.Metadata,
		&chunk.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}
	chunk.Embedding = embedding.Slice()

	return chunk, nil
}

// SelectChunksByDocument retrieves all chunks of a document in chunk order
func (h *ChunksDBHandler) SelectChunksByDocument(documentID int64) ([]*model.Chunk, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_chunks_by_document($1)`,
		documentID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var chunks []*model.Chunk
	for rows.Next() {
		chunk := &model.Chunk{}
		var embedding pgvector.Vector
		err := rows.Scan(
			&chunk.ID,
			&chunk.RID,
			&chunk.DocumentID,
			&chunk.Content,
			&chunk.SourceURL,
			&chunk.University,
			&chunk.SectionTag,
			&embedding,
			&chunk.ChunkIndex,
			&chunk.Metadata,
			&chunk.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		chunk.Embedding = embedding.Slice()
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return chunks, nil
}

// SelectChunksBySimilarity retrieves the top chunks by cosine similarity to
// the given embedding, highest similarity first, filtered by threshold.
// The embedding column is not returned for result chunks.
func (h *ChunksDBHandler) SelectChunksBySimilarity(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*model.Chunk, error) {
	embeddingVector := pgvector.NewVector(embedding)
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_chunks_by_similarity($1, $2, $3)`,
		embeddingVector,
		limit,
		threshold,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var chunks []*model.Chunk
	for rows.Next() {
		chunk := &model.Chunk{}
		err := rows.Scan(
			&chunk.ID,
			&chunk.RID,
			&chunk.DocumentID,
			&chunk.Content,
			&chunk.SourceURL,
			&chunk.University,
			&chunk.SectionTag,
			&chunk.ChunkIndex,
			&chunk.Metadata,
			&chunk.CreatedAt,
			&chunk.Similarity,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return chunks, nil
}

// CountChunks returns the total number of chunks in the knowledge base
func (h *ChunksDBHandler) CountChunks() (int64, error) {
	var count int64
	err := h.db.Instance.QueryRow(`SELECT count_chunks()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}

	return count, nil
}

// DeleteChunk deletes a chunk by RID
func (h *ChunksDBHandler) DeleteChunk(rid uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_chunk($1)`,
		rid,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}

	return nil
}
