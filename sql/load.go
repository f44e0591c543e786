package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed documents.sql
var documentsSQL string

//go:embed chunks.sql
var chunksSQL string

//go:embed history.sql
var historySQL string

//go:embed traces.sql
var tracesSQL string

// Function lists for verification
var DocumentsFunctions = []string{
	"init_documents",
	"insert_document",
	"select_document",
	"select_document_by_source",
	"select_all_documents",
	"select_documents_by_university",
	"delete_document",
}

var ChunksFunctions = []string{
	"init_chunks",
	"insert_chunk",
	"select_chunk",
	"select_chunks_by_document",
	"select_chunks_by_similarity",
	"count_chunks",
	"delete_chunk",
}

var HistoryFunctions = []string{
	"init_history",
	"insert_session",
	"select_session",
	"select_all_sessions",
	"rename_session",
	"insert_message",
	"select_messages_by_session",
	"delete_session",
}

var TracesFunctions = []string{
	"init_traces",
	"insert_trace",
	"select_traces_by_query",
	"select_recent_traces",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadDocumentsSql loads document-related SQL functions
func LoadDocumentsSql(db *sql.DB, force bool) error {
	return loadSql(db, force, documentsSQL, DocumentsFunctions, "documents")
}

// LoadChunksSql loads chunk-related SQL functions
func LoadChunksSql(db *sql.DB, force bool) error {
	return loadSql(db, force, chunksSQL, ChunksFunctions, "chunks")
}

// LoadHistorySql loads chat-history SQL functions
func LoadHistorySql(db *sql.DB, force bool) error {
	return loadSql(db, force, historySQL, HistoryFunctions, "history")
}

// LoadTracesSql loads trace-related SQL functions
func LoadTracesSql(db *sql.DB, force bool) error {
	return loadSql(db, force, tracesSQL, TracesFunctions, "traces")
}

// LoadAllSql loads all SQL functions
func LoadAllSql(db *sql.DB, force bool) error {
	if err := LoadDocumentsSql(db, force); err != nil {
		return err
	}

	if err := LoadChunksSql(db, force); err != nil {
		return err
	}

	if err := LoadHistorySql(db, force); err != nil {
		return err
	}

	if err := LoadTracesSql(db, force); err != nil {
		return err
	}

	return nil
}

// loadSql executes the given SQL unless all functions already exist
// (or force is true) and verifies all functions were created
func loadSql(db *sql.DB, force bool, sqlText string, functions []string, name string) error {
	if !force {
		exist, err := checkFunctions(db, functions)
		if err != nil {
			return fmt.Errorf("error checking existing %s functions: %w", name, err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(sqlText)
	if err != nil {
		return fmt.Errorf("error executing %s SQL: %w", name, err)
	}

	exist, err := checkFunctions(db, functions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required %s SQL functions were created", name)
	}

	log.Printf("SQL %s functions loaded successfully", name)
	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
