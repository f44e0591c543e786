package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BasmaFrajElhadi/unirag/model"
)

func TestDocumentsNewDocumentsDBHandler(t *testing.T) {
	database := initDB(t)

	t.Run("Valid call NewDocumentsDBHandler", func(t *testing.T) {
		documentsDbHandler, err := NewDocumentsDBHandler(database, true)
		assert.NoError(t, err, "Expected NewDocumentsDBHandler to not return an error")
		require.NotNil(t, documentsDbHandler, "Expected NewDocumentsDBHandler to return a non-nil instance")
		require.NotNil(t, documentsDbHandler.db, "Expected NewDocumentsDBHandler to have a non-nil database instance")
		require.NotNil(t, documentsDbHandler.db.Instance, "Expected NewDocumentsDBHandler to have a non-nil database connection instance")
	})

	t.Run("Invalid call NewDocumentsDBHandler with nil database", func(t *testing.T) {
		_, err := NewDocumentsDBHandler(nil, false)
		assert.Error(t, err, "Expected error when creating DocumentsDBHandler with nil database")
		assert.Contains(t, err.Error(), "database connection is nil", "Expected specific error message for nil database connection")
	})
}

func TestDocumentsInsert(t *testing.T) {
	database := initDB(t)

	documentsDbHandler, err := NewDocumentsDBHandler(database, true)
	require.NoError(t, err, "Expected NewDocumentsDBHandler to not return an error")

	t.Run("Insert document", func(t *testing.T) {
		doc := &model.Document{
			Title:      "Cairo University Admission",
			SourceURL:  "https://cu.edu.eg/admission",
			University: "Cairo University",
			Metadata:   map[string]interface{}{"language": "en", "year": 2024},
		}

		err := documentsDbHandler.InsertDocument(doc)
		assert.NoError(t, err, "Expected Insert to not return an error")
		assert.NotEmpty(t, doc.RID, "Expected inserted document to have a RID")
		assert.NotZero(t, doc.ID, "Expected inserted document to have an ID")
		assert.WithinDuration(t, doc.CreatedAt, time.Now(), 2*time.Second, "Expected CreatedAt to be set")
		assert.WithinDuration(t, doc.UpdatedAt, time.Now(), 2*time.Second, "Expected UpdatedAt to be set")
		assert.Equal(t, "Cairo University Admission", doc.Title, "Expected title to match")

		// Cleanup
		documentsDbHandler.DeleteDocument(doc.RID)
	})
}

func TestDocumentsGet(t *testing.T) {
	database := initDB(t)

	documentsDbHandler, err := NewDocumentsDBHandler(database, true)
	require.NoError(t, err)

	doc := &model.Document{
		Title:      "Alexandria University Faculties",
		SourceURL:  "https://alexu.edu.eg/faculties",
		University: "Alexandria University",
		Metadata:   map[string]interface{}{"key": "value"},
	}
	err = documentsDbHandler.InsertDocument(doc)
	require.NoError(t, err)

	retrievedDoc, err := documentsDbHandler.SelectDocument(doc.RID)
	assert.NoError(t, err, "Expected Get to not return an error")
	assert.NotNil(t, retrievedDoc, "Expected Get to return a non-nil document")
	assert.Equal(t, doc.RID, retrievedDoc.RID, "Expected document RIDs to match")
	assert.Equal(t, doc.Title, retrievedDoc.Title, "Expected titles to match")
	assert.Equal(t, doc.SourceURL, retrievedDoc.SourceURL, "Expected source urls to match")
	assert.Equal(t, doc.University, retrievedDoc.University, "Expected universities to match")

	// Cleanup
	documentsDbHandler.DeleteDocument(doc.RID)
}

func TestDocumentsGetBySource(t *testing.T) {
	database := initDB(t)

	documentsDbHandler, err := NewDocumentsDBHandler(database, true)
	require.NoError(t, err)

	sourceURL := "https://cu.edu.eg/unique-source-page"
	doc := &model.Document{
		Title:      "Unique Source Page",
		SourceURL:  sourceURL,
		University: "Cairo University",
		Metadata:   map[string]interface{}{},
	}
	err = documentsDbHandler.InsertDocument(doc)
	require.NoError(t, err)

	docs, err := documentsDbHandler.SelectDocumentBySource(sourceURL)
	assert.NoError(t, err, "Expected SelectDocumentBySource to not return an error")
	require.Len(t, docs, 1, "Expected to find only the matching document")
	assert.Equal(t, doc.RID, docs[0].RID, "Expected document RIDs to match")

	// Cleanup
	documentsDbHandler.DeleteDocument(doc.RID)
}

func TestDocumentsGetAll(t *testing.T) {
	database := initDB(t)

	documentsDbHandler, err := NewDocumentsDBHandler(database, true)
	require.NoError(t, err)

	docCount := 5
	docs := make([]*model.Document, docCount)
	for i := 0; i < docCount; i++ {
		docs[i] = &model.Document{
			Title:      "University Page " + string(rune('A'+i)),
			SourceURL:  "https://cu.edu.eg/pages",
			University: "Cairo University",
			Metadata:   map[string]interface{}{},
		}
		err = documentsDbHandler.InsertDocument(docs[i])
		require.NoError(t, err)
	}

	retrievedDocs, err := documentsDbHandler.SelectAllDocuments(10)
	assert.NoError(t, err, "Expected SelectAllDocuments to not return an error")
	assert.GreaterOrEqual(t, len(retrievedDocs), docCount, "Expected to retrieve at least the inserted documents")

	// Test pagination
	pageLength := 3
	paginatedDocs, err := documentsDbHandler.SelectAllDocuments(pageLength)
	assert.NoError(t, err, "Expected SelectAllDocuments to not return an error")
	assert.LessOrEqual(t, len(paginatedDocs), pageLength, "Expected at most pageLength documents")

	// Cleanup
	for _, doc := range docs {
		documentsDbHandler.DeleteDocument(doc.RID)
	}
}

func TestDocumentsGetByUniversity(t *testing.T) {
	database := initDB(t)

	documentsDbHandler, err := NewDocumentsDBHandler(database, true)
	require.NoError(t, err)

	university := "Mansoura University"
	matchingDocs := 3
	otherDocs := 2

	docs := []*model.Document{}

	for i := 0; i < matchingDocs; i++ {
		doc := &model.Document{
			Title:      "Mansoura Page " + string(rune('A'+i)),
			SourceURL:  "https://mans.edu.eg/pages",
			University: university,
			Metadata:   map[string]interface{}{},
		}
		err = documentsDbHandler.InsertDocument(doc)
		require.NoError(t, err)
		docs = append(docs, doc)
	}

	for i := 0; i < otherDocs; i++ {
		doc := &model.Document{
			Title:      "Other Page " + string(rune('A'+i)),
			SourceURL:  "https://cu.edu.eg/pages",
			University: "Cairo University",
			Metadata:   map[string]interface{}{},
		}
		err = documentsDbHandler.InsertDocument(doc)
		require.NoError(t, err)
		docs = append(docs, doc)
	}

	results, err := documentsDbHandler.SelectDocumentsByUniversity(university)
	assert.NoError(t, err, "Expected SelectDocumentsByUniversity to not return an error")
	assert.Len(t, results, matchingDocs, "Expected to find only matching documents")

	// Cleanup
	for _, doc := range docs {
		documentsDbHandler.DeleteDocument(doc.RID)
	}
}

func TestDocumentsDelete(t *testing.T) {
	database := initDB(t)

	documentsDbHandler, err := NewDocumentsDBHandler(database, true)
	require.NoError(t, err)

	doc := &model.Document{
		Title:      "Short Lived Page",
		SourceURL:  "https://cu.edu.eg/tmp",
		University: "Cairo University",
		Metadata:   map[string]interface{}{},
	}
	err = documentsDbHandler.InsertDocument(doc)
	require.NoError(t, err)

	err = documentsDbHandler.DeleteDocument(doc.RID)
	assert.NoError(t, err, "Expected Delete to not return an error")

	// Verify deletion
	_, err = documentsDbHandler.SelectDocument(doc.RID)
	assert.Error(t, err, "Expected Get to return an error for deleted document")
}
