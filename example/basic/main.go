package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	unirag "github.com/BasmaFrajElhadi/unirag"
	"github.com/BasmaFrajElhadi/unirag/helper"
	"github.com/BasmaFrajElhadi/unirag/model"
)

const sampleContent = `Admission Requirements

Alexandria University requires a minimum score of 85% in the Thanaweya Amma for the Faculty of Engineering.
International students apply through the Study in Egypt portal. Applications open in July each year.

Faculties

The university has faculties of Engineering, Medicine, Science, Arts and Law.
The Faculty of Medicine is one of the oldest in Egypt, established in 1942.

Contact

The main campus is located in El-Shatby, Alexandria. The admissions office can be reached at +20 3 5921675.`

func main() {
	// API keys are read from .env when present
	_ = godotenv.Load()

	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "unirag_test",
		Username: "postgres",
		Password: "postgres",
		Schema:   "public",
		SSLMode:  "disable",
	}

	ctx := context.Background()

	u, err := unirag.New(ctx, dbConfig, unirag.Options{
		GoogleAPIKey: os.Getenv("GOOGLE_API_KEY"),
		GroqAPIKey:   os.Getenv("GROQ_API_KEY"),
	})
	if err != nil {
		log.Fatalf("Failed to create unirag: %v", err)
	}
	defer u.Close()

	// Without API keys only ingestion and search are available
	if err := u.UseDefaultPipeline(); err != nil {
		log.Fatalf("Failed to set up pipeline: %v", err)
	}

	doc := &model.Document{
		Title:      "Alexandria University",
		SourceURL:  "https://alexu.edu.eg/index.php/en/",
		University: "Alexandria University",
		Content:    sampleContent,
		Metadata: model.Metadata{
			"language": "en",
		},
	}

	fmt.Println("Ingesting document...")
	numChunks, err := u.IngestDocument(doc)
	if err != nil {
		log.Fatalf("Failed to ingest document: %v", err)
	}
	fmt.Printf("Document inserted with ID: %s\n", doc.RID)
	fmt.Printf("Inserted %d chunks\n", numChunks)

	question := "What is the admission requirement for Alexandria University?"

	if u.Engine == nil {
		// No API key: plain vector search instead of the full pipeline
		fmt.Printf("\nSearching: %s\n", question)
		results, err := u.Search(ctx, question, 5, 0.0)
		if err != nil {
			log.Fatalf("Failed to search: %v", err)
		}
		for i, result := range results {
			fmt.Printf("\n--- Result %d ---\n", i+1)
			fmt.Printf("Similarity: %.4f\n", result.Similarity)
			fmt.Printf("Content: %s\n", result.Chunk.Content)
		}
		return
	}

	fmt.Printf("\nAsking: %s\n", question)
	answer, trace, err := u.Answer(ctx, question)
	if err != nil {
		log.Fatalf("Failed to answer: %v", err)
	}

	fmt.Printf("\nAnswer (%s):\n%s\n", answer.Provenance, answer.Text)
	fmt.Printf("\nSources: %v\n", answer.Sources)
	fmt.Printf("Pipeline stages: %d, fallback used: %v\n", len(trace.Stages), trace.FallbackUsed)
}
