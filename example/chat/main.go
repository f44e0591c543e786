package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	unirag "github.com/BasmaFrajElhadi/unirag"
	"github.com/BasmaFrajElhadi/unirag/helper"
)

// Interactive chat loop against an existing knowledge base. Expects the
// database connection in DB_* environment variables and a GOOGLE_API_KEY
// (plus optionally GROQ_API_KEY for the web fallback).
func main() {
	_ = godotenv.Load()

	dbConfig, err := helper.NewDatabaseConfiguration()
	if err != nil {
		log.Fatalf("Failed to read database configuration: %v", err)
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

	if u.Engine == nil {
		log.Fatal("GOOGLE_API_KEY is required for the chat example")
	}

	sessionID := u.NewSessionID()
	fmt.Printf("Session %s. Ask about Egyptian public universities (empty line to quit)\n", sessionID)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			break
		}

		answer, _, err := u.AnswerInSession(ctx, sessionID, question)
		if err != nil {
			log.Fatalf("Failed to answer: %v", err)
		}

		fmt.Printf("\n%s\n", answer.Text)
		if len(answer.Sources) > 0 {
			fmt.Printf("\nSources (%s):\n", answer.Provenance)
			for _, source := range answer.Sources {
				fmt.Printf("  - %s\n", source)
			}
		}
		fmt.Println()
	}
}
