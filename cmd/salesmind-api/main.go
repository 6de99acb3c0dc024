package main

import (
	"context"
	"log"
	"net/http"

	httpadapter "github.com/salesmind/engine/internal/adapters/http"
	"github.com/salesmind/engine/internal/adapters/llm"
	firestorestore "github.com/salesmind/engine/internal/adapters/storage/firestore"
	memstore "github.com/salesmind/engine/internal/adapters/storage/memory"
	"github.com/salesmind/engine/internal/app/dialogue"
	"github.com/salesmind/engine/internal/app/temperature"
	"github.com/salesmind/engine/internal/config"
	"github.com/salesmind/engine/internal/domain"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	// Model collaborators: one client implements all four ports.
	var (
		judge     domain.JudgmentClient
		customer  domain.CustomerClient
		rubric    domain.RubricClient
		sentiment domain.SentimentClient
	)

	if cfg.UseMockLLM {
		log.Println("[LLM] Using mock collaborators")
		mock := llm.NewMock()
		judge, customer, rubric, sentiment = mock, mock, mock, mock
	} else {
		log.Printf("[LLM] Using Vertex AI (model=%s)", cfg.ModelName)
		client, err := llm.NewClient(ctx, llm.Config{
			ProjectID: cfg.GCPProjectID,
			Location:  cfg.GCPLocation,
			ModelName: cfg.ModelName,
		})
		if err != nil {
			log.Fatalf("error initializing Vertex AI client: %v", err)
		}
		judge, customer, rubric, sentiment = client, client, client, client
	}

	// Storage: Firestore or memory.
	var (
		sessionStore domain.SessionStore
		messageStore domain.MessageStore
		reportStore  domain.ReportStore
	)

	switch cfg.StorageBackend {
	case "firestore":
		log.Printf("[STORE] Using Firestore storage (project=%s)", cfg.GCPProjectID)
		fsStore, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			log.Fatalf("error initializing Firestore store: %v", err)
		}

		// 1 store, implements 3 interfaces
		sessionStore = fsStore
		messageStore = fsStore
		reportStore = fsStore

	default:
		log.Println("[STORE] Using in-memory storage")
		sessionStore = memstore.NewSessionStore()
		messageStore = memstore.NewMessageStore()
		reportStore = memstore.NewReportStore()
	}

	tables, err := cfg.LoadTables()
	if err != nil {
		log.Fatalf("error loading keyword tables: %v", err)
	}

	svc := dialogue.NewService(dialogue.Deps{
		Sessions:  sessionStore,
		Messages:  messageStore,
		Reports:   reportStore,
		Judge:     judge,
		Customer:  customer,
		Rubric:    rubric,
		Sentiment: sentiment,
		Scorer:    temperature.NewScorer(tables),
	})

	handler := httpadapter.Wrap(httpadapter.NewServer(svc))

	addr := ":" + cfg.Port
	log.Println("SalesMind API listening on", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal(err)
	}
}
