package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"constitution-qa/internal/config"
	"constitution-qa/internal/contextutil"
	"constitution-qa/internal/http"
	"constitution-qa/internal/ingest"
	"constitution-qa/internal/llm"
	"constitution-qa/internal/qa"
	"constitution-qa/internal/service"
	"constitution-qa/internal/storage"
	"constitution-qa/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize the document registry
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Document registry initialized", "path", cfg.DBPath)

	docRepo := storage.NewDocumentRepo(db)

	ctx := context.Background()

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	// Ensure collection exists with correct vector size
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModel, cfg.QdrantVectorSize)
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.QdrantVectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.QdrantVectorSize, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.QdrantVectorSize)

	// Create ingestion pipeline
	ingestPipeline := ingest.NewPipeline(
		docRepo,
		embedder,
		vectorStore,
		cfg.QdrantCollection,
		cfg.DocumentSource,
	)

	// Create LLM client (external service layer)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)

	// Create the QA engine
	retriever := qa.NewRetriever(
		embedder,
		vectorStore,
		cfg.QdrantCollection,
		cfg.RetrievalK,
		cfg.SectionSimilarityThreshold,
	)
	engine := qa.NewEngine(
		llmClient,
		retriever,
		llm.ChatParams{
			Model:       cfg.LLMModel,
			Temperature: cfg.Temperature,
			TopP:        cfg.TopP,
		},
		cfg.GatewayTimeout,
	)
	slog.Info("QA engine initialized", "retrieval_k", cfg.RetrievalK, "section_threshold", cfg.SectionSimilarityThreshold)

	chatService := service.NewChatService(engine)

	// Create router with dependencies
	deps := &http.Deps{
		ChatService:    chatService,
		DocumentRepo:   docRepo,
		CollectionInfo: vectorStore,
		Checker:        vectorStore,
		IngestPipeline: ingestPipeline,
		PDFPath:        cfg.ConstitutionPDFPath,
		CollectionName: cfg.QdrantCollection,
		IndexHTML:      chatPageHTML,
	}
	router := http.NewRouter(deps)

	// Ingest the constitution in the background after the router is ready
	if cfg.ConstitutionPDFPath != "" {
		go func() {
			ingestCtx := contextutil.WithLogger(context.Background(), slog.Default())
			slog.Info("Starting background ingestion", "path", cfg.ConstitutionPDFPath)
			if err := ingestPipeline.Run(ingestCtx, cfg.ConstitutionPDFPath, false); err != nil {
				slog.Error("Ingestion completed with errors", "error", err)
			} else {
				slog.Info("Ingestion completed successfully")
			}
		}()
	}

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModel)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
