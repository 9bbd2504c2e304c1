package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	LLMBaseURL       string
	LLMModel         string
	LLMAPIKey        string
	EmbeddingBaseURL string
	EmbeddingModel   string

	QdrantURL        string
	QdrantCollection string
	QdrantVectorSize int

	DBPath string

	// ConstitutionPDFPath points at the source document. Optional: when empty the
	// service assumes the corpus was indexed by a previous run.
	ConstitutionPDFPath string
	DocumentSource      string

	// RetrievalK is the number of nearest passages fetched per query.
	RetrievalK int
	// SectionSimilarityThreshold gates passages whose stored section label does
	// not resemble the inferred topic. Range 0..1.
	SectionSimilarityThreshold float64

	Temperature float32
	TopP        float32

	// GatewayTimeout bounds every external call (embedding, vector search,
	// completion). Zero disables the bound.
	GatewayTimeout time.Duration

	APIPort   string
	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or a parent directory, it is
// loaded automatically; variables already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	// Walk up from the working directory looking for a .env at the project root.
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		LLMBaseURL:          getEnv("LLM_BASE_URL", "http://localhost:8080"),
		LLMModel:            getEnv("LLM_MODEL", "gpt-4.1-mini"),
		LLMAPIKey:           getEnv("LLM_API_KEY", "dummy-key"),
		EmbeddingBaseURL:    getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModel:      getEnv("EMBEDDING_MODEL_NAME", "text-embedding-3-small"),
		QdrantURL:           getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:    getEnv("QDRANT_COLLECTION", "student_constitution"),
		DBPath:              getEnv("DB_PATH", "./data/constitution-qa.db"),
		ConstitutionPDFPath: getEnv("CONSTITUTION_PDF_PATH", ""),
		DocumentSource:      getEnv("DOCUMENT_SOURCE", "student-constitution"),
		APIPort:             getEnv("API_PORT", "9000"),
		LogFormat:           getEnv("LOG_FORMAT", "text"),
	}

	// QDRANT_VECTOR_SIZE must match the embedding model's output dimensionality.
	// If it changes, the collection has to be recreated.
	vectorSizeStr := getEnv("QDRANT_VECTOR_SIZE", "")
	if vectorSizeStr == "" {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE is required")
	}
	vectorSize, err := strconv.Atoi(vectorSizeStr)
	if err != nil {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0")
	}
	cfg.QdrantVectorSize = vectorSize

	k, err := getEnvInt("RETRIEVAL_K", 5)
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, fmt.Errorf("RETRIEVAL_K must be greater than 0")
	}
	cfg.RetrievalK = k

	threshold, err := getEnvFloat("SECTION_SIMILARITY_THRESHOLD", 0.5)
	if err != nil {
		return nil, err
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("SECTION_SIMILARITY_THRESHOLD must be between 0 and 1")
	}
	cfg.SectionSimilarityThreshold = threshold

	temperature, err := getEnvFloat("LLM_TEMPERATURE", 1.0)
	if err != nil {
		return nil, err
	}
	cfg.Temperature = float32(temperature)

	topP, err := getEnvFloat("LLM_TOP_P", 1.0)
	if err != nil {
		return nil, err
	}
	cfg.TopP = float32(topP)

	timeoutStr := getEnv("GATEWAY_TIMEOUT", "30s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("GATEWAY_TIMEOUT must be a valid duration: %w", err)
	}
	if timeout < 0 {
		return nil, fmt.Errorf("GATEWAY_TIMEOUT must not be negative")
	}
	cfg.GatewayTimeout = timeout

	switch getEnv("LOG_LEVEL", "info") {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "info":
		cfg.LogLevel = slog.LevelInfo
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}

	if cfg.ConstitutionPDFPath != "" {
		if _, err := os.Stat(cfg.ConstitutionPDFPath); err != nil {
			return nil, fmt.Errorf("CONSTITUTION_PDF_PATH is not readable: %w", err)
		}
	}

	// Create the data directory for the SQLite registry.
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return parsed, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	return parsed, nil
}
