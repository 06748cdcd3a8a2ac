// Package config holds runtime settings for the docling chat bot.
//
// Settings are layered: built-in defaults, then an optional config.yaml,
// then environment variables. The environment always wins so the same
// image can be reconfigured per deployment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Settings struct {
	ServerHost string
	ServerPort int

	QdrantHost     string
	QdrantPort     int
	QdrantUseTLS   bool
	CollectionName string

	LLMProvider       string // "openai" or "gemini"
	LLMBaseURL        string
	LLMAPIKey         string
	LLMModelName      string
	LLMEmbeddingModel string
	LLMCatalogID      string

	LLMRequestTimeout      time.Duration
	TokenizeURL            string
	TokenizeConnectTimeout time.Duration
	TokenizeTimeout        time.Duration
	MaxTokenInput          int
	MaxTokenOutput         int

	RetrieveLimit  int
	ScoreThreshold float32

	UploadDir     string
	RedisAddr     string
	RedisPassword string
	AuthToken     string
}

// fileConfig mirrors the nested config.yaml layout.
type fileConfig struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`
	Upload struct {
		Dir string `yaml:"dir"`
	} `yaml:"upload"`
	Qdrant struct {
		Host       string `yaml:"host"`
		Port       int    `yaml:"port"`
		UseTLS     bool   `yaml:"use_tls"`
		Collection string `yaml:"collection"`
	} `yaml:"qdrant"`
	LLM struct {
		Provider       string  `yaml:"provider"`
		BaseURL        string  `yaml:"base_url"`
		APIKey         string  `yaml:"api_key"`
		ModelName      string  `yaml:"model_name"`
		EmbeddingModel string  `yaml:"embedding_model"`
		CatalogID      string  `yaml:"catalog_id"`
		TimeoutSeconds int     `yaml:"timeout"`
		MaxTokenInput  int     `yaml:"max_token_input"`
		MaxTokenOutput int     `yaml:"max_token_output"`
		TokenizeURL    string  `yaml:"tokenize_url"`
	} `yaml:"llm"`
	RAG struct {
		RetrieveLimit  int     `yaml:"retrieve_limit"`
		ScoreThreshold float32 `yaml:"score_threshold"`
	} `yaml:"rag"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
	} `yaml:"redis"`
}

func defaults() *Settings {
	return &Settings{
		ServerHost:             "0.0.0.0",
		ServerPort:             8000,
		QdrantHost:             "localhost",
		QdrantPort:             6334,
		CollectionName:         "docling-chunks",
		LLMProvider:            "openai",
		LLMBaseURL:             "https://llm.api.cloud.yandex.net/v1",
		LLMRequestTimeout:      120 * time.Second,
		TokenizeURL:            "https://llm.api.cloud.yandex.net/foundationModels/v1/tokenize",
		TokenizeConnectTimeout: 1 * time.Second,
		TokenizeTimeout:        3 * time.Second,
		MaxTokenInput:          32000,
		MaxTokenOutput:         1000,
		RetrieveLimit:          5,
		ScoreThreshold:         0.5,
		UploadDir:              "./uploads",
		RedisAddr:              "127.0.0.1:6379",
	}
}

// Load builds the effective settings. The config file path comes from
// CONFIG_FILE and falls back to ./config.yaml; a missing file is fine.
func Load() (*Settings, error) {
	s := defaults()

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}
	if err := s.applyFile(path); err != nil {
		return nil, err
	}
	s.applyEnv()

	if s.ServerPort <= 0 || s.ServerPort > 65535 {
		return nil, fmt.Errorf("invalid server port %d", s.ServerPort)
	}
	if s.RetrieveLimit < 1 {
		s.RetrieveLimit = 1
	}
	return s, nil
}

func (s *Settings) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	setStr(&s.ServerHost, fc.Server.Host)
	setInt(&s.ServerPort, fc.Server.Port)
	setStr(&s.UploadDir, fc.Upload.Dir)
	setStr(&s.QdrantHost, fc.Qdrant.Host)
	setInt(&s.QdrantPort, fc.Qdrant.Port)
	if fc.Qdrant.UseTLS {
		s.QdrantUseTLS = true
	}
	setStr(&s.CollectionName, fc.Qdrant.Collection)
	setStr(&s.LLMProvider, fc.LLM.Provider)
	setStr(&s.LLMBaseURL, fc.LLM.BaseURL)
	setStr(&s.LLMAPIKey, fc.LLM.APIKey)
	setStr(&s.LLMModelName, fc.LLM.ModelName)
	setStr(&s.LLMEmbeddingModel, fc.LLM.EmbeddingModel)
	setStr(&s.LLMCatalogID, fc.LLM.CatalogID)
	setStr(&s.TokenizeURL, fc.LLM.TokenizeURL)
	if fc.LLM.TimeoutSeconds > 0 {
		s.LLMRequestTimeout = time.Duration(fc.LLM.TimeoutSeconds) * time.Second
	}
	setInt(&s.MaxTokenInput, fc.LLM.MaxTokenInput)
	setInt(&s.MaxTokenOutput, fc.LLM.MaxTokenOutput)
	setInt(&s.RetrieveLimit, fc.RAG.RetrieveLimit)
	if fc.RAG.ScoreThreshold > 0 {
		s.ScoreThreshold = fc.RAG.ScoreThreshold
	}
	setStr(&s.RedisAddr, fc.Redis.Addr)
	setStr(&s.RedisPassword, fc.Redis.Password)
	return nil
}

func (s *Settings) applyEnv() {
	envStr(&s.ServerHost, "SERVER_HOST")
	envInt(&s.ServerPort, "SERVER_PORT")
	envStr(&s.QdrantHost, "QDRANT_HOST")
	envInt(&s.QdrantPort, "QDRANT_PORT")
	envBool(&s.QdrantUseTLS, "QDRANT_USE_TLS")
	envStr(&s.CollectionName, "QDRANT_COLLECTION_NAME")
	envStr(&s.LLMProvider, "LLM_PROVIDER")
	envStr(&s.LLMBaseURL, "LLM_BASE_URL")
	envStr(&s.LLMAPIKey, "LLM_API_KEY")
	envStr(&s.LLMModelName, "LLM_MODEL_NAME")
	envStr(&s.LLMEmbeddingModel, "LLM_EMBEDDING_MODEL")
	envStr(&s.LLMCatalogID, "LLM_CATALOG_ID")
	envStr(&s.TokenizeURL, "LLM_TOKENIZE_URL")
	envSeconds(&s.LLMRequestTimeout, "LLM_REQUEST_TIMEOUT")
	envSeconds(&s.TokenizeConnectTimeout, "LLM_TOKENIZE_CONNECT_TIMEOUT")
	envSeconds(&s.TokenizeTimeout, "LLM_TOKENIZE_TIMEOUT")
	envInt(&s.MaxTokenInput, "LLM_MODEL_MAX_TOKEN_INPUT")
	envInt(&s.MaxTokenOutput, "LLM_MODEL_MAX_TOKEN_OUTPUT")
	envInt(&s.RetrieveLimit, "RAG_RETRIEVE_DOCUMENT_LIMIT")
	if raw := os.Getenv("RAG_SCORE_THRESHOLD"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 32); err == nil {
			s.ScoreThreshold = float32(v)
		}
	}
	envStr(&s.UploadDir, "UPLOAD_DIR")
	envStr(&s.RedisAddr, "REDIS_ADDR")
	envStr(&s.RedisPassword, "REDIS_PASSWORD")
	envStr(&s.AuthToken, "AUTH_TOKEN")
}

// ListenAddr is what the HTTP server binds to.
func (s *Settings) ListenAddr() string {
	return fmt.Sprintf("%s:%d", s.ServerHost, s.ServerPort)
}

// EmbeddingModelURI resolves the embedding model identifier. When no
// explicit model is configured, the catalog-scoped document-search model
// URI is derived the way the upstream provider expects it.
func (s *Settings) EmbeddingModelURI() string {
	if s.LLMEmbeddingModel != "" {
		return s.LLMEmbeddingModel
	}
	return fmt.Sprintf("emb://%s/text-search-doc/latest", s.LLMCatalogID)
}

// AuthBypassed reports whether bearer auth is disabled. Only intended
// for local development.
func (s *Settings) AuthBypassed() bool {
	return s.AuthToken == ""
}

func setStr(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func envStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			*dst = v
		}
	}
}

func envBool(dst *bool, key string) {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			*dst = v
		}
	}
}

func envSeconds(dst *time.Duration, key string) {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			*dst = time.Duration(v * float64(time.Second))
		}
	}
}
