package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Qdrant   QdrantConfig
	Gemini   GeminiConfig
	Scoring  ScoringConfig
	Storage  StorageConfig
	Worker   WorkerConfig
	Log      LogConfig

	// EnvFileLoaded is false when no .env file was found.
	EnvFileLoaded bool
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	VectorSize uint64
}

type GeminiConfig struct {
	APIKey            string
	Model             string
	EmbeddingModel    string
	Temperature       float32
	Seed              int32
	Timeout           time.Duration
	MaxAttempts       int
	RetryInitialDelay time.Duration
}

// ScoringConfig carries the tunable weights of the matching pipeline.
type ScoringConfig struct {
	SkillsWeight       float64
	ExperienceWeight   float64
	EducationWeight    float64
	JudgeWeight        float64
	EmbeddingWeight    float64
	MinSectionScore    float64
	TopN               int
	SearchLimit        int
	DuplicateThreshold float64
	BatchConcurrency   int
	MinJobTextLength   int
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

type WorkerConfig struct {
	Concurrency  int
	PollInterval time.Duration
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

func Load() *Config {
	envErr := godotenv.Load()

	return &Config{
		EnvFileLoaded: envErr == nil,
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "jd_matcher"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6334"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "job_descriptions"),
			VectorSize: uint64(getEnvAsInt("QDRANT_VECTOR_SIZE", 768)),
		},
		Gemini: GeminiConfig{
			APIKey:            getEnv("GEMINI_API_KEY", ""),
			Model:             getEnv("LLM_MODEL", "gemini-2.5-flash"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-004"),
			Temperature:       float32(getEnvAsFloat("LLM_TEMPERATURE", 0)),
			Seed:              int32(getEnvAsInt("LLM_SEED", 42)),
			Timeout:           getEnvAsDuration("LLM_TIMEOUT", "30s"),
			MaxAttempts:       getEnvAsInt("LLM_MAX_ATTEMPTS", 3),
			RetryInitialDelay: getEnvAsDuration("LLM_RETRY_DELAY", "2s"),
		},
		Scoring: ScoringConfig{
			SkillsWeight:       getEnvAsFloat("SCORE_WEIGHT_SKILLS", 0.8),
			ExperienceWeight:   getEnvAsFloat("SCORE_WEIGHT_EXPERIENCE", 0.1),
			EducationWeight:    getEnvAsFloat("SCORE_WEIGHT_EDUCATION", 0.1),
			JudgeWeight:        getEnvAsFloat("SCORE_JUDGE_WEIGHT", 0.7),
			EmbeddingWeight:    getEnvAsFloat("SCORE_EMBEDDING_WEIGHT", 0.3),
			MinSectionScore:    getEnvAsFloat("SCORE_MIN_SECTION", 0.2),
			TopN:               getEnvAsInt("MATCH_TOP_N", 5),
			SearchLimit:        getEnvAsInt("MATCH_SEARCH_LIMIT", 10),
			DuplicateThreshold: getEnvAsFloat("JD_DUPLICATE_THRESHOLD", 0.995),
			BatchConcurrency:   getEnvAsInt("MATCH_CONCURRENCY", 8),
			MinJobTextLength:   getEnvAsInt("JD_MIN_TEXT_LENGTH", 30),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Worker: WorkerConfig{
			Concurrency:  getEnvAsInt("WORKER_CONCURRENCY", 3),
			PollInterval: getEnvAsDuration("WORKER_POLL_INTERVAL", "10s"),
		},
		Log: LogConfig{
			JSON:  getEnvAsBool("LOG_JSON", false),
			Debug: getEnvAsBool("LOG_DEBUG", false),
		},
	}
}

const weightTolerance = 1e-6

// Validate reports configuration that makes scoring meaningless.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Gemini.APIKey) == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY is required"))
	}

	s := c.Scoring
	if s.SkillsWeight < 0 || s.ExperienceWeight < 0 || s.EducationWeight < 0 {
		errs = append(errs, errors.New("section weights must not be negative"))
	}
	if sum := s.SkillsWeight + s.ExperienceWeight + s.EducationWeight; math.Abs(sum-1) > weightTolerance {
		errs = append(errs, fmt.Errorf("section weights must sum to 1.0, got %.4f", sum))
	}
	if s.JudgeWeight < 0 || s.EmbeddingWeight < 0 {
		errs = append(errs, errors.New("blend weights must not be negative"))
	}
	if sum := s.JudgeWeight + s.EmbeddingWeight; math.Abs(sum-1) > weightTolerance {
		errs = append(errs, fmt.Errorf("judge and embedding weights must sum to 1.0, got %.4f", sum))
	}
	if s.MinSectionScore < 0 || s.MinSectionScore > 1 {
		errs = append(errs, fmt.Errorf("minimum section score must be within [0,1], got %.4f", s.MinSectionScore))
	}
	if c.Qdrant.VectorSize == 0 {
		errs = append(errs, errors.New("QDRANT_VECTOR_SIZE must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
