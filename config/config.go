package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Mongo      MongoConfig
	Storage    StorageConfig
	Transcribe TranscribeConfig
	Generation GenerationConfig
	Jobs       JobsConfig
	JWT        JWTConfig
	App        AppConfig
}

// ServerConfig holds server-related configurations
type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Username string
	Password string
}

type MongoConfig struct {
	URI      string
	Database string
}

// StorageConfig points at the S3 bucket lecture and solution uploads live in.
type StorageConfig struct {
	Bucket   string
	Region   string
	Endpoint string // optional, for minio-style deployments
}

// TranscribeConfig configures the external speech-to-text service.
type TranscribeConfig struct {
	BaseURL  string
	APIKey   string
	Model    string
	Language string
}

// GenerationConfig configures the LLM generation service.
type GenerationConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// JobsConfig tunes the background dispatch layer and the chunking pipeline.
type JobsConfig struct {
	Workers            int
	QueueSize          int
	ChunkSeconds       int // width of one transcription window
	MinTailSeconds     int // trailing windows shorter than this are dropped
	MaxDurationSeconds int // soft ceiling, logged when exceeded
	MaxConcurrent      int // transcription fan-out bound
}

// JWTConfig holds JWT-related configurations
type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  int // minutes
	RefreshTokenTTL int // days
}

type AppConfig struct {
	Environment string
	LogLevel    string
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15)
	v.SetDefault("SERVER_IDLE_TIMEOUT", 60)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "classroom")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "classroom_database")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "classroom")

	v.SetDefault("STORAGE_BUCKET", "classroom-media")
	v.SetDefault("STORAGE_REGION", "us-east-1")

	v.SetDefault("TRANSCRIBE_BASE_URL", "https://api.upliftai.org/v1")
	v.SetDefault("TRANSCRIBE_MODEL", "scribe-mini")
	v.SetDefault("TRANSCRIBE_LANGUAGE", "ur")

	v.SetDefault("GENERATION_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("GENERATION_MODEL", "gpt-5-mini")

	v.SetDefault("JOB_WORKERS", 3)
	v.SetDefault("JOB_QUEUE_SIZE", 100)
	v.SetDefault("JOB_CHUNK_SECONDS", 60)
	v.SetDefault("JOB_MIN_TAIL_SECONDS", 5)
	v.SetDefault("JOB_MAX_DURATION_SECONDS", 3600)
	v.SetDefault("JOB_MAX_CONCURRENT", 8)

	v.SetDefault("JWT_SECRET", "change-me-in-production")
	v.SetDefault("JWT_ACCESS_TTL", 1440)
	v.SetDefault("JWT_REFRESH_TTL", 7)

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")

	return &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			ReadTimeout:  v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetInt("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:  v.GetInt("SERVER_IDLE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Username: v.GetString("REDIS_USERNAME"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		Mongo: MongoConfig{
			URI:      v.GetString("MONGO_URI"),
			Database: v.GetString("MONGO_DATABASE"),
		},
		Storage: StorageConfig{
			Bucket:   v.GetString("STORAGE_BUCKET"),
			Region:   v.GetString("STORAGE_REGION"),
			Endpoint: v.GetString("STORAGE_ENDPOINT"),
		},
		Transcribe: TranscribeConfig{
			BaseURL:  v.GetString("TRANSCRIBE_BASE_URL"),
			APIKey:   v.GetString("TRANSCRIBE_API_KEY"),
			Model:    v.GetString("TRANSCRIBE_MODEL"),
			Language: v.GetString("TRANSCRIBE_LANGUAGE"),
		},
		Generation: GenerationConfig{
			BaseURL: v.GetString("GENERATION_BASE_URL"),
			APIKey:  v.GetString("GENERATION_API_KEY"),
			Model:   v.GetString("GENERATION_MODEL"),
		},
		Jobs: JobsConfig{
			Workers:            v.GetInt("JOB_WORKERS"),
			QueueSize:          v.GetInt("JOB_QUEUE_SIZE"),
			ChunkSeconds:       v.GetInt("JOB_CHUNK_SECONDS"),
			MinTailSeconds:     v.GetInt("JOB_MIN_TAIL_SECONDS"),
			MaxDurationSeconds: v.GetInt("JOB_MAX_DURATION_SECONDS"),
			MaxConcurrent:      v.GetInt("JOB_MAX_CONCURRENT"),
		},
		JWT: JWTConfig{
			SecretKey:       v.GetString("JWT_SECRET"),
			AccessTokenTTL:  v.GetInt("JWT_ACCESS_TTL"),
			RefreshTokenTTL: v.GetInt("JWT_REFRESH_TTL"),
		},
		App: AppConfig{
			Environment: v.GetString("APP_ENV"),
			LogLevel:    v.GetString("LOG_LEVEL"),
		},
	}
}
