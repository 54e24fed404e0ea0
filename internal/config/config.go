// Package config collects process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr    string
	DatabaseURL string

	// NATSURL is optional; when empty the poller is the only job trigger.
	NATSURL     string
	NATSSubject string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	SpeechBaseURL string
	SpeechToken   string

	DriveBaseURL string
	DriveToken   string

	BlobDir     string
	BlobBaseURL string
	BlobSecret  string

	PollInterval time.Duration
	StorageTTL   time.Duration
	URLTTL       time.Duration

	ChunkSize    int
	ChunkOverlap int

	// DictionaryPath points at the proper-noun correction table; optional.
	DictionaryPath string
}

func FromEnv() Config {
	return Config{
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		NATSURL:     os.Getenv("NATS_URL"),
		NATSSubject: os.Getenv("NATS_SUBJECT"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:   os.Getenv("OPENAI_MODEL"),

		SpeechBaseURL: os.Getenv("SPEECH_BASE_URL"),
		SpeechToken:   os.Getenv("SPEECH_TOKEN"),

		DriveBaseURL: os.Getenv("DRIVE_BASE_URL"),
		DriveToken:   os.Getenv("DRIVE_TOKEN"),

		BlobDir:     getenvDefault("BLOB_DIR", ".cache/blobs"),
		BlobBaseURL: getenvDefault("BLOB_BASE_URL", "http://localhost:8080"),
		BlobSecret:  os.Getenv("BLOB_SECRET"),

		PollInterval: durationDefault("POLL_INTERVAL", 10*time.Second),
		StorageTTL:   durationDefault("STORAGE_TTL", 72*time.Hour),
		URLTTL:       durationDefault("URL_TTL", 30*time.Minute),

		ChunkSize:    intDefault("CHUNK_SIZE", 500),
		ChunkOverlap: intDefault("CHUNK_OVERLAP", 100),

		DictionaryPath: os.Getenv("DICTIONARY_PATH"),
	}
}

func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.OpenAIAPIKey == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	if c.SpeechBaseURL == "" {
		return errors.New("SPEECH_BASE_URL is required")
	}
	if c.DriveBaseURL == "" {
		return errors.New("DRIVE_BASE_URL is required")
	}
	if c.BlobSecret == "" {
		return errors.New("BLOB_SECRET is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func durationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func intDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
