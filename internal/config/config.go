// Package config loads the process configuration from environment variables.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config holds all process configuration loaded from environment variables.
type Config struct {
	Mongo               MongoConfig
	ArtifactRoot        string
	FinalModelDir       string
	PredictionOutputDir string
	SchemaFile          string
	HTTPAddr            string
	SplitSeed           int64
	LogLevel            string
	LogFormat           string
}

// MongoConfig holds the document store parameters.
type MongoConfig struct {
	URL        string
	Database   string
	Collection string
}

// Load reads an optional .env file then the environment, with defaults.
// A missing .env file is not an error.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		err := godotenv.Load(f)
		if err != nil && !os.IsNotExist(err) {
			return Config{}, errors.Wrapf(err, "unable to load env file %s", f)
		}
	}

	seed, err := getEnvInt64("SPLIT_SEED", 42)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Mongo: MongoConfig{
			URL:        getEnv("MONGO_DB_URL", ""),
			Database:   getEnv("MONGO_DATABASE", "KRISHAI"),
			Collection: getEnv("MONGO_COLLECTION", "NetworkData"),
		},
		ArtifactRoot:        getEnv("ARTIFACT_ROOT", "Artifacts"),
		FinalModelDir:       getEnv("FINAL_MODEL_DIR", "final_model"),
		PredictionOutputDir: getEnv("PREDICTION_OUTPUT_DIR", "prediction_output"),
		SchemaFile:          getEnv("SCHEMA_FILE", ""),
		HTTPAddr:            getEnv("HTTP_ADDR", "127.0.0.1:8080"),
		SplitSeed:           seed,
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "text"),
	}, nil
}

// Validate checks the values required to reach the document store.
func (c Config) Validate() error {
	if c.Mongo.URL == "" {
		return errors.New("MONGO_DB_URL environment variable is required")
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", key)
	}

	return n, nil
}
