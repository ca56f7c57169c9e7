package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	PostgresHost      string
	PostgresPort      string
	PostgresUser      string
	PostgresPassword  string
	PostgresDB        string
	TelegramToken     string
	OpenAIKey         string
	ServerHost        string
	ServerPort        string
	DataDir           string
	TempDir           string
	VisualizationsDir string
	TokenUsageFile    string
	HistoryLimit      int
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found")
	}

	dataDir := getEnv("DATA_DIR", "bot_data")

	return &Config{
		PostgresHost:      getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:      getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:      getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword:  getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:        getEnv("POSTGRES_DB", "journalbot"),
		TelegramToken:     getEnv("TELEGRAM_TOKEN", ""),
		OpenAIKey:         getEnv("OPENAI_KEY", ""),
		ServerHost:        getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		DataDir:           dataDir,
		TempDir:           filepath.Join(dataDir, "temp"),
		VisualizationsDir: filepath.Join(dataDir, "visualizations"),
		TokenUsageFile:    filepath.Join(dataDir, "token_usage.json"),
		HistoryLimit:      5,
	}
}

// EnsureDirs creates the data directories the bot writes into.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.DataDir, c.TempDir, c.VisualizationsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
