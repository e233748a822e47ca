package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadEnv loads the first .env file found in the working directory or its
// parent. It returns the file it loaded, or "" when there was none.
func LoadEnv() (string, error) {
	for _, candidate := range []string{".env", filepath.Join("..", ".env")} {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		if err := godotenv.Load(candidate); err != nil {
			return candidate, err
		}
		return candidate, nil
	}
	return "", nil
}

// GetEnv retrieves an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}
