package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variables consulted for credentials.
const (
	EnvToken    = "GDASSET_TOKEN"
	EnvUsername = "GDASSET_USERNAME"
	EnvPassword = "GDASSET_PASSWORD"
)

// Secrets holds credentials resolved from the environment. They are kept out
// of Config so they can never end up in gdasset.toml.
type Secrets struct {
	Token    string
	Username string
	Password string
}

// LoadSecrets reads credentials from the process environment, after loading
// a .env file from the project root if one exists. Existing environment
// variables win over .env entries.
func LoadSecrets(root string) Secrets {
	envFile := filepath.Join(root, ".env")
	if _, err := os.Stat(envFile); err == nil {
		// Best effort; a malformed .env just means the variables stay unset.
		_ = godotenv.Load(envFile)
	}
	return Secrets{
		Token:    os.Getenv(EnvToken),
		Username: os.Getenv(EnvUsername),
		Password: os.Getenv(EnvPassword),
	}
}
