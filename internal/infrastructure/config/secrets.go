package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// secretKeys lists the settings that may be supplied through a mounted file.
// For a key like auth.jwt_secret the file path is read from
// RECIPEWISE_AUTH_JWT_SECRET_FILE.
var secretKeys = []string{
	"auth.jwt_secret",
	"database.password",
	"redis.password",
	"ai.gemini_key",
	"ai.openai_key",
	"image_search.google_key",
}

// loadSecretFiles overrides secret settings with the contents of the files
// named by their *_FILE environment variables. A direct value in the
// environment or config file is replaced when a file is given.
func loadSecretFiles(v *viper.Viper) error {
	for _, key := range secretKeys {
		path := os.Getenv(secretFileEnv(key))
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read secret file for %s: %w", key, err)
		}
		v.Set(key, strings.TrimSpace(string(data)))
	}
	return nil
}

func secretFileEnv(key string) string {
	return "RECIPEWISE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_")) + "_FILE"
}
