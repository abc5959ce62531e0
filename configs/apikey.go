package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	APIKeyEnv       = "APP_API_KEY"
	ProviderKeyEnv  = "OPENAI_API_KEY"
	apiKeyByteCount = 32
)

// GenerateAPIKey returns 32 random bytes as unpadded URL-safe base64.
func GenerateAPIKey() (string, error) {
	b := make([]byte, apiKeyByteCount)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// EnsureAPIKey returns the access key from the environment or envFile. If
// neither has one, a key is generated, written to envFile once and exported
// to the current process. generated is true only in that last case.
func EnsureAPIKey(envFile string) (key string, generated bool, err error) {
	if key = strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		return key, false, nil
	}

	entries, err := readEnvFile(envFile)
	if err != nil {
		return "", false, err
	}
	if key = strings.TrimSpace(entries[APIKeyEnv]); key != "" {
		_ = os.Setenv(APIKeyEnv, key)
		return key, false, nil
	}

	key, err = GenerateAPIKey()
	if err != nil {
		return "", false, err
	}
	if err := appendEnvLine(envFile, APIKeyEnv, key); err != nil {
		return "", false, fmt.Errorf("persist %s to %s: %w", APIKeyEnv, envFile, err)
	}
	if err := os.Setenv(APIKeyEnv, key); err != nil {
		return "", false, fmt.Errorf("export %s: %w", APIKeyEnv, err)
	}
	return key, true, nil
}

// EnsureEnvFile creates envFile with an empty provider key entry when the
// file does not exist yet. Existing files are left untouched.
func EnsureEnvFile(envFile string) (created bool, err error) {
	if _, err := os.Stat(envFile); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat %s: %w", envFile, err)
	}

	if err := os.WriteFile(envFile, []byte(ProviderKeyEnv+"=\n"), 0o600); err != nil {
		return false, fmt.Errorf("create %s: %w", envFile, err)
	}
	return true, nil
}

// appendEnvLine adds KEY=value at the end of envFile, creating it if needed.
// Existing lines, comments and order are left as they are. A blank entry for
// the same key earlier in the file is shadowed, since later lines win.
func appendEnvLine(envFile, key, value string) error {
	existing, err := os.ReadFile(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	line := key + "=" + value + "\n"
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		line = "\n" + line
	}

	f, err := os.OpenFile(envFile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func readEnvFile(envFile string) (map[string]string, error) {
	entries, err := godotenv.Read(envFile)
	if err == nil {
		return entries, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	return nil, fmt.Errorf("read %s: %w", envFile, err)
}
