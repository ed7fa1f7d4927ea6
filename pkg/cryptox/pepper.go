package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"os"
	"path/filepath"
)

// Configuration for Argon2id hashing.
const (
	memory      = 19 * 1024 // Memory usage in KiB (19 MiB)
	iterations  = 2         // Iteration count
	parallelism = 1         // Number of threads
	keyLength   = 32        // Length of the generated hash
	saltLength  = 16        // Length of the salt
)

var (
	// Pepper is dynamically loaded from a file or generated at runtime.
	pepper     string
	pepperFile string
)

func SetPepperPath(file string) {
	pepperFile = file
}

func GetPepper() string {
	if pepper != "" {
		return pepper
	}

	var err error
	pepper, err = LoadOrGenerateSecret(pepperFile)
	if err != nil {
		slog.Error("failed to load or generate pepper", slog.Any("err", err))
		os.Exit(1)
	}

	return pepper
}

// LoadOrGenerateSecret loads a base64url secret from a file, generating and
// persisting a fresh 256-bit one if the file does not exist yet. It backs
// both the password pepper and the token signing secret.
func LoadOrGenerateSecret(file string) (string, error) {
	file = filepath.Clean(file)
	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}

	if _, err := os.Stat(file); os.IsNotExist(err) {
		raw := make([]byte, keyLength)
		if _, err := rand.Read(raw); err != nil {
			return "", err
		}
		secret := base64.RawURLEncoding.EncodeToString(raw)

		if err := os.WriteFile(file, []byte(secret), 0600); err != nil {
			return "", err
		}
		return secret, nil
	}

	raw, err := os.ReadFile(file)
	if err != nil {
		return "", err
	}

	return string(raw), nil
}
