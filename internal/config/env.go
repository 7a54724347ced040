package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// envFiles are loaded in order; earlier files win because existing
// variables are never overridden.
var envFiles = []string{".env.local", ".env"}

// LoadEnvFiles loads .env.local and .env from dir when present. Variables
// already set in the process environment are kept.
func LoadEnvFiles(dir string) error {
	var found []string
	for _, name := range envFiles {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			found = append(found, p)
		}
	}
	if len(found) == 0 {
		return nil
	}
	return godotenv.Load(found...)
}
