package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is read from the working directory when no env file is named.
const DefaultEnvFile = ".env"

// LoadEnv exports KEY=value pairs from path into the process environment.
// Variables that are already set win, and a missing file is not an error.
func LoadEnv(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultEnvFile
	}
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := godotenv.Load(expanded); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", expanded, err)
	}
	return nil
}
