package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadDotenv loads variables from the given dotenv files into the process
// environment. Files that do not exist are skipped. Variables already set in the
// environment take precedence over the files, and earlier files take precedence
// over later ones.
func LoadDotenv(paths ...string) error {
	for _, path := range paths {
		err := godotenv.Load(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		} else if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}

	return nil
}
