package prompt

import (
	"fmt"
	"os"
	"path/filepath"

	hjson "github.com/hjson/hjson-go/v4"
)

// LoadFromDirectory loads every .hjson template under baseDir into the global
// registry, replacing the built-in defaults with the same id.
//
// Expected structure:
//
//	baseDir/
//	  prompts/
//	    extraction.hjson
//	    chat.hjson
func LoadFromDirectory(baseDir string) error {
	registry := Get()

	promptDir := filepath.Join(baseDir, "prompts")
	if _, err := os.Stat(promptDir); os.IsNotExist(err) {
		return fmt.Errorf("prompts directory not found: %s", promptDir)
	}

	loaded := 0
	err := filepath.Walk(promptDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".hjson" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		// One file may define one template or a list of them.
		var many []Template
		if err := hjson.Unmarshal(data, &many); err == nil && len(many) > 0 {
			for i := range many {
				t := many[i]
				if err := registry.Register(&t); err != nil {
					return fmt.Errorf("register from %s: %w", path, err)
				}
				loaded++
			}
			return nil
		}

		var one Template
		if err := hjson.Unmarshal(data, &one); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		if err := registry.Register(&one); err != nil {
			return fmt.Errorf("register from %s: %w", path, err)
		}
		loaded++
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("[prompt.Loader] Loaded %d prompts from %s\n", loaded, baseDir)
	return nil
}
