package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	defaultCategories = []string{
		"Know Your Rights",
		"Criminal Law",
		"Cyber Law",
		"Property Law",
		"Consumer Law",
	}
	defaultLanguages = map[string]string{
		"English": "en",
		"Hindi":   "hi",
		"Marathi": "mr",
	}
)

// Catalog is the on-disk shape of categories.yaml
type Catalog struct {
	Categories []string          `yaml:"categories"`
	Languages  map[string]string `yaml:"languages"`
}

// loadCatalog fills cfg.Categories and cfg.Languages from the categories
// file, falling back to the built-in lists when the file does not exist
func loadCatalog(cfg *Config) error {
	catalog, err := ReadCatalog(cfg.ChatCfg.CategoriesFile)
	if err != nil {
		return err
	}

	cfg.Categories = catalog.Categories
	cfg.Languages = catalog.Languages
	return nil
}

// ReadCatalog reads a categories file. Missing sections use defaults.
func ReadCatalog(path string) (*Catalog, error) {
	catalog := &Catalog{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, catalog); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if len(catalog.Categories) == 0 {
		catalog.Categories = append([]string(nil), defaultCategories...)
	}
	if len(catalog.Languages) == 0 {
		catalog.Languages = make(map[string]string, len(defaultLanguages))
		for name, code := range defaultLanguages {
			catalog.Languages[name] = code
		}
	}

	seen := make(map[string]struct{}, len(catalog.Categories))
	for _, c := range catalog.Categories {
		if c == "" {
			return nil, fmt.Errorf("%s: empty category name", path)
		}
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("%s: duplicate category %q", path, c)
		}
		seen[c] = struct{}{}
	}

	if _, ok := catalog.Languages["English"]; !ok {
		return nil, fmt.Errorf("%s: English must be a supported language", path)
	}

	return catalog, nil
}
