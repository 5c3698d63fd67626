package config

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/amalhadhrami/ghwazi/internal/category"
	"github.com/amalhadhrami/ghwazi/internal/model"
)

//go:embed defaults.yaml
var defaultCategoriesYAML []byte

// DefaultCategory is a built-in category used for suggestions. It is never
// written to the database until a user accepts a suggestion.
type DefaultCategory struct {
	Name        string          `yaml:"name"`
	Type        string          `yaml:"type"`
	Description string          `yaml:"description"`
	Patterns    DefaultPatterns `yaml:"patterns"`
}

// DefaultPatterns holds the match patterns for a default category, split by
// the field they apply to.
type DefaultPatterns struct {
	Counterparty []string `yaml:"counterparty"`
	Description  []string `yaml:"description"`
}

// Suggestion is a category recommendation derived from the built-in defaults.
type Suggestion struct {
	Name        string
	Description string
	MappingType model.MappingType
	Pattern     string
	Matched     string
}

var (
	defaultsOnce sync.Once
	defaultsList []DefaultCategory
	defaultsErr  error
)

// DefaultCategories returns the built-in category seed, parsed once from the
// embedded YAML.
func DefaultCategories() ([]DefaultCategory, error) {
	defaultsOnce.Do(func() {
		var doc struct {
			Categories []DefaultCategory `yaml:"categories"`
		}
		if err := yaml.Unmarshal(defaultCategoriesYAML, &doc); err != nil {
			defaultsErr = fmt.Errorf("parsing default categories: %w", err)
			return
		}
		defaultsList = doc.Categories
	})
	return defaultsList, defaultsErr
}

// SuggestCategory recommends a category for a transaction using the built-in
// defaults. Counterparty patterns across all categories are tried before any
// description pattern; within a category, longer patterns win.
func SuggestCategory(counterparty, description string) (*Suggestion, error) {
	cats, err := DefaultCategories()
	if err != nil {
		return nil, err
	}
	if counterparty != "" {
		for _, cat := range cats {
			if s := suggestFrom(cat, model.MappingCounterparty, cat.Patterns.Counterparty, counterparty); s != nil {
				return s, nil
			}
		}
	}
	if description != "" {
		for _, cat := range cats {
			if s := suggestFrom(cat, model.MappingDescription, cat.Patterns.Description, description); s != nil {
				return s, nil
			}
		}
	}
	return nil, nil
}

func suggestFrom(cat DefaultCategory, mappingType model.MappingType, patterns []string, text string) *Suggestion {
	if len(patterns) == 0 {
		return nil
	}
	mappings := make([]model.CategoryMapping, 0, len(patterns))
	for _, p := range patterns {
		mappings = append(mappings, model.CategoryMapping{Type: mappingType, Pattern: p})
	}
	m := category.MatchText(text, mappings)
	if m == nil {
		return nil
	}
	return &Suggestion{
		Name:        cat.Name,
		Description: cat.Description,
		MappingType: mappingType,
		Pattern:     m.Pattern,
		Matched:     m.Matched,
	}
}
