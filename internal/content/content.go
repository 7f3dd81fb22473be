// Package content loads opinion rules and fallback fragment pools from YAML.
// A default catalog is embedded in the binary.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MRamiBalles/murmur/internal/opinion"
	"github.com/MRamiBalles/murmur/internal/textgen"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// ErrNoRules is returned for a document without a single opinion rule.
var ErrNoRules = errors.New("content: no opinion rules")

// Bundle is a parsed catalog document. It serves as an opinion.Source.
type Bundle struct {
	Opinions  []opinion.RuleDefinition `yaml:"opinions"`
	Fragments textgen.Pools            `yaml:"fragments"`
}

// Records implements opinion.Source.
func (b *Bundle) Records() ([]opinion.RuleDefinition, error) {
	if len(b.Opinions) == 0 {
		return nil, ErrNoRules
	}
	return b.Opinions, nil
}

// Pools returns the fallback fragment pools.
func (b *Bundle) Pools() textgen.Pools { return b.Fragments }

// Parse decodes a catalog document.
func Parse(data []byte) (*Bundle, error) {
	var b Bundle
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(b.Opinions) == 0 {
		return nil, ErrNoRules
	}
	return &b, nil
}

// Load reads a catalog file. An empty path yields the embedded default.
func Load(path string) (*Bundle, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return b, nil
}

// Default returns the embedded catalog.
func Default() (*Bundle, error) {
	return Parse(defaultCatalog)
}
