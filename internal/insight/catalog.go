package insight

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// NumberMeaning describes a core number.
type NumberMeaning struct {
	Title      string `yaml:"title"`
	Summary    string `yaml:"summary"`
	Strengths  string `yaml:"strengths"`
	Challenges string `yaml:"challenges"`
}

// Catalog holds the interpretation texts.
type Catalog struct {
	Numbers    map[int]NumberMeaning `yaml:"numbers"`
	Signs      map[string]string     `yaml:"signs"`
	Nakshatras map[string]string     `yaml:"nakshatras"`
	Planets    map[string]string     `yaml:"planets"`
	Categories map[string]string     `yaml:"categories"`
	Chat       struct {
		Greeting string `yaml:"greeting"`
		Unknown  string `yaml:"unknown"`
	} `yaml:"chat"`
}

// LoadCatalog parses the embedded catalog.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog parses a catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse insight catalog: %w", err)
	}
	if len(c.Numbers) == 0 {
		return nil, fmt.Errorf("parse insight catalog: no number meanings")
	}
	return &c, nil
}

// Number returns the meaning of n, or a neutral entry for numbers the
// catalog does not cover.
func (c *Catalog) Number(n int) NumberMeaning {
	if m, ok := c.Numbers[n]; ok {
		return m
	}
	return NumberMeaning{Title: fmt.Sprintf("Number %d", n), Summary: "This number carries a quiet influence in your chart."}
}
