// Package formulas holds the catalog of statistical formulas shown on the
// dashboard. Each formula may have a worked example written in the calculator
// language, so the catalog can check its own arithmetic.
package formulas

import (
	_ "embed"
	"fmt"
	"math"

	"github.com/zephyrtronium/bodmas"
	"gopkg.in/yaml.v2"
)

//go:embed formulas.yaml
var catalogYAML []byte

// Catalog is the full set of pages and sections.
type Catalog struct {
	Pages    []Page     `yaml:"pages" json:"pages"`
	Sections []*Section `yaml:"sections" json:"sections"`
}

// Page is one page of the dashboard.
type Page struct {
	ID       string `yaml:"id" json:"id"`
	Title    string `yaml:"title" json:"title"`
	Subtitle string `yaml:"subtitle" json:"subtitle"`
}

// Section is a titled group of formulas on a page.
type Section struct {
	ID       string     `yaml:"id" json:"id"`
	Page     string     `yaml:"page" json:"page"`
	Title    string     `yaml:"title" json:"title"`
	Formulas []*Formula `yaml:"formulas" json:"formulas"`
}

// Formula is a single named formula.
type Formula struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	LaTeX       string `yaml:"latex,omitempty" json:"latex,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Example is an arithmetic instance of the formula, and Value is what it
	// evaluates to.
	Example string  `yaml:"example,omitempty" json:"example,omitempty"`
	Value   float64 `yaml:"value,omitempty" json:"value,omitempty"`
	// Steps break the formula down in order of operations.
	Steps []Step `yaml:"steps,omitempty" json:"steps,omitempty"`
}

// Step is one stage of evaluating a formula.
type Step struct {
	LaTeX     string `yaml:"latex" json:"latex"`
	Operation string `yaml:"operation" json:"operation"`
}

// Load decodes the embedded catalog.
func Load() (*Catalog, error) {
	return Decode(catalogYAML)
}

// Decode parses a catalog from YAML and checks that IDs are unique and that
// every section belongs to a known page.
func Decode(b []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.UnmarshalStrict(b, &c); err != nil {
		return nil, fmt.Errorf("formulas: decoding catalog: %w", err)
	}
	pages := make(map[string]bool, len(c.Pages))
	for _, p := range c.Pages {
		pages[p.ID] = true
	}
	seen := make(map[string]bool)
	for _, s := range c.Sections {
		if !pages[s.Page] {
			return nil, fmt.Errorf("formulas: section %q is on unknown page %q", s.ID, s.Page)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("formulas: duplicate id %q", s.ID)
		}
		seen[s.ID] = true
		for _, f := range s.Formulas {
			if seen[f.ID] {
				return nil, fmt.Errorf("formulas: duplicate id %q", f.ID)
			}
			seen[f.ID] = true
		}
	}
	return &c, nil
}

// Section returns the section with the given id, or nil if there is none.
func (c *Catalog) Section(id string) *Section {
	for _, s := range c.Sections {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Formula returns the formula with the given id, or nil if there is none.
func (c *Catalog) Formula(id string) *Formula {
	for _, s := range c.Sections {
		for _, f := range s.Formulas {
			if f.ID == id {
				return f
			}
		}
	}
	return nil
}

// Evaluate evaluates the formula's example. It is an error for the formula
// to have no example.
func (f *Formula) Evaluate(opts ...bodmas.Option) (float64, error) {
	if f.Example == "" {
		return 0, fmt.Errorf("formulas: %s has no example", f.ID)
	}
	r, err := bodmas.EvalString(f.Example, opts...)
	if err != nil {
		return 0, fmt.Errorf("formulas: %s: %w", f.ID, err)
	}
	return r, nil
}

// Check evaluates every example in the catalog and reports the first one
// whose result differs from its recorded value by more than one part in 1e9.
func (c *Catalog) Check(opts ...bodmas.Option) error {
	for _, s := range c.Sections {
		for _, f := range s.Formulas {
			if f.Example == "" {
				continue
			}
			r, err := f.Evaluate(opts...)
			if err != nil {
				return err
			}
			if math.Abs(r-f.Value) > 1e-9*math.Max(1, math.Abs(f.Value)) {
				return fmt.Errorf("formulas: %s: %s is %g, but the catalog says %g", f.ID, f.Example, r, f.Value)
			}
		}
	}
	return nil
}
