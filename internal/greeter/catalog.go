package greeter

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	dErrors "flywheel/pkg/domain-errors"
)

// GlobalLayer is the catalog layer loaded into the root context.
const GlobalLayer = "global"

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the YAML description of every greeting, grouped by layer.
//
//	layers:
//	  - name: global
//	    entries:
//	      - names: [Teague, Grey]
//	        template: "Stargaztor"
//	  - name: holiday
//	    entries:
//	      - roles: [admin]
//	        template: "{super} Happy holidays, {role}."
type Catalog struct {
	Layers []Layer `yaml:"layers"`
}

// Layer is one collect context worth of greetings. Entries register in order, so
// a later entry wins a tie with an earlier one.
type Layer struct {
	Name    string  `yaml:"name"`
	Entries []Entry `yaml:"entries"`
}

// Entry is one greeting. An empty list matches any value on that axis.
type Entry struct {
	Names    []string `yaml:"names"`
	Roles    []string `yaml:"roles"`
	Clients  []string `yaml:"clients"`
	Template string   `yaml:"template"`
}

// DefaultCatalog is the catalog built into the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog reads and parses a catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, fmt.Sprintf("read catalog %s", path))
	}
	return ParseCatalog(raw)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "parse catalog")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks layer names are present and distinct and every entry has a
// template.
func (c *Catalog) Validate() error {
	seen := make(map[string]struct{}, len(c.Layers))
	for i, l := range c.Layers {
		if l.Name == "" {
			return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("layer %d has no name", i))
		}
		if _, ok := seen[l.Name]; ok {
			return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("layer %q is declared twice", l.Name))
		}
		seen[l.Name] = struct{}{}
		for j, e := range l.Entries {
			if e.Template == "" {
				return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("layer %q entry %d has no template", l.Name, j))
			}
		}
	}
	return nil
}
