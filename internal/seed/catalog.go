package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yml
var defaultCatalog []byte

// Region is a region and the cities listings may be placed in.
type Region struct {
	Name   string   `yaml:"name"`
	Cities []string `yaml:"cities"`
}

// Category describes one listing category and the products sold under it.
type Category struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	Units      []string `yaml:"units"`
	Conditions []string `yaml:"conditions"`
	Products   []string `yaml:"products"`
}

// Catalog is the fixture demo listings are generated from.
type Catalog struct {
	Currency string     `yaml:"currency"`
	Regions  []Region   `yaml:"regions"`
	Farm     []Category `yaml:"farm"`
	Store    []Category `yaml:"store"`
}

// ParseCatalog decodes and checks a catalog document.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if c.Currency == "" {
		c.Currency = "GHS"
	}
	if len(c.Regions) == 0 {
		return nil, fmt.Errorf("catalog: at least one region is required")
	}
	for _, r := range c.Regions {
		if len(r.Cities) == 0 {
			return nil, fmt.Errorf("catalog: region %q has no cities", r.Name)
		}
	}
	if len(c.Farm) == 0 || len(c.Store) == 0 {
		return nil, fmt.Errorf("catalog: farm and store categories are required")
	}
	for _, cat := range append(append([]Category{}, c.Farm...), c.Store...) {
		if cat.ID == "" || len(cat.Products) == 0 {
			return nil, fmt.Errorf("catalog: category %q needs an id and products", cat.Name)
		}
	}
	return &c, nil
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}
