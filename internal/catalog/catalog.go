// Package catalog loads plant reference data: the physical press list and the
// pause-cause vocabulary. Both are configuration, not lifecycle state; the
// engine never depends on them beyond validation at the service boundary.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type PauseCause struct {
	Code  string `yaml:"code"`
	Label string `yaml:"label"`
}

type Catalog struct {
	Presses     []string     `yaml:"presses"`
	PauseCauses []PauseCause `yaml:"pause_causes"`
}

// Default mirrors the plant's current floor layout and cause list; used when
// no catalog file is configured.
func Default() Catalog {
	return Catalog{
		Presses: []string{"Prensa 102", "Prensa 74", "Prensa 52"},
		PauseCauses: []PauseCause{
			{Code: "cambio_plancha", Label: "Cambio de Plancha"},
			{Code: "falta_papel", Label: "Falta de Papel"},
			{Code: "ajuste_color", Label: "Ajuste de Color"},
			{Code: "limpieza", Label: "Limpieza"},
			{Code: "otro", Label: "Otro"},
		},
	}
}

// Load reads the catalog from path, falling back to Default when path is
// empty. A present-but-broken file is an error, not a silent fallback.
func Load(path string) (Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	if len(c.Presses) == 0 {
		return Catalog{}, fmt.Errorf("catalog has no presses")
	}
	if len(c.PauseCauses) == 0 {
		c.PauseCauses = Default().PauseCauses
	}
	return c, nil
}

func (c Catalog) HasPress(press string) bool {
	for _, p := range c.Presses {
		if p == press {
			return true
		}
	}
	return false
}

func (c Catalog) HasPauseCause(code string) bool {
	for _, pc := range c.PauseCauses {
		if pc.Code == code {
			return true
		}
	}
	return false
}
