package importer

import (
	"fmt"
	"os"
	"regexp"

	"github.com/goccy/go-yaml"
)

var iso3Pattern = regexp.MustCompile(`^[A-Z]{3}$`)

// DefaultCatalogue is the built-in multi-country candidate list, used when
// no countries file is supplied.
var DefaultCatalogue = []string{
	"AUT", "BEL", "CHE", "CZE", "DEU", "DNK", "ESP", "FRA", "GBR", "IRL",
	"ITA", "LUX", "NLD", "NOR", "POL", "PRT", "SWE",
}

type catalogueFile struct {
	Countries []string `yaml:"countries"`
}

// LoadCatalogue reads a YAML countries file: `countries: [BEL, NLD, ...]`.
func LoadCatalogue(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalogue: %w", err)
	}
	var file catalogueFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}
	if len(file.Countries) == 0 {
		return nil, fmt.Errorf("catalogue %s lists no countries", path)
	}
	for _, code := range file.Countries {
		if !iso3Pattern.MatchString(code) {
			return nil, fmt.Errorf("catalogue %s: invalid ISO3 code %q", path, code)
		}
	}
	return file.Countries, nil
}
