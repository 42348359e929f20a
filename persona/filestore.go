package persona

import (
	"os"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk layout of style overrides:
//
//	personas:
//	  - id: concise
//	    verbosity: brief
//	    cues:
//	      - {phrase: "bas itna", weight: 1.0}
type catalogFile struct {
	Personas []Style `yaml:"personas"`
}

// LoadCatalog reads YAML style overrides from path and layers them over the
// built-in catalog. Unknown persona ids fail the load.
func LoadCatalog(path string) (*Catalog, []NormalizationWarning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, oops.In("persona").With("path", path).Wrapf(err, "read catalog")
	}
	return ParseCatalog(data)
}

// ParseCatalog is LoadCatalog over an in-memory document.
func ParseCatalog(data []byte) (*Catalog, []NormalizationWarning, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, oops.In("persona").Wrapf(err, "parse catalog")
	}

	catalog := DefaultCatalog()
	var warnings []NormalizationWarning
	for i := range file.Personas {
		style, w, err := Normalize(&file.Personas[i])
		if err != nil {
			return nil, nil, oops.In("persona").With("index", i).Wrapf(err, "normalize style")
		}
		warnings = append(warnings, w...)
		catalog.styles[style.ID] = style
	}
	return catalog, warnings, nil
}
