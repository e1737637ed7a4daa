package memory

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/careroute/concierge/pkg/storage"
)

// seedFile is the on-disk layout of a facility seed.
type seedFile struct {
	Facilities []storage.Facility `yaml:"facilities"`
}

// LoadSeed reads a YAML facility catalogue. Facilities without an ID get a
// generated one.
func LoadSeed(path string) ([]storage.Facility, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes a YAML facility catalogue.
func ParseSeed(data []byte) ([]storage.Facility, error) {
	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing seed: %w", err)
	}
	for i := range sf.Facilities {
		if sf.Facilities[i].Name == "" {
			return nil, fmt.Errorf("facilities[%d]: name is required", i)
		}
		if sf.Facilities[i].ID == "" {
			sf.Facilities[i].ID = uuid.NewString()
		}
	}
	return sf.Facilities, nil
}
