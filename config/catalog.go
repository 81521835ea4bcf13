package config

import (
	"fmt"
	"os"

	"github.com/senpow/italy-restaurant-booking/booking"
	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Tables []booking.Table    `yaml:"tables"`
	Slots  []booking.TimeSlot `yaml:"slots"`
}

// LoadCatalog reads tables and slots from a YAML file. An empty path gives the
// built-in dining room, a file without slots keeps the default slots.
func LoadCatalog(path string) (*booking.Catalog, error) {
	if path == "" {
		return booking.DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if len(file.Slots) == 0 {
		file.Slots = booking.DefaultSlots()
	}

	catalog, err := booking.NewCatalog(file.Tables, file.Slots)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return catalog, nil
}
