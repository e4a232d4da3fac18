package common

import (
	"fmt"
	"os"
	"path/filepath"

	"bonding-rewards-go/internal/models"

	"gopkg.in/yaml.v2"
)

// EntityConfig describes one entity to seed. Amounts are in base units.
type EntityConfig struct {
	Id            string `yaml:"id"`
	Name          string `yaml:"name"`
	Symbol        string `yaml:"symbol"`
	Uri           string `yaml:"uri"`
	InitialSupply uint64 `yaml:"initial_supply"`
	BasePrice     uint64 `yaml:"base_price"`
	CurveFactor   uint64 `yaml:"curve_factor"`
	MaxSupply     uint64 `yaml:"max_supply"`
}

// HolderConfig is a development holder funded at setup.
type HolderConfig struct {
	Identity string `yaml:"identity"`
	Funding  string `yaml:"funding"` // human amount of the reserve asset
}

type Catalog struct {
	Entities []EntityConfig `yaml:"entities"`
	Holders  []HolderConfig `yaml:"holders"`
}

// Curve returns the entity's bonding curve parameters.
func (c EntityConfig) Curve() models.BondingCurveParams {
	return models.BondingCurveParams{
		BasePrice:   c.BasePrice,
		CurveFactor: c.CurveFactor,
		MaxSupply:   c.MaxSupply,
	}
}

func LoadEntityCatalog(catalogFile string) (*Catalog, error) {
	var catalogPath string
	if filepath.IsAbs(catalogFile) {
		catalogPath = catalogFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		catalogPath = filepath.Join(wd, catalogFile)
	}

	data, err := os.ReadFile(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", catalogFile, err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", catalogFile, err)
	}

	seen := make(map[string]bool, len(catalog.Entities))
	for i, entity := range catalog.Entities {
		if entity.Id == "" {
			return nil, fmt.Errorf("entity at index %d missing id", i)
		}
		if seen[entity.Id] {
			return nil, fmt.Errorf("duplicate entity id %q", entity.Id)
		}
		seen[entity.Id] = true
		if entity.BasePrice == 0 || entity.MaxSupply == 0 {
			return nil, fmt.Errorf("entity %q needs base_price and max_supply", entity.Id)
		}
	}
	for i, holder := range catalog.Holders {
		if holder.Identity == "" {
			return nil, fmt.Errorf("holder at index %d missing identity", i)
		}
	}

	return &catalog, nil
}
