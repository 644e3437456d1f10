package suppliers

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/supplymap/internal/embedded"
	"github.com/agentstation/supplymap/pkg/catalogs"
	"github.com/agentstation/supplymap/pkg/errors"
)

// registryFile is the on-disk registry layout. Suppliers are kept as a
// MapSlice so registration order follows the file.
type registryFile struct {
	MergeStrategy  string        `yaml:"merge_strategy"`
	RequiredFields []string      `yaml:"required_fields"`
	Suppliers      yaml.MapSlice `yaml:"suppliers"`
}

type supplierFile struct {
	Name     string            `yaml:"name"`
	Enabled  *bool             `yaml:"enabled"`
	Priority *int              `yaml:"priority"`
	Staging  string            `yaml:"staging"`
	Mappings map[string]string `yaml:"mappings"`
}

// Default returns the registry compiled into the binary.
func Default() (*Registry, error) {
	data, err := embedded.FS.ReadFile(embedded.SuppliersFile)
	if err != nil {
		return nil, errors.WrapIO("read", embedded.SuppliersFile, err)
	}
	return Parse(data, embedded.SuppliersFile)
}

// LoadFile reads a registry from a YAML file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return Parse(data, path)
}

// Parse builds a registry from YAML. name is used in error messages.
func Parse(data []byte, name string) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		pe := errors.NewParseError("yaml", name, err.Error(), err)
		return nil, errors.NewConfigError("registry", pe.Error(), pe)
	}

	cfgs := make([]Config, 0, len(file.Suppliers))
	for _, item := range file.Suppliers {
		key := fmt.Sprint(item.Key)
		cfg, err := decodeSupplier(key, item.Value)
		if err != nil {
			pe := errors.NewParseError("yaml", name, fmt.Sprintf("supplier %s: %v", key, err), err)
			return nil, errors.NewConfigError("registry", pe.Error(), pe)
		}
		cfgs = append(cfgs, cfg)
	}

	opts := []Option{WithMergeStrategy(file.MergeStrategy)}
	if len(file.RequiredFields) > 0 {
		required := make([]catalogs.Field, len(file.RequiredFields))
		for i, f := range file.RequiredFields {
			required[i] = catalogs.Field(f)
		}
		opts = append(opts, WithRequiredFields(required...))
	}
	return NewRegistry(cfgs, opts...)
}

func decodeSupplier(key string, value any) (Config, error) {
	raw, err := yaml.Marshal(value)
	if err != nil {
		return Config{}, err
	}
	var sf supplierFile
	if err := yaml.Unmarshal(raw, &sf); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Key:      key,
		Name:     sf.Name,
		Enabled:  true,
		Staging:  sf.Staging,
		Mappings: make(map[string]catalogs.Field, len(sf.Mappings)),
	}
	if sf.Enabled != nil {
		cfg.Enabled = *sf.Enabled
	}
	if sf.Priority != nil {
		if *sf.Priority <= 0 {
			return Config{}, fmt.Errorf("priority must be a positive integer, got %d", *sf.Priority)
		}
		cfg.Priority = *sf.Priority
	}
	for supplierField, canonical := range sf.Mappings {
		cfg.Mappings[supplierField] = catalogs.Field(canonical)
	}
	return cfg, nil
}
