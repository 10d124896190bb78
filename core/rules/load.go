package rules

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Versions holds named constraint configurations.
type Versions map[string]Config

type versionsFile struct {
	Versions map[string]Config `yaml:"versions"`
}

// LoadVersions reads a YAML or JSON document of the form
//
//	versions:
//	  v1:
//	    max_duty_hours_per_day: 10
//
// Each entry takes its key as version name.
func LoadVersions(path string) (Versions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return ParseVersions(data)
}

// ParseVersions decodes a versions document.
func ParseVersions(data []byte) (Versions, error) {
	var f versionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode rules file: %w", err)
	}
	out := make(Versions, len(f.Versions))
	for name, cfg := range f.Versions {
		cfg.Version = name
		out[name] = cfg
	}
	return out, nil
}

// Lookup returns the named version. Malformed or missing versions yield the
// defaults and false.
func (v Versions) Lookup(version string) (Config, bool) {
	cfg, ok := v[version]
	if !ok || cfg.Validate() != nil {
		def := Defaults()
		if version != "" {
			def.Version = version
		}
		return def, false
	}
	return cfg.Normalize(), true
}

// Names returns the version names in lexical order.
func (v Versions) Names() []string {
	names := make([]string, 0, len(v))
	for k := range v {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
