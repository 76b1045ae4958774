package policy

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadDir loads domain specs from YAML files in a directory. Files must have
// a .yaml or .yml extension and conform to the DomainSpec schema. Malformed
// files are skipped with a warning so one bad file cannot take the service down.
func LoadDir(dir string, logger *slog.Logger) ([]DomainSpec, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		logger.Debug("domain spec directory does not exist, skipping", "dir", dir)
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read domain spec dir: %w", err)
	}

	var specs []DomainSpec
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("cannot read domain spec file", "path", path, "err", err)
			continue
		}

		var spec DomainSpec
		if err := yaml.Unmarshal(data, &spec); err != nil {
			logger.Warn("cannot parse domain spec file", "path", path, "err", err)
			continue
		}

		if spec.Name == "" {
			spec.Name = strings.TrimSuffix(name, filepath.Ext(name))
		}

		logger.Info("loaded domain spec", "domain", spec.Name, "path", path)
		specs = append(specs, spec)
	}

	return specs, nil
}

// WriteDefaults writes the builtin domain specs as YAML files into dir,
// skipping files that already exist. Used by "concierge init".
func WriteDefaults(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create domain spec dir: %w", err)
	}
	for _, spec := range DefaultSpecs() {
		path := filepath.Join(dir, spec.Name+".yaml")
		if _, err := os.Stat(path); err == nil {
			continue
		}
		data, err := yaml.Marshal(spec)
		if err != nil {
			return fmt.Errorf("marshal domain spec %s: %w", spec.Name, err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write domain spec %s: %w", spec.Name, err)
		}
	}
	return nil
}
