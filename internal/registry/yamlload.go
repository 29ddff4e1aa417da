package registry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LoadArtifactDefinitions reads path as a single YAML definitions file, or,
// if path is a directory, every *.yaml/*.yml file within it, and adds each
// definition found to r. This mirrors the original --artifact_definitions
// flag's ReadFromFile / ReadFromDirectory split.
func (r *Registry) LoadArtifactDefinitions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "registry: stat %s", path)
	}

	if !info.IsDir() {
		return r.loadFile(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return errors.Wrapf(err, "registry: read dir %s", path)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if err := r.loadFile(filepath.Join(path, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "registry: open %s", path)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	for {
		var def Definition
		if err := dec.Decode(&def); err != nil {
			if err == io.EOF {
				break
			}
			return errors.Wrapf(err, "registry: decode %s", path)
		}
		if err := validate(def); err != nil {
			return fmt.Errorf("registry: %s: %w", path, err)
		}
		r.Add(def)
	}
	return nil
}

func validate(def Definition) error {
	if def.ArtifactDefinition == "" {
		return errors.New("missing artifact_definition")
	}
	if def.PropertyListIdentifier == "" {
		return errors.New("missing property_list_identifier")
	}
	return nil
}
