// Package policy holds data-driven guard policy, kept apart from the
// guard source so that scanning a repository never matches the policy's
// own definitions.
package policy

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	guarderrors "github.com/reflaxe-ocaml/guards/internal/pkg/errors"
	"github.com/reflaxe-ocaml/guards/internal/rules"
)

//go:embed license_markers.yaml
var defaultLicenseMarkers []byte

// EmbeddedMarkersName names the built-in marker document in errors.
const EmbeddedMarkersName = "embedded:license_markers.yaml"

type markerDoc struct {
	Markers []struct {
		Name    string `yaml:"name"`
		Pattern string `yaml:"pattern"`
	} `yaml:"markers"`
}

// LicenseMarkers returns the built-in forbidden license markers.
func LicenseMarkers() ([]rules.Rule, error) {
	return ParseLicenseMarkers(EmbeddedMarkersName, defaultLicenseMarkers)
}

// LoadLicenseMarkers reads markers from path, or the built-in set when
// path is empty.
func LoadLicenseMarkers(path string) ([]rules.Rule, error) {
	if path == "" {
		return LicenseMarkers()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read license markers: %w", err)
	}
	return ParseLicenseMarkers(path, data)
}

// ParseLicenseMarkers compiles a marker document. Every pattern is matched
// case-insensitively.
func ParseLicenseMarkers(name string, data []byte) ([]rules.Rule, error) {
	var doc markerDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, guarderrors.ErrPolicyParsef(name, err)
	}

	out := make([]rules.Rule, 0, len(doc.Markers))
	for i, m := range doc.Markers {
		if m.Name == "" || m.Pattern == "" {
			return nil, guarderrors.ErrPolicyParsef(name, fmt.Errorf("marker %d: name and pattern are required", i))
		}
		r, err := compile(m.Name, m.Pattern)
		if err != nil {
			return nil, guarderrors.ErrPolicyParsef(name, fmt.Errorf("marker %s: %w", m.Name, err))
		}
		out = append(out, r)
	}
	return out, nil
}
