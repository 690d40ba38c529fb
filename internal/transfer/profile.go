// =============================================================================
// ExcelTools - Transfer Profiles
// =============================================================================
//
// A transfer profile names the fields to pull out of a workbook and the
// cell labels they are found under. Profiles are YAML files so teams can
// keep one per document template.
//
// Example:
//
//   name: quality-activity
//   fields:
//     - name: Reference
//       label: "Ref. No"
//     - name: Owner
//       label: "Responsible"
//
// =============================================================================

package transfer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FieldSpec maps an output field name to the label it is found under.
type FieldSpec struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label"`
}

// Profile describes one extraction template.
type Profile struct {
	Name   string      `yaml:"name"`
	Fields []FieldSpec `yaml:"fields"`
}

// LoadProfile reads and validates a YAML profile file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", path, err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	if len(p.Fields) == 0 {
		return nil, fmt.Errorf("profile %s defines no fields", path)
	}
	for i, f := range p.Fields {
		if f.Label == "" {
			return nil, fmt.Errorf("profile %s: field %d has no label", path, i+1)
		}
		if f.Name == "" {
			p.Fields[i].Name = f.Label
		}
	}
	return &p, nil
}
