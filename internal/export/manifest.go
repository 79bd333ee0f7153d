package export

import (
	"fmt"
	"time"

	"github.com/KaramelBytes/echantillon-cli/internal/sampling"
	"github.com/KaramelBytes/echantillon-cli/internal/table"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Manifest records how a sample was produced so it can be reproduced.
type Manifest struct {
	RunID      string                `yaml:"run_id"`
	CreatedAt  time.Time             `yaml:"created_at"`
	Source     SourceInfo            `yaml:"source"`
	Method     sampling.Method       `yaml:"method"`
	Parameters map[string]string     `yaml:"parameters"`
	Seed       uint64                `yaml:"seed"`
	SampleRows int                   `yaml:"sample_rows"`
	Groups     []sampling.GroupCount `yaml:"groups,omitempty"`
	Warnings   []string              `yaml:"warnings,omitempty"`
	Output     string                `yaml:"output,omitempty"`
}

// SourceInfo describes the dataset a sample was drawn from.
type SourceInfo struct {
	Name    string   `yaml:"name"`
	Rows    int      `yaml:"rows"`
	Columns []string `yaml:"columns"`
}

// NewManifest describes res, drawn from src with the given seed.
func NewManifest(src *table.Table, res *sampling.Result, seed uint64, output string, at time.Time) *Manifest {
	params := make(map[string]string)
	for _, kv := range sampling.Describe(res.Request) {
		params[kv[0]] = kv[1]
	}
	return &Manifest{
		RunID:      uuid.NewString(),
		CreatedAt:  at.UTC(),
		Source:     SourceInfo{Name: src.Name(), Rows: src.Len(), Columns: src.Columns()},
		Method:     res.Request.Method(),
		Parameters: params,
		Seed:       seed,
		SampleRows: res.Sample.Len(),
		Groups:     res.Groups,
		Warnings:   res.Warnings,
		Output:     output,
	}
}

// YAML renders the manifest.
func (m *Manifest) YAML() ([]byte, error) {
	b, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return b, nil
}

// ManifestName returns the manifest file name stored next to an export.
func ManifestName(exportName string) string { return exportName + ".manifest.yaml" }
