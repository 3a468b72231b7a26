package dataset

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Dataset names used throughout the pipeline.
const (
	NameSeries  = "series"
	NameSummary = "summary"
	NameTech    = "tech"
)

// Manifest maps the three logical datasets to files within a source.
type Manifest struct {
	Datasets map[string]FileSpec `yaml:"datasets"`
}

// FileSpec locates and describes one dataset file.
type FileSpec struct {
	Path      string `yaml:"path"`
	Format    string `yaml:"format"`    // csv or xlsx, default csv
	Delimiter string `yaml:"delimiter"` // single character, default ","
	Sheet     string `yaml:"sheet"`     // xlsx only, default first sheet
}

// DefaultManifest returns the conventional file layout: the three CSVs as
// published by the upstream processing job.
func DefaultManifest() Manifest {
	return Manifest{
		Datasets: map[string]FileSpec{
			NameSeries:  {Path: "clean_supply_demand.csv", Format: "csv"},
			NameSummary: {Path: "supply_demand_summary.csv", Format: "csv"},
			NameTech:    {Path: "tech_demand.csv", Format: "csv"},
		},
	}
}

// LoadManifest reads a manifest from a YAML file. Datasets omitted from the
// file keep their defaults, so a manifest only needs to name what differs.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, eris.Wrapf(err, "dataset: read manifest %s", path)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, eris.Wrapf(err, "dataset: parse manifest %s", path)
	}

	def := DefaultManifest()
	if m.Datasets == nil {
		m.Datasets = def.Datasets
		return m, nil
	}
	for name, spec := range def.Datasets {
		got, ok := m.Datasets[name]
		if !ok {
			m.Datasets[name] = spec
			continue
		}
		if got.Path == "" {
			got.Path = spec.Path
		}
		if got.Format == "" {
			got.Format = "csv"
		}
		m.Datasets[name] = got
	}

	return m, nil
}

// Spec returns the file spec for a logical dataset name with defaults applied.
func (m Manifest) Spec(name string) (FileSpec, error) {
	spec, ok := m.Datasets[name]
	if !ok {
		return FileSpec{}, eris.Errorf("dataset: no manifest entry for %q", name)
	}
	if spec.Format == "" {
		spec.Format = "csv"
	}
	return spec, nil
}
