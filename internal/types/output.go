package types

import "time"

// LayerRecord describes the filesystem snapshot produced by one build step.
// Digest is derived from Parent and the step content, so a record is a pure
// function of the previous layer and the step's action.
type LayerRecord struct {
	Index   int       `yaml:"index"`
	Step    BuildStep `yaml:"step"`
	Parent  string    `yaml:"parent,omitempty"`
	Digest  string    `yaml:"digest"`
	Summary string    `yaml:"summary"`
}

type BuildReport struct {
	CreatedAt time.Time     `yaml:"created_at"`
	Layers    []LayerRecord `yaml:"layers"`
}

// Last returns the most recent layer, or the zero record for an empty report.
func (r BuildReport) Last() LayerRecord {
	if len(r.Layers) == 0 {
		return LayerRecord{}
	}
	return r.Layers[len(r.Layers)-1]
}

// TreeSummary describes a materialized source tree.
type TreeSummary struct {
	Files   int
	Skipped int
	Digest  string
}
