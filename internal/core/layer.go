package core

import (
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/opencontainers/go-digest"

	"chatbot-bootstrap/internal/types"
)

// NextLayer derives the record for step from the previous layer. The
// digest covers the parent digest, the step name and content, so equal
// inputs always produce equal layers.
func NextLayer(prev types.LayerRecord, step types.BuildStep, content []byte, summary string) types.LayerRecord {
	digester := digest.Canonical.Digester()
	hash := digester.Hash()
	hash.Write([]byte(prev.Digest))
	hash.Write([]byte{0})
	hash.Write([]byte(step))
	hash.Write([]byte{0})
	hash.Write(content)
	return types.LayerRecord{
		Index:   prev.Index + 1,
		Step:    step,
		Parent:  prev.Digest,
		Digest:  digester.Digest().String(),
		Summary: summary,
	}
}

// AppendLayer adds the next layer to report and returns it.
func AppendLayer(report *types.BuildReport, step types.BuildStep, content []byte, summary string) types.LayerRecord {
	layer := NextLayer(report.Last(), step, content, summary)
	report.Layers = append(report.Layers, layer)
	return layer
}

// VerifyLayerChain checks that report lists the build steps in order with
// consecutive indices and each parent pointing at the previous digest.
func VerifyLayerChain(report types.BuildReport) error {
	steps := types.BuildSteps()
	if len(report.Layers) > len(steps) {
		return invalidReport(fmt.Sprintf("report has %d layers, expected at most %d", len(report.Layers), len(steps)))
	}
	prev := types.LayerRecord{}
	for i, layer := range report.Layers {
		if layer.Index != i+1 {
			return invalidReport(fmt.Sprintf("layer %d has index %d", i+1, layer.Index))
		}
		if layer.Step != steps[i] {
			return invalidReport(fmt.Sprintf("layer %d is step %q, expected %q", layer.Index, layer.Step, steps[i]))
		}
		if layer.Parent != prev.Digest {
			return invalidReport(fmt.Sprintf("layer %d parent %s does not match %s", layer.Index, layer.Parent, prev.Digest))
		}
		if _, err := digest.Parse(layer.Digest); err != nil {
			return invalidReport(fmt.Sprintf("layer %d has malformed digest %q", layer.Index, layer.Digest))
		}
		prev = layer
	}
	return nil
}

func invalidReport(msg string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("invalid build report: " + msg)
}
