package inference

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

const (
	LayerLSTM  = "lstm"
	LayerDense = "dense"
)

// LayerSpec holds the weights of one layer exported from a Keras model.
// LSTM kernels are (in, 4*units) and recurrent kernels (units, 4*units) with
// gates ordered input, forget, cell, output. Dense kernels are (in, units).
type LayerSpec struct {
	Type            string      `json:"type"`
	Units           int         `json:"units"`
	Activation      string      `json:"activation,omitempty"`
	ReturnSequences bool        `json:"return_sequences,omitempty"`
	Kernel          [][]float64 `json:"kernel"`
	RecurrentKernel [][]float64 `json:"recurrent_kernel,omitempty"`
	Bias            []float64   `json:"bias"`
}

// Artifact is the JSON model file read by the native backend.
type Artifact struct {
	Name       string      `json:"name"`
	Version    string      `json:"version,omitempty"`
	InputSteps int         `json:"input_steps"`
	Features   int         `json:"features"`
	Layers     []LayerSpec `json:"layers"`
}

// ErrInvalidArtifact wraps every structural problem found by Validate.
var ErrInvalidArtifact = errors.New("invalid model artifact")

// ReadArtifact loads and validates an artifact file. The raw bytes are
// returned as well so callers can derive a content identity.
func ReadArtifact(path string) (*Artifact, []byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read model artifact: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, nil, fmt.Errorf("decode model artifact %s: %w", path, err)
	}
	if err := a.Validate(); err != nil {
		return nil, nil, err
	}
	return &a, raw, nil
}

// Validate checks that layer shapes chain from (InputSteps, Features) down to one output.
func (a *Artifact) Validate() error {
	if a.InputSteps <= 0 || a.Features <= 0 {
		return fmt.Errorf("%w: input shape (%d, %d)", ErrInvalidArtifact, a.InputSteps, a.Features)
	}
	if len(a.Layers) == 0 {
		return fmt.Errorf("%w: no layers", ErrInvalidArtifact)
	}

	width, sequence := a.Features, true
	for i, l := range a.Layers {
		if l.Units <= 0 {
			return fmt.Errorf("%w: layer %d has %d units", ErrInvalidArtifact, i, l.Units)
		}
		switch l.Type {
		case LayerLSTM:
			if !sequence {
				return fmt.Errorf("%w: lstm layer %d follows a layer without return_sequences", ErrInvalidArtifact, i)
			}
			if err := checkMatrix(l.Kernel, width, 4*l.Units); err != nil {
				return fmt.Errorf("%w: layer %d kernel: %v", ErrInvalidArtifact, i, err)
			}
			if err := checkMatrix(l.RecurrentKernel, l.Units, 4*l.Units); err != nil {
				return fmt.Errorf("%w: layer %d recurrent kernel: %v", ErrInvalidArtifact, i, err)
			}
			if len(l.Bias) != 4*l.Units {
				return fmt.Errorf("%w: layer %d bias has %d values, want %d", ErrInvalidArtifact, i, len(l.Bias), 4*l.Units)
			}
			sequence = l.ReturnSequences
		case LayerDense:
			if sequence {
				return fmt.Errorf("%w: dense layer %d receives a sequence", ErrInvalidArtifact, i)
			}
			if _, ok := activations[l.Activation]; !ok {
				return fmt.Errorf("%w: layer %d activation %q", ErrInvalidArtifact, i, l.Activation)
			}
			if err := checkMatrix(l.Kernel, width, l.Units); err != nil {
				return fmt.Errorf("%w: layer %d kernel: %v", ErrInvalidArtifact, i, err)
			}
			if len(l.Bias) != l.Units {
				return fmt.Errorf("%w: layer %d bias has %d values, want %d", ErrInvalidArtifact, i, len(l.Bias), l.Units)
			}
		default:
			return fmt.Errorf("%w: layer %d has unknown type %q", ErrInvalidArtifact, i, l.Type)
		}
		width = l.Units
	}
	if sequence || width != 1 {
		return fmt.Errorf("%w: network must end in a single output", ErrInvalidArtifact)
	}
	return nil
}

func checkMatrix(m [][]float64, rows, cols int) error {
	if len(m) != rows {
		return fmt.Errorf("%d rows, want %d", len(m), rows)
	}
	for r, row := range m {
		if len(row) != cols {
			return fmt.Errorf("row %d has %d columns, want %d", r, len(row), cols)
		}
	}
	return nil
}
