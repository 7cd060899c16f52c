package inference

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"

	"LoadCast/internal/domain/models"
)

var activations = map[string]func(float64) float64{
	"":        func(x float64) float64 { return x },
	"linear":  func(x float64) float64 { return x },
	"relu":    func(x float64) float64 { return math.Max(0, x) },
	"sigmoid": sigmoid,
	"tanh":    math.Tanh,
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

// Network evaluates an Artifact in process. It is read-only after construction
// and safe for concurrent use.
type Network struct {
	name     string
	steps    int
	features int
	layers   []LayerSpec
}

// NewNetwork validates a and binds it to a name derived from the artifact bytes.
func NewNetwork(a *Artifact, raw []byte) (*Network, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	sum := sha256.Sum256(raw)
	name := a.Name
	if name == "" {
		name = "lstm"
	}
	if a.Version != "" {
		name += "-" + a.Version
	}
	return &Network{
		name:     fmt.Sprintf("%s@%s", name, hex.EncodeToString(sum[:6])),
		steps:    a.InputSteps,
		features: a.Features,
		layers:   a.Layers,
	}, nil
}

func (n *Network) Name() string { return n.name }

// Infer runs the forward pass for every sample of batch.
func (n *Network) Infer(ctx context.Context, batch models.Batch) ([]float64, error) {
	out := make([]float64, len(batch))
	for i, sample := range batch {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if len(sample) != n.steps {
			return nil, fmt.Errorf("sample %d: %d steps, model expects %d", i, len(sample), n.steps)
		}
		for t, x := range sample {
			if len(x) != n.features {
				return nil, fmt.Errorf("sample %d step %d: %d features, model expects %d", i, t, len(x), n.features)
			}
		}
		out[i] = n.forward(sample)
	}
	return out, nil
}

func (n *Network) forward(seq [][]float64) float64 {
	var vec []float64
	for _, l := range n.layers {
		switch l.Type {
		case LayerLSTM:
			seq = runLSTM(l, seq)
			if !l.ReturnSequences {
				vec = seq[len(seq)-1]
			}
		case LayerDense:
			vec = runDense(l, vec)
		}
	}
	return vec[0]
}

// runLSTM returns the hidden state at every step.
func runLSTM(l LayerSpec, seq [][]float64) [][]float64 {
	u := l.Units
	h := make([]float64, u)
	c := make([]float64, u)
	z := make([]float64, 4*u)
	out := make([][]float64, len(seq))

	for t, x := range seq {
		copy(z, l.Bias)
		for i, xi := range x {
			row := l.Kernel[i]
			for j := range z {
				z[j] += xi * row[j]
			}
		}
		for i, hi := range h {
			row := l.RecurrentKernel[i]
			for j := range z {
				z[j] += hi * row[j]
			}
		}
		next := make([]float64, u)
		for k := 0; k < u; k++ {
			in := sigmoid(z[k])
			forget := sigmoid(z[u+k])
			cand := math.Tanh(z[2*u+k])
			o := sigmoid(z[3*u+k])
			c[k] = forget*c[k] + in*cand
			next[k] = o * math.Tanh(c[k])
		}
		h = next
		out[t] = h
	}
	return out
}

func runDense(l LayerSpec, x []float64) []float64 {
	act := activations[l.Activation]
	out := make([]float64, l.Units)
	for j := range out {
		v := l.Bias[j]
		for i, xi := range x {
			v += xi * l.Kernel[i][j]
		}
		out[j] = act(v)
	}
	return out
}
