package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"LoadCast/internal/domain/models"
)

type predictRequest struct {
	Instances models.Batch `json:"instances"`
}

type predictResponse struct {
	Predictions []json.RawMessage `json:"predictions"`
	Error       string            `json:"error,omitempty"`
}

type modelStatusResponse struct {
	ModelVersionStatus []struct {
		Version string `json:"version"`
		State   string `json:"state"`
	} `json:"model_version_status"`
}

// RemoteModel calls a TensorFlow-Serving compatible REST endpoint.
type RemoteModel struct {
	base    *HTTPServiceBase
	model   string
	version string
}

// Name identifies the served model and the version reported when it was loaded.
func (m *RemoteModel) Name() string {
	return fmt.Sprintf("%s@%s", m.model, m.version)
}

// Infer posts the batch as instances and expects one prediction per instance.
func (m *RemoteModel) Infer(ctx context.Context, batch models.Batch) ([]float64, error) {
	var resp predictResponse
	path := "/v1/models/" + url.PathEscape(m.model) + ":predict"
	if err := m.base.PostJSON(ctx, path, predictRequest{Instances: batch}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("model server: %s", resp.Error)
	}
	if len(resp.Predictions) != len(batch) {
		return nil, fmt.Errorf("model server returned %d predictions for %d instances", len(resp.Predictions), len(batch))
	}
	out := make([]float64, len(resp.Predictions))
	for i, raw := range resp.Predictions {
		v, err := scalar(raw)
		if err != nil {
			return nil, fmt.Errorf("prediction %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// scalar accepts y, [y] or [[y]].
func scalar(raw json.RawMessage) (float64, error) {
	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		return v, nil
	}
	var xs []json.RawMessage
	if err := json.Unmarshal(raw, &xs); err != nil {
		return 0, fmt.Errorf("decode %s: %w", string(raw), err)
	}
	if len(xs) != 1 {
		return 0, fmt.Errorf("expected a single output, got %d", len(xs))
	}
	return scalar(xs[0])
}

// fetchRemoteModel asks the server for the model status and returns a handle
// bound to an available version.
func fetchRemoteModel(ctx context.Context, base *HTTPServiceBase, name string) (*RemoteModel, error) {
	var st modelStatusResponse
	if err := base.GetJSON(ctx, "/v1/models/"+url.PathEscape(name), &st); err != nil {
		return nil, err
	}
	for _, v := range st.ModelVersionStatus {
		if v.State == "AVAILABLE" {
			return &RemoteModel{base: base, model: name, version: v.Version}, nil
		}
	}
	return nil, fmt.Errorf("model %q has no available version", name)
}
