package classifier

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
)

// Sample is one (cascade, k) row on the classifier wire format.
type Sample struct {
	ID int64     `json:"id"`
	K  int       `json:"k"`
	X  []float64 `json:"x"`
	Y  []float64 `json:"y,omitempty"`
}

// Classifier is the binary classifier the cascade samples are handed to.
// Predict returns one positive-class score per sample.
type Classifier interface {
	Train(ctx context.Context, samples []Sample) error
	Predict(ctx context.Context, samples []Sample) ([]float64, error)
}

// External runs a trainer binary that reads JSONL samples on stdin:
// `<bin> train --out <model>` and `<bin> infer --model <model>`, the latter
// answering one JSON array per input line.
type External struct {
	BinaryPath string
	ModelPath  string
}

var _ Classifier = External{}

func (e External) Train(ctx context.Context, samples []Sample) error {
	var buf bytes.Buffer
	if err := WriteJSONL(&buf, samples); err != nil { return err }
	cmd := exec.CommandContext(ctx, e.BinaryPath, "train", "--out", e.ModelPath)
	cmd.Stdin = &buf
	out, err := cmd.CombinedOutput()
	if err != nil { return fmt.Errorf("train error: %v: %s", err, string(out)) }
	return nil
}

func (e External) Predict(ctx context.Context, samples []Sample) ([]float64, error) {
	var buf bytes.Buffer
	if err := WriteJSONL(&buf, samples); err != nil { return nil, err }
	cmd := exec.CommandContext(ctx, e.BinaryPath, "infer", "--model", e.ModelPath)
	cmd.Stdin = &buf
	out, err := cmd.Output()
	if err != nil { return nil, fmt.Errorf("infer error: %w", err) }
	preds, err := ReadPredictions(bytes.NewReader(out))
	if err != nil { return nil, err }
	if len(preds) != len(samples) {
		return nil, fmt.Errorf("infer returned %d predictions for %d samples", len(preds), len(samples))
	}
	return preds, nil
}

// WriteJSONL encodes samples one per line.
func WriteJSONL(w io.Writer, samples []Sample) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, s := range samples {
		if err := enc.Encode(s); err != nil { return err }
	}
	return bw.Flush()
}

// ReadPredictions parses line-delimited arrays and keeps the first score of each.
func ReadPredictions(r io.Reader) ([]float64, error) {
	scanner := bufio.NewScanner(r)
	var preds []float64
	for scanner.Scan() {
		if len(bytes.TrimSpace(scanner.Bytes())) == 0 { continue }
		var arr []float64
		if err := json.Unmarshal(scanner.Bytes(), &arr); err != nil { return nil, err }
		if len(arr) == 0 { return nil, fmt.Errorf("empty prediction on line %d", len(preds)+1) }
		preds = append(preds, arr[0])
	}
	return preds, scanner.Err()
}
