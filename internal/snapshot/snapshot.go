// Package snapshot loads context snapshot seed files.
package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ashureev/campus-assistant/internal/domain"
)

// Load reads a snapshot from a YAML file. JSON files parse as well since YAML
// is a superset of JSON.
func Load(path string) (*domain.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a snapshot document. Unknown fields are rejected so that typos
// in seed files surface at startup. An empty document is an empty snapshot.
func Parse(data []byte) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&snap); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}
