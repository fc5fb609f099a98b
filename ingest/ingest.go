// Package ingest reads initial graph snapshots from JSON or YAML documents of
// the form {nodes: [...], edges: [[source, target], ...], nodeDegrees: {...}}.
package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/TFMV/graphpad/graph"
)

// ErrUnsupportedFormat is returned for file extensions no processor handles.
var ErrUnsupportedFormat = errors.New("ingest: unsupported file format")

// DataProcessor defines the interface that all data processors must implement
type DataProcessor interface {
	// ProcessData takes raw data bytes and returns a graph snapshot
	ProcessData(data []byte) (graph.Snapshot, error)

	// GetName returns the name of the processor
	GetName() string
}

// nodeID accepts both string and numeric ids; numbers are kept in their
// textual form.
type nodeID string

func (id *nodeID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = nodeID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("node id must be a string or number, got %s", data)
	}
	*id = nodeID(n.String())
	return nil
}

func (id *nodeID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: node id must be a scalar", value.Line)
	}
	*id = nodeID(value.Value)
	return nil
}

// document is the wire shape shared by both formats.
type document struct {
	Nodes       []nodeID         `json:"nodes" yaml:"nodes"`
	Edges       [][]nodeID       `json:"edges" yaml:"edges"`
	NodeDegrees map[string]int   `json:"nodeDegrees" yaml:"nodeDegrees"`
	Positions   map[string]point `json:"positions,omitempty" yaml:"positions,omitempty"`
}

type point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func (d *document) snapshot() (graph.Snapshot, error) {
	snap := graph.Snapshot{
		Nodes:       make([]string, 0, len(d.Nodes)),
		Edges:       make([][2]string, 0, len(d.Edges)),
		NodeDegrees: d.NodeDegrees,
	}
	for _, id := range d.Nodes {
		snap.Nodes = append(snap.Nodes, string(id))
	}
	for i, pair := range d.Edges {
		if len(pair) != 2 {
			return graph.Snapshot{}, fmt.Errorf("%w: edge %d has %d endpoints, want 2", graph.ErrMalformedLoad, i, len(pair))
		}
		snap.Edges = append(snap.Edges, [2]string{string(pair[0]), string(pair[1])})
	}
	if len(d.Positions) > 0 {
		snap.Positions = make(map[string]graph.Position, len(d.Positions))
		for id, p := range d.Positions {
			snap.Positions[id] = graph.Position{X: p.X, Y: p.Y}
		}
	}
	return snap, nil
}

// JSONProcessor handles JSON data
type JSONProcessor struct{}

// NewJSONProcessor creates a new JSON processor
func NewJSONProcessor() *JSONProcessor {
	return &JSONProcessor{}
}

// GetName returns the name of the processor
func (p *JSONProcessor) GetName() string {
	return "JSON Processor"
}

// ProcessData processes JSON data
func (p *JSONProcessor) ProcessData(data []byte) (graph.Snapshot, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return graph.Snapshot{}, fmt.Errorf("%w: error parsing JSON: %v", graph.ErrMalformedLoad, err)
	}
	return doc.snapshot()
}

// YAMLProcessor handles YAML data
type YAMLProcessor struct{}

// NewYAMLProcessor creates a new YAML processor
func NewYAMLProcessor() *YAMLProcessor {
	return &YAMLProcessor{}
}

// GetName returns the name of the processor
func (p *YAMLProcessor) GetName() string {
	return "YAML Processor"
}

// ProcessData processes YAML data
func (p *YAMLProcessor) ProcessData(data []byte) (graph.Snapshot, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return graph.Snapshot{}, fmt.Errorf("%w: error parsing YAML: %v", graph.ErrMalformedLoad, err)
	}
	return doc.snapshot()
}

// ProcessorFor picks a processor by file extension.
func ProcessorFor(filename string) (DataProcessor, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".json":
		return NewJSONProcessor(), nil
	case ".yaml", ".yml":
		return NewYAMLProcessor(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// ProcessFile reads a file and returns its snapshot.
func ProcessFile(filename string) (graph.Snapshot, error) {
	processor, err := ProcessorFor(filename)
	if err != nil {
		return graph.Snapshot{}, err
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return graph.Snapshot{}, fmt.Errorf("failed to read file: %w", err)
	}

	return processor.ProcessData(data)
}

// LoadFile reads a file and builds a store from it. Any failure leaves the
// caller without a store; there is no partial load.
func LoadFile(filename string, opts ...graph.Option) (*graph.Store, error) {
	snap, err := ProcessFile(filename)
	if err != nil {
		return nil, err
	}
	store, err := graph.Load(snap, opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(filename), err)
	}
	return store, nil
}
