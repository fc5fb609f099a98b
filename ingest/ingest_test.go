package ingest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/graphpad/graph"
	"github.com/TFMV/graphpad/ingest"
)

func TestJSONProcessor(t *testing.T) {
	snap, err := ingest.NewJSONProcessor().ProcessData([]byte(`{
		"nodes": ["a", 2, 3.5],
		"edges": [["a", 2], [2, "3.5"]],
		"nodeDegrees": {"a": 1, "2": 2, "3.5": 1},
		"positions": {"a": {"x": 10, "y": 20}}
	}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "2", "3.5"}, snap.Nodes)
	assert.Equal(t, [][2]string{{"a", "2"}, {"2", "3.5"}}, snap.Edges)
	assert.Equal(t, map[string]int{"a": 1, "2": 2, "3.5": 1}, snap.NodeDegrees)
	assert.Equal(t, graph.Position{X: 10, Y: 20}, snap.Positions["a"])
}

func TestYAMLProcessor(t *testing.T) {
	snap, err := ingest.NewYAMLProcessor().ProcessData([]byte(`
nodes: [a, 7]
edges:
  - [a, 7]
nodeDegrees: {a: 1, "7": 1}
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "7"}, snap.Nodes)
	assert.Equal(t, [][2]string{{"a", "7"}}, snap.Edges)
	assert.Equal(t, 1, snap.NodeDegrees["7"])
}

func TestProcessDataMalformed(t *testing.T) {
	tests := []struct {
		name      string
		processor ingest.DataProcessor
		data      string
	}{
		{name: "json syntax", processor: ingest.NewJSONProcessor(), data: `{"nodes": [`},
		{name: "json edge arity", processor: ingest.NewJSONProcessor(), data: `{"nodes": ["a","b"], "edges": [["a"]]}`},
		{name: "json edge too long", processor: ingest.NewJSONProcessor(), data: `{"nodes": ["a","b"], "edges": [["a","b","a"]]}`},
		{name: "json object id", processor: ingest.NewJSONProcessor(), data: `{"nodes": [{"id": "a"}]}`},
		{name: "yaml syntax", processor: ingest.NewYAMLProcessor(), data: "nodes: [a\n"},
		{name: "yaml mapping id", processor: ingest.NewYAMLProcessor(), data: "nodes:\n  - {id: a}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.processor.ProcessData([]byte(tt.data))
			require.ErrorIs(t, err, graph.ErrMalformedLoad)
		})
	}
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		file  string
		nodes int
		edges int
	}{
		{file: "testdata/path.json", nodes: 4, edges: 3},
		{file: "testdata/triangle.yaml", nodes: 3, edges: 3},
	}
	for _, tt := range tests {
		t.Run(filepath.Base(tt.file), func(t *testing.T) {
			store, err := ingest.LoadFile(tt.file)
			require.NoError(t, err)
			assert.Equal(t, tt.nodes, store.NodeCount())
			assert.Equal(t, tt.edges, store.EdgeCount())
			assert.Empty(t, store.VerifyDegrees())
		})
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ingest.LoadFile(filepath.Join(dir, "graph.csv"))
	assert.ErrorIs(t, err, ingest.ErrUnsupportedFormat)

	_, err = ingest.LoadFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	dangling := filepath.Join(dir, "dangling.json")
	require.NoError(t, os.WriteFile(dangling, []byte(`{"nodes": ["a"], "edges": [["a", "b"]]}`), 0o644))
	store, err := ingest.LoadFile(dangling)
	assert.ErrorIs(t, err, graph.ErrMalformedLoad)
	assert.Nil(t, store)
}

func TestProcessorFor(t *testing.T) {
	p, err := ingest.ProcessorFor("GRAPH.YML")
	require.NoError(t, err)
	assert.Equal(t, "YAML Processor", p.GetName())

	p, err = ingest.ProcessorFor("g.json")
	require.NoError(t, err)
	assert.Equal(t, "JSON Processor", p.GetName())
}
