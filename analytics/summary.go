package analytics

import (
	"fmt"
)

// Summary bundles the answers to one statistics request.
type Summary struct {
	Nodes               int      `json:"nodes"`
	Edges               int      `json:"edges"`
	AverageDegree       float64  `json:"averageDegree"`
	ConnectedComponents int      `json:"connectedComponents"`
	Density             float64  `json:"density"`
	Histogram           []Bucket `json:"histogram"`
	Empty               bool     `json:"empty"`
}

// Summarize runs every query once. bucketCount is passed to DegreeHistogram.
func (e *Engine) Summarize(bucketCount int) (Summary, error) {
	hist, err := e.DegreeHistogram(bucketCount)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Nodes:               e.store.NodeCount(),
		Edges:               e.store.EdgeCount(),
		AverageDegree:       e.AverageDegree(),
		ConnectedComponents: e.ConnectedComponents(),
		Density:             e.GraphDensity(),
		Histogram:           hist,
		Empty:               e.store.NodeCount() == 0,
	}, nil
}

// Err returns ErrEmptyGraph for a summary of an empty graph, nil otherwise.
func (s Summary) Err() error {
	if s.Empty {
		return ErrEmptyGraph
	}
	return nil
}

// String formats the summary the way the statistics panel shows it.
func (s Summary) String() string {
	return fmt.Sprintf("average degree %.2f, components %d, density %.4f",
		s.AverageDegree, s.ConnectedComponents, s.Density)
}
