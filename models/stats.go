package models

import (
	"github.com/TFMV/graphpad/analytics"
)

// HistogramBucket is one bar of the degree histogram.
type HistogramBucket struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Count int     `json:"count"`
}

// Stats is the statistics panel as served to clients.
type Stats struct {
	Nodes               int               `json:"nodes"`
	Edges               int               `json:"edges"`
	AverageDegree       float64           `json:"averageDegree"`
	ConnectedComponents int               `json:"connectedComponents"`
	Density             float64           `json:"density"`
	Histogram           []HistogramBucket `json:"histogram"`
	Empty               bool              `json:"empty"`
	Summary             string            `json:"summary"`
}

// NewStats converts an analytics summary.
func NewStats(s analytics.Summary) Stats {
	hist := make([]HistogramBucket, len(s.Histogram))
	for i, b := range s.Histogram {
		hist[i] = HistogramBucket{Start: b.Start, End: b.End, Count: b.Count}
	}
	return Stats{
		Nodes:               s.Nodes,
		Edges:               s.Edges,
		AverageDegree:       s.AverageDegree,
		ConnectedComponents: s.ConnectedComponents,
		Density:             s.Density,
		Histogram:           hist,
		Empty:               s.Empty,
		Summary:             s.String(),
	}
}
