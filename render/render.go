package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/TFMV/graphpad/graph"
	"github.com/TFMV/graphpad/models"
)

// OutputOptions defines rendering configuration options
type OutputOptions struct {
	Format     string  // Output format (svg, ascii, json, dot)
	Width      float64 // Width of the output
	Height     float64 // Height of the output
	Background string  // Background color
	Timestamp  bool    // Include timestamp in visualization
	EdgeWidth  float64 // Default edge width
	FontSize   float64 // Font size for labels
	ShowLabels bool    // Show node labels
	Quality    string  // Rendering quality (low, medium, high)

	// DragLine, when set, is drawn as the temporary line of an edge drag.
	DragLine *DragLine
}

// DragLine is the rubber-band line from a drag source to the pointer.
type DragLine struct {
	From graph.Position
	To   graph.Position
}

// Renderer interface defines methods that all rendering backends must implement
type Renderer interface {
	// Render creates a visualization of the graph using the provided options
	Render(graph *models.Graph, options *OutputOptions) ([]byte, error)

	// Name returns the name of the renderer
	Name() string

	// ContentType is the MIME type of the rendered output
	ContentType() string
}

// NewDefaultOptions creates a default set of output options
func NewDefaultOptions(format string) *OutputOptions {
	return &OutputOptions{
		Format:     format,
		Width:      800,
		Height:     600,
		Background: "#ffffff",
		Timestamp:  true,
		EdgeWidth:  1.0,
		FontSize:   10.0,
		ShowLabels: false,
		Quality:    "medium",
	}
}

// GetRenderer returns the appropriate renderer based on format
func GetRenderer(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "svg", "":
		return &SVGRenderer{}, nil
	case "ascii":
		return &ASCIIRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "dot":
		return &DOTRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// Generate renders g in the given format with default options sized to g.
func Generate(g *models.Graph, format string) ([]byte, error) {
	options := NewDefaultOptions(format)
	if g.Width > 0 {
		options.Width = g.Width
	}
	if g.Height > 0 {
		options.Height = g.Height
	}
	return GenerateWithOptions(g, options)
}

// GenerateWithOptions renders g with specific output options
func GenerateWithOptions(g *models.Graph, options *OutputOptions) ([]byte, error) {
	renderer, err := GetRenderer(options.Format)
	if err != nil {
		return nil, err
	}
	return renderer.Render(g, options)
}

// SVGRenderer outputs SVG format
type SVGRenderer struct{}

// Name returns the name of the renderer
func (r *SVGRenderer) Name() string {
	return "SVG Renderer"
}

// ContentType returns the MIME type of SVG output
func (r *SVGRenderer) ContentType() string {
	return "image/svg+xml"
}

// Render creates an SVG representation of the graph
func (r *SVGRenderer) Render(g *models.Graph, options *OutputOptions) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<svg width="%g" height="%g" viewBox="0 0 %g %g" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="%s"/>
`, options.Width, options.Height, options.Width, options.Height, html.EscapeString(options.Background))

	if options.Quality == "high" {
		fmt.Fprintf(&buf, `<rect x="0" y="0" width="%g" height="%g" fill="none" stroke="#e0e0e0" stroke-width="1"/>
`, options.Width, options.Height)
	}

	// Edges first so nodes sit on top
	for _, edge := range g.Edges {
		source, target, ok := g.Endpoints(edge)
		if !ok {
			continue
		}
		fmt.Fprintf(&buf, `<line class="link" x1="%g" y1="%g" x2="%g" y2="%g" stroke="%s" stroke-width="%g"/>
`, source.X, source.Y, target.X, target.Y, models.EdgeColor, options.EdgeWidth)
	}

	if dl := options.DragLine; dl != nil {
		fmt.Fprintf(&buf, `<line class="drag-line" x1="%g" y1="%g" x2="%g" y2="%g" stroke="%s" stroke-width="%g" stroke-dasharray="4,2"/>
`, dl.From.X, dl.From.Y, dl.To.X, dl.To.Y, models.ActiveNodeColor, options.EdgeWidth)
	}

	for _, node := range g.Nodes {
		radius := node.Size
		if radius <= 0 {
			radius = models.NodeRadius
		}
		color := node.Color
		if color == "" {
			color = models.DefaultNodeColor
		}

		if options.Quality == "high" {
			fmt.Fprintf(&buf, `<circle cx="%g" cy="%g" r="%g" fill="rgba(0,0,0,0.1)" transform="translate(2,2)"/>
`, node.X, node.Y, radius)
		}
		fmt.Fprintf(&buf, `<circle class="node" id="%s" cx="%g" cy="%g" r="%g" fill="%s" data-degree="%d"/>
`, html.EscapeString(node.ID), node.X, node.Y, radius, color, node.Degree)

		if options.ShowLabels && node.Label != "" {
			fmt.Fprintf(&buf, `<text x="%g" y="%g" font-family="sans-serif" font-size="%g" fill="#333333" text-anchor="middle">%s</text>
`, node.X, node.Y+radius+options.FontSize+2, options.FontSize, html.EscapeString(node.Label))
		}
	}

	if options.Timestamp {
		fmt.Fprintf(&buf, `<text x="5" y="%g" font-family="sans-serif" font-size="8" fill="#808080">%s</text>
`, options.Height-5, time.Now().Format("2006-01-02 15:04:05"))
	}

	if options.Quality == "high" {
		fmt.Fprintf(&buf, `<text x="5" y="15" font-family="sans-serif" font-size="10" fill="#808080">Nodes: %d | Edges: %d</text>
`, len(g.Nodes), len(g.Edges))
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

// ASCIIRenderer outputs ASCII art format
type ASCIIRenderer struct{}

// Name returns the name of the renderer
func (r *ASCIIRenderer) Name() string {
	return "ASCII Renderer"
}

// ContentType returns the MIME type of ASCII output
func (r *ASCIIRenderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

const (
	nodeSymbol   = 'O'
	activeSymbol = '*'
	edgeSymbol   = '.'
	dragSymbol   = '~'
)

// Render creates an ASCII representation of the graph
func (r *ASCIIRenderer) Render(g *models.Graph, options *OutputOptions) ([]byte, error) {
	width := max(int(options.Width/10), 40)
	height := max(int(options.Height/20), 20)

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	for i := 0; i < width; i++ {
		grid[0][i] = '-'
		grid[height-1][i] = '-'
	}
	for i := 0; i < height; i++ {
		grid[i][0] = '|'
		grid[i][width-1] = '|'
	}
	grid[0][0] = '+'
	grid[0][width-1] = '+'
	grid[height-1][0] = '+'
	grid[height-1][width-1] = '+'

	toCell := func(x, y float64) (int, int) {
		cx := int(x*float64(width-2)/options.Width) + 1
		cy := int(y*float64(height-2)/options.Height) + 1
		return clamp(cx, 1, width-2), clamp(cy, 1, height-2)
	}

	for _, edge := range g.Edges {
		source, target, ok := g.Endpoints(edge)
		if !ok {
			continue
		}
		x1, y1 := toCell(source.X, source.Y)
		x2, y2 := toCell(target.X, target.Y)
		drawLine(grid, x1, y1, x2, y2, edgeSymbol)
	}

	if dl := options.DragLine; dl != nil {
		x1, y1 := toCell(dl.From.X, dl.From.Y)
		x2, y2 := toCell(dl.To.X, dl.To.Y)
		drawLine(grid, x1, y1, x2, y2, dragSymbol)
	}

	for _, node := range g.Nodes {
		x, y := toCell(node.X, node.Y)
		symbol := nodeSymbol
		if node.Active {
			symbol = activeSymbol
		}
		grid[y][x] = symbol

		if options.ShowLabels && node.Label != "" && y+1 < height-1 {
			for i, c := range node.Label {
				if x+i >= width-1 {
					break
				}
				grid[y+1][x+i] = c
			}
		}
	}

	if options.Timestamp && height > 4 {
		timeStr := time.Now().Format("2006-01-02 15:04")
		if len(timeStr) < width-4 {
			for i, c := range timeStr {
				grid[height-2][i+2] = c
			}
		}
	}

	var result strings.Builder
	for _, row := range grid {
		result.WriteString(string(row))
		result.WriteRune('\n')
	}
	return []byte(result.String()), nil
}

// JSONRenderer outputs raw JSON format
type JSONRenderer struct{}

// Name returns the name of the renderer
func (r *JSONRenderer) Name() string {
	return "JSON Renderer"
}

// ContentType returns the MIME type of JSON output
func (r *JSONRenderer) ContentType() string {
	return "application/json"
}

// Render creates a JSON representation of the graph
func (r *JSONRenderer) Render(g *models.Graph, options *OutputOptions) ([]byte, error) {
	type jsonGraph struct {
		Nodes    []models.Node          `json:"nodes"`
		Edges    []models.Edge          `json:"edges"`
		Metadata map[string]interface{} `json:"metadata"`
	}

	data := jsonGraph{
		Nodes: g.Nodes,
		Edges: g.Edges,
		Metadata: map[string]interface{}{
			"name":      g.Name,
			"width":     options.Width,
			"height":    options.Height,
			"nodeCount": len(g.Nodes),
			"edgeCount": len(g.Edges),
		},
	}
	if data.Nodes == nil {
		data.Nodes = []models.Node{}
	}
	if data.Edges == nil {
		data.Edges = []models.Edge{}
	}
	if options.Timestamp {
		data.Metadata["timestamp"] = time.Now().Format(time.RFC3339)
	}

	return json.MarshalIndent(data, "", "  ")
}

// DOTRenderer outputs Graphviz DOT format
type DOTRenderer struct{}

// Name returns the name of the renderer
func (r *DOTRenderer) Name() string {
	return "DOT Renderer"
}

// ContentType returns the MIME type of DOT output
func (r *DOTRenderer) ContentType() string {
	return "text/vnd.graphviz"
}

// Render creates an undirected DOT representation of the graph
func (r *DOTRenderer) Render(g *models.Graph, options *OutputOptions) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  graph [bgcolor=%q, size=\"%g,%g\"];\n",
		options.Background, options.Width/72.0, options.Height/72.0)
	fmt.Fprintf(&buf, "  node [shape=circle, fontname=\"Arial\", fontsize=%g];\n", options.FontSize)

	for _, node := range g.Nodes {
		color := node.Color
		if color == "" {
			color = models.DefaultNodeColor
		}
		fmt.Fprintf(&buf, "  %q [color=%q, degree=%d, pos=\"%g,%g!\"];\n",
			node.ID, color, node.Degree, node.X/100.0, node.Y/100.0)
	}

	for _, edge := range g.Edges {
		fmt.Fprintf(&buf, "  %q -- %q;\n", edge.Source, edge.Target)
	}

	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// Clamp a value between min and max
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// Draw a line on the ASCII grid using Bresenham's algorithm
func drawLine(grid [][]rune, x1, y1, x2, y2 int, symbol rune) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx := 1
	if x1 >= x2 {
		sx = -1
	}
	sy := 1
	if y1 >= y2 {
		sy = -1
	}
	err := dx + dy

	for {
		if y1 >= 0 && y1 < len(grid) && x1 >= 0 && x1 < len(grid[y1]) {
			// Don't overwrite node symbols
			if c := grid[y1][x1]; c != nodeSymbol && c != activeSymbol {
				grid[y1][x1] = symbol
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			err += dx
			y1 += sy
		}
	}
}

// Absolute value of an integer
func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
