// Package connectivity derives the room-connectivity graph of a solved
// layout. Nodes are placed rooms, edges are door connections. The graph can
// be exported as Graphviz DOT or rendered to SVG in process via
// [github.com/goccy/go-graphviz].
//
// This is the topology view of a layout (which rooms open into which), not a
// floor-plan drawing.
package connectivity

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/planwright/blockplan/pkg/layout"
	"github.com/planwright/blockplan/pkg/rules"
)

// Node is a placed room in the connectivity graph.
type Node struct {
	ID       string         `json:"id"`
	Type     rules.RoomType `json:"type"`
	Category rules.Category `json:"category,omitempty"`
}

// Edge is a door connection between two rooms. From/To are room instance ids;
// each undirected connection appears once, ordered From < To.
type Edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Doors int    `json:"doors"` // number of doors joining the pair
}

// Graph is the door-connectivity graph of a solution.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Build derives the connectivity graph from a solved layout.
// The registry supplies category metadata for node styling; it may be nil.
func Build(sol *layout.Solution, reg *rules.Registry) *Graph {
	g := &Graph{}
	if sol == nil {
		return g
	}

	for _, room := range sol.Rooms {
		n := Node{ID: room.ID, Type: room.Type}
		if reg != nil {
			if rec, ok := reg.Lookup(room.Type); ok {
				n.Category = rec.Category
			}
		}
		g.Nodes = append(g.Nodes, n)
	}
	sort.Slice(g.Nodes, func(i, j int) bool { return g.Nodes[i].ID < g.Nodes[j].ID })

	counts := make(map[[2]string]int)
	for _, room := range sol.Rooms {
		for _, door := range room.Doors {
			if door.ConnectsTo == "" {
				continue
			}
			a, b := room.ID, door.ConnectsTo
			if b < a {
				a, b = b, a
			}
			counts[[2]string{a, b}]++
		}
	}
	for pair, n := range counts {
		g.Edges = append(g.Edges, Edge{From: pair[0], To: pair[1], Doors: n})
	}
	sort.Slice(g.Edges, func(i, j int) bool {
		if g.Edges[i].From != g.Edges[j].From {
			return g.Edges[i].From < g.Edges[j].From
		}
		return g.Edges[i].To < g.Edges[j].To
	})

	return g
}

// categoryFill maps room categories to node fill colors.
var categoryFill = map[rules.Category]string{
	rules.CategoryClinical: "lightblue",
	rules.CategoryPublic:   "lightyellow",
	rules.CategoryPrivate:  "lightgrey",
}

// ToDOT converts a connectivity graph to Graphviz DOT format.
// The resulting string can be rendered with [RenderSVG].
func ToDOT(g *Graph) string {
	var buf bytes.Buffer
	buf.WriteString("graph connectivity {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		attrs := []string{fmt.Sprintf("label=%q", n.ID)}
		if fill, ok := categoryFill[n.Category]; ok {
			attrs = append(attrs, fmt.Sprintf("fillcolor=%s", fill))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		if e.Doors > 1 {
			fmt.Fprintf(&buf, "  %q -- %q [label=%q];\n", e.From, e.To, fmt.Sprintf("x%d", e.Doors))
			continue
		}
		fmt.Fprintf(&buf, "  %q -- %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
