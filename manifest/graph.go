package manifest

import (
	"strings"

	"github.com/emicklei/dot"
)

// NodeKind discriminates the two DependencyNode variants: a child
// instance or an environment.
type NodeKind int

const (
	NodeChild NodeKind = iota
	NodeEnvironment
)

// DependencyNode is a node in the strong-dependency graph: either a
// child or an environment, identified by name.
type DependencyNode struct {
	Kind NodeKind
	Name string
}

func (n DependencyNode) String() string {
	if n.Kind == NodeEnvironment {
		return "environment " + n.Name
	}
	return "child " + n.Name
}

// dependencyGraph is the DAG builder behind cycle detection: a
// post-order DFS returns cycles as ordered node lists.
// Grounded on AIStore's xact/xreg registry for the map-of-slices
// adjacency shape, generalized from xaction bookkeeping to graph
// edges.
type dependencyGraph struct {
	nodes map[DependencyNode]bool
	edges map[DependencyNode][]DependencyNode
	order []DependencyNode
}

func newDependencyGraph() *dependencyGraph {
	return &dependencyGraph{
		nodes: make(map[DependencyNode]bool),
		edges: make(map[DependencyNode][]DependencyNode),
	}
}

func (g *dependencyGraph) addNode(n DependencyNode) {
	if !g.nodes[n] {
		g.nodes[n] = true
		g.order = append(g.order, n)
	}
}

// addEdge records a dependency edge; self-edges are silently dropped
// here because they're reported as the distinct OfferTargetEqualsSource
// error instead of a graph cycle.
func (g *dependencyGraph) addEdge(from, to DependencyNode) {
	if from == to {
		return
	}
	g.addNode(from)
	g.addNode(to)
	for _, existing := range g.edges[from] {
		if existing == to {
			return
		}
	}
	g.edges[from] = append(g.edges[from], to)
}

type color int

const (
	white color = iota
	gray
	black
)

// findCycles runs a DFS from every unvisited node in insertion order,
// reporting each back-edge to a still-open ancestor as one cycle
// (ancestor ... current, ancestor again).
func (g *dependencyGraph) findCycles() [][]DependencyNode {
	colors := make(map[DependencyNode]color, len(g.nodes))
	var stack []DependencyNode
	var cycles [][]DependencyNode

	var visit func(n DependencyNode)
	visit = func(n DependencyNode) {
		colors[n] = gray
		stack = append(stack, n)
		for _, next := range g.edges[n] {
			switch colors[next] {
			case white:
				visit(next)
			case gray:
				idx := -1
				for i, s := range stack {
					if s == next {
						idx = i
						break
					}
				}
				if idx >= 0 {
					cycle := make([]DependencyNode, 0, len(stack)-idx+1)
					cycle = append(cycle, stack[idx:]...)
					cycle = append(cycle, next)
					cycles = append(cycles, cycle)
				}
			case black:
				// fully explored elsewhere, no new cycle through here
			}
		}
		stack = stack[:len(stack)-1]
		colors[n] = black
	}

	for _, n := range g.order {
		if colors[n] == white {
			visit(n)
		}
	}
	return cycles
}

// cycleErrors converts every detected cycle into a DependencyCycle
// error, its text carrying a small Graphviz DOT rendering of just that
// cycle's edges (emicklei/dot) so the message names every node on it.
func (g *dependencyGraph) cycleErrors() ErrorList {
	var errs ErrorList
	for _, cycle := range g.findCycles() {
		errs.add(errDependencyCycle(renderCycleDOT(cycle)))
	}
	return errs
}

func renderCycleDOT(cycle []DependencyNode) string {
	graph := dot.NewGraph(dot.Directed)
	nodes := make(map[DependencyNode]dot.Node, len(cycle))
	for _, n := range cycle {
		if _, ok := nodes[n]; !ok {
			nodes[n] = graph.Node(n.String())
		}
	}
	for i := 0; i+1 < len(cycle); i++ {
		nodes[cycle[i]].Edge(nodes[cycle[i+1]])
	}
	return strings.TrimSpace(graph.String())
}

// RenderDOT renders the entire graph for diagnostics, independent of
// whether it contains a cycle.
func (g *dependencyGraph) RenderDOT() string {
	graph := dot.NewGraph(dot.Directed)
	nodes := make(map[DependencyNode]dot.Node, len(g.order))
	for _, n := range g.order {
		nodes[n] = graph.Node(n.String())
	}
	for _, from := range g.order {
		for _, to := range g.edges[from] {
			nodes[from].Edge(nodes[to])
		}
	}
	return graph.String()
}
