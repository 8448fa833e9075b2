package domain

import (
	"iter"
	"maps"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Node is one vertex of the dependency graph.
type Node struct {
	Address      Address
	Dependencies []Address
}

// Graph represents the dependency graph of build entities.
type Graph struct {
	nodes          map[Address]Node
	executionOrder []Address
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[Address]Node),
	}
}

// AddNode adds a node to the graph.
// It returns an error if a node with the same address already exists.
func (g *Graph) AddNode(n Node) error {
	if _, exists := g.nodes[n.Address]; exists {
		return zerr.With(ErrEntityAlreadyExists, "address", n.Address.String())
	}
	g.nodes[n.Address] = n
	return nil
}

// AddEdges appends dependencies to an existing node.
func (g *Graph) AddEdges(from Address, deps ...Address) error {
	n, exists := g.nodes[from]
	if !exists {
		return zerr.With(ErrEntityNotFound, "address", from.String())
	}
	n.Dependencies = SortAddresses(append(n.Dependencies, deps...))
	g.nodes[from] = n
	return nil
}

// Dependencies returns the direct dependencies of a node.
func (g *Graph) Dependencies(addr Address) []Address {
	return slices.Clone(g.nodes[addr].Dependencies)
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Validate checks for cycles and dangling edges using a topological sort.
// It populates the execution order used by Walk. Nodes are visited in address order,
// so the resulting order is deterministic.
func (g *Graph) Validate() error {
	g.executionOrder = make([]Address, 0, len(g.nodes))
	visited := make(map[Address]int) // 0: unvisited, 1: visiting, 2: visited
	var path []Address

	var visit func(u Address) error
	visit = func(u Address) error {
		visited[u] = 1
		path = append(path, u)

		node, exists := g.nodes[u]
		if !exists {
			err := zerr.With(ErrMissingDependency, "dependency", u.String())
			if len(path) > 1 {
				err = zerr.With(err, "required_by", path[len(path)-2].String())
			}
			return err
		}

		for _, dep := range node.Dependencies {
			if visited[dep] == 1 {
				return g.buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		g.executionOrder = append(g.executionOrder, u)
		return nil
	}

	keys := slices.SortedFunc(maps.Keys(g.nodes), Address.Compare)
	for _, addr := range keys {
		if visited[addr] == 0 {
			if err := visit(addr); err != nil {
				return err
			}
		}
	}

	return nil
}

// buildCycleError constructs an error with cycle path metadata.
func (g *Graph) buildCycleError(path []Address, dep Address) error {
	startIdx := slices.Index(path, dep)
	parts := make([]string, 0, len(path)-startIdx+1)
	for _, node := range path[startIdx:] {
		parts = append(parts, node.String())
	}
	parts = append(parts, dep.String())
	return zerr.With(ErrCycleDetected, "cycle", strings.Join(parts, " -> "))
}

// Walk returns an iterator that yields nodes in dependency order.
// It assumes Validate() has been called and returned nil.
func (g *Graph) Walk() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, addr := range g.executionOrder {
			if !yield(g.nodes[addr]) {
				return
			}
		}
	}
}
