package migrator

import (
	"slices"

	"github.com/pkg/errors"
)

// OperationGraph is a directed graph over an operation list. Nodes are the
// indices of the operations; an edge p -> q means the operation at q must run
// after the operation at p, because q introduces a foreign key pointing at
// the model created by p (or, for AddField, because q's table is created by
// p).
//
// The graph is a derived view: it is rebuilt from the operation list whenever
// it is needed and never persisted.
type OperationGraph struct {
	nodes int
	succ  []map[int]struct{}
}

func newOperationGraph(nodes int) *OperationGraph {
	return &OperationGraph{
		nodes: nodes,
		succ:  make([]map[int]struct{}, nodes),
	}
}

// BuildOperationGraph builds the dependency graph for an operation list.
//
// Only CreateModel operations are providers. References with no local
// provider are external to this migration and become cross-migration
// dependencies instead of graph edges; they are skipped here. Self-references
// (a model with a foreign key to its own table) never produce an edge.
func BuildOperationGraph(operations []Operation) *OperationGraph {
	var providers = make(map[string]int, len(operations))
	for i, op := range operations {
		if op.Type == OperationCreateModel {
			providers[op.Model] = i
		}
	}

	var g = newOperationGraph(len(operations))
	for i, op := range operations {
		switch op.Type {
		case OperationCreateModel:
			for _, field := range op.Fields {
				if field.Rel == nil {
					continue
				}
				if p, ok := providers[field.Rel.Model]; ok && p != i {
					g.AddEdge(p, i)
				}
			}

		case OperationAddField:
			// The table the field is added to must exist first.
			if p, ok := providers[op.Model]; ok && p != i {
				g.AddEdge(p, i)
			}
			if op.Field != nil && op.Field.Rel != nil {
				if p, ok := providers[op.Field.Rel.Model]; ok && p != i {
					g.AddEdge(p, i)
				}
			}
		}
		// RemoveField and RemoveModel reference no other models.
	}
	return g
}

func (g *OperationGraph) Len() int {
	return g.nodes
}

func (g *OperationGraph) AddEdge(from, to int) {
	if g.succ[from] == nil {
		g.succ[from] = make(map[int]struct{})
	}
	g.succ[from][to] = struct{}{}
}

func (g *OperationGraph) RemoveEdge(from, to int) {
	if g.succ[from] != nil {
		delete(g.succ[from], to)
	}
}

func (g *OperationGraph) HasEdge(from, to int) bool {
	if g.succ[from] == nil {
		return false
	}
	var _, ok = g.succ[from][to]
	return ok
}

// Successors returns the targets of all edges leaving node i, in ascending
// order so traversals do not depend on map iteration order.
func (g *OperationGraph) Successors(i int) []int {
	if g.succ[i] == nil {
		return nil
	}
	var out = make([]int, 0, len(g.succ[i]))
	for to := range g.succ[i] {
		out = append(out, to)
	}
	slices.Sort(out)
	return out
}

// Edges returns every edge as a (from, to) pair in ascending order.
func (g *OperationGraph) Edges() [][2]int {
	var edges [][2]int
	for from := 0; from < g.nodes; from++ {
		for _, to := range g.Successors(from) {
			edges = append(edges, [2]int{from, to})
		}
	}
	return edges
}

func (g *OperationGraph) clone() *OperationGraph {
	var c = newOperationGraph(g.nodes)
	for from := 0; from < g.nodes; from++ {
		for to := range g.succ[from] {
			c.AddEdge(from, to)
		}
	}
	return c
}

// Sort linearizes an acyclic graph: the returned indices order the operation
// list so that every edge's source precedes its target. Among operations not
// forced apart by an edge the input order is kept, by always emitting the
// lowest ready index first (Kahn's algorithm with a deterministic tie-break).
//
// The graph handed to Sort must already have been through the cycle breaker;
// a residual cycle is a planner defect and surfaces as ErrResidualCycle.
func (g *OperationGraph) Sort() ([]int, error) {
	var indegree = make([]int, g.nodes)
	for from := 0; from < g.nodes; from++ {
		for to := range g.succ[from] {
			indegree[to]++
		}
	}

	var (
		order = make([]int, 0, g.nodes)
		done  = make([]bool, g.nodes)
	)
	for len(order) < g.nodes {
		var next = -1
		for i := 0; i < g.nodes; i++ {
			if !done[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, errors.WithStack(ErrResidualCycle)
		}

		done[next] = true
		order = append(order, next)
		for to := range g.succ[next] {
			indegree[to]--
		}
	}

	return order, nil
}

// SortOperations reorders the operation list according to g.Sort.
func SortOperations(operations []Operation, g *OperationGraph) ([]Operation, error) {
	var order, err = g.Sort()
	if err != nil {
		return nil, err
	}
	var sorted = make([]Operation, 0, len(operations))
	for _, i := range order {
		sorted = append(sorted, operations[i])
	}
	return sorted, nil
}
