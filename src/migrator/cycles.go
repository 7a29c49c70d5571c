package migrator

import "fmt"

type nodeColor int

const (
	colorWhite nodeColor = iota
	colorGrey
	colorBlack
)

// feedbackArcSet returns a set of edges whose removal makes the graph
// acyclic. Computing a minimum set is NP-hard; this is a greedy
// approximation: depth-first search from the lowest node index with
// successors visited in ascending order, removing the first back edge that
// closes a cycle and repeating until no cycle remains. The result is a pure
// function of the graph, and for a two-node cycle it is a single edge.
func feedbackArcSet(g *OperationGraph) [][2]int {
	var (
		work = g.clone()
		arcs [][2]int
	)
	for {
		var arc, found = findBackEdge(work)
		if !found {
			return arcs
		}
		work.RemoveEdge(arc[0], arc[1])
		arcs = append(arcs, arc)
	}
}

// findBackEdge returns the first edge found pointing back into the active
// DFS path, if any.
func findBackEdge(g *OperationGraph) ([2]int, bool) {
	var (
		colors   = make([]nodeColor, g.Len())
		backEdge [2]int
	)

	var visit func(node int) bool
	visit = func(node int) bool {
		colors[node] = colorGrey
		for _, succ := range g.Successors(node) {
			switch colors[succ] {
			case colorGrey:
				backEdge = [2]int{node, succ}
				return true
			case colorWhite:
				if visit(succ) {
					return true
				}
			}
		}
		colors[node] = colorBlack
		return false
	}

	for node := 0; node < g.Len(); node++ {
		if colors[node] == colorWhite && visit(node) {
			return backEdge, true
		}
	}
	return [2]int{}, false
}

// BreakCycles removes all circular foreign-key dependencies from an
// operation list. For every feedback arc, the referencing CreateModel
// operation is stripped of the foreign-key field(s) that close the cycle and
// a trailing AddField operation is appended for each stripped field; by the
// time those run, every table exists.
//
// Both endpoints of a feedback arc are necessarily CreateModel operations:
// only CreateModel operations provide models, and nothing depends on the
// other kinds, so no other kind can sit on a cycle. A violation is a defect
// in the graph builder and panics.
//
// The input list is not modified; the caller must rebuild the operation
// graph from the returned list before sequencing.
func BreakCycles(operations []Operation) []Operation {
	var g = BuildOperationGraph(operations)
	var arcs = feedbackArcSet(g)
	if len(arcs) == 0 {
		return operations
	}

	var out = make([]Operation, len(operations))
	for i, op := range operations {
		out[i] = op.Clone()
	}

	var appended []Operation
	for _, arc := range arcs {
		var provider = out[arc[0]]
		if provider.Type != OperationCreateModel {
			panic(fmt.Sprintf(
				"migrator: feedback arc starts at %s operation for table %q, want create_model",
				provider.Type, provider.Table,
			))
		}

		var referencing = &out[arc[1]]
		if referencing.Type != OperationCreateModel {
			panic(fmt.Sprintf(
				"migrator: cycle through %s operation for table %q, want create_model",
				referencing.Type, referencing.Table,
			))
		}

		// Strip the current (possibly already reduced) field list, not a
		// stale copy: one CreateModel may lose fields to several arcs.
		var kept = make([]FieldDescriptor, 0, len(referencing.Fields))
		for _, field := range referencing.Fields {
			if field.Rel != nil && field.Rel.Model == provider.Model {
				appended = append(appended, Operation{
					Type:  OperationAddField,
					Table: referencing.Table,
					Model: referencing.Model,
					Field: &field,
				})
				continue
			}
			kept = append(kept, field)
		}
		referencing.Fields = kept
	}

	return append(out, appended...)
}
