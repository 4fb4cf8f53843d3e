package epidemic

import (
	"errors"
	"fmt"
)

// Typed authoring faults. A symptom graph is fixed once its pathogen type is
// built, so these can only surface while a catalogue or scenario is being
// assembled, never during a simulation tick.
var (
	ErrNodeExists   = errors.New("node id already exists")
	ErrNodeNotFound = errors.New("node id does not exist")
	ErrEdgeExists   = errors.New("edge already exists")
)

// SymptomGraph is a directed weighted graph over symptom definitions. Nodes
// are integer-id arena slots holding shared *Symptom values; an edge
// (u -> v, w) means acquiring u makes v reachable with per-mutation-attempt
// probability w. Every Pathogen owns its own graph, produced once at
// pathogen-type construction, so cloning is a flat copy with no aliasing
// between generations (the symptoms themselves stay shared).
type SymptomGraph struct {
	nodes     map[int]*Symptom
	adjacency map[int]map[int]float64
	edgeCount int
}

// NewSymptomGraph creates an empty graph.
func NewSymptomGraph() *SymptomGraph {
	return &SymptomGraph{
		nodes:     make(map[int]*Symptom),
		adjacency: make(map[int]map[int]float64),
	}
}

// AddNode registers a symptom under the given id.
func (g *SymptomGraph) AddNode(id int, s *Symptom) error {
	if _, ok := g.nodes[id]; ok {
		return fmt.Errorf("adding symptom %q under id %d: %w", s.Name(), id, ErrNodeExists)
	}
	g.nodes[id] = s
	return nil
}

// Connect adds a directed mutation edge from one symptom to another.
func (g *SymptomGraph) Connect(from, to int, probability float64) error {
	if _, ok := g.nodes[from]; !ok {
		return fmt.Errorf("edge source %d: %w", from, ErrNodeNotFound)
	}
	if _, ok := g.nodes[to]; !ok {
		return fmt.Errorf("edge target %d: %w", to, ErrNodeNotFound)
	}
	adj, ok := g.adjacency[from]
	if !ok {
		adj = make(map[int]float64)
		g.adjacency[from] = adj
	}
	if _, ok := adj[to]; ok {
		return fmt.Errorf("edge %d -> %d: %w", from, to, ErrEdgeExists)
	}
	adj[to] = probability
	g.edgeCount++
	return nil
}

// ContainsNode reports whether an id is registered.
func (g *SymptomGraph) ContainsNode(id int) bool {
	_, ok := g.nodes[id]
	return ok
}

// SymptomAt returns the symptom registered under id.
func (g *SymptomGraph) SymptomAt(id int) (*Symptom, bool) {
	s, ok := g.nodes[id]
	return s, ok
}

// Weight returns the probability on the edge from -> to.
func (g *SymptomGraph) Weight(from, to int) (float64, bool) {
	w, ok := g.adjacency[from][to]
	return w, ok
}

// Adjacent returns the ids reachable by one outgoing edge from id.
func (g *SymptomGraph) Adjacent(id int) []int {
	adj := g.adjacency[id]
	if len(adj) == 0 {
		return nil
	}
	out := make([]int, 0, len(adj))
	for to := range adj {
		out = append(out, to)
	}
	return out
}

// NodeCount returns the number of registered symptoms.
func (g *SymptomGraph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of mutation edges.
func (g *SymptomGraph) EdgeCount() int {
	return g.edgeCount
}

// Clone flat-copies the arena. Symptom pointers are shared; adjacency maps
// are not.
func (g *SymptomGraph) Clone() *SymptomGraph {
	out := &SymptomGraph{
		nodes:     make(map[int]*Symptom, len(g.nodes)),
		adjacency: make(map[int]map[int]float64, len(g.adjacency)),
		edgeCount: g.edgeCount,
	}
	for id, s := range g.nodes {
		out.nodes[id] = s
	}
	for from, adj := range g.adjacency {
		m := make(map[int]float64, len(adj))
		for to, w := range adj {
			m[to] = w
		}
		out.adjacency[from] = m
	}
	return out
}

// MutationCandidate pairs a symptom node with the probability that a single
// mutation attempt reaches (or sheds) it.
type MutationCandidate struct {
	ID          int
	Probability float64
}

// PotentialGains lists, for every acquired node, every outgoing edge to a
// not-yet-acquired node. A candidate reachable from several acquired nodes
// appears once per edge, so it gets one trial per route.
func (g *SymptomGraph) PotentialGains(acquired map[int]struct{}) []MutationCandidate {
	var out []MutationCandidate
	for id := range acquired {
		for to, w := range g.adjacency[id] {
			if _, ok := acquired[to]; !ok {
				out = append(out, MutationCandidate{ID: to, Probability: w})
			}
		}
	}
	return out
}

// PotentialLosses lists the acquired nodes eligible for removal: a node
// qualifies only when every outgoing edge already leads to another acquired
// node (it is a leaf of the acquired sub-graph) and the symptom declares
// itself reversible. The loss probability is the sum of incoming edge
// weights from other acquired nodes, a measure of how strongly anchored the
// symptom is.
func (g *SymptomGraph) PotentialLosses(acquired map[int]struct{}) []MutationCandidate {
	var out []MutationCandidate
	for id := range acquired {
		leaf := true
		for to := range g.adjacency[id] {
			if _, ok := acquired[to]; !ok {
				leaf = false
				break
			}
		}
		if !leaf {
			continue
		}
		s, ok := g.nodes[id]
		if !ok || !s.CanReverse() {
			continue
		}
		out = append(out, MutationCandidate{ID: id, Probability: g.weightsOnto(id, acquired)})
	}
	return out
}

// weightsOnto sums the weights of edges into id whose sources are acquired.
func (g *SymptomGraph) weightsOnto(id int, acquired map[int]struct{}) float64 {
	total := 0.0
	for from := range acquired {
		if from == id {
			continue
		}
		if w, ok := g.adjacency[from][id]; ok {
			total += w
		}
	}
	return total
}
