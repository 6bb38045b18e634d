package dependency

import (
	"rig/internal/registry"
)

// NodeState mirrors the registry state of the item behind a node.
type NodeState int

const (
	StateEnabled NodeState = iota
	StateDisabled
	StateIgnored
)

func (s NodeState) String() string {
	switch s {
	case StateDisabled:
		return "disabled"
	case StateIgnored:
		return "ignored"
	default:
		return "enabled"
	}
}

// NodeID is the unique identifier of a node, e.g. "application" or
// "bundle:*metrics.Bundle".
type NodeID string

// NodeKind categorises nodes.
type NodeKind int

const (
	KindScope NodeKind = iota
	KindBundle
	KindModule
	KindOverridingModule
	KindInstaller
	KindExtension
	KindCommand
)

// Node is a registration origin or a registered item. An item node depends
// on the node that first registered it.
type Node struct {
	ID           NodeID
	FriendlyName string
	Kind         NodeKind
	DependsOn    []NodeID
	State        NodeState
	Info         *registry.Info
}

// Graph is not safe for concurrent writes.
type Graph struct {
	nodes map[NodeID]*Node
	order []NodeID
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[NodeID]*Node)}
}

// AddNode adds (or replaces) a node in the graph. Replacing keeps the
// original insertion position.
func (g *Graph) AddNode(n Node) {
	if g.nodes == nil {
		g.nodes = make(map[NodeID]*Node)
	}
	copied := n
	copied.DependsOn = append([]NodeID(nil), n.DependsOn...)
	if _, exists := g.nodes[n.ID]; !exists {
		g.order = append(g.order, n.ID)
	}
	g.nodes[n.ID] = &copied
}

// Get returns the stored node or nil if it does not exist.
func (g *Graph) Get(id NodeID) *Node {
	return g.nodes[id]
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Dependencies returns the immediate dependency IDs of the given node.
func (g *Graph) Dependencies(id NodeID) []NodeID {
	if n, ok := g.nodes[id]; ok {
		return append([]NodeID(nil), n.DependsOn...)
	}
	return nil
}

// Dependents returns the nodes that directly depend on id, in insertion
// order.
func (g *Graph) Dependents(id NodeID) []NodeID {
	var res []NodeID
	for _, nid := range g.order {
		for _, dep := range g.nodes[nid].DependsOn {
			if dep == id {
				res = append(res, nid)
				break
			}
		}
	}
	return res
}

// Roots returns the nodes without dependencies, in insertion order.
func (g *Graph) Roots() []NodeID {
	var res []NodeID
	for _, nid := range g.order {
		if len(g.nodes[nid].DependsOn) == 0 {
			res = append(res, nid)
		}
	}
	return res
}

// Walk visits id and its dependents depth first. Each node is visited once.
func (g *Graph) Walk(id NodeID, fn func(depth int, n *Node)) {
	seen := make(map[NodeID]bool)
	var visit func(NodeID, int)
	visit = func(nid NodeID, depth int) {
		if seen[nid] {
			return
		}
		seen[nid] = true
		n := g.nodes[nid]
		if n == nil {
			return
		}
		fn(depth, n)
		for _, child := range g.Dependents(nid) {
			visit(child, depth+1)
		}
	}
	visit(id, 0)
}
