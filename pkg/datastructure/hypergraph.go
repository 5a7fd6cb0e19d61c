package datastructure

import (
	"github.com/lintang-b-s/hyperflow/pkg/util"
)

// Hypergraph is an immutable weighted hypergraph in compressed sparse row
// form. Pins of all hyperedges live in one contiguous slice indexed through
// pinOffsets, the incident nets of all nodes live in a second contiguous
// slice indexed through incidentOffsets. Created once, then shared by
// read-only reference between all partitioning phases.
type Hypergraph struct {
	numNodes int
	numEdges int

	totalWeight Weight
	nodeWeights []Weight
	edgeWeights []Weight

	pinOffsets []int
	pins       []Index

	incidentOffsets []int
	incidentNets    []Index
}

// NewHypergraph builds the CSR representation from explicit pin lists.
// nodeWeights/edgeWeights may be nil for a unit-weight hypergraph.
func NewHypergraph(numNodes int, edges [][]Index, nodeWeights, edgeWeights []Weight) *Hypergraph {
	numEdges := len(edges)

	hg := &Hypergraph{
		numNodes:        numNodes,
		numEdges:        numEdges,
		nodeWeights:     make([]Weight, numNodes),
		edgeWeights:     make([]Weight, numEdges),
		pinOffsets:      make([]int, numEdges+1),
		incidentOffsets: make([]int, numNodes+1),
	}

	if nodeWeights != nil {
		util.AssertPanic(len(nodeWeights) == numNodes, "node weight vector size mismatch")
		copy(hg.nodeWeights, nodeWeights)
	} else {
		for v := range hg.nodeWeights {
			hg.nodeWeights[v] = 1
		}
	}
	for _, w := range hg.nodeWeights {
		hg.totalWeight += w
	}

	if edgeWeights != nil {
		util.AssertPanic(len(edgeWeights) == numEdges, "edge weight vector size mismatch")
		copy(hg.edgeWeights, edgeWeights)
	} else {
		for e := range hg.edgeWeights {
			hg.edgeWeights[e] = 1
		}
	}

	numPins := 0
	for e, pins := range edges {
		hg.pinOffsets[e] = numPins
		numPins += len(pins)
	}
	hg.pinOffsets[numEdges] = numPins

	hg.pins = make([]Index, numPins)
	degree := make([]int, numNodes)
	for e, pins := range edges {
		copy(hg.pins[hg.pinOffsets[e]:], pins)
		for _, v := range pins {
			util.AssertPanic(int(v) < numNodes, "pin references node outside hypergraph")
			degree[v]++
		}
	}

	offset := 0
	for v := 0; v < numNodes; v++ {
		hg.incidentOffsets[v] = offset
		offset += degree[v]
	}
	hg.incidentOffsets[numNodes] = offset

	hg.incidentNets = make([]Index, numPins)
	pos := make([]int, numNodes)
	copy(pos, hg.incidentOffsets[:numNodes])
	for e := 0; e < numEdges; e++ {
		for _, v := range hg.Pins(Index(e)) {
			hg.incidentNets[pos[v]] = Index(e)
			pos[v]++
		}
	}

	return hg
}

func (hg *Hypergraph) NumberOfNodes() int {
	return hg.numNodes
}

func (hg *Hypergraph) NumberOfHyperedges() int {
	return hg.numEdges
}

func (hg *Hypergraph) NumberOfPins() int {
	return len(hg.pins)
}

func (hg *Hypergraph) TotalWeight() Weight {
	return hg.totalWeight
}

func (hg *Hypergraph) NodeWeight(v Index) Weight {
	return hg.nodeWeights[v]
}

func (hg *Hypergraph) EdgeWeight(e Index) Weight {
	return hg.edgeWeights[e]
}

func (hg *Hypergraph) EdgeSize(e Index) int {
	return hg.pinOffsets[e+1] - hg.pinOffsets[e]
}

func (hg *Hypergraph) NodeDegree(v Index) int {
	return hg.incidentOffsets[v+1] - hg.incidentOffsets[v]
}

// Pins returns the pin list of hyperedge e as a read-only view into the CSR.
func (hg *Hypergraph) Pins(e Index) []Index {
	return hg.pins[hg.pinOffsets[e]:hg.pinOffsets[e+1]]
}

// IncidentEdges returns the hyperedges containing node v as a read-only view.
func (hg *Hypergraph) IncidentEdges(v Index) []Index {
	return hg.incidentNets[hg.incidentOffsets[v]:hg.incidentOffsets[v+1]]
}

func (hg *Hypergraph) ForEachNode(f func(v Index)) {
	for v := 0; v < hg.numNodes; v++ {
		f(Index(v))
	}
}

func (hg *Hypergraph) ForEachHyperedge(f func(e Index)) {
	for e := 0; e < hg.numEdges; e++ {
		f(Index(e))
	}
}
