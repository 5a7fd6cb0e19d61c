package processmapping

import (
	da "github.com/lintang-b-s/hyperflow/pkg/datastructure"
)

// mstData is the scratch of one MST computation. Instances are recycled
// through a sync.Pool so that concurrent objective evaluations never share
// or reallocate the bitset, the key array, or the priority queue.
type mstData struct {
	inTree   *da.Bitset
	lightest []da.Weight
	pq       *da.MinHeap[da.PartitionID]
}

func newMSTData(n int) *mstData {
	return &mstData{
		inTree:   da.NewBitset(n),
		lightest: make([]da.Weight, n),
		pq:       da.NewFourAryHeap[da.PartitionID](),
	}
}

func (d *mstData) reset(members []da.PartitionID) {
	d.inTree.Reset()
	for _, b := range members {
		d.lightest[b] = INF_WEIGHT
	}
	d.pq.Clear()
}

// computeWeightOfMSTOnMetricCompletion runs Prim on the complete graph over
// the connectivity set whose edge weights are the shortest-path distances
// of the process graph. The resulting spanning tree weighs at most twice
// the optimal steiner tree.
func (pg *ProcessGraph) computeWeightOfMSTOnMetricCompletion(members []da.PartitionID) da.Weight {
	data := pg.localMSTData.Get().(*mstData)
	defer pg.localMSTData.Put(data)
	data.reset(members)

	start := members[0]
	data.lightest[start] = 0
	data.pq.Insert(da.NewPriorityQueueNode(0, start))

	total := da.Weight(0)
	for !data.pq.IsEmpty() {
		node, _ := data.pq.ExtractMin()
		v := node.GetItem()
		if data.inTree.IsSet(v) || node.GetRank() > data.lightest[v] {
			// stale queue entry
			continue
		}
		data.inTree.Set(v)
		total += data.lightest[v]

		for _, u := range members {
			if !data.inTree.IsSet(u) {
				weight := pg.Distance(v, u)
				if weight < data.lightest[u] {
					data.lightest[u] = weight
					data.pq.Insert(da.NewPriorityQueueNode(weight, u))
				}
			}
		}
	}
	return total
}
