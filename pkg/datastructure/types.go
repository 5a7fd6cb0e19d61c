package datastructure

import "math"

type Index uint32

// PartitionID identifies one block of a partition. The sentinel
// INVALID_PARTITION_ID marks a node that has not been assigned yet.
type PartitionID int32

type Weight int64

type Gain int64

const (
	INVALID_PARTITION_ID PartitionID = -1
	INVALID_INDEX        Index       = math.MaxUint32
)

// Move records a single node relocation between two blocks.
type Move struct {
	node Index
	from PartitionID
	to   PartitionID
	gain Gain
}

func NewMove(node Index, from, to PartitionID, gain Gain) Move {
	return Move{node: node, from: from, to: to, gain: gain}
}

func (m Move) GetNode() Index {
	return m.node
}

func (m Move) GetFrom() PartitionID {
	return m.from
}

func (m Move) GetTo() PartitionID {
	return m.to
}

func (m Move) GetGain() Gain {
	return m.gain
}

// MoveSequence is an ordered list of moves with their aggregate attributed gain.
type MoveSequence struct {
	moves []Move
	gain  Gain
}

func NewMoveSequence() *MoveSequence {
	return &MoveSequence{moves: make([]Move, 0)}
}

func (ms *MoveSequence) Append(m Move) {
	ms.moves = append(ms.moves, m)
	ms.gain += m.GetGain()
}

func (ms *MoveSequence) GetMoves() []Move {
	return ms.moves
}

func (ms *MoveSequence) GetGain() Gain {
	return ms.gain
}
