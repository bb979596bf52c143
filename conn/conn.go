// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package conn provides an in-memory Connections store of cells, dendritic
segments and synapses, satisfying the gtm.Connections interface.

Segments are never destroyed, so segment indices are stable for the
lifetime of the store. Synapses can be destroyed: their index is retired
and they no longer count towards segment overlap.
*/
package conn

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/emer/gtm/gtm"
	"github.com/pkg/errors"
)

var (
	ErrCellRange    = errors.New("conn: cell out of range")
	ErrSegmentRange = errors.New("conn: segment out of range")
	ErrSynapseRange = errors.New("conn: synapse out of range")
	ErrSegmentLimit = errors.New("conn: cell has maximum number of segments")
	ErrSynapseLimit = errors.New("conn: segment has maximum number of synapses")
	ErrSynapseFreed = errors.New("conn: synapse has been destroyed")
)

var _ gtm.Connections = (*Connections)(nil)

// Params are limits on the size of the store
type Params struct {

	// maximum number of segments per cell -- 0 = no limit
	MaxSegmentsPerCell int `def:"0" min:"0"`

	// maximum number of live synapses per segment -- 0 = no limit
	MaxSynapsesPerSegment int `def:"0" min:"0"`
}

func (cp *Params) Defaults() {
	cp.MaxSegmentsPerCell = 0
	cp.MaxSynapsesPerSegment = 0
}

// SegData holds a segment: its owning cell and its live synapses
// in creation order.
type SegData struct {

	// cell that owns the segment
	Cell gtm.Cell

	// indexes into Connections.Syns of the live synapses of the segment
	Syns []int
}

// conn.Connections holds all segments and synapses for a fixed number of
// internal cells. Segments can only be owned by internal cells; synapses
// can come from any cell index, including reindexed external cells.
type Connections struct {

	// size limits
	Params Params

	// number of internal cells that can own segments
	NCells int

	// all segments, indexed by gtm.Segment.Idx
	Segs []SegData

	// all synapses ever created, indexed by synapse index
	Syns []Synapse

	// segment indexes for each cell, in creation order
	CellSegs [][]int `view:"-"`

	// live synapse indexes for each presynaptic cell
	PresynSyns map[uint32][]int `view:"-"`

	// number of live synapses
	NLiveSyns int `inactive:"+"`
}

// New returns an empty store for numCells internal cells.
func New(numCells int) *Connections {
	cn := &Connections{}
	cn.Params.Defaults()
	cn.Init(numCells)
	return cn
}

// Init removes all segments and synapses and sets the number of cells.
// A negative numCells is taken as 0.
func (cn *Connections) Init(numCells int) {
	if numCells < 0 {
		numCells = 0
	}
	cn.NCells = numCells
	cn.Segs = nil
	cn.Syns = nil
	cn.CellSegs = make([][]int, numCells)
	cn.PresynSyns = make(map[uint32][]int)
	cn.NLiveSyns = 0
}

// NumCells returns the number of internal cells
func (cn *Connections) NumCells() int { return cn.NCells }

// NumSegments returns the total number of segments
func (cn *Connections) NumSegments() int { return len(cn.Segs) }

// NumSynapses returns the number of live synapses
func (cn *Connections) NumSynapses() int { return cn.NLiveSyns }

// CreateSegment adds a new segment to the cell.
func (cn *Connections) CreateSegment(cell gtm.Cell) (gtm.Segment, error) {
	if int(cell) >= cn.NCells {
		return gtm.Segment{}, errors.Wrapf(ErrCellRange, "cell %d of %d", uint32(cell), cn.NCells)
	}
	if mx := cn.Params.MaxSegmentsPerCell; mx > 0 && len(cn.CellSegs[cell]) >= mx {
		return gtm.Segment{}, errors.Wrapf(ErrSegmentLimit, "cell %d: %d", uint32(cell), mx)
	}
	idx := len(cn.Segs)
	cn.Segs = append(cn.Segs, SegData{Cell: cell})
	cn.CellSegs[cell] = append(cn.CellSegs[cell], idx)
	return gtm.Segment{Idx: idx, Cell: cell}, nil
}

// NumberOfSegments returns the number of segments owned by the cell,
// 0 for cells outside the store.
func (cn *Connections) NumberOfSegments(cell gtm.Cell) int {
	if int(cell) >= cn.NCells {
		return 0
	}
	return len(cn.CellSegs[cell])
}

// SegmentsForCell returns the segments of the cell in creation order.
func (cn *Connections) SegmentsForCell(cell gtm.Cell) []gtm.Segment {
	if int(cell) >= cn.NCells {
		return nil
	}
	sis := cn.CellSegs[cell]
	segs := make([]gtm.Segment, len(sis))
	for i, si := range sis {
		segs[i] = gtm.Segment{Idx: si, Cell: cell}
	}
	return segs
}

// Segment returns the handle of the segment with given index.
func (cn *Connections) Segment(idx int) (gtm.Segment, error) {
	if idx < 0 || idx >= len(cn.Segs) {
		return gtm.Segment{}, errors.Wrapf(ErrSegmentRange, "segment %d of %d", idx, len(cn.Segs))
	}
	return gtm.Segment{Idx: idx, Cell: cn.Segs[idx].Cell}, nil
}

// NumActiveSynapses returns the number of live synapses of the segment
// whose presynaptic cell is in input.
func (cn *Connections) NumActiveSynapses(seg int, input *roaring.Bitmap) int {
	n := 0
	for _, si := range cn.Segs[seg].Syns {
		if input.Contains(cn.Syns[si].Presyn) {
			n++
		}
	}
	return n
}

// MostActiveSegmentForCells returns the segment of the given cells with the
// most synapses onto cells in input, if that number is at least
// minThreshold. Cells are visited in the given order and segments in
// creation order; on equal counts the later segment wins.
func (cn *Connections) MostActiveSegmentForCells(cells []gtm.Cell, input *roaring.Bitmap, minThreshold int) (gtm.Segment, bool) {
	if input == nil {
		input = roaring.New()
	}
	best := -1
	max := minThreshold
	for _, c := range cells {
		if int(c) >= cn.NCells {
			continue
		}
		for _, si := range cn.CellSegs[c] {
			n := cn.NumActiveSynapses(si, input)
			if n >= max {
				max = n
				best = si
			}
		}
	}
	if best < 0 {
		return gtm.Segment{}, false
	}
	return gtm.Segment{Idx: best, Cell: cn.Segs[best].Cell}, true
}
