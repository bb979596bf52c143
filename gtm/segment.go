// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gtm

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
)

// Segment is a handle to a dendritic segment held by a Connections store.
// Only its identity and owning cell are used by the burst phase.
type Segment struct {

	// index of the segment within its Connections store
	Idx int

	// cell that owns the segment
	Cell Cell
}

func (sg Segment) String() string {
	return fmt.Sprintf("Segment(%d, cell %d)", sg.Idx, uint32(sg.Cell))
}

// Connections is the connectivity store consumed by the burst phase.
// It owns all segments and synapses. It is only borrowed for the
// duration of a single call and must not be accessed concurrently.
type Connections interface {

	// MostActiveSegmentForCells returns the segment among those owned by
	// the given cells with the largest number of synapses onto cells in
	// input, provided that number is at least minThreshold.
	// false is returned if no segment qualifies. The store decides ties.
	MostActiveSegmentForCells(cells []Cell, input *roaring.Bitmap, minThreshold int) (Segment, bool)

	// CreateSegment adds a new segment to the given cell.
	CreateSegment(cell Cell) (Segment, error)

	// NumberOfSegments returns the number of segments owned by the cell.
	NumberOfSegments(cell Cell) int
}
