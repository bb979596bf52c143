// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gtm

import (
	"math/rand"
	"sort"

	"github.com/goki/ki/kit"
)

// CellChooser picks the cell that receives a new segment in a bursting
// column when no existing segment matched.
type CellChooser interface {
	// LeastUsedCell returns one of the given (non-empty) candidate cells.
	LeastUsedCell(cells []Cell, conns Connections) Cell
}

// TieBreak determines how LeastUsed chooses among cells that share the
// smallest number of segments.
type TieBreak int

//go:generate stringer -type=TieBreak

var KiT_TieBreak = kit.Enums.AddEnum(TieBreakN, kit.NotBitFlag, nil)

func (ev TieBreak) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *TieBreak) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The tie-break policies
const (
	// LowestIndex picks the least-used cell with the lowest index.
	LowestIndex TieBreak = iota

	// RandomTie picks uniformly among the least-used cells, using the
	// chooser's own seeded source, so runs are reproducible for a given seed.
	RandomTie

	TieBreakN
)

// LeastUsed selects the candidate cell with the fewest segments.
type LeastUsed struct {

	// how ties on segment count are broken
	Tie TieBreak

	// random source for RandomTie -- if nil, one seeded with 1 is made on first use
	Rand *rand.Rand
}

// NewLeastUsed returns a LeastUsed chooser for the given policy,
// seeding its random source with seed.
func NewLeastUsed(tie TieBreak, seed int64) *LeastUsed {
	return &LeastUsed{Tie: tie, Rand: rand.New(rand.NewSource(seed))}
}

// LeastUsedCell orders the candidates by (number of segments, cell index)
// and returns the first, or a random one of the cells with the smallest
// count for RandomTie. Panics on an empty candidate list.
func (lu *LeastUsed) LeastUsedCell(cells []Cell, conns Connections) Cell {
	if len(cells) == 0 {
		panic("gtm: LeastUsedCell called with no candidate cells")
	}
	sorted := make([]Cell, len(cells))
	copy(sorted, cells)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	minSegs := -1
	var least []Cell
	for _, c := range sorted {
		ns := conns.NumberOfSegments(c)
		switch {
		case minSegs < 0 || ns < minSegs:
			minSegs = ns
			least = append(least[:0], c)
		case ns == minSegs:
			least = append(least, c)
		}
	}
	if lu.Tie == RandomTie && len(least) > 1 {
		if lu.Rand == nil {
			lu.Rand = rand.New(rand.NewSource(1))
		}
		return least[lu.Rand.Intn(len(least))]
	}
	return least[0]
}
