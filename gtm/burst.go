// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gtm

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/pkg/errors"
)

// ChosenCells records the winner cell last chosen for each column.
// It is carried by the caller from step to step, and cleared at
// sequence boundaries.
type ChosenCells map[uint32]Cell

// Clone returns a copy of the map (never nil).
func (cc ChosenCells) Clone() ChosenCells {
	nc := make(ChosenCells, len(cc))
	for k, v := range cc {
		nc[k] = v
	}
	return nc
}

// BurstInput holds the per-step inputs of BurstColumns.
type BurstInput struct {

	// columns active at time t
	ActiveColumns *roaring.Bitmap

	// columns predicted for time t
	PredictedColumns *roaring.Bitmap

	// cells active at t-1, possibly including reindexed external cells
	PrevActiveCells *roaring.Bitmap

	// if true, a column keeps the winner cell in ChosenCells once chosen
	LearnOnOneCell bool

	// winner cell chosen for each column in earlier steps -- not modified
	ChosenCells ChosenCells
}

// BurstResult holds the outputs of BurstColumns.
type BurstResult struct {

	// active columns that were not predicted
	UnpredictedColumns *roaring.Bitmap

	// all cells of the unpredicted columns
	ActiveCells *roaring.Bitmap

	// one winner cell per unpredicted column
	WinnerCells *roaring.Bitmap

	// one learning segment per unpredicted column, in ascending column order
	LearningSegments []Segment

	// number of the LearningSegments that were created in this step
	NewSegments int

	// updated copy of the input ChosenCells
	ChosenCells ChosenCells
}

// Burster runs the burst phase: for every active column that was not
// predicted it activates all cells and selects one winner cell and one
// learning segment.
// It combines a CellLayout (cell representation) and a CellChooser
// (segment placement). The Connections store is passed to each call
// and never retained.
type Burster struct {

	// mapping of columns to cells
	Layout CellLayout

	// picks the cell that grows a new segment
	Chooser CellChooser

	// minimum number of synapses onto previous active cells for a segment to match
	MinThreshold int
}

// NewBurster returns a validated Burster.
// A nil chooser selects the least-used cell by lowest index.
func NewBurster(layout CellLayout, chooser CellChooser, minThreshold int) (*Burster, error) {
	if chooser == nil {
		chooser = &LeastUsed{}
	}
	bs := &Burster{Layout: layout, Chooser: chooser, MinThreshold: minThreshold}
	if err := bs.Validate(); err != nil {
		return nil, err
	}
	return bs, nil
}

// Validate checks the configuration.
func (bs *Burster) Validate() error {
	if bs.Layout == nil {
		return errors.Wrap(ErrNoCells, "nil Layout")
	}
	if err := bs.Layout.Validate(); err != nil {
		return err
	}
	if bs.MinThreshold < 0 {
		return errors.Wrapf(ErrNegativeThreshold, "MinThreshold: %d", bs.MinThreshold)
	}
	if bs.Chooser == nil {
		return ErrNoChooser
	}
	return nil
}

// BurstColumns bursts every column in ActiveColumns - PredictedColumns,
// in ascending column order. For each such column:
//   - all cells of the column become active
//   - the candidate cells are all cells of the column, or only the cell
//     in ChosenCells if LearnOnOneCell is set and the column has one
//   - the most active segment of the candidates against PrevActiveCells
//     is used if it reaches MinThreshold, otherwise a new segment is
//     created on the least-used candidate (even if PrevActiveCells is empty)
//   - the winner is the cell owning that segment, and it is recorded in
//     ChosenCells regardless of LearnOnOneCell
//
// With LearnOnOneCell, a ChosenCells entry of a bursting column must be
// a cell of that column (ErrChosenCell).
//
// The order matters because segment creation changes conns for later
// columns in the same call. All inputs are checked before conns is used;
// if conns then fails to create a segment no result is returned, but
// segments already created for earlier columns stay in conns.
func (bs *Burster) BurstColumns(in *BurstInput, conns Connections) (*BurstResult, error) {
	if err := bs.Validate(); err != nil {
		return nil, err
	}
	if in == nil {
		return nil, ErrNoInput
	}
	if conns == nil {
		return nil, ErrNoConnections
	}
	unpred := roaring.New()
	if in.ActiveColumns != nil {
		unpred.Or(in.ActiveColumns)
	}
	if in.PredictedColumns != nil {
		unpred.AndNot(in.PredictedColumns)
	}
	if !unpred.IsEmpty() && int(unpred.Maximum()) >= bs.Layout.NumberOfColumns() {
		return nil, errors.Wrapf(ErrColumnRange, "column %d of %d", unpred.Maximum(), bs.Layout.NumberOfColumns())
	}
	if in.LearnOnOneCell {
		if err := bs.checkChosen(unpred, in.ChosenCells); err != nil {
			return nil, err
		}
	}
	prev := in.PrevActiveCells
	if prev == nil {
		prev = roaring.New()
	}

	rs := &BurstResult{
		UnpredictedColumns: unpred,
		ActiveCells:        roaring.New(),
		WinnerCells:        roaring.New(),
		LearningSegments:   make([]Segment, 0, unpred.GetCardinality()),
		ChosenCells:        in.ChosenCells.Clone(),
	}
	it := unpred.Iterator()
	for it.HasNext() {
		col := it.Next()
		if err := bs.burstColumn(col, prev, in.LearnOnOneCell, rs, conns); err != nil {
			return nil, err
		}
	}
	return rs, nil
}

// checkChosen returns an error if the chosen cell of any of cols lies
// outside that column.
func (bs *Burster) checkChosen(cols *roaring.Bitmap, cc ChosenCells) error {
	ncells := bs.Layout.NumberOfCells()
	it := cols.Iterator()
	for it.HasNext() {
		col := it.Next()
		cell, has := cc[col]
		if !has {
			continue
		}
		if int(cell) >= ncells || bs.Layout.ColumnForCell(cell) != col {
			return errors.Wrapf(ErrChosenCell, "column %d: %v", col, cell)
		}
	}
	return nil
}

// burstColumn activates the cells of one column and selects its winner cell
// and learning segment, recording them in rs.
func (bs *Burster) burstColumn(col uint32, prev *roaring.Bitmap, learnOnOne bool, rs *BurstResult, conns Connections) error {
	cells := bs.Layout.CellsForColumn(col)
	if len(cells) == 0 {
		return errors.Wrapf(ErrNoCells, "column %d", col)
	}
	rs.ActiveCells.AddRange(bs.Layout.ColumnCellRange(col))

	if learnOnOne {
		if chosen, has := rs.ChosenCells[col]; has {
			cells = []Cell{chosen}
		}
	}

	seg, ok := conns.MostActiveSegmentForCells(cells, prev, bs.MinThreshold)
	if !ok {
		cell := bs.Chooser.LeastUsedCell(cells, conns)
		var err error
		seg, err = conns.CreateSegment(cell)
		if err != nil {
			return errors.Wrapf(err, "creating segment on cell %d for column %d", uint32(cell), col)
		}
		rs.NewSegments++
	}

	// the segment's owner, not the requested cell, is the winner
	winner := seg.Cell
	rs.WinnerCells.Add(uint32(winner))
	rs.LearningSegments = append(rs.LearningSegments, seg)
	rs.ChosenCells[col] = winner
	return nil
}
