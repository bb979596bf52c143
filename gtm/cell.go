// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gtm

import (
	"fmt"

	"github.com/pkg/errors"
)

// Cell is the index of a cell. Internal cells occupy [0, NumberOfCells),
// reindexed external cells follow directly after.
type Cell uint32

// Column returns the column that owns this cell.
func (c Cell) Column(cellsPerColumn int) uint32 {
	return uint32(c) / uint32(cellsPerColumn)
}

func (c Cell) String() string {
	return fmt.Sprintf("Cell(%d)", uint32(c))
}

// CellLayout is the cell representation used by the burst phase:
// how columns map onto contiguous ranges of cells.
type CellLayout interface {
	// NumberOfCells is the total number of internal cells.
	NumberOfCells() int

	// CellsForColumn returns the cells of the column in ascending order.
	CellsForColumn(col uint32) []Cell

	// ColumnForCell returns the column that owns the cell.
	ColumnForCell(cell Cell) uint32

	// ColumnCellRange returns the [start, end) cell range of the column.
	ColumnCellRange(col uint32) (uint64, uint64)

	// NumberOfColumns is the number of columns.
	NumberOfColumns() int

	// Validate returns an error if the layout cannot be used.
	Validate() error
}

// Layout is a fixed number of columns, each owning CellsPerColumn
// contiguous cells.
type Layout struct {

	// number of columns
	NumColumns int

	// number of cells in each column, must be >= 1
	CellsPerColumn int
}

// NewLayout returns a validated Layout.
func NewLayout(numColumns, cellsPerColumn int) (*Layout, error) {
	ly := &Layout{NumColumns: numColumns, CellsPerColumn: cellsPerColumn}
	if err := ly.Validate(); err != nil {
		return nil, err
	}
	return ly, nil
}

func (ly *Layout) NumberOfCells() int   { return ly.NumColumns * ly.CellsPerColumn }
func (ly *Layout) NumberOfColumns() int { return ly.NumColumns }

// Validate checks that the layout has at least one column, and at least
// one cell per column, and fits into the 32-bit cell index space.
func (ly *Layout) Validate() error {
	if ly.CellsPerColumn < 1 {
		return errors.Wrapf(ErrNoCells, "CellsPerColumn: %d", ly.CellsPerColumn)
	}
	if ly.NumColumns < 1 {
		return errors.Wrapf(ErrNoColumns, "NumColumns: %d", ly.NumColumns)
	}
	if uint64(ly.NumColumns)*uint64(ly.CellsPerColumn) > MaxCells {
		return errors.Wrapf(ErrCellOverflow, "%d columns x %d cells", ly.NumColumns, ly.CellsPerColumn)
	}
	return nil
}

func (ly *Layout) CellsForColumn(col uint32) []Cell {
	st := int(col) * ly.CellsPerColumn
	cells := make([]Cell, ly.CellsPerColumn)
	for i := range cells {
		cells[i] = Cell(st + i)
	}
	return cells
}

func (ly *Layout) ColumnForCell(cell Cell) uint32 {
	return cell.Column(ly.CellsPerColumn)
}

// ColumnCellRange returns the [start, end) cell range of the column,
// in the form used by roaring AddRange.
func (ly *Layout) ColumnCellRange(col uint32) (uint64, uint64) {
	st := uint64(col) * uint64(ly.CellsPerColumn)
	return st, st + uint64(ly.CellsPerColumn)
}
