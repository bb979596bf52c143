// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gtm

import (
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/pkg/errors"
)

// testSeg is a segment of testConns with the presynaptic cells of its synapses
type testSeg struct {
	cell   Cell
	presyn []uint32
}

// testConns is a minimal Connections store for exercising the burst phase.
// Overlap is the number of presynaptic cells in the input; the later
// segment wins ties.
type testConns struct {
	segs    []testSeg
	created []Cell

	// if set, CreateSegment assigns the new segment to this cell instead
	redirect *Cell

	// if set, CreateSegment fails
	failCreate error
}

func (tc *testConns) addSegment(cell Cell, presyn ...uint32) Segment {
	tc.segs = append(tc.segs, testSeg{cell: cell, presyn: presyn})
	return Segment{Idx: len(tc.segs) - 1, Cell: cell}
}

func (tc *testConns) MostActiveSegmentForCells(cells []Cell, input *roaring.Bitmap, minThreshold int) (Segment, bool) {
	best := Segment{}
	found := false
	max := minThreshold
	for _, c := range cells {
		for si, sg := range tc.segs {
			if sg.cell != c {
				continue
			}
			n := 0
			for _, p := range sg.presyn {
				if input.Contains(p) {
					n++
				}
			}
			if n >= max {
				max = n
				best = Segment{Idx: si, Cell: sg.cell}
				found = true
			}
		}
	}
	return best, found
}

func (tc *testConns) CreateSegment(cell Cell) (Segment, error) {
	if tc.failCreate != nil {
		return Segment{}, tc.failCreate
	}
	tc.created = append(tc.created, cell)
	if tc.redirect != nil {
		cell = *tc.redirect
	}
	return tc.addSegment(cell), nil
}

func (tc *testConns) NumberOfSegments(cell Cell) int {
	n := 0
	for _, sg := range tc.segs {
		if sg.cell == cell {
			n++
		}
	}
	return n
}

func newTestBurster(t *testing.T, numCells, cellsPerColumn, minThr int) *Burster {
	bs, err := NewBurster(&Layout{NumColumns: numCells / cellsPerColumn, CellsPerColumn: cellsPerColumn}, &LeastUsed{}, minThr)
	if err != nil {
		t.Fatal(err)
	}
	return bs
}

func cmprCells(t *testing.T, msg string, got *roaring.Bitmap, trg ...uint32) {
	t.Helper()
	if !got.Equals(roaring.BitmapOf(trg...)) {
		t.Errorf("%v err: got: %v, trg: %v\n", msg, got.ToArray(), trg)
	}
}

func TestBurstUnpredictedNoPrevActive(t *testing.T) {
	bs := newTestBurster(t, 8, 4, 1)
	tc := &testConns{}
	in := &BurstInput{
		ActiveColumns:    roaring.BitmapOf(0, 1),
		PredictedColumns: roaring.BitmapOf(1),
		PrevActiveCells:  roaring.New(),
		ChosenCells:      ChosenCells{},
	}
	rs, err := bs.BurstColumns(in, tc)
	if err != nil {
		t.Fatal(err)
	}
	cmprCells(t, "unpredicted", rs.UnpredictedColumns, 0)
	cmprCells(t, "active", rs.ActiveCells, 0, 1, 2, 3)
	cmprCells(t, "winners", rs.WinnerCells, 0)
	if len(tc.created) != 1 || tc.created[0] != 0 {
		t.Errorf("created err: got: %v, trg: [0]\n", tc.created)
	}
	if len(rs.LearningSegments) != 1 || rs.LearningSegments[0] != (Segment{Idx: 0, Cell: 0}) {
		t.Errorf("learning segments err: got: %v\n", rs.LearningSegments)
	}
	if rs.NewSegments != 1 {
		t.Errorf("new segments err: got: %v, trg: 1\n", rs.NewSegments)
	}
	if len(rs.ChosenCells) != 1 || rs.ChosenCells[0] != 0 {
		t.Errorf("chosen err: got: %v, trg: map[0:0]\n", rs.ChosenCells)
	}
	if len(in.ChosenCells) != 0 {
		t.Errorf("input ChosenCells modified: %v\n", in.ChosenCells)
	}
}

func TestBurstLearnOnOneCell(t *testing.T) {
	bs := newTestBurster(t, 8, 4, 1)
	tc := &testConns{}
	tc.addSegment(0, 5, 6) // would match, but cell 0 is not a candidate
	sg2 := tc.addSegment(2, 5)
	in := &BurstInput{
		ActiveColumns:    roaring.BitmapOf(0, 1),
		PredictedColumns: roaring.BitmapOf(1),
		PrevActiveCells:  roaring.BitmapOf(5),
		LearnOnOneCell:   true,
		ChosenCells:      ChosenCells{0: 2},
	}
	rs, err := bs.BurstColumns(in, tc)
	if err != nil {
		t.Fatal(err)
	}
	cmprCells(t, "active", rs.ActiveCells, 0, 1, 2, 3)
	cmprCells(t, "winners", rs.WinnerCells, 2)
	if len(tc.created) != 0 {
		t.Errorf("no segment should be created, got: %v\n", tc.created)
	}
	if len(rs.LearningSegments) != 1 || rs.LearningSegments[0] != sg2 {
		t.Errorf("learning segments err: got: %v, trg: [%v]\n", rs.LearningSegments, sg2)
	}
	if rs.ChosenCells[0] != 2 || len(rs.ChosenCells) != 1 {
		t.Errorf("chosen err: got: %v, trg: map[0:2]\n", rs.ChosenCells)
	}

	// without stickiness the better segment on cell 0 wins
	in.LearnOnOneCell = false
	in.PrevActiveCells = roaring.BitmapOf(5, 6)
	rs, err = bs.BurstColumns(in, tc)
	if err != nil {
		t.Fatal(err)
	}
	cmprCells(t, "non-sticky winners", rs.WinnerCells, 0)
	if rs.ChosenCells[0] != 0 {
		t.Errorf("chosen must be written without stickiness: got: %v\n", rs.ChosenCells)
	}
}

func TestBurstStickyNoMatchGrowsOnChosen(t *testing.T) {
	bs := newTestBurster(t, 8, 4, 1)
	tc := &testConns{}
	in := &BurstInput{
		ActiveColumns:  roaring.BitmapOf(1),
		LearnOnOneCell: true,
		ChosenCells:    ChosenCells{1: 6},
	}
	rs, err := bs.BurstColumns(in, tc)
	if err != nil {
		t.Fatal(err)
	}
	cmprCells(t, "winners", rs.WinnerCells, 6)
	if len(tc.created) != 1 || tc.created[0] != 6 {
		t.Errorf("created err: got: %v, trg: [6]\n", tc.created)
	}
}

func TestBurstFullyPredicted(t *testing.T) {
	bs := newTestBurster(t, 16, 4, 0)
	tc := &testConns{}
	cc := ChosenCells{2: 9}
	in := &BurstInput{
		ActiveColumns:    roaring.BitmapOf(0, 2, 3),
		PredictedColumns: roaring.BitmapOf(0, 2, 3),
		PrevActiveCells:  roaring.BitmapOf(1, 2),
		ChosenCells:      cc,
	}
	rs, err := bs.BurstColumns(in, tc)
	if err != nil {
		t.Fatal(err)
	}
	if !rs.UnpredictedColumns.IsEmpty() || !rs.ActiveCells.IsEmpty() || !rs.WinnerCells.IsEmpty() || len(rs.LearningSegments) != 0 {
		t.Errorf("expected empty result, got: %v %v %v\n", rs.ActiveCells.ToArray(), rs.WinnerCells.ToArray(), rs.LearningSegments)
	}
	if len(rs.ChosenCells) != 1 || rs.ChosenCells[2] != 9 {
		t.Errorf("chosen err: got: %v, trg: map[2:9]\n", rs.ChosenCells)
	}
	if len(tc.created) != 0 {
		t.Errorf("no segment should be created, got: %v\n", tc.created)
	}
}

func TestBurstNilInputs(t *testing.T) {
	bs := newTestBurster(t, 8, 4, 0)
	rs, err := bs.BurstColumns(&BurstInput{}, &testConns{})
	if err != nil {
		t.Fatal(err)
	}
	if !rs.ActiveCells.IsEmpty() || rs.ChosenCells == nil {
		t.Errorf("expected empty result with non-nil ChosenCells\n")
	}
}

func TestBurstColumnOrder(t *testing.T) {
	bs := newTestBurster(t, 12, 3, 2)
	tc := &testConns{}
	in := &BurstInput{
		ActiveColumns: roaring.BitmapOf(3, 0, 2),
		ChosenCells:   ChosenCells{},
	}
	rs, err := bs.BurstColumns(in, tc)
	if err != nil {
		t.Fatal(err)
	}
	trg := []Cell{0, 6, 9}
	for i, c := range trg {
		if tc.created[i] != c {
			t.Errorf("creation order err: idx: %v, got: %v, trg: %v\n", i, tc.created[i], c)
		}
		if rs.LearningSegments[i].Cell != c {
			t.Errorf("learning segment order err: idx: %v, got: %v, trg: %v\n", i, rs.LearningSegments[i], c)
		}
	}
}

func TestBurstLeastUsedWithinColumn(t *testing.T) {
	bs := newTestBurster(t, 8, 4, 3)
	tc := &testConns{}
	tc.addSegment(4, 1)
	tc.addSegment(5, 1)
	tc.addSegment(7)
	rs, err := bs.BurstColumns(&BurstInput{ActiveColumns: roaring.BitmapOf(1), PrevActiveCells: roaring.BitmapOf(1)}, tc)
	if err != nil {
		t.Fatal(err)
	}
	cmprCells(t, "winners", rs.WinnerCells, 6)
}

func TestBurstWinnerFromSegmentOwner(t *testing.T) {
	bs := newTestBurster(t, 8, 4, 1)
	owner := Cell(3)
	tc := &testConns{redirect: &owner}
	rs, err := bs.BurstColumns(&BurstInput{ActiveColumns: roaring.BitmapOf(0)}, tc)
	if err != nil {
		t.Fatal(err)
	}
	if tc.created[0] != 0 {
		t.Errorf("requested cell err: got: %v, trg: 0\n", tc.created[0])
	}
	cmprCells(t, "winners", rs.WinnerCells, 3)
	if rs.ChosenCells[0] != 3 {
		t.Errorf("chosen err: got: %v, trg: map[0:3]\n", rs.ChosenCells)
	}
}

func TestBurstInvariants(t *testing.T) {
	const ncol, cpc = 32, 4
	bs := newTestBurster(t, ncol*cpc, cpc, 2)
	tc := &testConns{}
	cc := ChosenCells{}
	prev := roaring.New()
	for step := 0; step < 20; step++ {
		act := roaring.New()
		pred := roaring.New()
		for c := 0; c < ncol; c++ {
			if (c*7+step*3)%5 == 0 {
				act.Add(uint32(c))
			}
			if (c+step)%4 == 0 {
				pred.Add(uint32(c))
			}
		}
		rs, err := bs.BurstColumns(&BurstInput{ActiveColumns: act, PredictedColumns: pred, PrevActiveCells: prev, LearnOnOneCell: step%2 == 0, ChosenCells: cc}, tc)
		if err != nil {
			t.Fatal(err)
		}
		unpred := roaring.AndNot(act, pred)
		nun := int(unpred.GetCardinality())
		if int(rs.ActiveCells.GetCardinality()) != nun*cpc {
			t.Errorf("step %v: active cells: got: %v, trg: %v\n", step, rs.ActiveCells.GetCardinality(), nun*cpc)
		}
		if int(rs.WinnerCells.GetCardinality()) != nun || len(rs.LearningSegments) != nun {
			t.Errorf("step %v: winners: %v, segments: %v, trg: %v\n", step, rs.WinnerCells.GetCardinality(), len(rs.LearningSegments), nun)
		}
		for _, sg := range rs.LearningSegments {
			col := sg.Cell.Column(cpc)
			if !unpred.Contains(col) {
				t.Errorf("step %v: winner %v in non-bursting column %v\n", step, sg.Cell, col)
			}
			if rs.ChosenCells[col] != sg.Cell {
				t.Errorf("step %v: chosen for column %v: got: %v, trg: %v\n", step, col, rs.ChosenCells[col], sg.Cell)
			}
			if !rs.ActiveCells.Contains(uint32(sg.Cell)) {
				t.Errorf("step %v: winner %v not active\n", step, sg.Cell)
			}
		}
		cc = rs.ChosenCells
		prev = rs.WinnerCells
	}
}

func TestBurstStickinessRepeat(t *testing.T) {
	bs := newTestBurster(t, 16, 4, 1)
	tc := &testConns{}
	tc.addSegment(9, 1, 2)
	in := &BurstInput{
		ActiveColumns:   roaring.BitmapOf(2),
		PrevActiveCells: roaring.BitmapOf(1, 2),
		LearnOnOneCell:  true,
		ChosenCells:     ChosenCells{2: 9},
	}
	rs1, err := bs.BurstColumns(in, tc)
	if err != nil {
		t.Fatal(err)
	}
	rs2, err := bs.BurstColumns(in, tc)
	if err != nil {
		t.Fatal(err)
	}
	if rs1.ChosenCells[2] != 9 || rs2.ChosenCells[2] != 9 {
		t.Errorf("sticky winner err: got: %v, %v, trg: 9\n", rs1.ChosenCells[2], rs2.ChosenCells[2])
	}
}

func TestBurstChosenCellOutsideColumn(t *testing.T) {
	bs := newTestBurster(t, 8, 4, 1)
	for _, cc := range []ChosenCells{{0: 7}, {1: 40}} {
		tc := &testConns{}
		in := &BurstInput{
			ActiveColumns:  roaring.BitmapOf(0, 1),
			LearnOnOneCell: true,
			ChosenCells:    cc,
		}
		rs, err := bs.BurstColumns(in, tc)
		if errors.Cause(err) != ErrChosenCell || rs != nil {
			t.Errorf("chosen %v err: got: %v\n", cc, err)
		}
		if len(tc.created) != 0 {
			t.Errorf("store touched on rejected call: %v\n", tc.created)
		}
	}

	// entries of columns that do not burst, or without stickiness, are not used
	tc := &testConns{}
	in := &BurstInput{
		ActiveColumns:    roaring.BitmapOf(0, 1),
		PredictedColumns: roaring.BitmapOf(1),
		LearnOnOneCell:   true,
		ChosenCells:      ChosenCells{1: 2},
	}
	if _, err := bs.BurstColumns(in, tc); err != nil {
		t.Errorf("non-bursting chosen entry rejected: %v\n", err)
	}
	in = &BurstInput{ActiveColumns: roaring.BitmapOf(0), ChosenCells: ChosenCells{0: 7}}
	rs, err := bs.BurstColumns(in, tc)
	if err != nil {
		t.Fatal(err)
	}
	if rs.ChosenCells[0] == 7 || rs.ChosenCells[0] > 3 {
		t.Errorf("winner outside column: got: %v\n", rs.ChosenCells[0])
	}
}

func TestBurstErrors(t *testing.T) {
	tc := &testConns{}
	bs := newTestBurster(t, 8, 4, 1)
	_, err := bs.BurstColumns(&BurstInput{ActiveColumns: roaring.BitmapOf(0, 2)}, tc)
	if errors.Cause(err) != ErrColumnRange {
		t.Errorf("column range err: got: %v\n", err)
	}
	if len(tc.created) != 0 {
		t.Errorf("store touched on rejected call: %v\n", tc.created)
	}

	_, err = bs.BurstColumns(&BurstInput{ActiveColumns: roaring.BitmapOf(0)}, nil)
	if err != ErrNoConnections {
		t.Errorf("nil conns err: got: %v\n", err)
	}

	bs.MinThreshold = -1
	_, err = bs.BurstColumns(&BurstInput{ActiveColumns: roaring.BitmapOf(0)}, tc)
	if errors.Cause(err) != ErrNegativeThreshold {
		t.Errorf("threshold err: got: %v\n", err)
	}

	_, err = NewBurster(&Layout{NumColumns: 2, CellsPerColumn: 0}, nil, 0)
	if errors.Cause(err) != ErrNoCells {
		t.Errorf("no cells err: got: %v\n", err)
	}

	bs = newTestBurster(t, 8, 4, 1)
	_, err = bs.BurstColumns(nil, tc)
	if err != ErrNoInput {
		t.Errorf("nil input err: got: %v\n", err)
	}

	bs = &Burster{Layout: &Layout{NumColumns: 2, CellsPerColumn: 4}}
	_, err = bs.BurstColumns(&BurstInput{ActiveColumns: roaring.BitmapOf(0)}, tc)
	if err != ErrNoChooser {
		t.Errorf("nil chooser err: got: %v\n", err)
	}
	if bs.Chooser != nil {
		t.Errorf("Validate must not set a chooser\n")
	}
	if nb, err := NewBurster(&Layout{NumColumns: 2, CellsPerColumn: 4}, nil, 0); err != nil || nb.Chooser == nil {
		t.Errorf("NewBurster default chooser err: got: %v\n", err)
	}

	fail := errors.New("store full")
	bs = newTestBurster(t, 8, 4, 1)
	_, err = bs.BurstColumns(&BurstInput{ActiveColumns: roaring.BitmapOf(0)}, &testConns{failCreate: fail})
	if errors.Cause(err) != fail {
		t.Errorf("create err: got: %v\n", err)
	}
}
