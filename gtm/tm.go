// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gtm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/emer/emergent/v2/params"
	"github.com/emer/emergent/v2/timer"
	"github.com/goki/ki/ki"
	"github.com/goki/ki/kit"
)

// gtm.TM is a General Temporal Memory model object holding the state that
// the burst phase carries across steps: the chosen cell of each column,
// the last step's active and winner cells, and the step counters.
// The Connections store is owned by the caller and passed to each step.
type TM struct {

	// overall name of the model -- used for param Sheet selection (#Name)
	Nm string

	// space-separated classes for param Sheet selection (.Class)
	Cls string

	// columns and cells per column
	Layout Layout

	// burst phase parameters
	Burst BurstParams `view:"add-fields"`

	// step and sequence counters
	Time Time

	// winner cell chosen for each column since the last Reset
	ChosenCells ChosenCells `view:"-"`

	// cells activated by the last step
	ActiveCells *roaring.Bitmap `view:"-"`

	// winner cells of the last step
	WinnerCells *roaring.Bitmap `view:"-"`

	// learning segments of the last step, in ascending column order
	LearningSegments []Segment `view:"-"`

	// burst phase configured from Layout and Burst -- set by Build
	Burster *Burster `view:"-"`

	// timers for each major function
	FunTimes map[string]*timer.Time `view:"-"`
}

var KiT_TM = kit.Types.AddType(&TM{}, TMProps)

var TMProps = ki.Props{}

// NewTM returns a new TM with default parameters for the given layout.
// Build must be called before use.
func NewTM(name string, numColumns, cellsPerColumn int) *TM {
	tm := &TM{Nm: name}
	tm.Layout = Layout{NumColumns: numColumns, CellsPerColumn: cellsPerColumn}
	tm.Defaults()
	return tm
}

// params.Styler interface methods

func (tm *TM) Name() string     { return tm.Nm }
func (tm *TM) TypeName() string { return "TM" }
func (tm *TM) Class() string    { return tm.Cls }
func (tm *TM) Object() any      { return tm }

// Defaults sets all the default parameters
func (tm *TM) Defaults() {
	tm.Burst.Defaults()
}

// UpdateParams must be called after any changes to parameters.
// If the TM is built, the Burster is reconfigured, which also
// reseeds the RandomTie source.
func (tm *TM) UpdateParams() {
	tm.Burst.Update()
	if tm.Burster != nil {
		tm.Burster = &Burster{Layout: &tm.Layout, Chooser: NewLeastUsed(tm.Burst.TieBreak, tm.Burst.Seed), MinThreshold: tm.Burst.MinThreshold}
	}
}

// ApplyParams applies given parameter style Sheet to this TM.
// Calls UpdateParams if anything was set.
// If setMsg is true, then a message is printed to confirm each parameter that is set.
// returns true if any params were set, and error if there were any errors.
func (tm *TM) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	app, err := pars.Apply(tm, setMsg)
	if app {
		tm.UpdateParams()
	}
	return app, err
}

// Build validates the layout and parameters and constructs the Burster.
// A layout without cells or a negative MinThreshold is an error.
func (tm *TM) Build() error {
	bs, err := NewBurster(&tm.Layout, NewLeastUsed(tm.Burst.TieBreak, tm.Burst.Seed), tm.Burst.MinThreshold)
	if err != nil {
		return err
	}
	tm.Burster = bs
	tm.FunTimes = make(map[string]*timer.Time)
	tm.Reset()
	tm.Time.Reset()
	return nil
}

// NumberOfCells returns the number of internal cells
func (tm *TM) NumberOfCells() int {
	return tm.Layout.NumberOfCells()
}

// Reset marks a sequence boundary: chosen cells and the last step's
// state are cleared.
func (tm *TM) Reset() {
	tm.ChosenCells = make(ChosenCells)
	tm.ActiveCells = roaring.New()
	tm.WinnerCells = roaring.New()
	tm.LearningSegments = nil
	tm.Time.NewSeq()
}

// BurstColumns runs the burst phase for one step with the given active and
// predicted columns and previous active cells, using conns only for the
// duration of the call. On success the TM's ChosenCells and last-step
// state are replaced by the result. On error nothing in the TM changes.
func (tm *TM) BurstColumns(activeCols, predictedCols, prevActive *roaring.Bitmap, conns Connections) (*BurstResult, error) {
	if tm.Burster == nil {
		return nil, ErrNotBuilt
	}
	tm.FunTimerStart("BurstColumns")
	defer tm.FunTimerStop("BurstColumns")
	in := &BurstInput{
		ActiveColumns:    activeCols,
		PredictedColumns: predictedCols,
		PrevActiveCells:  prevActive,
		LearnOnOneCell:   tm.Burst.LearnOnOneCell,
		ChosenCells:      tm.ChosenCells,
	}
	rs, err := tm.Burster.BurstColumns(in, conns)
	if err != nil {
		return nil, err
	}
	tm.ChosenCells = rs.ChosenCells
	tm.ActiveCells = rs.ActiveCells
	tm.WinnerCells = rs.WinnerCells
	tm.LearningSegments = rs.LearningSegments
	tm.Time.StepInc()
	return rs, nil
}

// ReindexActiveExternalCells moves external input indices above the
// internal cells of this TM.
func (tm *TM) ReindexActiveExternalCells(ext *roaring.Bitmap) (*roaring.Bitmap, error) {
	return ReindexExternalCells(ext, tm.NumberOfCells())
}

// PrevActiveWithExternal returns prevActive merged with the reindexed
// external cells.
func (tm *TM) PrevActiveWithExternal(prevActive, ext *roaring.Bitmap) (*roaring.Bitmap, error) {
	return MergeExternal(prevActive, ext, tm.NumberOfCells())
}

// FunTimerStart starts function timer for given function name -- ensures creation of timer
func (tm *TM) FunTimerStart(fun string) {
	if tm.FunTimes == nil {
		tm.FunTimes = make(map[string]*timer.Time)
	}
	ft, ok := tm.FunTimes[fun]
	if !ok {
		ft = &timer.Time{}
		tm.FunTimes[fun] = ft
	}
	ft.Start()
}

// FunTimerStop stops function timer -- timer must already exist
func (tm *TM) FunTimerStop(fun string) {
	ft := tm.FunTimes[fun]
	ft.Stop()
}

// TimerReport returns a report of the amount of time spent in each function
func (tm *TM) TimerReport() string {
	var b strings.Builder
	fmt.Fprintf(&b, "TimerReport: %v, Steps: %v\n", tm.Nm, tm.Time.StepTot)
	fmt.Fprintf(&b, "\t%13s \t%7s\t%7s\n", "Function Name", "Secs", "Pct")
	fnms := make([]string, 0, len(tm.FunTimes))
	for k := range tm.FunTimes {
		fnms = append(fnms, k)
	}
	sort.Strings(fnms)
	secs := make([]float64, len(fnms))
	tot := 0.0
	for i, fn := range fnms {
		secs[i] = tm.FunTimes[fn].TotalSecs()
		tot += secs[i]
	}
	for i, fn := range fnms {
		pct := 0.0
		if tot > 0 {
			pct = 100 * (secs[i] / tot)
		}
		fmt.Fprintf(&b, "\t%13s \t%7.3f\t%7.1f\n", fn, secs[i], pct)
	}
	fmt.Fprintf(&b, "\t%13s \t%7.3f\n", "Total", tot)
	return b.String()
}
