// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gtm

// gtm.Time contains the discrete time-step counters of a TM
type Time struct {

	// step counter within the current sequence: number of burst steps
	// since the last sequence reset.
	Step int

	// total step count. this increments continuously from whenever
	// the counters were last reset with Reset.
	StepTot int

	// sequence counter: number of sequence boundaries (TM.Reset calls)
	// since the counters were last reset.
	Seq int
}

// Reset resets the counters all back to zero
func (tm *Time) Reset() {
	tm.Step = 0
	tm.StepTot = 0
	tm.Seq = 0
}

// StepInc increments at the step level
func (tm *Time) StepInc() {
	tm.Step++
	tm.StepTot++
}

// NewSeq starts a new sequence
func (tm *Time) NewSeq() {
	tm.Step = 0
	tm.Seq++
}
