// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gtm

// BurstParams are the parameters of the burst phase
type BurstParams struct {

	// minimum number of synapses from a segment onto previous active cells
	// (including reindexed external cells) for the segment to be a match.
	// With 0, any existing segment of the candidate cells matches.
	MinThreshold int `def:"10" min:"0"`

	// if true, the winner cell for each column is fixed between resets:
	// once a column has a chosen cell, only that cell is considered.
	LearnOnOneCell bool `def:"false"`

	// how the least-used cell is chosen among cells with equal segment counts
	TieBreak TieBreak `def:"LowestIndex"`

	// random seed used by the RandomTie policy
	Seed int64 `def:"1"`
}

func (bp *BurstParams) Defaults() {
	bp.MinThreshold = 10
	bp.LearnOnOneCell = false
	bp.TieBreak = LowestIndex
	bp.Seed = 1
}

// Update must be called after any changes to parameters
func (bp *BurstParams) Update() {
}
