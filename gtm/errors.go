// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gtm

import (
	"math"

	"github.com/pkg/errors"
)

// MaxCells is the size of the cell index space, shared by internal
// and reindexed external cells.
const MaxCells = math.MaxUint32 + 1

// Configuration violations. These are never recoverable within a step:
// the step fails as a whole and nothing is written.
var (
	ErrNoCells           = errors.New("gtm: column has no cells")
	ErrNoColumns         = errors.New("gtm: layout has no columns")
	ErrNegativeThreshold = errors.New("gtm: negative minimum threshold")
	ErrColumnRange       = errors.New("gtm: column index out of range")
	ErrCellOverflow      = errors.New("gtm: cell index exceeds 32-bit cell space")
	ErrNotBuilt          = errors.New("gtm: TM has not been built")
	ErrNoConnections     = errors.New("gtm: nil Connections")
	ErrNoChooser         = errors.New("gtm: nil CellChooser")
	ErrNoInput           = errors.New("gtm: nil BurstInput")
	ErrChosenCell        = errors.New("gtm: chosen cell is not in its column")
)
