// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gtm

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/pkg/errors"
)

// ReindexExternalCells moves external (sensorimotor) input indices to
// outside the range of valid internal cell indices: each raw index r
// becomes cell r + numCells. The input bitmap is not modified.
func ReindexExternalCells(ext *roaring.Bitmap, numCells int) (*roaring.Bitmap, error) {
	if numCells < 0 {
		return nil, errors.Wrapf(ErrNoCells, "numCells: %d", numCells)
	}
	out := roaring.New()
	if ext == nil || ext.IsEmpty() {
		return out, nil
	}
	if uint64(ext.Maximum())+uint64(numCells) >= MaxCells {
		return nil, errors.Wrapf(ErrCellOverflow, "external index %d + %d cells", ext.Maximum(), numCells)
	}
	off := uint32(numCells)
	it := ext.Iterator()
	for it.HasNext() {
		out.Add(it.Next() + off)
	}
	return out, nil
}

// MergeExternal returns the union of prevActive and the reindexed
// external cells, for use as the previous active cells of the next step.
// Neither input is modified.
func MergeExternal(prevActive, ext *roaring.Bitmap, numCells int) (*roaring.Bitmap, error) {
	rx, err := ReindexExternalCells(ext, numCells)
	if err != nil {
		return nil, err
	}
	if prevActive != nil {
		rx.Or(prevActive)
	}
	return rx, nil
}
