// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conn

import (
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

// WriteSnapshot writes the state of the store in compact binary CBOR form
func (cn *Connections) WriteSnapshot(w io.Writer) error {
	return errors.Wrap(cbor.NewEncoder(w).Encode(cn.State()), "conn.WriteSnapshot")
}

// ReadSnapshot replaces the contents of the store from a CBOR snapshot
// written by WriteSnapshot
func (cn *Connections) ReadSnapshot(r io.Reader) error {
	st := &State{}
	if err := cbor.NewDecoder(r).Decode(st); err != nil {
		return errors.Wrap(err, "conn.ReadSnapshot")
	}
	return cn.SetState(st)
}
