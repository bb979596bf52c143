// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conn

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/c2h5oh/datasize"
	"github.com/goki/ki/ints"
)

// SizeReport returns a string reporting the number of segments and
// synapses in the store, and their memory footprint.
func (cn *Connections) SizeReport() string {
	var b strings.Builder
	maxSegs := 0
	used := 0
	for _, sis := range cn.CellSegs {
		maxSegs = ints.MaxInt(maxSegs, len(sis))
		if len(sis) > 0 {
			used++
		}
	}
	segMem := len(cn.Segs) * int(unsafe.Sizeof(SegData{}))
	idxMem := 0
	for si := range cn.Segs {
		idxMem += len(cn.Segs[si].Syns) * int(unsafe.Sizeof(int(0)))
	}
	synMem := len(cn.Syns) * int(unsafe.Sizeof(Synapse{}))
	fmt.Fprintf(&b, "%14s:\t %d\t Used: %d\t MaxSegsPerCell: %d\n", "Cells", cn.NCells, used, maxSegs)
	fmt.Fprintf(&b, "%14s:\t %d\t SegMem: %v\n", "Segments", len(cn.Segs), (datasize.ByteSize)(segMem+idxMem).HumanReadable())
	fmt.Fprintf(&b, "%14s:\t %d\t Freed: %d\t SynMem: %v\n", "Synapses", cn.NLiveSyns, len(cn.Syns)-cn.NLiveSyns, (datasize.ByteSize)(synMem).HumanReadable())
	return b.String()
}
