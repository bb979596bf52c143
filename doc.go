// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package gtm is the overall repository for the General Temporal Memory
column-bursting code implemented in the Go language (golang).

This top-level of the repository has no functional code -- everything is organized
into the following sub-repositories:

* gtm: the core burst phase: for every column that was active but not
predicted, all of its cells become active and one winner cell is selected,
either from the best matching dendritic segment against the previous
active cells, or from a new segment grown on the least-used cell.
External (sensorimotor) input cells are reindexed into the range above
the internal cells so they can be merged into the previous active cells.

* conn: an in-memory Connections store of cells, segments and synapses
that satisfies the gtm.Connections interface, with JSON and CBOR
persistence.

* examples: these compile into runnable programs. examples/seqdemo drives
a TM over a repeating sequence with an external input stream.
*/
package gtm
