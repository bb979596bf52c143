// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conn

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/emer/gtm/gtm"
	"github.com/goki/ki/indent"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// State is the learned state of a Connections store in a form that
// can be encoded: live synapses only, grouped by segment.
type State struct {
	NumCells int        `json:"NumCells" cbor:"1,keyasint"`
	Params   Params     `json:"Params" cbor:"2,keyasint"`
	Segments []SegState `json:"Segments" cbor:"3,keyasint"`
}

// SegState is one segment of a State
type SegState struct {
	Cell     uint32     `json:"Cell" cbor:"1,keyasint"`
	Synapses []SynState `json:"Synapses" cbor:"2,keyasint"`
}

// SynState is one live synapse of a SegState
type SynState struct {
	Presyn uint32  `json:"Presyn" cbor:"1,keyasint"`
	Perm   float32 `json:"Perm" cbor:"2,keyasint"`
}

// State returns the current state of the store
func (cn *Connections) State() *State {
	st := &State{NumCells: cn.NCells, Params: cn.Params, Segments: make([]SegState, len(cn.Segs))}
	for si := range cn.Segs {
		sd := &cn.Segs[si]
		ss := &st.Segments[si]
		ss.Cell = uint32(sd.Cell)
		ss.Synapses = make([]SynState, len(sd.Syns))
		for i, syi := range sd.Syns {
			sy := &cn.Syns[syi]
			ss.Synapses[i] = SynState{Presyn: sy.Presyn, Perm: sy.Perm}
		}
	}
	return st
}

// SetState replaces the contents of the store with st.
// Segment indexes are preserved; synapses are renumbered.
// On error the store is left empty.
func (cn *Connections) SetState(st *State) error {
	if st.NumCells < 0 {
		cn.Init(0)
		return errors.Wrapf(ErrCellRange, "NumCells: %d", st.NumCells)
	}
	cn.Init(st.NumCells)
	cn.Params = st.Params
	for si := range st.Segments {
		ss := &st.Segments[si]
		seg, err := cn.CreateSegment(gtm.Cell(ss.Cell))
		if err == nil {
			for _, sy := range ss.Synapses {
				if _, err = cn.CreateSynapse(seg, sy.Presyn, sy.Perm); err != nil {
					break
				}
			}
		}
		if err != nil {
			cn.Init(st.NumCells)
			return errors.Wrapf(err, "segment %d", si)
		}
	}
	return nil
}

// SaveJSON saves the store to a JSON-formatted file.
// If filename has .gz extension, then file is gzip compressed.
func (cn *Connections) SaveJSON(filename string) error {
	fp, err := os.Create(filename)
	if err != nil {
		log.Println(err)
		return err
	}
	defer fp.Close()
	if filepath.Ext(filename) == ".gz" {
		gzw := gzip.NewWriter(fp)
		err = cn.WriteJSON(gzw)
		if cerr := gzw.Close(); err == nil {
			err = cerr
		}
	} else {
		bw := bufio.NewWriter(fp)
		err = cn.WriteJSON(bw)
		if ferr := bw.Flush(); err == nil {
			err = ferr
		}
	}
	if err != nil {
		log.Println(err)
	}
	return err
}

// OpenJSON opens the store from a JSON-formatted file.
// If filename has .gz extension, then file is gzip uncompressed.
func (cn *Connections) OpenJSON(filename string) error {
	fp, err := os.Open(filename)
	if err != nil {
		log.Println(err)
		return err
	}
	defer fp.Close()
	if filepath.Ext(filename) == ".gz" {
		gzr, err := gzip.NewReader(fp)
		if err != nil {
			log.Println(err)
			return err
		}
		defer gzr.Close()
		return cn.ReadJSON(gzr)
	}
	return cn.ReadJSON(bufio.NewReader(fp))
}

// WriteJSON writes the store in a JSON text format, one segment per
// entry with its live synapses. We build in the indentation logic to
// make it much faster and more efficient.
func (cn *Connections) WriteJSON(w io.Writer) error {
	depth := 0
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("{\n"))
	depth++
	w.Write(indent.TabBytes(depth))
	w.Write([]byte(fmt.Sprintf("\"NumCells\": %d,\n", cn.NCells)))
	w.Write(indent.TabBytes(depth))
	w.Write([]byte(fmt.Sprintf("\"Params\": {\"MaxSegmentsPerCell\": %d, \"MaxSynapsesPerSegment\": %d},\n", cn.Params.MaxSegmentsPerCell, cn.Params.MaxSynapsesPerSegment)))
	w.Write(indent.TabBytes(depth))
	ns := len(cn.Segs)
	if ns == 0 {
		w.Write([]byte("\"Segments\": null\n"))
	} else {
		w.Write([]byte("\"Segments\": [\n"))
		depth++
		for si := range cn.Segs {
			cn.writeSegJSON(w, si, depth)
			if si == ns-1 {
				w.Write([]byte("\n"))
			} else {
				w.Write([]byte(",\n"))
			}
		}
		depth--
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("]\n"))
	}
	depth--
	w.Write(indent.TabBytes(depth))
	_, err := w.Write([]byte("}\n"))
	return err
}

// writeSegJSON writes one segment, without a trailing newline
func (cn *Connections) writeSegJSON(w io.Writer, si int, depth int) {
	sd := &cn.Segs[si]
	w.Write(indent.TabBytes(depth))
	w.Write([]byte(fmt.Sprintf("{\"Cell\": %d, \"Synapses\": [", uint32(sd.Cell))))
	for i, syi := range sd.Syns {
		sy := &cn.Syns[syi]
		if i > 0 {
			w.Write([]byte(", "))
		}
		w.Write([]byte(fmt.Sprintf("{\"Presyn\": %d, \"Perm\": %s}", sy.Presyn, strconv.FormatFloat(float64(sy.Perm), 'g', -1, 32))))
	}
	w.Write([]byte("]}"))
}

// ReadJSON reads the store from the JSON text format written by WriteJSON,
// replacing the current contents.
func (cn *Connections) ReadJSON(r io.Reader) error {
	st := &State{}
	if err := json.NewDecoder(r).Decode(st); err != nil {
		log.Println(err)
		return errors.Wrap(err, "conn.ReadJSON")
	}
	return cn.SetState(st)
}
