// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conn

import (
	"fmt"

	"github.com/emer/gtm/gtm"
	"github.com/goki/mat32"
	"github.com/pkg/errors"
)

// conn.Synapse holds state for the synaptic connection from a presynaptic
// cell onto a segment
type Synapse struct {

	// index of the segment that receives the synapse
	Seg int

	// presynaptic cell -- can be a reindexed external cell
	Presyn uint32

	// permanence value, in [0, 1]
	Perm float32

	// true once the synapse has been destroyed
	Freed bool
}

var SynapseVars = []string{"Perm", "Presyn", "Seg"}

var SynapseVarsMap map[string]int

func init() {
	SynapseVarsMap = make(map[string]int, len(SynapseVars))
	for i, v := range SynapseVars {
		SynapseVarsMap[v] = i
	}
}

func (sy *Synapse) VarNames() []string {
	return SynapseVars
}

// SynapseVarByName returns the index of the variable in the Synapse, or error
func SynapseVarByName(varNm string) (int, error) {
	i, ok := SynapseVarsMap[varNm]
	if !ok {
		return 0, fmt.Errorf("Synapse VarByName: variable name: %v not valid", varNm)
	}
	return i, nil
}

// VarByIndex returns variable using index (0 = first variable in SynapseVars list)
func (sy *Synapse) VarByIndex(idx int) float32 {
	switch idx {
	case 0:
		return sy.Perm
	case 1:
		return float32(sy.Presyn)
	case 2:
		return float32(sy.Seg)
	}
	return mat32.NaN()
}

// VarByName returns variable by name, or error
func (sy *Synapse) VarByName(varNm string) (float32, error) {
	i, err := SynapseVarByName(varNm)
	if err != nil {
		return mat32.NaN(), err
	}
	return sy.VarByIndex(i), nil
}

// CreateSynapse adds a synapse from presyn onto the segment with the
// given permanence, clamped to [0, 1].
func (cn *Connections) CreateSynapse(seg gtm.Segment, presyn uint32, perm float32) (int, error) {
	if seg.Idx < 0 || seg.Idx >= len(cn.Segs) {
		return -1, errors.Wrapf(ErrSegmentRange, "segment %d of %d", seg.Idx, len(cn.Segs))
	}
	sd := &cn.Segs[seg.Idx]
	if mx := cn.Params.MaxSynapsesPerSegment; mx > 0 && len(sd.Syns) >= mx {
		return -1, errors.Wrapf(ErrSynapseLimit, "segment %d: %d", seg.Idx, mx)
	}
	idx := len(cn.Syns)
	cn.Syns = append(cn.Syns, Synapse{Seg: seg.Idx, Presyn: presyn, Perm: clampPerm(perm)})
	sd.Syns = append(sd.Syns, idx)
	cn.PresynSyns[presyn] = append(cn.PresynSyns[presyn], idx)
	cn.NLiveSyns++
	return idx, nil
}

// liveSynapse returns the synapse with given index if it exists and is live
func (cn *Connections) liveSynapse(idx int) (*Synapse, error) {
	if idx < 0 || idx >= len(cn.Syns) {
		return nil, errors.Wrapf(ErrSynapseRange, "synapse %d of %d", idx, len(cn.Syns))
	}
	sy := &cn.Syns[idx]
	if sy.Freed {
		return nil, errors.Wrapf(ErrSynapseFreed, "synapse %d", idx)
	}
	return sy, nil
}

// Synapse returns a copy of the live synapse with given index
func (cn *Connections) Synapse(idx int) (Synapse, error) {
	sy, err := cn.liveSynapse(idx)
	if err != nil {
		return Synapse{}, err
	}
	return *sy, nil
}

// UpdateSynapsePermanence sets the permanence of the synapse, clamped to [0, 1]
func (cn *Connections) UpdateSynapsePermanence(idx int, perm float32) error {
	sy, err := cn.liveSynapse(idx)
	if err != nil {
		return err
	}
	sy.Perm = clampPerm(perm)
	return nil
}

// DestroySynapse removes the synapse from its segment and presynaptic cell
func (cn *Connections) DestroySynapse(idx int) error {
	sy, err := cn.liveSynapse(idx)
	if err != nil {
		return err
	}
	sy.Freed = true
	sd := &cn.Segs[sy.Seg]
	sd.Syns = removeIdx(sd.Syns, idx)
	ps := removeIdx(cn.PresynSyns[sy.Presyn], idx)
	if len(ps) == 0 {
		delete(cn.PresynSyns, sy.Presyn)
	} else {
		cn.PresynSyns[sy.Presyn] = ps
	}
	cn.NLiveSyns--
	return nil
}

// SynapsesForSegment returns the live synapse indexes of the segment in creation order
func (cn *Connections) SynapsesForSegment(seg gtm.Segment) []int {
	if seg.Idx < 0 || seg.Idx >= len(cn.Segs) {
		return nil
	}
	sis := cn.Segs[seg.Idx].Syns
	out := make([]int, len(sis))
	copy(out, sis)
	return out
}

// SynapsesForPresynapticCell returns the live synapse indexes from the cell
func (cn *Connections) SynapsesForPresynapticCell(presyn uint32) []int {
	sis := cn.PresynSyns[presyn]
	out := make([]int, len(sis))
	copy(out, sis)
	return out
}

func removeIdx(sl []int, idx int) []int {
	for i, v := range sl {
		if v == idx {
			return append(sl[:i], sl[i+1:]...)
		}
	}
	return sl
}

// clampPerm keeps a permanence within [0, 1]
func clampPerm(perm float32) float32 {
	return mat32.Max(mat32.Min(perm, 1), 0)
}
