// Copyright 2024 The Deltajoin Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package dataflow holds the small runtime model the renderer builds
// its graph out of: updates, collections, arrangements, and the
// timestamp arithmetic the delta-join's correctness argument depends
// on. Constructing and maintaining the index structure behind an
// Arrangement, and actually scheduling operators across workers, are
// external collaborators (spec §1) -- this package models only the
// handles the renderer consumes and the timestamp arithmetic it
// performs directly.
package dataflow

import "fmt"

// Timestamp is a point in the lattice updates are ordered by. The only
// operations the renderer needs are the partial order (Less) and the
// least upper bound (Join) used to stamp the output of a lookup.
type Timestamp interface {
	Less(other Timestamp) bool
	Join(other Timestamp) Timestamp
	fmt.Stringer
}

// Moment is a plain logical time: the clock every collection this
// renderer produces is stamped with.
type Moment int64

func (m Moment) Less(other Timestamp) bool {
	return m < other.(Moment)
}

func (m Moment) Join(other Timestamp) Timestamp {
	o := other.(Moment)
	if m > o {
		return m
	}
	return o
}

func (m Moment) String() string {
	return fmt.Sprintf("t%d", int64(m))
}

// Subtract returns the immediate predecessor of t. The lookup operator
// uses it to compute the "just before" timestamp its anti-join
// compensation term needs (spec §4.3, §9).
func (m Moment) Subtract() Moment {
	return m - 1
}

// Subtract is a function from an inner timestamp to its immediate
// predecessor, supplied by the caller of render_delta_join (spec §6)
// and threaded down into every lookup in every delta stream (spec §9).
type Subtract func(Timestamp) Timestamp

// MomentSubtract is the Subtract implementation for plain Moment
// clocks.
func MomentSubtract(t Timestamp) Timestamp {
	return t.(Moment).Subtract()
}

// Flavor is the alt/neu tiebreak the renderer assigns a traversal step
// against a peer (spec GLOSSARY, §4.4d): alt restricts a lookup to
// peer updates strictly before the current row's time, neu allows peer
// updates up to and including it. render/lookup.go's visible function
// is where this distinction actually takes effect -- see its doc
// comment and DESIGN.md for why the refinement lives there directly
// rather than behind a separate lattice-valued timestamp type.
type Flavor int

const (
	Alt Flavor = iota
	Neu
)

func (f Flavor) String() string {
	if f == Alt {
		return "alt"
	}
	return "neu"
}
