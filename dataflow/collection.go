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

package dataflow

// Collection is a (possibly empty) stream of updates produced by a
// dataflow operator. The renderer builds collections by composing
// operators purely functionally over a finite, known set of updates;
// actually scheduling an always-on operator graph across workers is the
// surrounding runtime's job (spec §1, §5).
type Collection struct {
	Updates []Update
}

// NewCollection packs the given updates into a Collection.
func NewCollection(updates ...Update) Collection {
	c := Collection{Updates: make([]Update, len(updates))}
	copy(c.Updates, updates)
	return c
}

// Empty returns a Collection with no updates.
func Empty() Collection {
	return Collection{}
}

// Concat returns the union of c and other: every update from both,
// with no deduplication (this is the union of changelogs, not of
// contents -- two equal rows at the same time with diffs 1 and -1 both
// appear, and net out downstream).
func (c Collection) Concat(other Collection) Collection {
	out := make([]Update, 0, len(c.Updates)+len(other.Updates))
	out = append(out, c.Updates...)
	out = append(out, other.Updates...)
	return Collection{Updates: out}
}

// ConcatAll concats every collection in cs, in order.
func ConcatAll(cs ...Collection) Collection {
	out := Empty()
	for _, c := range cs {
		out = out.Concat(c)
	}
	return out
}

// Len returns the number of updates in the collection.
func (c Collection) Len() int {
	return len(c.Updates)
}
