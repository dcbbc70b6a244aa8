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

// Region accumulates the error collections produced while building one
// self-contained piece of the graph (one delta stream, or the whole
// render call), so they can be concatenated cleanly before leaving the
// region (spec §4.4, §4.5).
type Region struct {
	errors []Collection
}

// NewRegion returns an empty Region.
func NewRegion() *Region {
	return &Region{}
}

// Add appends c to the region's error set.
func (r *Region) Add(c Collection) {
	if c.Len() == 0 {
		return
	}
	r.errors = append(r.errors, c)
}

// Errors returns the concatenation of every error collection added to
// the region so far.
func (r *Region) Errors() Collection {
	return ConcatAll(r.errors...)
}
