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

package sql

// Column describes one column of an input relation's schema.
type Column struct {
	Name     string
	Source   string
	Type     string
	Nullable bool
}

// Schema is an ordered list of columns, in local (per-relation) order.
type Schema []Column

// Len returns the number of columns in the schema.
func (s Schema) Len() int {
	return len(s)
}
