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

import (
	"reflect"

	"github.com/spf13/cast"
)

// NullEqual reports whether two datums are equal under the join's
// null-equal semantics: NULL is considered equal to NULL, unlike the
// SQL binary equality operator under which NULL never equals anything.
// This is the comparison equivalence classes use (spec §4.2): it is
// what lets the physical join match rows that are null in the join key.
func NullEqual(a, b Datum) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	if reflect.DeepEqual(a, b) {
		return true
	}

	// Datums of differing numeric Go types (e.g. int32 vs int64, as
	// produced by arrangements built over different input relations)
	// still compare equal if their numeric value matches.
	af, aerr := cast.ToFloat64E(a)
	bf, berr := cast.ToFloat64E(b)
	if aerr == nil && berr == nil {
		return af == bf
	}

	as, aerr := cast.ToStringE(a)
	bs, berr := cast.ToStringE(b)
	if aerr == nil && berr == nil {
		return as == bs
	}

	return false
}

// Equal implements ordinary SQL equality: NULL compared to anything,
// including another NULL, yields "not equal" (in SQL terms, UNKNOWN,
// which this package treats as false since residual predicates only
// keep rows where the predicate evaluates to exactly TRUE).
func Equal(a, b Datum) bool {
	if a == nil || b == nil {
		return false
	}
	return NullEqual(a, b)
}
