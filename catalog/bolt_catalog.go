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

package catalog

import (
	"fmt"
	"strconv"
	"strings"

	bolt "github.com/boltdb/bolt"
	"github.com/pkg/errors"

	"github.com/deltastream/deltajoin/dataflow"
	"github.com/deltastream/deltajoin/plan"
	"github.com/deltastream/deltajoin/sql"
	"github.com/deltastream/deltajoin/sql/expression"
)

// BoltCatalog is a bolt-backed external catalog for Trace arrangements
// (spec §3): relations are imported "by a global identifier" from
// somewhere outside the dataflow, and this is a concrete stand-in for
// that somewhere, sharded per worker the way the original renderer's
// trace import is (spec §5, "worker index is... used to select
// per-worker arrangement shards").
type BoltCatalog struct {
	db *bolt.DB
}

// OpenBoltCatalog opens (creating if necessary) a bolt database at
// path to use as a trace catalog.
func OpenBoltCatalog(path string) (*BoltCatalog, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "opening bolt catalog")
	}
	return &BoltCatalog{db: db}, nil
}

// Close releases the underlying bolt database.
func (c *BoltCatalog) Close() error {
	return c.db.Close()
}

func bucketName(rel plan.Relation, worker int) []byte {
	return []byte(fmt.Sprintf("%s/worker-%d", rel.ID.String(), worker))
}

// PutArrangement persists updates as the per-worker shard of rel's
// trace arrangement.
func (c *BoltCatalog) PutArrangement(worker int, rel plan.Relation, updates []dataflow.Update) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		name := bucketName(rel, worker)
		// Drop any previous contents: PutArrangement replaces the
		// shard wholesale, it doesn't append to it.
		if tx.Bucket(name) != nil {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
		}
		bucket, err := tx.CreateBucket(name)
		if err != nil {
			return err
		}
		for i, u := range updates {
			key := []byte(strconv.Itoa(i))
			if err := bucket.Put(key, []byte(encodeUpdate(u))); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadArrangement reads rel's worker-th shard back out of the catalog
// and arranges it by keyExprs (spec §4.4d: "local-vs-trace arrangement
// distinction affects only where the ok/err collections come from").
func (c *BoltCatalog) LoadArrangement(ctx *sql.Context, worker int, rel plan.Relation, keyExprs []expression.Expression) (dataflow.Arrangement, error) {
	var updates []dataflow.Update
	err := c.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketName(rel, worker))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(_, v []byte) error {
			u, err := decodeUpdate(string(v))
			if err != nil {
				return err
			}
			updates = append(updates, u)
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrapf(err, "loading trace arrangement for %s", rel.Name)
	}
	identity := fmt.Sprintf("%s#%d", rel.ID.String(), worker)
	return dataflow.ArrangeBy(ctx, identity, dataflow.Trace, dataflow.NewCollection(updates...), dataflow.Empty(), keyExprs)
}

// ImportInto loads rel's worker-th shard and registers it on mem, so a
// demo or test can mix bolt-backed Trace arrangements with in-memory
// Local ones behind the same render.Context.
func (c *BoltCatalog) ImportInto(ctx *sql.Context, mem *Memory, worker int, rel plan.Relation, keyExprs []expression.Expression) error {
	arr, err := c.LoadArrangement(ctx, worker, rel, keyExprs)
	if err != nil {
		return err
	}
	return mem.AddArrangement(rel, keyExprs, arr)
}

// encodeUpdate is a small, dependency-free text encoding for an Update
// whose row datums are int64, string, bool, or nil -- enough for the
// demo/integration fixtures this catalog serves.
func encodeUpdate(u dataflow.Update) string {
	fields := make([]string, len(u.Row))
	for i, d := range u.Row {
		fields[i] = encodeDatum(d)
	}
	m, _ := u.Time.(dataflow.Moment)
	return fmt.Sprintf("%d\x1f%d\x1f%s", int64(m), u.Diff, strings.Join(fields, "\x1f"))
}

func decodeUpdate(s string) (dataflow.Update, error) {
	parts := strings.Split(s, "\x1f")
	if len(parts) < 2 {
		return dataflow.Update{}, fmt.Errorf("malformed catalog record %q", s)
	}
	t, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return dataflow.Update{}, err
	}
	diff, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return dataflow.Update{}, err
	}
	row := make(sql.Row, len(parts)-2)
	for i, f := range parts[2:] {
		row[i] = decodeDatum(f)
	}
	return dataflow.NewUpdate(row, dataflow.Moment(t), diff), nil
}

func encodeDatum(d sql.Datum) string {
	switch v := d.(type) {
	case nil:
		return "n:"
	case int64:
		return "i:" + strconv.FormatInt(v, 10)
	case int:
		return "i:" + strconv.Itoa(v)
	case bool:
		return "b:" + strconv.FormatBool(v)
	case string:
		return "s:" + v
	default:
		return "s:" + fmt.Sprintf("%v", v)
	}
}

func decodeDatum(f string) sql.Datum {
	if len(f) < 2 {
		return nil
	}
	tag, val := f[:2], f[2:]
	switch tag {
	case "n:":
		return nil
	case "i:":
		n, _ := strconv.ParseInt(val, 10, 64)
		return n
	case "b:":
		b, _ := strconv.ParseBool(val)
		return b
	default:
		return val
	}
}
