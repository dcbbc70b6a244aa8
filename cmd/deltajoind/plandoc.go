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

package main

import (
	"fmt"
	"os"

	"github.com/mitchellh/hashstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/deltastream/deltajoin/catalog"
	"github.com/deltastream/deltajoin/dataflow"
	"github.com/deltastream/deltajoin/plan"
	"github.com/deltastream/deltajoin/sql"
	"github.com/deltastream/deltajoin/sql/expression"
)

// planDocument is the on-disk YAML shape of a demo join plan: the
// participating relations and their seed rows, the equivalence classes
// asserted between them, and each input's traversal order. It exists so
// the demo CLI has something to load instead of building a plan.JoinPlan
// by hand in Go (spec §1, "planning... is an external collaborator").
type planDocument struct {
	Relations    []relationDoc         `yaml:"relations"`
	Equivalences [][]columnRef         `yaml:"equivalences"`
	Orders       map[string][]orderDoc `yaml:"orders"`
}

type relationDoc struct {
	Name    string      `yaml:"name"`
	Columns []columnDoc `yaml:"columns"`
	Rows    []rowDoc    `yaml:"rows"`
}

type columnDoc struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Nullable bool   `yaml:"nullable"`
}

type rowDoc struct {
	Values []interface{} `yaml:"values"`
	Time   int64         `yaml:"time"`
	Diff   int64         `yaml:"diff"`
}

type columnRef struct {
	Relation string `yaml:"relation"`
	Column   string `yaml:"column"`
}

type orderDoc struct {
	Peer string      `yaml:"peer"`
	Key  []columnRef `yaml:"key"`
}

// loadPlanDocument reads and parses a plan document from path.
func loadPlanDocument(path string) (*planDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading plan document %s", path)
	}
	var doc planDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "parsing plan document %s", path)
	}
	return &doc, nil
}

// build resolves the document into a plan.JoinPlan plus a populated
// catalog.Memory ready to pass to render.RenderDeltaJoin.
func (doc *planDocument) build(ctx *sql.Context) (*plan.JoinPlan, *catalog.Memory, error) {
	relations := make([]plan.Relation, len(doc.Relations))
	nameIndex := make(map[string]int, len(doc.Relations))
	for i, rd := range doc.Relations {
		schema := make(sql.Schema, len(rd.Columns))
		for j, cd := range rd.Columns {
			schema[j] = sql.Column{Name: cd.Name, Type: cd.Type, Nullable: cd.Nullable, Source: rd.Name}
		}
		relations[i] = plan.NewRelation(rd.Name, schema)
		nameIndex[rd.Name] = i
	}

	mapper := plan.NewInputColumnMapper(relations)

	resolveRef := func(ref columnRef) (expression.Expression, error) {
		ri, ok := nameIndex[ref.Relation]
		if !ok {
			return nil, fmt.Errorf("unknown relation %q", ref.Relation)
		}
		for local, cd := range doc.Relations[ri].Columns {
			if cd.Name == ref.Column {
				return expression.NewColumn(mapper.ToGlobal(ri, local), fmt.Sprintf("%s.%s", ref.Relation, ref.Column)), nil
			}
		}
		return nil, fmt.Errorf("unknown column %q on relation %q", ref.Column, ref.Relation)
	}

	resolveLocalRef := func(peer int, ref columnRef) (expression.Expression, error) {
		for local, cd := range doc.Relations[peer].Columns {
			if cd.Name == ref.Column {
				return expression.NewColumn(local, fmt.Sprintf("%s.%s", ref.Relation, ref.Column)), nil
			}
		}
		return nil, fmt.Errorf("unknown column %q on relation %q", ref.Column, ref.Relation)
	}

	equivalences := make([]plan.EquivalenceClass, len(doc.Equivalences))
	for i, class := range doc.Equivalences {
		members := make(plan.EquivalenceClass, len(class))
		for j, ref := range class {
			e, err := resolveRef(ref)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "equivalence class %d", i)
			}
			members[j] = e
		}
		equivalences[i] = members
	}

	orders := make([][]plan.OrderEntry, len(relations))
	for name, entries := range doc.Orders {
		root, ok := nameIndex[name]
		if !ok {
			return nil, nil, fmt.Errorf("order given for unknown relation %q", name)
		}
		order := make([]plan.OrderEntry, len(entries))
		for i, od := range entries {
			peer, ok := nameIndex[od.Peer]
			if !ok {
				return nil, nil, fmt.Errorf("order for %q references unknown peer %q", name, od.Peer)
			}
			key := make([]expression.Expression, len(od.Key))
			for j, ref := range od.Key {
				e, err := resolveLocalRef(peer, ref)
				if err != nil {
					return nil, nil, errors.Wrapf(err, "order for %q, step %d", name, i)
				}
				key[j] = e
			}
			order[i] = plan.OrderEntry{Peer: peer, KeyExprs: key}
		}
		orders[root] = order
	}

	jp := &plan.JoinPlan{Inputs: relations, Equivalences: equivalences, Orders: orders}

	mem := catalog.NewMemory(dataflow.MomentSubtract)
	relationUpdates := make([][]dataflow.Update, len(relations))
	for i, rd := range doc.Relations {
		var updates []dataflow.Update
		for _, row := range rd.Rows {
			updates = append(updates, dataflow.NewUpdate(sql.NewRow(row.Values...), dataflow.Moment(row.Time), row.Diff))
		}
		relationUpdates[i] = updates
		mem.SetCollection(relations[i], dataflow.NewCollection(updates...), dataflow.Empty())
	}

	// Every (peer, key) pair appearing in any order is a lookup the
	// renderer will need an arrangement handle for.
	seen := make(map[uint64]bool)
	for _, order := range orders {
		for _, entry := range order {
			h, err := arrangementSeenKey(relations[entry.Peer], entry.KeyExprs)
			if err != nil {
				return nil, nil, err
			}
			if seen[h] {
				continue
			}
			seen[h] = true
			arr, err := dataflow.ArrangeBy(ctx, relations[entry.Peer].ID.String(), dataflow.Local, dataflow.NewCollection(relationUpdates[entry.Peer]...), dataflow.Empty(), entry.KeyExprs)
			if err != nil {
				return nil, nil, err
			}
			if err := mem.AddArrangement(relations[entry.Peer], entry.KeyExprs, arr); err != nil {
				return nil, nil, err
			}
		}
	}

	return jp, mem, nil
}

func arrangementSeenKey(rel plan.Relation, key []expression.Expression) (uint64, error) {
	strs := make([]string, len(key))
	for i, e := range key {
		strs[i] = e.String()
	}
	return hashstructure.Hash(struct {
		Relation string
		Key      []string
	}{Relation: rel.ID.String(), Key: strs}, nil)
}
