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

// Command deltajoind renders a delta-query join plan loaded from a YAML
// document and logs the resulting (ok, error) collections. It exists to
// give the render core something end-to-end to exercise outside of its
// tests; the plan document, its relations, and its arrangements are all
// stand-ins for what a real dataflow engine's planner and catalog would
// otherwise supply (spec §1).
package main

import (
	"context"
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/deltastream/deltajoin/render"
	"github.com/deltastream/deltajoin/sql"
)

func main() {
	planPath := flag.String("plan", "", "path to a join plan YAML document")
	worker := flag.Int("worker", 0, "worker index this invocation renders for")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	logger := logrus.New()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	entry := logger.WithField("worker", *worker)

	if *planPath == "" {
		entry.Fatal("missing required -plan flag")
	}

	if err := run(*planPath, *worker, entry); err != nil {
		entry.WithError(err).Fatal("render failed")
	}
}

func run(planPath string, worker int, entry *logrus.Entry) error {
	doc, err := loadPlanDocument(planPath)
	if err != nil {
		return err
	}

	ctx := sql.NewContext(context.Background(), sql.WithLogger(entry), sql.WithWorker(worker))

	jp, mem, err := doc.build(ctx)
	if err != nil {
		return err
	}

	ok, errs, err := render.RenderDeltaJoin(ctx, mem, jp, nil)
	if err != nil {
		return err
	}

	entry.WithFields(logrus.Fields{
		"ok_updates":  ok.Len(),
		"err_updates": errs.Len(),
	}).Info("rendered delta join")

	for _, u := range ok.Updates {
		entry.Infof("ok   %s", u)
	}
	for _, u := range errs.Updates {
		entry.Warnf("err  %s", u)
	}

	if errs.Len() > 0 {
		os.Exit(1)
	}
	return nil
}
