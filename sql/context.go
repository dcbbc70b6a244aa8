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
	"context"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
)

// Context carries everything render-time code needs alongside the
// standard context.Context: a structured logger, the worker index this
// render invocation is building a graph for, and an optional tracing
// span for the current region.
type Context struct {
	context.Context

	logger *logrus.Entry
	worker int
	span   opentracing.Span
}

// ContextOption configures a Context at construction time.
type ContextOption func(*Context)

// WithLogger attaches a structured logger to the Context.
func WithLogger(l *logrus.Entry) ContextOption {
	return func(c *Context) { c.logger = l }
}

// WithWorker sets the worker index used to select per-worker
// arrangement shards.
func WithWorker(worker int) ContextOption {
	return func(c *Context) { c.worker = worker }
}

// WithSpan attaches an OpenTracing span representing the current
// render region.
func WithSpan(span opentracing.Span) ContextOption {
	return func(c *Context) { c.span = span }
}

// NewContext builds a Context around a standard context.Context,
// applying the given options. Mirrors the functional-options
// constructor pattern used throughout the surrounding engine.
func NewContext(ctx context.Context, opts ...ContextOption) *Context {
	c := &Context{
		Context: ctx,
		logger:  logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewEmptyContext returns a Context suitable for tests and one-off
// render invocations that don't need a caller-supplied context.Context.
func NewEmptyContext() *Context {
	return NewContext(context.Background())
}

// GetLogger returns the structured logger for this context.
func (c *Context) GetLogger() *logrus.Entry {
	return c.logger
}

// WorkerIndex returns the worker this render invocation is building a
// graph for.
func (c *Context) WorkerIndex() int {
	return c.worker
}

// Span returns the tracing span for the current region, or nil if none
// was attached.
func (c *Context) Span() opentracing.Span {
	return c.span
}

// WithRegion returns a child Context carrying a child span named
// region, if tracing is active; otherwise it returns c unchanged.
func (c *Context) WithRegion(tracer opentracing.Tracer, region string) (*Context, opentracing.Span) {
	if tracer == nil {
		return c, nil
	}
	var span opentracing.Span
	if c.span != nil {
		span = tracer.StartSpan(region, opentracing.ChildOf(c.span.Context()))
	} else {
		span = tracer.StartSpan(region)
	}
	child := &Context{
		Context: c.Context,
		logger:  c.logger.WithField("region", region),
		worker:  c.worker,
		span:    span,
	}
	return child, span
}
