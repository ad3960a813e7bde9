// Package bt is a small behavior-tree runtime. A tree is pure structure:
// every tick is evaluated depth-first in one synchronous pass against a
// caller-supplied context, and all mutable state lives in that context.
package bt

import (
	"fmt"
	"strings"
)

// Status is the result of ticking a node.
type Status int

const (
	Success Status = iota
	Failure
	Running
)

func (s Status) String() string {
	switch s {
	case Success:
		return "SUCCESS"
	case Failure:
		return "FAILURE"
	case Running:
		return "RUNNING"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Node is one of Selector, Sequence, Condition or Action. The set is closed.
type Node[C any] interface {
	Tick(ctx C) Status
	Name() string
	children() []Node[C]
	kind() string
}

// Selector returns the first child result that is not Failure (logical OR).
type Selector[C any] struct {
	Label    string
	Children []Node[C]
}

func (s *Selector[C]) Tick(ctx C) Status {
	for _, c := range s.Children {
		switch c.Tick(ctx) {
		case Success:
			return Success
		case Running:
			return Running
		}
	}
	return Failure
}

func (s *Selector[C]) Name() string        { return s.Label }
func (s *Selector[C]) children() []Node[C] { return s.Children }
func (s *Selector[C]) kind() string        { return "Selector" }

// Sequence returns the first child result that is not Success (logical AND).
type Sequence[C any] struct {
	Label    string
	Children []Node[C]
}

func (s *Sequence[C]) Tick(ctx C) Status {
	for _, c := range s.Children {
		switch c.Tick(ctx) {
		case Failure:
			return Failure
		case Running:
			return Running
		}
	}
	return Success
}

func (s *Sequence[C]) Name() string        { return s.Label }
func (s *Sequence[C]) children() []Node[C] { return s.Children }
func (s *Sequence[C]) kind() string        { return "Sequence" }

// Condition is a side-effect free predicate.
type Condition[C any] struct {
	Label string
	Check func(ctx C) bool
}

func (c *Condition[C]) Tick(ctx C) Status {
	if c.Check != nil && c.Check(ctx) {
		return Success
	}
	return Failure
}

func (c *Condition[C]) Name() string        { return c.Label }
func (c *Condition[C]) children() []Node[C] { return nil }
func (c *Condition[C]) kind() string        { return "Condition" }

// Action mutates the context and reports whether it succeeded.
type Action[C any] struct {
	Label string
	Run   func(ctx C) bool
}

func (a *Action[C]) Tick(ctx C) Status {
	if a.Run != nil && a.Run(ctx) {
		return Success
	}
	return Failure
}

func (a *Action[C]) Name() string        { return a.Label }
func (a *Action[C]) children() []Node[C] { return nil }
func (a *Action[C]) kind() string        { return "Action" }

// Tree wraps a root node.
type Tree[C any] struct {
	Root Node[C]
}

// Tick runs one pass of the tree.
func (t *Tree[C]) Tick(ctx C) Status {
	if t == nil || t.Root == nil {
		return Failure
	}
	return t.Root.Tick(ctx)
}

// Describe renders the tree shape, one node per line.
func (t *Tree[C]) Describe() string {
	if t == nil || t.Root == nil {
		return ""
	}
	var b strings.Builder
	describe(&b, t.Root, 0)
	return b.String()
}

func describe[C any](b *strings.Builder, n Node[C], depth int) {
	fmt.Fprintf(b, "%s%s %s\n", strings.Repeat("  ", depth), n.kind(), n.Name())
	for _, c := range n.children() {
		describe(b, c, depth+1)
	}
}

// NewSelector builds a Selector that succeeds on the first child that does.
func NewSelector[C any](label string, children ...Node[C]) *Selector[C] {
	return &Selector[C]{Label: label, Children: children}
}

// NewSequence builds a Sequence that fails on the first child that does.
func NewSequence[C any](label string, children ...Node[C]) *Sequence[C] {
	return &Sequence[C]{Label: label, Children: children}
}

// NewCondition wraps a predicate as a leaf.
func NewCondition[C any](label string, check func(C) bool) *Condition[C] {
	return &Condition[C]{Label: label, Check: check}
}

// NewAction wraps a side-effecting step as a leaf.
func NewAction[C any](label string, run func(C) bool) *Action[C] {
	return &Action[C]{Label: label, Run: run}
}
