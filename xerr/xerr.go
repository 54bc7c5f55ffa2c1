// Package xerr implements the four error kinds of the engine's error
// handling design: config, graph, init, and runtime-anomaly errors. Config,
// graph and init errors are fatal and surface to the caller before the tick
// loop begins; runtime anomalies are encountered inside TryProcess and are
// asserts (panics) by default; in release builds they are returned as
// ordinary errors instead.
package xerr

import (
	stderrors "errors"
	"fmt"

	"github.com/pkg/errors"
)

// ConfigError reports malformed configuration: bad JSON shape (once
// decoded), an unknown node type, a non-power-of-two frame size, or an
// unknown time-tick mode.
type ConfigError struct {
	Rule string
	Msg  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error [%s]: %s", e.Rule, e.Msg)
}

// NewConfigError wraps msg as a ConfigError naming the violated rule, with
// a stack trace attached at the fatal boundary.
func NewConfigError(rule, format string, args ...interface{}) error {
	return errors.WithStack(&ConfigError{Rule: rule, Msg: fmt.Sprintf(format, args...)})
}

// GraphError reports a structural problem found during graph validation:
// missing _start_pin, a dangling node/pin reference, a pin-category
// mismatch, a cycle, or a node unsupported under the configured tick mode.
// Node and Relation, when non-empty, name the offending element so the
// caller can print "first offending relation/node name with the rule it
// violates" per spec.md §7.
type GraphError struct {
	Rule     string
	Node     string
	Relation string
	Msg      string
}

func (e *GraphError) Error() string {
	switch {
	case e.Relation != "":
		return fmt.Sprintf("graph error [%s] at relation %s: %s", e.Rule, e.Relation, e.Msg)
	case e.Node != "":
		return fmt.Sprintf("graph error [%s] at node %q: %s", e.Rule, e.Node, e.Msg)
	default:
		return fmt.Sprintf("graph error [%s]: %s", e.Rule, e.Msg)
	}
}

// NewGraphError constructs a GraphError, wrapped with a stack trace.
func NewGraphError(rule, node, relation, format string, args ...interface{}) error {
	return errors.WithStack(&GraphError{Rule: rule, Node: node, Relation: relation, Msg: fmt.Sprintf(format, args...)})
}

// InitError reports failure instantiating a processor or an external
// service: device unavailable, file not found, IR load failure,
// insufficient device capability.
type InitError struct {
	Node string
	Msg  string
}

func (e *InitError) Error() string {
	return fmt.Sprintf("init error at node %q: %s", e.Node, e.Msg)
}

// NewInitError constructs an InitError, wrapped with a stack trace.
func NewInitError(node, format string, args ...interface{}) error {
	return errors.WithStack(&InitError{Node: node, Msg: fmt.Sprintf(format, args...)})
}

// Strict controls whether a RuntimeAnomaly passed to Handle panics (the
// default: "asserts by default") or is returned as an ordinary error
// (release-build behavior). A returned anomaly propagates out of TryProcess
// and Scheduler.Run returns it, ending the run; it is not logged and the
// tick is not skipped. Cleared by the "release" build tag's init function
// in strict_release.go.
var Strict = true

// RuntimeAnomaly reports a violation only possible if a graph author wired
// something incompatible: a sample-rate mismatch across an adapter's
// inputs, an output-pin category overwrite attempt, an expected container
// payload missing at consume time.
type RuntimeAnomaly struct {
	Node string
	Msg  string
}

func (e *RuntimeAnomaly) Error() string {
	return fmt.Sprintf("runtime anomaly at node %q: %s", e.Node, e.Msg)
}

// NewRuntimeAnomaly constructs a RuntimeAnomaly. Callers should route it
// through Handle rather than returning it directly from TryProcess, so that
// Strict mode is respected uniformly.
func NewRuntimeAnomaly(node, format string, args ...interface{}) error {
	return &RuntimeAnomaly{Node: node, Msg: fmt.Sprintf(format, args...)}
}

// Handle applies the Strict policy to a RuntimeAnomaly: panic when Strict
// is set, or return it unchanged otherwise.
// Non-RuntimeAnomaly errors pass through unchanged.
func Handle(err error) error {
	if err == nil {
		return nil
	}
	var ra *RuntimeAnomaly
	if stderrors.As(err, &ra) && Strict {
		panic(ra)
	}
	return err
}
