// Package report delivers a completed comparison's differences to one or
// more sinks, generalizing the single-sink GraphExporter pattern into a
// fan-out of independent, isolated reporters.
package report

import (
	"fmt"

	"github.com/viant/apidiff/diff"
	"github.com/viant/apidiff/element"
)

// Report is one completed comparison's result: the compared roots (for
// context a reporter may want, e.g. naming the module) and every
// difference the walk produced, in visit order.
type Report struct {
	Old         *element.Node
	New         *element.Node
	Differences []diff.Difference
}

// Reporter delivers a Report to a sink (stdout, a file, an external
// service). Close releases any resource Report acquired; called once per
// run even if Report never was.
type Reporter interface {
	Report(r Report) error
	Close() error
}

// Multi fans a single Report out to every configured Reporter, isolating a
// failing reporter from the rest: every reporter is still given the
// report, and the returned error (if any) names every individual failure
// rather than stopping at the first: a single failure is returned as is,
// several are joined into one message.
type Multi struct {
	Reporters []Reporter
}

func (m *Multi) Report(r Report) error {
	var errs []error
	for _, rep := range m.Reporters {
		if err := rep.Report(r); err != nil {
			errs = append(errs, err)
		}
	}
	return joinErrors(errs)
}

// Close closes every reporter, even if one fails, returning every failure
// joined together.
func (m *Multi) Close() error {
	var errs []error
	for _, rep := range m.Reporters {
		if err := rep.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return joinErrors(errs)
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	msg := fmt.Sprintf("%d reporters failed:", len(errs))
	for _, err := range errs {
		msg += " " + err.Error() + ";"
	}
	return fmt.Errorf("%s", msg)
}

// Collector is an in-memory Reporter that retains every report it is
// given, in arrival order. Used heavily by tests and by callers that want
// the raw result rather than a rendered one.
type Collector struct {
	Reports []Report
	closed  bool
}

func (c *Collector) Report(r Report) error {
	c.Reports = append(c.Reports, r)
	return nil
}

func (c *Collector) Close() error {
	c.closed = true
	return nil
}

// Closed reports whether Close has been called, for tests asserting a
// driver closes every reporter it was given.
func (c *Collector) Closed() bool { return c.closed }
