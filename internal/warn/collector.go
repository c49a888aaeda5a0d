// Package warn collects data-quality warnings raised during a batch run.
//
// Parse and normalization problems are recovered locally (skip the datum,
// keep going); the collector records every occurrence and reports the full
// list once at the end of the run. To keep build logs readable, only the
// first occurrence per category is logged live.
package warn

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Category classifies a warning for grouping in the end-of-run report.
type Category string

// Warning categories.
const (
	// MalformedReference: a citation sub-token could not be parsed; the
	// sub-token was dropped.
	MalformedReference Category = "malformed_reference"

	// UnknownSheetPrefix: a reference carried a sheet prefix outside the
	// recognized set and was routed into the "other" namespace.
	UnknownSheetPrefix Category = "unknown_sheet_prefix"

	// DuplicateIdentifier: two source rows normalized to the same
	// canonical ID; the first-seen row was kept.
	DuplicateIdentifier Category = "duplicate_identifier"

	// TraversalBudget: a closure or hierarchy traversal hit its visit
	// ceiling, indicating a cycle or corrupt part/whole data.
	TraversalBudget Category = "traversal_budget"

	// MissingEntity: an operation expected an entity that was never
	// created (accepted behavior for dangling links, reported when a
	// lookup a later step depends on comes up empty).
	MissingEntity Category = "missing_entity"
)

// Warning is one recorded data-quality issue.
type Warning struct {
	Category Category
	Message  string
}

// Collector accumulates warnings for one batch run.
type Collector struct {
	log      *logrus.Logger
	warnings []Warning
	seen     map[Category]bool
}

// NewCollector creates a collector emitting through log.
func NewCollector(log *logrus.Logger) *Collector {
	return &Collector{
		log:  log,
		seen: make(map[Category]bool),
	}
}

// Warnf records a warning. The first warning of each category is also
// logged immediately; the rest only appear in the final report.
func (c *Collector) Warnf(cat Category, format string, args ...interface{}) {
	w := Warning{Category: cat, Message: fmt.Sprintf(format, args...)}
	c.warnings = append(c.warnings, w)
	if !c.seen[cat] {
		c.seen[cat] = true
		c.log.WithField("category", string(cat)).Warn(w.Message)
	}
}

// Count returns the number of recorded warnings.
func (c *Collector) Count() int {
	return len(c.warnings)
}

// Warnings returns all recorded warnings in occurrence order.
func (c *Collector) Warnings() []Warning {
	return c.warnings
}

// Report logs every collected warning grouped by category, then a summary
// line. Call once, at the end of the run.
func (c *Collector) Report() {
	if len(c.warnings) == 0 {
		c.log.Info("no data-quality warnings")
		return
	}
	counts := make(map[Category]int)
	for _, w := range c.warnings {
		counts[w.Category]++
		c.log.WithField("category", string(w.Category)).Warn(w.Message)
	}
	fields := logrus.Fields{"total": len(c.warnings)}
	for cat, n := range counts {
		fields[string(cat)] = n
	}
	c.log.WithFields(fields).Warn("data-quality warnings collected during run")
}
