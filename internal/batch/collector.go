// Package batch accumulates deferred fetch descriptors across sibling
// field resolutions and executes them as grouped backend calls.
//
// Producers enqueue descriptors concurrently; the collector owns the
// synchronization. Flushing issues exactly one Source call per distinct
// group key, then demultiplexes rows back to each originating parent id,
// so a response tree of N records costs one backend round trip per
// (model, field, arguments) shape instead of N.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/quarrydb/quarry/internal/filterir"
	"github.com/quarrydb/quarry/internal/resolve"
	"github.com/quarrydb/quarry/internal/schema"
	"github.com/quarrydb/quarry/internal/value"
)

// Group is one coalesced fetch: every enqueued descriptor sharing the key,
// collapsed to the distinct set of parent ids.
type Group struct {
	Key         string
	Kind        resolve.FetchKind
	Model       string
	ParentModel string
	Field       *schema.Field
	Args        *filterir.QueryArgs
	ParentIDs   []string // distinct, sorted
}

// Result is what a fetch yields for one parent id. Scalar list fetches fill
// Values; relation fetches fill Records.
type Result struct {
	Values  []value.Typed
	Records []*resolve.Record
}

// Source executes one coalesced fetch and returns results keyed by parent
// id. Parents with nothing to return may be absent from the map.
type Source interface {
	FetchGroup(ctx context.Context, g *Group) (map[string]Result, error)
}

type outcome struct {
	result Result
	err    error
}

// Pending is the handle a producer waits on after enqueueing a descriptor.
type Pending struct {
	parentID string
	ch       chan outcome
}

// Wait blocks until the collector flushes the descriptor's group or ctx is
// done.
func (p *Pending) Wait(ctx context.Context) (Result, error) {
	select {
	case out := <-p.ch:
		return out.result, out.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

type pendingGroup struct {
	group    *Group
	pendings []*Pending
}

// Collector accumulates deferred fetches between flushes. Safe for
// concurrent producers; a zero flush (no descriptors) is a no-op.
type Collector struct {
	mu     sync.Mutex
	groups map[string]*pendingGroup
	logger *slog.Logger
}

// NewCollector creates an empty Collector. logger may be nil.
func NewCollector(logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		groups: make(map[string]*pendingGroup),
		logger: logger,
	}
}

// Enqueue registers a deferred fetch and returns the handle its producer
// waits on. Descriptors with identical group keys coalesce regardless of
// enqueue order.
func (c *Collector) Enqueue(d *resolve.Deferred) (*Pending, error) {
	key, err := d.GroupKey()
	if err != nil {
		return nil, err
	}

	p := &Pending{parentID: d.ParentID, ch: make(chan outcome, 1)}

	c.mu.Lock()
	defer c.mu.Unlock()

	pg, ok := c.groups[key]
	if !ok {
		pg = &pendingGroup{group: &Group{
			Key:         key,
			Kind:        d.Kind,
			Model:       d.Model,
			ParentModel: d.ParentModel,
			Field:       d.Field,
			Args:        d.Args,
		}}
		c.groups[key] = pg
	}
	pg.pendings = append(pg.pendings, p)
	return p, nil
}

// GroupCount returns the number of distinct groups currently accumulated.
func (c *Collector) GroupCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.groups)
}

// Flush executes every accumulated group, one Source call each, and
// delivers results to the waiting producers. A fetch error fails only the
// pendings of its own group; Flush reports the first error after finishing
// all groups.
func (c *Collector) Flush(ctx context.Context, src Source) error {
	c.mu.Lock()
	groups := c.groups
	c.groups = make(map[string]*pendingGroup)
	c.mu.Unlock()

	if len(groups) == 0 {
		return nil
	}

	// Deterministic flush order for logging and tests.
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var firstErr error
	for _, key := range keys {
		pg := groups[key]
		pg.group.ParentIDs = distinctParentIDs(pg.pendings)

		results, err := src.FetchGroup(ctx, pg.group)
		if err != nil {
			err = fmt.Errorf("fetch %s.%s group: %w", pg.group.ParentModel, pg.group.Field.Name, err)
			for _, p := range pg.pendings {
				p.ch <- outcome{err: err}
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		c.logger.Debug("flushed fetch group",
			"parent_model", pg.group.ParentModel,
			"field", pg.group.Field.Name,
			"parents", len(pg.group.ParentIDs),
			"pendings", len(pg.pendings))

		for _, p := range pg.pendings {
			out := outcome{result: results[p.parentID]}
			if pg.group.Kind == resolve.FetchRelationOne && len(out.result.Records) > 1 {
				out = outcome{err: fmt.Errorf("to-one relation %s.%s returned %d records for parent %s",
					pg.group.ParentModel, pg.group.Field.Name, len(out.result.Records), p.parentID)}
			}
			p.ch <- out
		}
	}
	return firstErr
}

func distinctParentIDs(pendings []*Pending) []string {
	seen := make(map[string]bool, len(pendings))
	var ids []string
	for _, p := range pendings {
		if !seen[p.parentID] {
			seen[p.parentID] = true
			ids = append(ids, p.parentID)
		}
	}
	sort.Strings(ids)
	return ids
}
