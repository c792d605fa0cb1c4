// Package audit orchestrates one run: it resolves every host fact and
// executes the selected checks, fanning independent work out with an
// errgroup. Each fallback chain stays sequential inside its own goroutine.
package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ancients-collective/hostaudit/internal/checks"
	"github.com/ancients-collective/hostaudit/internal/inventory"
	"github.com/ancients-collective/hostaudit/internal/resolver"
	"github.com/ancients-collective/hostaudit/internal/types"
)

// DefaultConcurrency bounds how many facts and checks run at once.
const DefaultConcurrency = 4

// ProgressFunc is called after each check completes.
type ProgressFunc func(done, total int)

// Auditor runs facts and checks for one platform.
type Auditor struct {
	resolvers   resolver.Set
	inventory   *inventory.Collector
	registry    *checks.Registry
	log         logrus.FieldLogger
	concurrency int

	// Progress, when set, is called after every completed check.
	Progress ProgressFunc
}

// New returns an Auditor. A nil inventory skips the gopsutil facts.
func New(resolvers resolver.Set, inv *inventory.Collector, registry *checks.Registry, log logrus.FieldLogger) *Auditor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Auditor{
		resolvers:   resolvers,
		inventory:   inv,
		registry:    registry,
		log:         log,
		concurrency: DefaultConcurrency,
	}
}

// Result is the raw outcome of a run, before scoring.
type Result struct {
	Facts    types.HostFacts
	Checks   []types.AuditResult
	Duration time.Duration
}

// Run resolves all facts and executes the checks selected by checkID
// (every check when empty). An unknown checkID is the only error.
func (a *Auditor) Run(ctx context.Context, checkID string) (Result, error) {
	selected, err := a.Select(checkID)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	var res Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res.Facts = a.Facts(gctx)
		return nil
	})
	g.Go(func() error {
		res.Checks = a.Checks(gctx, selected)
		return nil
	})
	_ = g.Wait()
	res.Duration = time.Since(start)

	a.log.WithFields(logrus.Fields{
		"checks":   len(res.Checks),
		"duration": res.Duration,
	}).Debug("audit complete")
	return res, nil
}

// Select returns the checks to run. An empty id selects all of them.
func (a *Auditor) Select(id string) ([]checks.Check, error) {
	if id == "" {
		return a.registry.Checks(), nil
	}
	c, ok := a.registry.Lookup(id)
	if !ok {
		return nil, &UnknownCheckError{ID: id, Known: a.registry.IDs()}
	}
	return []checks.Check{c}, nil
}

// UnknownCheckError is returned when --id names no registered check.
type UnknownCheckError struct {
	ID    string
	Known []string
}

func (e *UnknownCheckError) Error() string {
	return fmt.Sprintf("no check found with ID %q", e.ID)
}

// Facts resolves every fact concurrently. Each task writes only its own
// field of the result, so no locking is needed.
func (a *Auditor) Facts(ctx context.Context) types.HostFacts {
	var f types.HostFacts
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	g.Go(func() error { f.DefaultRoute = a.resolvers.Route.DefaultRoute(gctx); return nil })
	g.Go(func() error { f.DNS = a.resolvers.DNS.DNS(gctx); return nil })
	g.Go(func() error { f.Proxy = a.resolvers.Proxy.Proxy(gctx); return nil })

	if inv := a.inventory; inv != nil {
		g.Go(func() error { f.Host = inv.Host(gctx); return nil })
		g.Go(func() error { f.CPU = inv.CPU(gctx); return nil })
		g.Go(func() error { f.Memory = inv.Memory(gctx); return nil })
		g.Go(func() error { f.Disks = inv.Disks(gctx); return nil })
		g.Go(func() error { f.Users = inv.Users(gctx); return nil })
		g.Go(func() error { f.Interfaces = inv.Interfaces(gctx); return nil })
		g.Go(func() error { f.ListeningPorts = inv.ListeningPorts(gctx); return nil })
	}

	_ = g.Wait()
	return f
}

// Checks executes selected concurrently and returns the results in the
// order of selected.
func (a *Auditor) Checks(ctx context.Context, selected []checks.Check) []types.AuditResult {
	results := make([]types.AuditResult, len(selected))
	total := len(selected)

	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, c := range selected {
		g.Go(func() error {
			results[i] = a.registry.Run(gctx, c)
			a.log.WithFields(logrus.Fields{
				"check":    c.ID,
				"status":   results[i].Status,
				"duration": results[i].Duration,
			}).Debug("check finished")

			if a.Progress != nil {
				mu.Lock()
				done++
				a.Progress(done, total)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
