// Package music provides the aggregation engine. This file holds the
// concurrent fetch of the three listening collections and the pipeline that
// turns them into a Response.
//
// A failing upstream call never aborts an aggregation: the affected
// collection is treated as empty and the resource is reported in
// Result.Degraded so callers can surface the partial failure out of band.
package music

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"Music-City-Go/pkg/metrics"
)

// DefaultFetchTimeout bounds the three-way fetch when Engine.Timeout is zero.
const DefaultFetchTimeout = 10 * time.Second

// Engine fetches a user's listening collections and aggregates them.
type Engine struct {
	Fetcher Fetcher
	// Timeout bounds the whole fetch stage. Negative disables the bound.
	Timeout time.Duration
	Log     logrus.FieldLogger
	Metrics *metrics.Metrics
}

// Payloads holds the decoded raw collections.
type Payloads struct {
	Artists []Artist
	Tracks  []Track
	Recent  []PlayEvent
}

// Result is an aggregated response plus the resources that degraded to empty.
type Result struct {
	Response Response
	Degraded []Resource
}

func (e *Engine) logger() logrus.FieldLogger {
	if e.Log != nil {
		return e.Log
	}
	return logrus.StandardLogger()
}

// FetchAll retrieves every resource concurrently and waits for all of them.
// Each goroutine writes only its own slot so no locking is needed.
func (e *Engine) FetchAll(ctx context.Context, token string) (Payloads, []Resource) {
	timeout := e.Timeout
	if timeout == 0 {
		timeout = DefaultFetchTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var p Payloads
	errs := make([]error, len(Resources))
	var wg sync.WaitGroup
	for i, res := range Resources {
		wg.Add(1)
		go func(i int, res Resource) {
			defer wg.Done()
			start := time.Now()
			errs[i] = e.fetchOne(ctx, token, res, &p)
			outcome := metrics.OutcomeOK
			if errs[i] != nil {
				outcome = metrics.OutcomeDegraded
			}
			e.Metrics.ObserveFetch(string(res), outcome, time.Since(start))
		}(i, res)
	}
	wg.Wait()

	var degraded []Resource
	for i, err := range errs {
		if err == nil {
			continue
		}
		degraded = append(degraded, Resources[i])
		e.logger().WithError(err).WithField("resource", Resources[i]).Warn("fetch degraded to empty collection")
	}
	return p, degraded
}

// fetchOne fetches res and stores the decoded items in the matching field of
// p. The field is left untouched on error.
func (e *Engine) fetchOne(ctx context.Context, token string, res Resource, p *Payloads) error {
	page, err := e.Fetcher.Fetch(ctx, token, res)
	if err != nil {
		return err
	}
	switch res {
	case ResourceTopArtists:
		return decodeItems(page.Items, &p.Artists)
	case ResourceTopTracks:
		return decodeItems(page.Items, &p.Tracks)
	case ResourceRecent:
		return decodeItems(page.Items, &p.Recent)
	}
	return fmt.Errorf("unknown resource %q", res)
}

func decodeItems[T any](raw json.RawMessage, dst *[]T) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("decode items: %w", err)
	}
	*dst = items
	return nil
}

// Build runs dedup, indexing, enrichment and statistics over already fetched
// payloads. It is pure and never fails.
func Build(p Payloads) Response {
	recent := DedupeRecent(p.Recent)
	idx := buildIndex(recent, p.Tracks)
	return Response{
		TopArtists:   enrichArtists(p.Artists, idx),
		RecentTracks: enrichRecent(recent, idx),
		Stats:        computeStats(p.Artists, recent, p.Recent),
	}
}

// Aggregate fetches the three collections for token and builds the response.
func (e *Engine) Aggregate(ctx context.Context, token string) Result {
	start := time.Now()
	p, degraded := e.FetchAll(ctx, token)
	resp := Build(p)
	e.Metrics.IncAggregations()
	e.logger().WithFields(logrus.Fields{
		"artists":  len(resp.TopArtists),
		"recent":   len(resp.RecentTracks),
		"degraded": len(degraded),
		"elapsed":  time.Since(start).String(),
	}).Debug("city data aggregated")
	return Result{Response: resp, Degraded: degraded}
}
