package core

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
)

// DeliverFunc hands sweep-produced deliveries to the owning transport
// adapter (user_left broadcasts from idle removals).
type DeliverFunc func(senderID string, ds []Delivery)

// Sweeper is a background loop that prunes stale registry entries.
// A failure processing one record never aborts the sweep for the rest.
type Sweeper struct {
	reg      *Registry
	interval time.Duration
	clk      clock.Clock
	log      *zerolog.Logger

	stale func(rec ClientRecord, now time.Time) bool
	reap  func(rec ClientRecord)

	wg sync.WaitGroup
}

// NewHandleSweeper reaps records whose transport handle is no longer open.
// Removal is silent: the close handler broadcasts user_left on a proper
// close, this loop only catches handles that died without firing it.
func NewHandleSweeper(reg *Registry, interval time.Duration, clk clock.Clock, logger *zerolog.Logger) *Sweeper {
	if clk == nil {
		clk = clock.New()
	}
	s := &Sweeper{reg: reg, interval: interval, clk: clk, log: logger}
	s.stale = func(rec ClientRecord, _ time.Time) bool {
		return rec.Handle == nil || !rec.Handle.Open()
	}
	s.reap = func(rec ClientRecord) {
		if _, ok := reg.Remove(rec.ID); ok {
			logger.Info().
				Str("client_id", rec.ID).
				Str("nickname", rec.Nickname).
				Msg("removed dead connection")
		}
	}
	return s
}

// NewIdleSweeper reaps records whose LastSeen is older than timeout. Removal
// goes through the router's disconnect path so remaining push subscribers,
// if any, see a user_left broadcast.
func NewIdleSweeper(reg *Registry, router *Router, deliver DeliverFunc, interval, timeout time.Duration, clk clock.Clock, logger *zerolog.Logger) *Sweeper {
	if clk == nil {
		clk = clock.New()
	}
	s := &Sweeper{reg: reg, interval: interval, clk: clk, log: logger}
	s.stale = func(rec ClientRecord, now time.Time) bool {
		return now.Sub(rec.LastSeen) > timeout
	}
	s.reap = func(rec ClientRecord) {
		ds := router.Dispatch(rec.ID, Inbound{Kind: InboundDisconnect})
		if len(ds) == 0 {
			return
		}
		logger.Info().
			Str("client_id", rec.ID).
			Str("nickname", rec.Nickname).
			Msg("client timed out")
		if deliver != nil {
			deliver(rec.ID, ds)
		}
	}
	return s
}

// Start launches the sweep loop. It stops when ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.run(ctx)
}

// Wait blocks until the loop has exited.
func (s *Sweeper) Wait() {
	s.wg.Wait()
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := s.clk.Ticker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	now := s.clk.Now()
	for _, rec := range s.reg.All() {
		s.sweepOne(rec, now)
	}
}

func (s *Sweeper) sweepOne(rec ClientRecord, now time.Time) {
	defer func() {
		if p := recover(); p != nil {
			s.log.Error().
				Interface("panic", p).
				Str("client_id", rec.ID).
				Msg("sweep failed for record")
		}
	}()

	if !s.stale(rec, now) {
		return
	}
	s.reap(rec)
}
