// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package hub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/society-live/models"
)

// ErrHubClosed is returned by every operation after Shutdown.
var ErrHubClosed = errors.New("vote hub is shut down")

// Store is the relational system of record the hub writes through.
type Store interface {
	GetPerformance(ctx context.Context, id string) (models.Performance, error)
	ListVotingPerformances(ctx context.Context) ([]models.Performance, error)
	SetVotingEnabled(ctx context.Context, id string, enabled bool, at time.Time) (models.Performance, error)
	SetVotingDuration(ctx context.Context, id string, seconds int) error
	InsertVote(ctx context.Context, v models.Vote) error
	CountVotes(ctx context.Context, performanceID string) (map[string]int64, error)
}

// Sink is one subscriber's output. Send and Close are only ever called from
// the subscriber's writer goroutine.
type Sink interface {
	Send(ctx context.Context, update models.TallyUpdate) error
	Close() error
}

// Pinger is implemented by sinks that support keep-alive writes.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Hub fans tally updates out to live subscribers, keyed by performance.
type Hub struct {
	store        Store
	logger       *slog.Logger
	bufferSize   int
	writeTimeout time.Duration
	keepAlive    time.Duration
	now          func() time.Time

	closed  atomic.Bool
	writers sync.WaitGroup

	mu           sync.Mutex
	performances map[string]*performance
}

// performance is the per-performance critical section. mu is held across
// the vote insert, the tally mutation and the enqueue to subscribers.
type performance struct {
	mu          sync.Mutex
	id          string
	loaded      bool
	tally       models.Tally
	subscribers map[string]*Subscription
	timerGen    uint64
	timer       *time.Timer
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	id            string
	performanceID string
	sink          Sink
	queue         chan models.TallyUpdate
	stopOnce      sync.Once
}

func (s *Subscription) ID() string            { return s.id }
func (s *Subscription) PerformanceID() string { return s.performanceID }

func (s *Subscription) stop() {
	s.stopOnce.Do(func() { close(s.queue) })
}

type Option func(*Hub)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithBufferSize sets how many updates may queue for one subscriber before
// it is treated as too slow and dropped.
func WithBufferSize(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.bufferSize = n
		}
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.writeTimeout = d
		}
	}
}

// WithKeepAlive sets the ping interval for sinks implementing Pinger.
// Zero disables pings.
func WithKeepAlive(d time.Duration) Option {
	return func(h *Hub) {
		if d >= 0 {
			h.keepAlive = d
		}
	}
}

func New(store Store, opts ...Option) *Hub {
	h := &Hub{
		store:        store,
		logger:       slog.Default(),
		bufferSize:   16,
		writeTimeout: 5 * time.Second,
		keepAlive:    15 * time.Second,
		now:          time.Now,
		performances: make(map[string]*performance),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// lookup returns the entry for a performance, creating it only once the
// store has confirmed the performance exists.
func (h *Hub) lookup(ctx context.Context, id string) (*performance, error) {
	p, err := h.existing(id)
	if p != nil || err != nil {
		return p, err
	}

	if _, err := h.store.GetPerformance(ctx, id); err != nil {
		return nil, err
	}
	return h.entry(id)
}

func (h *Hub) existing(id string) (*performance, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed.Load() {
		return nil, ErrHubClosed
	}
	return h.performances[id], nil
}

// entry gets or creates the entry for a known performance
func (h *Hub) entry(id string) (*performance, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed.Load() {
		return nil, ErrHubClosed
	}
	p, ok := h.performances[id]
	if !ok {
		p = &performance{id: id, subscribers: make(map[string]*Subscription)}
		h.performances[id] = p
	}
	return p, nil
}

// Subscribe registers sink for live updates of performanceID. The current
// tally is queued as the first message before Subscribe returns.
func (h *Hub) Subscribe(ctx context.Context, performanceID string, sink Sink) (*Subscription, error) {
	p, err := h.lookup(ctx, performanceID)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if h.closed.Load() {
		return nil, ErrHubClosed
	}

	perf, err := h.store.GetPerformance(ctx, performanceID)
	if err != nil {
		return nil, err
	}
	if !perf.VotingEnabled {
		return nil, models.ErrVotingClosed
	}
	if err := h.loadTallyLocked(ctx, p, perf); err != nil {
		return nil, err
	}

	sub := &Subscription{
		id:            uuid.NewString(),
		performanceID: performanceID,
		sink:          sink,
		queue:         make(chan models.TallyUpdate, h.bufferSize),
	}
	sub.queue <- h.update(models.UpdateTally, p.tally.Clone())
	p.subscribers[sub.id] = sub

	h.writers.Add(1)
	go h.write(sub)

	h.logger.Info("subscriber joined",
		"performance_id", performanceID,
		"subscription_id", sub.id,
		"subscribers", len(p.subscribers),
	)
	return sub, nil
}

// Unsubscribe removes a subscription. Safe to call more than once.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	p := h.performances[sub.performanceID]
	h.mu.Unlock()

	if p != nil {
		p.mu.Lock()
		if current, ok := p.subscribers[sub.id]; ok && current == sub {
			delete(p.subscribers, sub.id)
			h.logger.Info("subscriber left",
				"performance_id", sub.performanceID,
				"subscription_id", sub.id,
				"subscribers", len(p.subscribers),
			)
		}
		p.mu.Unlock()
	}
	sub.stop()
}

// RecordVote persists a vote and broadcasts the new tally. A store failure
// aborts before the cached tally changes.
func (h *Hub) RecordVote(ctx context.Context, userID, performanceID, value string) (models.Tally, error) {
	userID = strings.TrimSpace(userID)
	value = strings.TrimSpace(value)
	if userID == "" {
		return models.Tally{}, models.ErrMissingUser
	}
	if value == "" {
		return models.Tally{}, models.ErrInvalidOption
	}

	p, err := h.lookup(ctx, performanceID)
	if err != nil {
		return models.Tally{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded {
		perf, err := h.store.GetPerformance(ctx, performanceID)
		if err != nil {
			return models.Tally{}, err
		}
		if !perf.VotingEnabled {
			return models.Tally{}, models.ErrVotingClosed
		}
		if err := h.loadTallyLocked(ctx, p, perf); err != nil {
			return models.Tally{}, err
		}
	}

	vote := models.Vote{
		ID:            uuid.NewString(),
		UserID:        userID,
		PerformanceID: performanceID,
		Value:         value,
		CreatedAt:     h.now().UTC(),
	}
	if err := h.store.InsertVote(ctx, vote); err != nil {
		if errors.Is(err, models.ErrPersistence) {
			// the commit outcome is unknown; reload from the store next time
			p.loaded = false
		}
		return models.Tally{}, err
	}

	p.tally.Add(value)
	tally := p.tally.Clone()
	h.broadcastLocked(p, h.update(models.UpdateTally, tally))

	h.logger.Info("vote recorded",
		"performance_id", performanceID,
		"vote_id", vote.ID,
		"total", tally.Total,
		"subscribers", len(p.subscribers),
	)
	return tally, nil
}

// OpenVoting enables voting. With a positive voting duration the
// performance closes itself once the duration has passed.
func (h *Hub) OpenVoting(ctx context.Context, performanceID string) (models.Performance, error) {
	p, err := h.lookup(ctx, performanceID)
	if err != nil {
		return models.Performance{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	perf, err := h.store.GetPerformance(ctx, performanceID)
	if err != nil {
		return models.Performance{}, err
	}
	if perf.VotingEnabled {
		return perf, nil
	}

	perf, err = h.store.SetVotingEnabled(ctx, performanceID, true, h.now().UTC())
	if err != nil {
		return models.Performance{}, err
	}
	if deadline, ok := perf.VotingDeadline(); ok {
		h.scheduleCloseLocked(p, deadline)
	}

	h.logger.Info("voting opened", "performance_id", performanceID, "duration_seconds", perf.VotingDurationSeconds)
	return perf, nil
}

// SetVotingDuration changes the voting duration. If voting is open the
// automatic close is re-armed from the original opening time, so a duration
// that has already elapsed closes voting right away. Zero disables it.
func (h *Hub) SetVotingDuration(ctx context.Context, performanceID string, seconds int) (models.Performance, error) {
	if seconds < 0 {
		return models.Performance{}, errors.New("voting duration cannot be negative")
	}

	p, err := h.lookup(ctx, performanceID)
	if err != nil {
		return models.Performance{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := h.store.SetVotingDuration(ctx, performanceID, seconds); err != nil {
		return models.Performance{}, err
	}
	perf, err := h.store.GetPerformance(ctx, performanceID)
	if err != nil {
		return models.Performance{}, err
	}

	if perf.VotingEnabled {
		if deadline, ok := perf.VotingDeadline(); ok {
			h.scheduleCloseLocked(p, deadline)
		} else {
			h.cancelTimerLocked(p)
		}
	}
	return perf, nil
}

// CloseVoting disables voting, sends every subscriber a terminal update and
// ends their streams.
func (h *Hub) CloseVoting(ctx context.Context, performanceID string) (models.Performance, error) {
	p, err := h.lookup(ctx, performanceID)
	if err != nil {
		return models.Performance{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return h.closeVotingLocked(ctx, p)
}

func (h *Hub) closeVotingLocked(ctx context.Context, p *performance) (models.Performance, error) {
	perf, err := h.store.SetVotingEnabled(ctx, p.id, false, h.now().UTC())
	if err != nil {
		return models.Performance{}, err
	}
	h.cancelTimerLocked(p)

	if err := h.loadTallyLocked(ctx, p, perf); err != nil {
		h.logger.Warn("failed to load final tally", "performance_id", p.id, "error", err)
	}

	final := h.update(models.UpdateClosed, p.tally.Clone())
	ended := len(p.subscribers)
	for id, sub := range p.subscribers {
		select {
		case sub.queue <- final:
		default:
			// full queue: drop the oldest pending update so the terminal one
			// still fits. Only the writer receives, so this send cannot block.
			select {
			case <-sub.queue:
			default:
			}
			sub.queue <- final
			h.logger.Warn("slow subscriber skipped an update before close",
				"performance_id", p.id,
				"subscription_id", id,
			)
		}
		delete(p.subscribers, id)
		sub.stop()
	}

	h.logger.Info("voting closed", "performance_id", p.id, "streams_ended", ended, "total", p.tally.Total)
	return perf, nil
}

// Tally returns the cached tally, loading it from the store on first use.
func (h *Hub) Tally(ctx context.Context, performanceID string) (models.Tally, error) {
	p, err := h.lookup(ctx, performanceID)
	if err != nil {
		return models.Tally{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded {
		perf, err := h.store.GetPerformance(ctx, performanceID)
		if err != nil {
			return models.Tally{}, err
		}
		if err := h.loadTallyLocked(ctx, p, perf); err != nil {
			return models.Tally{}, err
		}
	}
	return p.tally.Clone(), nil
}

// SubscriberCount returns the number of live subscribers of a performance.
func (h *Hub) SubscriberCount(performanceID string) int {
	h.mu.Lock()
	p := h.performances[performanceID]
	h.mu.Unlock()
	if p == nil {
		return 0
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subscribers)
}

// Restore warms the tally cache for performances that are accepting votes
// and re-arms their automatic close timers. Called once at startup.
func (h *Hub) Restore(ctx context.Context) (int, error) {
	open, err := h.store.ListVotingPerformances(ctx)
	if err != nil {
		return 0, fmt.Errorf("list open performances: %w", err)
	}

	for _, perf := range open {
		p, err := h.entry(perf.ID)
		if err != nil {
			return 0, err
		}

		p.mu.Lock()
		p.loaded = false
		err = h.loadTallyLocked(ctx, p, perf)
		if err == nil {
			if deadline, ok := perf.VotingDeadline(); ok {
				h.scheduleCloseLocked(p, deadline)
			}
		}
		p.mu.Unlock()

		if err != nil {
			return 0, fmt.Errorf("restore performance %s: %w", perf.ID, err)
		}
	}

	h.logger.Info("vote hub restored", "open_performances", len(open))
	return len(open), nil
}

// Shutdown ends every stream, stops close timers and waits for writer
// goroutines to finish or ctx to expire.
func (h *Hub) Shutdown(ctx context.Context) error {
	if !h.closed.CompareAndSwap(false, true) {
		return nil
	}

	h.mu.Lock()
	all := make([]*performance, 0, len(h.performances))
	for _, p := range h.performances {
		all = append(all, p)
	}
	h.mu.Unlock()

	ended := 0
	for _, p := range all {
		p.mu.Lock()
		h.cancelTimerLocked(p)
		for id, sub := range p.subscribers {
			delete(p.subscribers, id)
			sub.stop()
			ended++
		}
		p.mu.Unlock()
	}

	done := make(chan struct{})
	go func() {
		h.writers.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.logger.Info("vote hub shut down", "streams_ended", ended)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for stream writers: %w", ctx.Err())
	}
}

func (h *Hub) loadTallyLocked(ctx context.Context, p *performance, perf models.Performance) error {
	if p.loaded {
		return nil
	}

	counts, err := h.store.CountVotes(ctx, perf.ID)
	if err != nil {
		return err
	}

	tally := models.NewTally(perf.ID, perf.Options)
	for option, n := range counts {
		tally.Counts[option] = n
		tally.Total += n
	}
	p.tally = tally
	p.loaded = true
	return nil
}

// broadcastLocked queues update for every subscriber without blocking.
// A subscriber whose queue is full is dropped.
func (h *Hub) broadcastLocked(p *performance, update models.TallyUpdate) {
	for id, sub := range p.subscribers {
		select {
		case sub.queue <- update:
		default:
			delete(p.subscribers, id)
			sub.stop()
			h.logger.Warn("dropping slow subscriber",
				"performance_id", p.id,
				"subscription_id", id,
			)
		}
	}
}

func (h *Hub) scheduleCloseLocked(p *performance, deadline time.Time) {
	h.cancelTimerLocked(p)

	gen := p.timerGen
	wait := deadline.Sub(h.now())
	if wait < 0 {
		wait = 0
	}
	p.timer = time.AfterFunc(wait, func() { h.expire(p, gen) })
}

func (h *Hub) cancelTimerLocked(p *performance) {
	p.timerGen++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (h *Hub) expire(p *performance, gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timerGen != gen || h.closed.Load() {
		return
	}
	p.timer = nil

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := h.closeVotingLocked(ctx, p); err != nil {
		h.logger.Error("automatic voting close failed", "performance_id", p.id, "error", err)
	}
}

func (h *Hub) update(kind string, tally models.Tally) models.TallyUpdate {
	return models.TallyUpdate{Type: kind, Tally: tally, SentAt: h.now().UTC()}
}

// write drains one subscriber's queue in order. After the first failed
// write the subscriber is removed and the remaining queue is discarded.
func (h *Hub) write(sub *Subscription) {
	defer h.writers.Done()
	defer func() {
		if err := sub.sink.Close(); err != nil {
			h.logger.Debug("sink close failed", "subscription_id", sub.id, "error", err)
		}
	}()

	var pings <-chan time.Time
	pinger, canPing := sub.sink.(Pinger)
	if canPing && h.keepAlive > 0 {
		ticker := time.NewTicker(h.keepAlive)
		defer ticker.Stop()
		pings = ticker.C
	}

	failed := false
	for {
		select {
		case update, ok := <-sub.queue:
			if !ok {
				return
			}
			if failed {
				continue
			}
			if err := h.deliver(func(ctx context.Context) error { return sub.sink.Send(ctx, update) }); err != nil {
				failed, pings = true, nil
				h.dropFailed(sub, err)
			}
		case <-pings:
			if err := h.deliver(pinger.Ping); err != nil {
				failed, pings = true, nil
				h.dropFailed(sub, err)
			}
		}
	}
}

func (h *Hub) deliver(send func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.writeTimeout)
	defer cancel()
	return send(ctx)
}

func (h *Hub) dropFailed(sub *Subscription, err error) {
	h.logger.Info("subscriber write failed",
		"performance_id", sub.performanceID,
		"subscription_id", sub.id,
		"error", err,
	)
	h.Unsubscribe(sub)
}
