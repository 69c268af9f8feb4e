// Package monitor contains the polling core: the cycle loop, the debounce
// engine that confirms status transitions, and the per-product error
// backoff. One product and one size at a time; the only concurrency is
// the optional summary reader.
package monitor

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ThePeze/BershkaStockMonitor/internal/fetch"
	"github.com/ThePeze/BershkaStockMonitor/internal/model"
	"github.com/ThePeze/BershkaStockMonitor/internal/notify"
	"github.com/ThePeze/BershkaStockMonitor/internal/state"
	logx "github.com/ThePeze/BershkaStockMonitor/pkg/logx"
)

// minCycleSleep is the floor for the inter-cycle pause; even aggressive
// configs never hammer the shop faster than this.
const minCycleSleep = 30 * time.Second

// Fetcher is the snapshot capability the scheduler polls.
type Fetcher interface {
	Fetch(ctx context.Context, productID int) (*fetch.Snapshot, error)
}

// Options carries the polling knobs. Zero values fall back to the defaults
// the config layer documents.
type Options struct {
	Interval        time.Duration
	Jitter          time.Duration
	PerProductDelay time.Duration

	ConfirmCount    int
	SuppressInitial bool

	BackoffBase time.Duration
	BackoffMax  time.Duration

	// ResetErrorsOnStart zeroes persisted error counts when the scheduler
	// starts, instead of letting backoff pressure survive a restart.
	ResetErrorsOnStart bool
}

func (o *Options) applyDefaults() {
	if o.Interval <= 0 {
		o.Interval = 180 * time.Second
	}
	if o.Jitter < 0 {
		o.Jitter = 0
	}
	if o.ConfirmCount < 1 {
		o.ConfirmCount = 2
	}
	if o.BackoffBase <= 0 {
		o.BackoffBase = 10 * time.Second
	}
	if o.BackoffMax <= 0 {
		o.BackoffMax = 600 * time.Second
	}
}

// Settings is a live-reloadable bundle: the polling knobs plus the product
// list. Published by the config watcher, picked up at cycle boundaries.
type Settings struct {
	Options  Options
	Products []model.Product
}

// Deps are the scheduler's collaborators. Nil Log/Notifier/Clock/Rand get
// safe defaults; Fetcher and Store are required.
type Deps struct {
	Fetcher  Fetcher
	Notifier notify.Notifier
	Store    state.Store
	Log      logx.Logger
	Clock    Clock
	Rand     *rand.Rand
}

// Scheduler owns the in-memory state document for the process lifetime and
// drives the fetch -> normalize -> debounce -> notify -> persist cycle.
type Scheduler struct {
	opts     Options
	products []model.Product

	fetcher  Fetcher
	notifier notify.Notifier
	store    state.Store
	log      logx.Logger
	clock    Clock
	rng      *rand.Rand

	reload <-chan Settings

	// mu guards doc, products and opts against the summary reader. The
	// polling loop is the only writer and never holds mu across a sleep
	// or a network call.
	mu  sync.Mutex
	doc *state.Document
}

func New(opts Options, products []model.Product, deps Deps) *Scheduler {
	opts.applyDefaults()
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	if deps.Clock == nil {
		deps.Clock = RealClock()
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if deps.Log.IsZero() {
		deps.Log = logx.Nop()
	}
	return &Scheduler{
		opts:     opts,
		products: products,
		fetcher:  deps.Fetcher,
		notifier: deps.Notifier,
		store:    deps.Store,
		log:      deps.Log,
		clock:    deps.Clock,
		rng:      deps.Rand,
	}
}

// SetReload installs the settings channel checked at each cycle boundary.
// Must be called before Run.
func (s *Scheduler) SetReload(ch <-chan Settings) { s.reload = ch }

// Run loads persisted state and loops until ctx is cancelled. Steady-state
// errors (fetch, delivery, flush) never end the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	resetErrors := false
	if s.opts.ResetErrorsOnStart {
		for _, p := range doc.Products {
			if p.ErrorCount != 0 {
				p.ErrorCount = 0
				resetErrors = true
			}
		}
	}
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	if resetErrors {
		s.persist(ctx, s.log)
	}

	s.log.Info("monitoring started",
		logx.Int("products", len(s.products)),
		logx.Duration("interval", s.opts.Interval),
		logx.Duration("jitter", s.opts.Jitter),
		logx.Int("confirm_count", s.opts.ConfirmCount),
		logx.Bool("suppress_initial", s.opts.SuppressInitial),
	)

	for {
		if ctx.Err() != nil {
			return nil
		}
		s.applyReload()
		s.runCycle(ctx)
		if ctx.Err() != nil {
			return nil
		}
		pause := s.cycleSleep()
		s.log.Info("cycle done", logx.Duration("next_in", pause))
		s.clock.Sleep(ctx, pause)
	}
}

func (s *Scheduler) applyReload() {
	if s.reload == nil {
		return
	}
	for {
		select {
		case st := <-s.reload:
			st.Options.applyDefaults()
			s.mu.Lock()
			s.opts = st.Options
			s.products = st.Products
			s.mu.Unlock()
			s.log.Info("settings reloaded", logx.Int("products", len(st.Products)))
		default:
			return
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	log := s.log.With(logx.String("cycle_id", uuid.NewString()))

	s.mu.Lock()
	products := s.products
	delay := s.opts.PerProductDelay
	s.mu.Unlock()

	for i, p := range products {
		if ctx.Err() != nil {
			return
		}
		plog := log.With(
			logx.String("product", p.Title),
			logx.Int("product_id", p.ProductID),
			logx.String("progress", progress(i+1, len(products))),
		)
		s.pollProduct(ctx, plog, p)
		if delay > 0 {
			s.clock.Sleep(ctx, delay)
		}
	}
}

func (s *Scheduler) pollProduct(ctx context.Context, log logx.Logger, p model.Product) {
	snap, err := s.fetcher.Fetch(ctx, p.ProductID)
	if err != nil {
		s.mu.Lock()
		ps := s.doc.Product(p.ProductID)
		ps.ErrorCount++
		count := ps.ErrorCount
		backoff := Backoff{Base: s.opts.BackoffBase, Max: s.opts.BackoffMax}
		s.mu.Unlock()

		s.persist(ctx, log)
		pause := backoff.Delay(count)
		log.Warn("fetch failed",
			logx.Err(err),
			logx.Int("error_count", count),
			logx.Duration("backoff", pause),
		)
		s.clock.Sleep(ctx, pause)
		return
	}

	s.mu.Lock()
	ps := s.doc.Product(p.ProductID)
	recovered := ps.ErrorCount != 0
	if recovered {
		ps.ErrorCount = 0
	}
	deb := Debouncer{ConfirmCount: s.opts.ConfirmCount, SuppressInitial: s.opts.SuppressInitial}
	s.mu.Unlock()

	// Reset must be durable before any size processing starts.
	if recovered {
		log.Info("fetch recovered; error count reset")
		s.persist(ctx, log)
	}

	for _, check := range p.Checks {
		entry, ok := snap.FindEntry(p.ProductID, check.SizeID)
		if !ok {
			// Size absent from the response this cycle: no status, no
			// record mutation. Distinct from UNKNOWN.
			log.Debug("size absent from snapshot",
				logx.String("size", check.SizeLabel),
				logx.Int("size_id", check.SizeID),
			)
			continue
		}
		curr := fetch.Normalize(entry)

		s.mu.Lock()
		emit := deb.Observe(ps.Size(check.SizeID), curr)
		s.mu.Unlock()

		if !emit {
			continue
		}
		msg := formatChangeMessage(p, check, curr, s.clock.Now())
		log.Info("confirmed status change",
			logx.String("size", check.SizeLabel),
			logx.String("status", string(curr.Status)),
			logx.Bool("low_stock", curr.LowStock),
			logx.String("message", oneLine(msg)),
		)
		// The change is already recorded as emitted; a failed delivery is
		// logged and lost rather than re-sent.
		if err := s.notifier.Send(ctx, msg); err != nil {
			log.Warn("notification delivery failed", logx.Err(err))
		}
	}

	s.persist(ctx, log)
}

// persist flushes the whole document. Flush errors are absorbed: the next
// mutation point writes the same (or newer) picture again.
func (s *Scheduler) persist(ctx context.Context, log logx.Logger) {
	if err := s.store.Save(ctx, s.doc); err != nil {
		log.Error("state flush failed", logx.Err(err))
	}
}

// cycleSleep returns interval +/- uniform jitter, clamped to the floor.
func (s *Scheduler) cycleSleep() time.Duration {
	s.mu.Lock()
	interval := s.opts.Interval
	jitter := s.opts.Jitter
	s.mu.Unlock()

	pause := interval
	if jitter > 0 {
		pause += time.Duration(s.rng.Int63n(int64(2*jitter)+1)) - jitter
	}
	if pause < minCycleSleep {
		pause = minCycleSleep
	}
	return pause
}

func progress(i, n int) string {
	return strconv.Itoa(i) + "/" + strconv.Itoa(n)
}
