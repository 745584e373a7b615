package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourorg/brand-estimator/internal/circuitbreaker"
	"github.com/yourorg/brand-estimator/internal/model"
	"github.com/yourorg/brand-estimator/internal/validation"
)

// ErrDispatcherClosed is returned by Submit after Close
var ErrDispatcherClosed = errors.New("lead dispatcher closed")

// DispatcherOptions controls batching
type DispatcherOptions struct {
	// BatchSize pending leads trigger an immediate flush
	BatchSize int

	// FlushInterval is the period of the background flush
	FlushInterval time.Duration

	// MaxPending caps the queue while the sink is failing; the oldest leads are dropped first
	MaxPending int

	// DeliveryTimeout bounds a single sink call
	DeliveryTimeout time.Duration
}

// DefaultDispatcherOptions returns the stock batching settings
func DefaultDispatcherOptions() DispatcherOptions {
	return DispatcherOptions{
		BatchSize:       20,
		FlushInterval:   30 * time.Second,
		MaxPending:      1000,
		DeliveryTimeout: 10 * time.Second,
	}
}

// DispatcherStatus is a point-in-time view of the dispatcher
type DispatcherStatus struct {
	Sink      string                `json:"sink"`
	Pending   int                   `json:"pending"`
	Delivered uint64                `json:"delivered"`
	Dropped   uint64                `json:"dropped"`
	LastFlush time.Time             `json:"last_flush"`
	Breaker   circuitbreaker.Status `json:"breaker"`
}

// Dispatcher validates leads, queues them and delivers them to a Sink in batches.
// Delivery is guarded by a circuit breaker; failed batches go back on the queue.
type Dispatcher struct {
	sink    Sink
	breaker *circuitbreaker.CircuitBreaker
	opts    DispatcherOptions
	vopts   validation.ValidationOptions

	mu        sync.Mutex
	pending   []model.Lead
	closed    bool
	delivered uint64
	dropped   uint64
	lastFlush time.Time

	// serialises flushes so batches reach the sink in submission order
	flushMu sync.Mutex

	onDeliver func(count int, err error)

	flushCh chan struct{}
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewDispatcher starts a dispatcher and its background flush loop
func NewDispatcher(sink Sink, breaker *circuitbreaker.CircuitBreaker, opts DispatcherOptions) (*Dispatcher, error) {
	if sink == nil {
		return nil, fmt.Errorf("lead sink is required")
	}
	if opts.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", opts.BatchSize)
	}
	if opts.FlushInterval <= 0 {
		return nil, fmt.Errorf("flush interval must be positive, got %s", opts.FlushInterval)
	}
	if opts.MaxPending < opts.BatchSize {
		opts.MaxPending = opts.BatchSize
	}
	if opts.DeliveryTimeout <= 0 {
		opts.DeliveryTimeout = DefaultDispatcherOptions().DeliveryTimeout
	}
	if breaker == nil {
		breaker = circuitbreaker.New(circuitbreaker.Thresholds{FailureThreshold: 5})
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		sink:    sink,
		breaker: breaker,
		opts:    opts,
		vopts:   validation.DefaultValidationOptions(),
		pending: make([]model.Lead, 0, opts.BatchSize),
		flushCh: make(chan struct{}, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go d.run(ctx)

	logrus.WithFields(logrus.Fields{
		"sink":           sink.Name(),
		"batch_size":     opts.BatchSize,
		"flush_interval": opts.FlushInterval.String(),
	}).Info("Lead dispatcher started")
	return d, nil
}

// WithValidationOptions overrides the limits used by Submit
func (d *Dispatcher) WithValidationOptions(opts validation.ValidationOptions) *Dispatcher {
	d.vopts = opts
	return d
}

// WithDeliveryHook registers a callback invoked after every sink call, once the
// breaker has recorded the outcome
func (d *Dispatcher) WithDeliveryHook(hook func(count int, err error)) *Dispatcher {
	d.onDeliver = hook
	return d
}

// Submit validates a lead, stamps it with an id and submission time and queues it
func (d *Dispatcher) Submit(lead model.Lead) (model.Lead, error) {
	lead.Email = strings.TrimSpace(lead.Email)
	lead.Name = strings.TrimSpace(lead.Name)
	lead.Company = strings.TrimSpace(lead.Company)
	if err := validation.ValidateLeadWithOptions(lead, d.vopts); err != nil {
		return model.Lead{}, err
	}
	lead.ID = uuid.NewString()
	lead.SubmittedAt = time.Now().UTC()

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return model.Lead{}, ErrDispatcherClosed
	}
	d.pending = append(d.pending, lead)
	d.trimLocked()
	full := len(d.pending) >= d.opts.BatchSize
	d.mu.Unlock()

	if full {
		select {
		case d.flushCh <- struct{}{}:
		default:
		}
	}
	return lead, nil
}

// Flush delivers everything currently queued. On failure the batch is re-queued.
func (d *Dispatcher) Flush(ctx context.Context) error {
	d.flushMu.Lock()
	defer d.flushMu.Unlock()

	d.mu.Lock()
	batch := d.pending
	d.pending = make([]model.Lead, 0, d.opts.BatchSize)
	d.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	if err := d.breaker.Allow(); err != nil {
		d.requeue(batch)
		return err
	}

	deliverCtx, cancel := context.WithTimeout(ctx, d.opts.DeliveryTimeout)
	defer cancel()
	err := d.sink.Deliver(deliverCtx, batch)
	if err != nil {
		d.breaker.RecordFailure(err.Error())
	} else {
		d.breaker.RecordSuccess()
	}
	if d.onDeliver != nil {
		d.onDeliver(len(batch), err)
	}

	if err != nil {
		d.requeue(batch)
		logrus.WithFields(logrus.Fields{
			"sink":  d.sink.Name(),
			"count": len(batch),
		}).WithError(err).Warn("Lead delivery failed")
		return fmt.Errorf("deliver to %s: %w", d.sink.Name(), err)
	}

	d.mu.Lock()
	d.delivered += uint64(len(batch))
	d.lastFlush = time.Now()
	d.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"sink":  d.sink.Name(),
		"count": len(batch),
	}).Debug("Delivered lead batch")
	return nil
}

// requeue puts a failed batch ahead of anything submitted since
func (d *Dispatcher) requeue(batch []model.Lead) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = append(batch, d.pending...)
	d.trimLocked()
}

func (d *Dispatcher) trimLocked() {
	over := len(d.pending) - d.opts.MaxPending
	if over <= 0 {
		return
	}
	d.pending = append([]model.Lead(nil), d.pending[over:]...)
	d.dropped += uint64(over)
	logrus.WithField("dropped", over).Warn("Lead queue full, dropping oldest leads")
}

func (d *Dispatcher) run(ctx context.Context) {
	defer close(d.done)
	ticker := time.NewTicker(d.opts.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.flushAndLog(ctx)
		case <-d.flushCh:
			d.flushAndLog(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (d *Dispatcher) flushAndLog(ctx context.Context) {
	if err := d.Flush(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logrus.WithError(err).Debug("Background lead flush failed")
	}
}

// Status returns queue and breaker state
func (d *Dispatcher) Status() DispatcherStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DispatcherStatus{
		Sink:      d.sink.Name(),
		Pending:   len(d.pending),
		Delivered: d.delivered,
		Dropped:   d.dropped,
		LastFlush: d.lastFlush,
		Breaker:   d.breaker.Status(),
	}
}

// Breaker exposes the circuit breaker guarding the sink
func (d *Dispatcher) Breaker() *circuitbreaker.CircuitBreaker {
	return d.breaker
}

// Close stops the background loop and makes a final flush attempt.
// Leads still pending afterwards are reported in the returned error.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	d.cancel()
	<-d.done

	err := d.Flush(ctx)
	if closer, ok := d.sink.(interface{ Close() error }); ok {
		if cerr := closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("final lead flush: %w (%d pending)", err, d.Status().Pending)
	}
	return nil
}
