package worker

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/vayron-digital/modulyn-one-sub003/internal/billing/domain"
	"github.com/vayron-digital/modulyn-one-sub003/internal/clock"
	"github.com/vayron-digital/modulyn-one-sub003/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Processor applies the state transition for one ledger row.
// billingdomain.Service satisfies it; tests substitute doubles.
type Processor interface {
	ProcessEvent(ctx context.Context, eventID snowflake.ID) error
}

type Params struct {
	fx.In

	Log   *zap.Logger
	Cfg   config.Config
	Clock clock.Clock
	Repo  billingdomain.Repository
}

// Pool is the background half of the webhook pipeline: a bounded in-process
// queue fed by the ingest path, plus a periodic sweep over ledger rows that
// never finished processing (crash between ack and mutation, full queue,
// repeated handler failures).
type Pool struct {
	log       *zap.Logger
	cfg       config.WorkerConfig
	clock     clock.Clock
	repo      billingdomain.Repository
	processor Processor
	queue     chan snowflake.ID
}

func NewPool(p Params) *Pool {
	size := p.Cfg.Worker.QueueSize
	if size <= 0 {
		size = 256
	}
	return &Pool{
		log:   p.Log.Named("billing.worker"),
		cfg:   p.Cfg.Worker,
		clock: p.Clock,
		repo:  p.Repo,
		queue: make(chan snowflake.ID, size),
	}
}

// SetProcessor wires the processing service in after construction; the
// service itself depends on the pool as its dispatcher.
func (p *Pool) SetProcessor(processor Processor) {
	p.processor = processor
}

// Enqueue hands an acknowledged event to the pool. A false return means the
// queue is full; the sweep picks the event up instead.
func (p *Pool) Enqueue(eventID snowflake.ID) bool {
	select {
	case p.queue <- eventID:
		return true
	default:
		return false
	}
}

// Run consumes the dispatch queue until the context is cancelled.
func (p *Pool) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case eventID := <-p.queue:
			if p.processor == nil {
				p.log.Warn("no processor wired, dropping dispatch",
					zap.String("event_id", eventID.String()))
				continue
			}
			// ProcessEvent records its own failures; nothing to do here.
			_ = p.processor.ProcessEvent(ctx, eventID)
		}
	}
}

// SweepForever periodically retries unprocessed ledger rows.
func (p *Pool) SweepForever(ctx context.Context) {
	interval := p.cfg.SweepInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.SweepOnce(ctx); err != nil {
				p.log.Warn("reconciliation sweep failed", zap.Error(err))
			}
		}
	}
}

// SweepOnce retries one batch of logged-but-unprocessed events older than the
// redelivery grace window. It returns how many events completed processing.
func (p *Pool) SweepOnce(ctx context.Context) (int, error) {
	if p.processor == nil {
		return 0, errors.New("worker_processor_unavailable")
	}

	cutoff := p.clock.Now().Add(-p.cfg.SweepGrace)
	events, err := p.repo.LockUnprocessed(ctx, cutoff, p.cfg.MaxAttempts, p.cfg.SweepBatchSize)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, event := range events {
		if err := p.processor.ProcessEvent(ctx, event.ID); err != nil {
			continue
		}
		processed++
	}
	if processed > 0 || len(events) > 0 {
		p.log.Info("reconciliation sweep finished",
			zap.Int("picked_up", len(events)),
			zap.Int("processed", processed),
		)
	}
	return processed, nil
}
