package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/vayron-digital/modulyn-one-sub003/internal/billing/domain"
	"github.com/vayron-digital/modulyn-one-sub003/internal/billing/fastspring"
	"github.com/vayron-digital/modulyn-one-sub003/internal/clock"
	"github.com/vayron-digital/modulyn-one-sub003/internal/config"
	"github.com/vayron-digital/modulyn-one-sub003/internal/observability/metrics"
	tenantdomain "github.com/vayron-digital/modulyn-one-sub003/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type Params struct {
	fx.In

	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Cfg        config.Config
	Repo       billingdomain.Repository
	Tenants    tenantdomain.Repository
	Dispatcher billingdomain.Dispatcher `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	cfg        config.Config
	repo       billingdomain.Repository
	tenants    tenantdomain.Repository
	dispatcher billingdomain.Dispatcher
	verifier   *fastspring.Verifier
	metrics    *metrics.WebhookMetrics
}

func NewService(p Params) billingdomain.Service {
	return &Service{
		log:        p.Log.Named("billing.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		cfg:        p.Cfg,
		repo:       p.Repo,
		tenants:    p.Tenants,
		dispatcher: p.Dispatcher,
		verifier:   fastspring.NewVerifier(p.Cfg.FastSpringPrivateKey),
		metrics:    metrics.Webhook(),
	}
}

// IngestWebhook authenticates and durably records one delivery. The returned
// result only reflects verification and the ledger write: tenant mutation is
// dispatched to the background pool (or, without a pool, run inline with its
// error swallowed) so the provider's acknowledgement never depends on it.
func (s *Service) IngestWebhook(ctx context.Context, params map[string]string) (*billingdomain.IngestResult, error) {
	if strings.TrimSpace(s.cfg.FastSpringPrivateKey) == "" {
		return nil, billingdomain.ErrMissingPrivateKey
	}
	if !s.verifier.Verify(params) {
		s.metrics.Rejected()
		return nil, billingdomain.ErrInvalidSignature
	}

	event := fastspring.Classify(params)

	externalID := event.Reference
	if externalID == "" {
		// The provider always sends a reference in practice; a generated id
		// keeps an anomalous delivery in the ledger at the cost of replay
		// detection for it.
		externalID = "evt-" + s.genID.Generate().String()
		s.log.Warn("webhook delivery without reference id",
			zap.String("event_type", event.Type),
			zap.String("assigned_event_id", externalID),
		)
	}

	record := billingdomain.SubscriptionEvent{
		ID:                       s.genID.Generate(),
		EventID:                  externalID,
		EventType:                event.Type,
		FastSpringOrderID:        event.Reference,
		FastSpringSubscriptionID: event.SubscriptionID,
		CustomerID:               event.CustomerEmail,
		ProductID:                event.ProductPath,
		AmountCents:              event.AmountCents,
		Currency:                 event.Currency,
		Sequence:                 event.Sequence,
		Periods:                  event.Periods,
		IsTest:                   event.Test,
		EventData:                datatypes.JSON(mustMarshalParams(params)),
		ReceivedAt:               s.clock.Now(),
	}

	inserted, err := s.repo.Insert(ctx, &record)
	if err != nil {
		return nil, err
	}

	if !inserted {
		stored, err := s.repo.FindByEventID(ctx, externalID)
		if err != nil {
			return nil, err
		}
		if stored == nil {
			return nil, billingdomain.ErrInvalidEvent
		}
		if stored.Processed {
			// Idempotent replay: acknowledge without touching the tenant.
			s.metrics.Duplicate()
			s.log.Info("duplicate webhook delivery",
				zap.String("event_id", externalID),
				zap.String("event_type", stored.EventType),
			)
			return &billingdomain.IngestResult{
				EventID:   stored.ID,
				EventType: stored.EventType,
				Duplicate: true,
			}, nil
		}
		// Redelivered before the first attempt finished; queue it again.
		s.dispatch(stored.ID)
		return &billingdomain.IngestResult{
			EventID:   stored.ID,
			EventType: stored.EventType,
			Duplicate: true,
		}, nil
	}

	s.metrics.Received(metricEventType(event.Type))
	s.dispatch(record.ID)

	return &billingdomain.IngestResult{
		EventID:   record.ID,
		EventType: event.Type,
	}, nil
}

func (s *Service) dispatch(id snowflake.ID) {
	if s.dispatcher != nil {
		if !s.dispatcher.Enqueue(id) {
			s.log.Warn("webhook dispatch queue full, leaving event for sweep",
				zap.String("event_id", id.String()),
			)
		}
		return
	}
	// No pool wired (tests, one-shot tools): process inline. The error is
	// still captured rather than propagated.
	if err := s.ProcessEvent(context.WithoutCancel(context.Background()), id); err != nil {
		s.log.Error("inline webhook processing failed",
			zap.String("event_id", id.String()),
			zap.Error(err),
		)
	}
}

// ProcessEvent applies the state transition for one ledger row. Failures bump
// the attempt counter and, past the configured maximum, park the row in the
// dead letter state.
func (s *Service) ProcessEvent(ctx context.Context, eventID snowflake.ID) error {
	err := s.processEvent(ctx, eventID)
	if err != nil {
		s.recordFailure(eventID, err)
	}
	return err
}

func (s *Service) processEvent(ctx context.Context, eventID snowflake.ID) error {
	timeout := s.cfg.Worker.HandlerTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stored, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return err
	}
	if stored == nil {
		return billingdomain.ErrEventNotFound
	}
	if stored.Processed {
		return nil
	}

	event := s.classifyStored(stored)
	now := s.clock.Now()

	if !billingdomain.KnownEventType(event.Type) {
		// Logged-but-ignored: the ledger keeps the delivery, no handler runs.
		s.log.Info("ignoring unhandled webhook event type",
			zap.String("event_id", stored.EventID),
			zap.String("event_type", event.Type),
		)
		return s.markProcessed(ctx, stored.ID)
	}

	tenant, err := s.resolveTenant(ctx, event, now)
	if err != nil {
		return err
	}
	if tenant == nil {
		// Unknown billing email on a non-creating event. The event stays in
		// the ledger, unlinked; this is a successful no-op.
		s.log.Warn("webhook event for unknown billing email",
			zap.String("event_id", stored.EventID),
			zap.String("event_type", event.Type),
		)
		return s.markProcessed(ctx, stored.ID)
	}

	applyTransition(tenant, event, now, s.cfg.BillingCycleDay)

	if err := s.tenants.Update(ctx, tenant); err != nil {
		return err
	}
	if err := s.repo.LinkTenant(ctx, stored.ID, tenant.ID); err != nil {
		return err
	}
	if err := s.markProcessed(ctx, stored.ID); err != nil {
		return err
	}

	s.log.Info("webhook event processed",
		zap.String("event_id", stored.EventID),
		zap.String("event_type", event.Type),
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("subscription_status", string(tenant.Status)),
	)
	return nil
}

// resolveTenant maps the billing email to a tenant. Only order.completed may
// create one; the new tenant is born active and paid.
func (s *Service) resolveTenant(ctx context.Context, event *billingdomain.Event, now time.Time) (*tenantdomain.Tenant, error) {
	tenant, err := s.tenants.FindByBillingEmail(ctx, event.CustomerEmail)
	if err != nil {
		return nil, err
	}
	if tenant != nil {
		return tenant, nil
	}
	if event.Type != billingdomain.EventOrderCompleted || event.CustomerEmail == "" {
		return nil, nil
	}

	id := s.genID.Generate()
	name := event.Company
	if name == "" {
		name = event.CustomerEmail
	}
	created := &tenantdomain.Tenant{
		ID:           id,
		Slug:         slugFor(event.CustomerEmail, id),
		Name:         name,
		BillingEmail: event.CustomerEmail,
		Status:       tenantdomain.StatusActive,
		IsPaid:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return s.tenants.CreateActive(ctx, created)
}

func (s *Service) markProcessed(ctx context.Context, id snowflake.ID) error {
	if err := s.repo.MarkProcessed(ctx, id, s.clock.Now()); err != nil {
		return err
	}
	s.metrics.Processed()
	return nil
}

func (s *Service) recordFailure(eventID snowflake.ID, cause error) {
	s.metrics.HandlerFailure()
	s.log.Error("webhook event processing failed",
		zap.String("event_id", eventID.String()),
		zap.Error(cause),
	)

	// The triggering context may already be expired; bookkeeping gets its own.
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	attempts, err := s.repo.MarkAttempt(ctx, eventID)
	if err != nil {
		s.log.Error("failed to record webhook attempt",
			zap.String("event_id", eventID.String()),
			zap.Error(err),
		)
		return
	}
	if attempts >= int64(s.cfg.Worker.MaxAttempts) && s.cfg.Worker.MaxAttempts > 0 {
		if err := s.repo.MarkDeadLettered(ctx, eventID, s.clock.Now()); err != nil {
			s.log.Error("failed to dead-letter webhook event",
				zap.String("event_id", eventID.String()),
				zap.Error(err),
			)
			return
		}
		s.metrics.DeadLettered()
		s.log.Error("webhook event dead-lettered",
			zap.String("event_id", eventID.String()),
			zap.Int64("attempts", attempts),
		)
	}
}

// classifyStored re-derives the normalized event from the stored raw payload,
// falling back to the ledger columns when the payload cannot be decoded.
func (s *Service) classifyStored(stored *billingdomain.SubscriptionEvent) *billingdomain.Event {
	var params map[string]string
	if len(stored.EventData) > 0 {
		if err := json.Unmarshal(stored.EventData, &params); err == nil {
			event := fastspring.Classify(params)
			if stored.EventType != "" {
				event.Type = stored.EventType
			}
			return event
		}
	}
	return &billingdomain.Event{
		Type:           stored.EventType,
		Reference:      stored.FastSpringOrderID,
		SubscriptionID: stored.FastSpringSubscriptionID,
		ProductPath:    stored.ProductID,
		CustomerEmail:  stored.CustomerID,
		AmountCents:    stored.AmountCents,
		Currency:       stored.Currency,
		Sequence:       stored.Sequence,
		Periods:        stored.Periods,
		Test:           stored.IsTest,
	}
}

func metricEventType(eventType string) string {
	if billingdomain.KnownEventType(eventType) {
		return eventType
	}
	return billingdomain.EventUnknown
}

func mustMarshalParams(params map[string]string) []byte {
	encoded, err := json.Marshal(params)
	if err != nil {
		return []byte("{}")
	}
	return encoded
}

func slugFor(email string, id snowflake.ID) string {
	local := email
	if at := strings.Index(email, "@"); at > 0 {
		local = email[:at]
	}
	var b strings.Builder
	for _, r := range strings.ToLower(local) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	slug := b.String()
	if slug == "" {
		slug = "tenant"
	}
	return slug + "-" + strings.ToLower(id.Base36())
}
