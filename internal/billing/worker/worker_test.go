package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/vayron-digital/modulyn-one-sub003/internal/billing/domain"
	billingrepo "github.com/vayron-digital/modulyn-one-sub003/internal/billing/repository"
	"github.com/vayron-digital/modulyn-one-sub003/internal/clock"
	"github.com/vayron-digital/modulyn-one-sub003/internal/config"
	"github.com/vayron-digital/modulyn-one-sub003/internal/migration"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

var dbSeq atomic.Int64

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := migration.RunMigrations(sqlDB); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return conn
}

// recordingProcessor marks each event processed and remembers the order.
type recordingProcessor struct {
	repo      billingdomain.Repository
	processed []snowflake.ID
	fail      bool
}

func (p *recordingProcessor) ProcessEvent(ctx context.Context, eventID snowflake.ID) error {
	if p.fail {
		return fmt.Errorf("handler_failed")
	}
	p.processed = append(p.processed, eventID)
	return p.repo.MarkProcessed(ctx, eventID, testNow)
}

func insertEvent(t *testing.T, repo billingdomain.Repository, node *snowflake.Node, ref string, receivedAt time.Time) snowflake.ID {
	t.Helper()
	event := &billingdomain.SubscriptionEvent{
		ID:         node.Generate(),
		EventID:    ref,
		EventType:  billingdomain.EventChargeCompleted,
		ReceivedAt: receivedAt,
	}
	inserted, err := repo.Insert(context.Background(), event)
	if err != nil || !inserted {
		t.Fatalf("insert %s: inserted=%v err=%v", ref, inserted, err)
	}
	return event.ID
}

func newTestPool(t *testing.T, repo billingdomain.Repository) *Pool {
	t.Helper()
	return NewPool(Params{
		Log:   zap.NewNop(),
		Clock: clock.FixedClock{Instant: testNow},
		Repo:  repo,
		Cfg: config.Config{
			Worker: config.WorkerConfig{
				QueueSize:      4,
				SweepGrace:     time.Minute,
				SweepBatchSize: 10,
				MaxAttempts:    5,
			},
		},
	})
}

func TestSweepRetriesStaleUnprocessedEvents(t *testing.T) {
	conn := openTestDB(t)
	repo := billingrepo.Provide(conn)
	node, err := snowflake.NewNode(3)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	stale := insertEvent(t, repo, node, "MOD-STALE", testNow.Add(-5*time.Minute))
	fresh := insertEvent(t, repo, node, "MOD-FRESH", testNow.Add(-10*time.Second))
	done := insertEvent(t, repo, node, "MOD-DONE", testNow.Add(-5*time.Minute))
	if err := repo.MarkProcessed(context.Background(), done, testNow); err != nil {
		t.Fatalf("mark processed: %v", err)
	}

	pool := newTestPool(t, repo)
	processor := &recordingProcessor{repo: repo}
	pool.SetProcessor(processor)

	count, err := pool.SweepOnce(context.Background())
	if err != nil {
		t.Fatalf("SweepOnce: %v", err)
	}
	if count != 1 {
		t.Fatalf("processed = %d, want 1", count)
	}
	if len(processor.processed) != 1 || processor.processed[0] != stale {
		t.Fatalf("processed ids = %v, want only the stale event", processor.processed)
	}

	// The fresh event is still inside the grace window.
	row, err := repo.FindByID(context.Background(), fresh)
	if err != nil {
		t.Fatalf("find fresh: %v", err)
	}
	if row.Processed {
		t.Fatal("fresh event must be left for the dispatch queue")
	}
}

func TestSweepSkipsDeadLetteredEvents(t *testing.T) {
	conn := openTestDB(t)
	repo := billingrepo.Provide(conn)
	node, err := snowflake.NewNode(4)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	dead := insertEvent(t, repo, node, "MOD-DEAD", testNow.Add(-time.Hour))
	if err := repo.MarkDeadLettered(context.Background(), dead, testNow); err != nil {
		t.Fatalf("dead letter: %v", err)
	}

	pool := newTestPool(t, repo)
	processor := &recordingProcessor{repo: repo}
	pool.SetProcessor(processor)

	count, err := pool.SweepOnce(context.Background())
	if err != nil {
		t.Fatalf("SweepOnce: %v", err)
	}
	if count != 0 || len(processor.processed) != 0 {
		t.Fatalf("dead-lettered events must not be retried, processed %v", processor.processed)
	}
}

func TestSweepCountsOnlySuccesses(t *testing.T) {
	conn := openTestDB(t)
	repo := billingrepo.Provide(conn)
	node, err := snowflake.NewNode(5)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	insertEvent(t, repo, node, "MOD-RETRY", testNow.Add(-time.Hour))

	pool := newTestPool(t, repo)
	pool.SetProcessor(&recordingProcessor{repo: repo, fail: true})

	count, err := pool.SweepOnce(context.Background())
	if err != nil {
		t.Fatalf("SweepOnce: %v", err)
	}
	if count != 0 {
		t.Fatalf("processed = %d, want 0", count)
	}
}

func TestEnqueueReportsFullQueue(t *testing.T) {
	conn := openTestDB(t)
	repo := billingrepo.Provide(conn)
	pool := newTestPool(t, repo)

	node, err := snowflake.NewNode(6)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	for i := 0; i < 4; i++ {
		if !pool.Enqueue(node.Generate()) {
			t.Fatalf("enqueue %d should fit", i)
		}
	}
	if pool.Enqueue(node.Generate()) {
		t.Fatal("expected a full queue to reject the enqueue")
	}
}
