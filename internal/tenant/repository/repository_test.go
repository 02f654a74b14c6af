package repository

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/vayron-digital/modulyn-one-sub003/internal/migration"
	tenantdomain "github.com/vayron-digital/modulyn-one-sub003/internal/tenant/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:tenant_repo_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
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

func newTenant(t *testing.T, node *snowflake.Node, email, slug string) *tenantdomain.Tenant {
	t.Helper()
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	return &tenantdomain.Tenant{
		ID:           node.Generate(),
		Slug:         slug,
		Name:         "Acme",
		BillingEmail: email,
		Status:       tenantdomain.StatusActive,
		IsPaid:       true,
		Plan:         "modulyn-one",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestCreateActiveReturnsSurvivorOnConflict(t *testing.T) {
	repo := Provide(openTestDB(t))
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	first, err := repo.CreateActive(context.Background(), newTenant(t, node, "Billing@Acme.com", "acme"))
	if err != nil {
		t.Fatalf("first create: %v", err)
	}

	// Same billing email, different id: the original row must win.
	second, err := repo.CreateActive(context.Background(), newTenant(t, node, "billing@acme.com", "acme-2"))
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("conflicting create returned id %s, want %s", second.ID, first.ID)
	}
	if second.Slug != "acme" {
		t.Fatalf("slug = %s, want the original row", second.Slug)
	}
}

func TestFindByBillingEmailNormalizes(t *testing.T) {
	repo := Provide(openTestDB(t))
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	if _, err := repo.CreateActive(context.Background(), newTenant(t, node, "Mixed@Case.io", "mixed")); err != nil {
		t.Fatalf("create: %v", err)
	}

	tenant, err := repo.FindByBillingEmail(context.Background(), "  MIXED@case.IO ")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if tenant == nil {
		t.Fatal("expected normalized lookup to match")
	}

	missing, err := repo.FindByBillingEmail(context.Background(), "other@case.io")
	if err != nil {
		t.Fatalf("find missing: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for an unknown email")
	}
}

func TestUpdateMissingTenant(t *testing.T) {
	repo := Provide(openTestDB(t))
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	ghost := newTenant(t, node, "ghost@acme.com", "ghost")
	err = repo.Update(context.Background(), ghost)
	if !errors.Is(err, tenantdomain.ErrTenantNotFound) {
		t.Fatalf("expected ErrTenantNotFound, got %v", err)
	}
}

func TestUpdatePersistsBillingFields(t *testing.T) {
	repo := Provide(openTestDB(t))
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	created, err := repo.CreateActive(context.Background(), newTenant(t, node, "update@acme.com", "update"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	next := time.Date(2025, 4, 14, 12, 0, 0, 0, time.UTC)
	created.Status = tenantdomain.StatusPastDue
	created.IsPaid = false
	created.NextBillingDate = &next
	if err := repo.Update(context.Background(), created); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.FindByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Status != tenantdomain.StatusPastDue || got.IsPaid {
		t.Fatalf("status = %s paid = %v", got.Status, got.IsPaid)
	}
	if got.NextBillingDate == nil || got.NextBillingDate.Unix() != next.Unix() {
		t.Fatalf("next billing = %v, want %v", got.NextBillingDate, next)
	}
}
