package db

import (
	"context"
	"errors"
	"testing"

	"github.com/bhargavsatvara/zyqora-storefront/pkg/config"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testModel struct {
	ID   int
	Name string `gorm:"uniqueIndex"`
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	client := Wrap(newTestDB(t))
	db := client.DB()

	ctx := context.Background()
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	var count int64
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed after rollback: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected rollback to leave 1 record, got %d", count)
	}
}

func TestPingAndDriver(t *testing.T) {
	client := Wrap(newTestDB(t))
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
	if client.Driver() != "sqlite" {
		t.Fatalf("expected sqlite driver, got %q", client.Driver())
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{DSN: "x", Driver: "mysql"}, nil)
	if err == nil {
		t.Fatal("expected unsupported driver error")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	client := Wrap(newTestDB(t))
	db := client.DB()
	if err := db.Create(&testModel{Name: "dup"}).Error; err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	err := db.Create(&testModel{Name: "dup"}).Error
	if !IsUniqueViolation(err, "") {
		t.Fatalf("expected sqlite unique violation, got %v", err)
	}

	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "guest_state_pkey"}
	if !IsUniqueViolation(pgErr, "guest_state_pkey") {
		t.Fatalf("expected pg unique violation match")
	}
	if IsUniqueViolation(pgErr, "other_constraint") {
		t.Fatalf("constraint name should narrow the match")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatalf("nil is never a violation")
	}
}
