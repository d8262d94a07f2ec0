package service

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"acta_diurna/internal/model"
	"acta_diurna/internal/pkg"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// 内存库每个连接各是一个库，收紧到单连接
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.User{},
		&model.Invitation{},
		&model.ContributorEdge{},
		&model.Story{},
		&model.StoryImage{},
		&model.Digest{},
		&model.DigestOutbox{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, email, name string) *model.User {
	t.Helper()
	u := &model.User{Email: email, Password: "x", FullName: name, IsActive: true}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func linkUsers(t *testing.T, db *gorm.DB, a, b uint64) {
	t.Helper()
	edge := &model.ContributorEdge{
		PairKey: pkg.PairKey(a, b),
		UserA:   min(a, b),
		UserB:   max(a, b),
	}
	if err := db.Create(edge).Error; err != nil {
		t.Fatalf("link %d-%d: %v", a, b, err)
	}
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
