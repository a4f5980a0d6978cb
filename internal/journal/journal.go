// Package journal keeps an append-only audit trail of roster events. It is
// never read back into room state.
package journal

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DoyleJ11/team-builder/internal/engine"
)

type Journal interface {
	Append(ctx context.Context, room string, version int, events []engine.Event) error
	Close() error
}

// Entry is one stored event.
type Entry struct {
	ID        uint   `gorm:"primaryKey"`
	RoomCode  string `gorm:"size:16;index:idx_room_version"`
	Version   int    `gorm:"index:idx_room_version"`
	Seq       int
	Type      string `gorm:"size:32"`
	Player    string
	Position  string `gorm:"size:32"`
	Slot      string `gorm:"size:1"`
	Tier      string `gorm:"size:8"`
	Operator  string `gorm:"size:2"`
	Detail    string
	CreatedAt time.Time
}

func (Entry) TableName() string { return "roster_events" }

// ToEntries flattens one command's events; Seq keeps their order.
func ToEntries(room string, version int, events []engine.Event) []Entry {
	now := time.Now().UTC()
	entries := make([]Entry, 0, len(events))
	for i, e := range events {
		entries = append(entries, Entry{
			RoomCode:  room,
			Version:   version,
			Seq:       i,
			Type:      string(e.Type),
			Player:    e.Name,
			Position:  e.Position,
			Slot:      string(e.Slot),
			Tier:      string(e.Tier),
			Operator:  string(e.Operator),
			Detail:    e.Detail,
			CreatedAt: now,
		})
	}
	return entries
}

type GormJournal struct {
	db *gorm.DB
}

// OpenPostgres connects to dsn and migrates the events table.
func OpenPostgres(dsn string) (*GormJournal, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to journal database: %w", err)
	}
	return NewGormJournal(db)
}

func NewGormJournal(db *gorm.DB) (*GormJournal, error) {
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate journal: %w", err)
	}
	return &GormJournal{db: db}, nil
}

func (j *GormJournal) Append(ctx context.Context, room string, version int, events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}
	entries := ToEntries(room, version, events)
	if err := j.db.WithContext(ctx).Create(&entries).Error; err != nil {
		return fmt.Errorf("append %d events for room %s: %w", len(entries), room, err)
	}
	return nil
}

// Entries reads a room's trail back, oldest first. Used by tooling and
// tests; rooms never replay it.
func (j *GormJournal) Entries(ctx context.Context, room string) ([]Entry, error) {
	var entries []Entry
	err := j.db.WithContext(ctx).
		Where("room_code = ?", room).
		Order("version, seq").
		Find(&entries).Error
	return entries, err
}

func (j *GormJournal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// MemoryJournal is the journal used when no database is configured.
type MemoryJournal struct {
	mu      sync.Mutex
	entries []Entry
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

func (j *MemoryJournal) Append(_ context.Context, room string, version int, events []engine.Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, ToEntries(room, version, events)...)
	return nil
}

func (j *MemoryJournal) Entries(room string) []Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []Entry
	for _, e := range j.entries {
		if e.RoomCode == room {
			out = append(out, e)
		}
	}
	return slices.Clip(out)
}

func (j *MemoryJournal) Close() error { return nil }
