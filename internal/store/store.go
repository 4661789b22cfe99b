// Package store persists rooms, memberships, chat messages and todo items
// with gorm. It implements core.MembershipAuthority and core.Store.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/Huddle/internal/core"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Driver      string // sqlite | postgres
	DSN         string
	AutoMigrate bool
	Debug       bool
}

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects with the configured driver and migrates the schema when
// asked to.
func Open(cfg Config) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}

	level := logger.Warn
	if cfg.Debug {
		level = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(level)})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", cfg.Driver, err)
	}
	if cfg.Driver == "" || cfg.Driver == "sqlite" {
		// One connection keeps :memory: databases shared across calls.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	s := New(db)
	if cfg.AutoMigrate {
		if err := s.Migrate(); err != nil {
			return nil, err
		}
	}
	log.Info().Str("module", "store").Str("driver", dialector.Name()).Bool("migrated", cfg.AutoMigrate).Msg("database ready")
	return s, nil
}

func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(models()...); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateRoom inserts a room and makes the owner its first member.
func (s *Store) CreateRoom(ctx context.Context, name string, owner domain.UserID, private bool) (domain.RoomID, error) {
	room := Room{Name: name, OwnerID: int64(owner), IsPrivate: private}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&room).Error; err != nil {
			return err
		}
		return tx.Create(&RoomMember{RoomID: room.ID, UserID: int64(owner)}).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create room: %w", err)
	}
	return domain.RoomID(room.ID), nil
}

// AddMember is idempotent.
func (s *Store) AddMember(ctx context.Context, roomID domain.RoomID, userID domain.UserID) error {
	var room Room
	if err := s.db.WithContext(ctx).Select("id").First(&room, int64(roomID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to find room: %w", err)
	}
	m := RoomMember{RoomID: int64(roomID), UserID: int64(userID)}
	if err := s.db.WithContext(ctx).Where(&m).FirstOrCreate(&m).Error; err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

func (s *Store) IsMember(ctx context.Context, userID domain.UserID, roomID domain.RoomID) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&RoomMember{}).
		Where("room_id = ? AND user_id = ?", int64(roomID), int64(userID)).
		Limit(1).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return n > 0, nil
}

func (s *Store) RoomOfItem(ctx context.Context, itemID domain.TodoID) (domain.RoomID, error) {
	var item TodoItem
	if err := s.db.WithContext(ctx).Select("room_id").First(&item, int64(itemID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("failed to find todo: %w", err)
	}
	return domain.RoomID(item.RoomID), nil
}

func (s *Store) InsertMessage(ctx context.Context, roomID domain.RoomID, userID domain.UserID, content string) (domain.MessageReceipt, error) {
	m := Message{RoomID: int64(roomID), UserID: int64(userID), Content: content}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return domain.MessageReceipt{}, fmt.Errorf("failed to insert message: %w", err)
	}
	return domain.MessageReceipt{ID: domain.MessageID(m.ID), CreatedAt: m.CreatedAt}, nil
}

func (s *Store) InsertTodo(ctx context.Context, roomID domain.RoomID, text string) (*domain.TodoItem, error) {
	item := TodoItem{RoomID: int64(roomID), Text: text}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to insert todo: %w", err)
	}
	return toDomainTodo(item), nil
}

// UpdateTodo applies the non-nil fields of patch and returns the fresh row.
func (s *Store) UpdateTodo(ctx context.Context, itemID domain.TodoID, patch domain.TodoPatch) (*domain.TodoItem, error) {
	fields := map[string]any{"updated_at": time.Now()}
	if patch.Text != nil {
		fields["text"] = *patch.Text
	}
	if patch.Completed != nil {
		fields["completed"] = *patch.Completed
	}

	var item TodoItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&TodoItem{}).Where("id = ?", int64(itemID)).Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return tx.First(&item, int64(itemID)).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}
	return toDomainTodo(item), nil
}

func (s *Store) DeleteTodo(ctx context.Context, itemID domain.TodoID) error {
	res := s.db.WithContext(ctx).Delete(&TodoItem{}, int64(itemID))
	if res.Error != nil {
		return fmt.Errorf("failed to delete todo: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func toDomainTodo(t TodoItem) *domain.TodoItem {
	return &domain.TodoItem{
		ID:        domain.TodoID(t.ID),
		RoomID:    domain.RoomID(t.RoomID),
		Text:      t.Text,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

var (
	_ core.MembershipAuthority = (*Store)(nil)
	_ core.Store               = (*Store)(nil)
)
