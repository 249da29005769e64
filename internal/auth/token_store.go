package auth

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// TokenKey is the settings key the session token is stored under.
const TokenKey = "resumeai_token"

// Setting is one client-local key/value pair.
type Setting struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (Setting) TableName() string {
	return "settings"
}

// TokenStore keeps the session token between CLI invocations.
type TokenStore interface {
	// Token returns the stored token, or "" when signed out.
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type tokenStore struct {
	db *gorm.DB
}

// NewTokenStore uses db for the settings table, creating it if needed.
func NewTokenStore(db *gorm.DB) (TokenStore, error) {
	if err := db.AutoMigrate(&Setting{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate settings table")
	}
	return &tokenStore{db: db}, nil
}

// OpenTokenStore opens (or creates) the sqlite file at path.
func OpenTokenStore(path string) (TokenStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, errors.Wrapf(err, "failed to create %s", dir)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open token store %s", path)
	}
	return NewTokenStore(db)
}

func (s *tokenStore) Token(ctx context.Context) (string, error) {
	var setting Setting
	err := s.db.WithContext(ctx).Where(&Setting{Key: TokenKey}).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to read token")
	}
	return setting.Value, nil
}

func (s *tokenStore) SetToken(ctx context.Context, token string) error {
	setting := Setting{Key: TokenKey, Value: token, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	return errors.Wrap(err, "failed to store token")
}

func (s *tokenStore) Clear(ctx context.Context) error {
	err := s.db.WithContext(ctx).Delete(&Setting{Key: TokenKey}).Error
	return errors.Wrap(err, "failed to clear token")
}
