package database

import (
	"context"
	"errors"

	"brn-watcher/agent/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AutoCheckEntry is one (user, wallet, language) triple eligible for the
// periodic balance check.
type AutoCheckEntry struct {
	UserID   int64
	Address  string
	Language string
}

// Store is the persistence surface the bot and the auto-checker depend on.
// The wallet limit is enforced by callers before AddWallet; the store only
// guarantees single-row consistency.
type Store interface {
	GetUserLanguage(ctx context.Context, userID int64) (string, error)
	SetUserLanguage(ctx context.Context, userID int64, language string) error

	ListWallets(ctx context.Context, userID int64) ([]string, error)
	WalletExists(ctx context.Context, userID int64, address string) (bool, error)
	CountWallets(ctx context.Context, userID int64) (int64, error)
	AddWallet(ctx context.Context, userID int64, address string, autoCheck bool) error

	GetAutoCheck(ctx context.Context, userID int64) (bool, error)
	SetAutoCheck(ctx context.Context, userID int64, enabled bool) error

	ListAutoCheckEntries(ctx context.Context) ([]AutoCheckEntry, error)
}

// GormStore implements Store on top of a GORM Postgres connection.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// GetUserLanguage returns the stored language tag, or "" when the user has
// never picked one. Callers apply the default.
func (s *GormStore) GetUserLanguage(ctx context.Context, userID int64) (string, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "telegram_user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return user.Language, nil
}

func (s *GormStore) SetUserLanguage(ctx context.Context, userID int64, language string) error {
	user := models.User{TelegramUserID: userID, Language: language}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"language", "updated_at"}),
	}).Create(&user).Error
}

func (s *GormStore) ListWallets(ctx context.Context, userID int64) ([]string, error) {
	var addresses []string
	err := s.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		Order("created_at").
		Pluck("address", &addresses).Error
	if err != nil {
		return nil, err
	}
	return addresses, nil
}

func (s *GormStore) WalletExists(ctx context.Context, userID int64, address string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("user_id = ? AND address = ?", userID, address).
		Count(&count).Error
	return count > 0, err
}

func (s *GormStore) CountWallets(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (s *GormStore) AddWallet(ctx context.Context, userID int64, address string, autoCheck bool) error {
	wallet := models.Wallet{UserID: userID, Address: address, AutoCheck: autoCheck}
	return s.db.WithContext(ctx).Create(&wallet).Error
}

// GetAutoCheck reads the per-user auto-check flag. The flag lives on every
// wallet row but is toggled for the whole user at once, so any row is
// authoritative. No rows means the flag was never enabled.
func (s *GormStore) GetAutoCheck(ctx context.Context, userID int64) (bool, error) {
	var flags []bool
	err := s.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Distinct("auto_check").
		Where("user_id = ?", userID).
		Find(&flags).Error
	if err != nil {
		return false, err
	}
	if len(flags) == 0 {
		return false, nil
	}
	return flags[0], nil
}

func (s *GormStore) SetAutoCheck(ctx context.Context, userID int64, enabled bool) error {
	return s.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		Update("auto_check", enabled).Error
}

// ListAutoCheckEntries snapshots all (user, wallet, language) triples with
// auto-check enabled, in insertion order.
func (s *GormStore) ListAutoCheckEntries(ctx context.Context) ([]AutoCheckEntry, error) {
	var entries []AutoCheckEntry
	err := s.db.WithContext(ctx).
		Table("wallets").
		Select("wallets.user_id AS user_id, wallets.address AS address, users.language AS language").
		Joins("LEFT JOIN users ON users.telegram_user_id = wallets.user_id").
		Where("wallets.auto_check = ?", true).
		Order("wallets.created_at").
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
