package kvstore

import (
	"context"
	"errors"
	"time"

	"github.com/bhargavsatvara/zyqora-storefront/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQL stores visitor state in the guest_state table (postgres or sqlite).
type SQL struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSQL(db *gorm.DB) *SQL {
	return &SQL{db: db, now: time.Now}
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var row models.GuestState
	err := s.db.WithContext(ctx).
		Where("state_key = ?", key).
		Where("expires_at IS NULL OR expires_at > ?", s.now().UTC()).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.Value, nil
}

func (s *SQL) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	row := models.GuestState{Key: key, Value: value, UpdatedAt: s.now().UTC()}
	if ttl > 0 {
		expires := s.now().UTC().Add(ttl)
		row.ExpiresAt = &expires
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "state_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
		}).
		Create(&row).Error
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("state_key = ?", key).Delete(&models.GuestState{}).Error
}

// PurgeExpired removes rows whose TTL has elapsed and returns how many were deleted.
func (s *SQL) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", s.now().UTC()).
		Delete(&models.GuestState{})
	return res.RowsAffected, res.Error
}
