package repository

import (
	"context"
	"errors"

	"storefront-otp/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OtpRepository interface {
	Create(ctx context.Context, rec *model.OtpRecord) error

	// FindByPhoneAndCode returns the most recently created match, or ErrOtpNotFound.
	// Equal creation times are broken by the larger id.
	FindByPhoneAndCode(ctx context.Context, phone, code string) (*model.OtpRecord, error)

	ListUnverified(ctx context.Context) ([]model.OtpRecord, error)

	// RemoveAll is idempotent; removing an already removed record is not an error.
	RemoveAll(ctx context.Context, records []model.OtpRecord) error

	// Save persists the verified flag of an existing record. Verified never goes back to false and
	// the other fields are immutable. A missing or removed record yields ErrOtpNotFound.
	Save(ctx context.Context, rec *model.OtpRecord) error

	// MarkVerified flips verified from false to true and reports whether this call did it.
	MarkVerified(ctx context.Context, id uuid.UUID) (bool, error)
}

type pgOtpRepo struct {
	db *gorm.DB
}

func NewOtpRepository(db *gorm.DB) OtpRepository {
	return &pgOtpRepo{db: db}
}

func (r *pgOtpRepo) Create(ctx context.Context, rec *model.OtpRecord) error {
	return storageErr("create", r.db.WithContext(ctx).Create(rec).Error)
}

func (r *pgOtpRepo) FindByPhoneAndCode(ctx context.Context, phone, code string) (*model.OtpRecord, error) {
	var rec model.OtpRecord
	err := r.db.WithContext(ctx).
		Where("phone = ? AND code = ?", phone, code).
		Order("created_at DESC, id DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOtpNotFound
	}
	if err != nil {
		return nil, storageErr("find", err)
	}
	return &rec, nil
}

func (r *pgOtpRepo) ListUnverified(ctx context.Context) ([]model.OtpRecord, error) {
	var recs []model.OtpRecord
	if err := r.db.WithContext(ctx).Where("verified = ?", false).Order("created_at ASC").Find(&recs).Error; err != nil {
		return nil, storageErr("list", err)
	}
	return recs, nil
}

// RemoveAll soft-deletes through gorm.DeletedAt.
func (r *pgOtpRepo) RemoveAll(ctx context.Context, records []model.OtpRecord) error {
	if len(records) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	return storageErr("remove", r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.OtpRecord{}).Error)
}

func (r *pgOtpRepo) Save(ctx context.Context, rec *model.OtpRecord) error {
	tx := r.db.WithContext(ctx).Model(&model.OtpRecord{}).Where("id = ?", rec.ID)
	if !rec.Verified {
		var n int64
		if err := tx.Count(&n).Error; err != nil {
			return storageErr("save", err)
		}
		if n == 0 {
			return ErrOtpNotFound
		}
		return nil
	}

	// gorm's Save upserts and would revive a soft-deleted row
	res := tx.Select("verified").Updates(map[string]interface{}{"verified": true})
	if res.Error != nil {
		return storageErr("save", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrOtpNotFound
	}
	return nil
}

func (r *pgOtpRepo) MarkVerified(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.OtpRecord{}).
		Where("id = ? AND verified = ?", id, false).
		Update("verified", true)
	if res.Error != nil {
		return false, storageErr("mark verified", res.Error)
	}
	return res.RowsAffected == 1, nil
}
