package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// OtpTTL is how long an issued code stays valid.
	OtpTTL = 3 * time.Minute
	// OtpCodeLength is the fixed number of digits in a code.
	OtpCodeLength = 6
)

type OtpRecord struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Phone     string         `gorm:"size:20;not null;index:idx_otp_phone_code"`
	Code      string         `gorm:"size:6;not null;index:idx_otp_phone_code"`
	CreatedAt time.Time      `gorm:"not null;index"`
	Verified  bool           `gorm:"not null;default:false;index"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (OtpRecord) TableName() string { return "otp_records" }

func (o *OtpRecord) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// IsExpired reports whether more than ttl has passed since the record was created.
func (o *OtpRecord) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.Sub(o.CreatedAt) > ttl
}
