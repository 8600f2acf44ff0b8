package dto

import (
	"time"

	"storefront-otp/model"
)

// IssueOtpRequest is the JSON payload sent to /otp/issue
type IssueOtpRequest struct {
	Phone string `json:"phone" validate:"required,phone"`
}

// VerifyOtpRequest is the JSON payload sent to /otp/verify
type VerifyOtpRequest struct {
	Phone string `json:"phone" validate:"required,phone"`
	Code  string `json:"code"  validate:"required,len=6,numeric"`
}

type VerifyOtpResponse struct {
	Verified bool `json:"verified"`
}

// OtpResponse is the public view of a record; the verified flag and tombstone stay internal.
type OtpResponse struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	Code      string    `json:"code,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewOtpResponse(rec *model.OtpRecord, withCode bool) OtpResponse {
	res := OtpResponse{
		ID:        rec.ID.String(),
		Phone:     rec.Phone,
		CreatedAt: rec.CreatedAt,
	}
	if withCode {
		res.Code = rec.Code
	}
	return res
}
