package service

import (
	"context"

	"github.com/rs/zerolog/log"
)

// LogSender writes codes to the log instead of delivering them. Development only.
type LogSender struct{}

func (LogSender) SendOtp(_ context.Context, phone, code string) error {
	log.Warn().Str("phone", phone).Str("code", code).Msg("otp delivery disabled, code logged")
	return nil
}
