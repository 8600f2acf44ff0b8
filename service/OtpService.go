package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-otp/model"
	"storefront-otp/repository"
	"storefront-otp/util"

	"github.com/rs/zerolog/log"
)

// OtpSender delivers an issued code to the phone it was issued for.
type OtpSender interface {
	SendOtp(ctx context.Context, phone, code string) error
}

type OtpOptions struct {
	TTL time.Duration
	// AllowReplay lets an already verified, unexpired record verify again.
	AllowReplay bool
	Now         func() time.Time
	// DeliveryTimeout bounds one asynchronous send.
	DeliveryTimeout time.Duration
}

func DefaultOtpOptions() OtpOptions {
	return OtpOptions{
		TTL:             model.OtpTTL,
		AllowReplay:     true,
		Now:             time.Now,
		DeliveryTimeout: 15 * time.Second,
	}
}

type OtpService struct {
	repo   repository.OtpRepository
	sender OtpSender
	opts   OtpOptions
}

// NewOtpService injects dependencies. A nil sender disables delivery.
func NewOtpService(repo repository.OtpRepository, sender OtpSender, opts OtpOptions) *OtpService {
	defaults := DefaultOtpOptions()
	if opts.TTL <= 0 {
		opts.TTL = defaults.TTL
	}
	if opts.Now == nil {
		opts.Now = defaults.Now
	}
	if opts.DeliveryTimeout <= 0 {
		opts.DeliveryTimeout = defaults.DeliveryTimeout
	}
	return &OtpService{repo: repo, sender: sender, opts: opts}
}

func (s *OtpService) TTL() time.Duration {
	return s.opts.TTL
}

// Issue creates and persists a fresh code for phone, then hands it to the sender in the background.
func (s *OtpService) Issue(ctx context.Context, phone string) (*model.OtpRecord, error) {
	code, err := util.GenerateNumericCode(model.OtpCodeLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate otp: %w", err)
	}

	rec := &model.OtpRecord{
		Phone:     phone,
		Code:      code,
		CreatedAt: s.opts.Now(),
		Verified:  false,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	log.Info().Str("otp_id", rec.ID.String()).Str("phone", phone).Msg("otp issued")

	if s.sender != nil {
		// Issuance does not depend on delivery
		go s.deliver(rec.ID.String(), phone, code)
	}

	return rec, nil
}

func (s *OtpService) deliver(id, phone, code string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.DeliveryTimeout)
	defer cancel()

	if err := s.sender.SendOtp(ctx, phone, code); err != nil {
		log.Error().Err(err).Str("otp_id", id).Str("phone", phone).Msg("otp delivery failed")
		return
	}
	log.Debug().Str("otp_id", id).Str("phone", phone).Msg("otp delivered")
}

// Verify reports whether code is a live code for phone. Unknown and expired codes both yield false
// without an error; only storage failures are returned as errors.
func (s *OtpService) Verify(ctx context.Context, phone, code string) (bool, error) {
	rec, err := s.repo.FindByPhoneAndCode(ctx, phone, code)
	if errors.Is(err, repository.ErrOtpNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if rec.IsExpired(s.opts.Now(), s.opts.TTL) {
		log.Debug().Str("otp_id", rec.ID.String()).Msg("otp expired")
		return false, nil
	}

	if rec.Verified {
		return s.opts.AllowReplay, nil
	}

	flipped, err := s.repo.MarkVerified(ctx, rec.ID)
	if err != nil {
		return false, err
	}
	if !flipped && !s.opts.AllowReplay {
		// lost the race to a concurrent verify
		return false, nil
	}

	rec.Verified = true
	log.Info().Str("otp_id", rec.ID.String()).Str("phone", phone).Msg("otp verified")
	return true, nil
}

// ListActive returns unverified, unexpired records and removes the expired ones it finds.
func (s *OtpService) ListActive(ctx context.Context) ([]model.OtpRecord, error) {
	active, _, err := s.sweep(ctx)
	if err != nil {
		return nil, err
	}
	return active, nil
}

// Sweep removes expired unverified records and returns how many were removed.
func (s *OtpService) Sweep(ctx context.Context) (int, error) {
	_, removed, err := s.sweep(ctx)
	return removed, err
}

func (s *OtpService) sweep(ctx context.Context) ([]model.OtpRecord, int, error) {
	records, err := s.repo.ListUnverified(ctx)
	if err != nil {
		return nil, 0, err
	}

	now := s.opts.Now()
	active := make([]model.OtpRecord, 0, len(records))
	var expired []model.OtpRecord
	for _, rec := range records {
		if rec.IsExpired(now, s.opts.TTL) {
			expired = append(expired, rec)
		} else {
			active = append(active, rec)
		}
	}

	if len(expired) > 0 {
		if err := s.repo.RemoveAll(ctx, expired); err != nil {
			return nil, 0, err
		}
		log.Info().Int("count", len(expired)).Msg("removed expired otp records")
	}

	return active, len(expired), nil
}
