package repository

import (
	"context"
	"sort"
	"sync"

	"storefront-otp/model"

	"github.com/google/uuid"
)

type memOtpRepo struct {
	mu      sync.RWMutex
	records map[uuid.UUID]model.OtpRecord
}

// NewInMemoryOtpRepository keeps records in process memory. Removal is a hard delete.
func NewInMemoryOtpRepository() OtpRepository {
	return &memOtpRepo{records: make(map[uuid.UUID]model.OtpRecord)}
}

func (r *memOtpRepo) Create(_ context.Context, rec *model.OtpRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.ID] = *rec
	return nil
}

func (r *memOtpRepo) FindByPhoneAndCode(_ context.Context, phone, code string) (*model.OtpRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var found *model.OtpRecord
	for _, rec := range r.records {
		if rec.Phone != phone || rec.Code != code {
			continue
		}
		if found == nil || newer(rec, *found) {
			match := rec
			found = &match
		}
	}
	if found == nil {
		return nil, ErrOtpNotFound
	}
	return found, nil
}

func (r *memOtpRepo) ListUnverified(_ context.Context) ([]model.OtpRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.OtpRecord, 0, len(r.records))
	for _, rec := range r.records {
		if !rec.Verified {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memOtpRepo) RemoveAll(_ context.Context, records []model.OtpRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range records {
		delete(r.records, rec.ID)
	}
	return nil
}

func (r *memOtpRepo) Save(_ context.Context, rec *model.OtpRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.records[rec.ID]
	if !ok {
		return ErrOtpNotFound
	}
	if rec.Verified {
		existing.Verified = true
		r.records[rec.ID] = existing
	}
	return nil
}

func newer(a, b model.OtpRecord) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.String() > b.ID.String()
}

func (r *memOtpRepo) MarkVerified(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok || rec.Verified {
		return false, nil
	}
	rec.Verified = true
	r.records[id] = rec
	return true, nil
}
