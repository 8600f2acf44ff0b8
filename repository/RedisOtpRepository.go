package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront-otp/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisRecordPrefix  = "otp:record:"
	redisLookupPrefix  = "otp:lookup:"
	redisUnverifiedKey = "otp:unverified"
)

// markVerifiedScript flips the verified field only while it is still "0".
var markVerifiedScript = redis.NewScript(`
local v = redis.call("HGET", KEYS[1], "verified")
if v == "0" then
	redis.call("HSET", KEYS[1], "verified", "1")
	redis.call("ZREM", KEYS[2], ARGV[1])
	return 1
end
return 0
`)

type redisOtpRepo struct {
	client *redis.Client
}

// NewRedisOtpRepository stores each record as a hash, indexed by (phone, code) and by verification state.
func NewRedisOtpRepository(client *redis.Client) OtpRepository {
	return &redisOtpRepo{client: client}
}

func recordKey(id uuid.UUID) string {
	return redisRecordPrefix + id.String()
}

func lookupKey(phone, code string) string {
	return fmt.Sprintf("%s%s:%s", redisLookupPrefix, phone, code)
}

func (r *redisOtpRepo) Create(ctx context.Context, rec *model.OtpRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	member := rec.ID.String()
	score := float64(rec.CreatedAt.UnixMilli())

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, recordKey(rec.ID), recordFields(rec))
		pipe.ZAdd(ctx, lookupKey(rec.Phone, rec.Code), redis.Z{Score: score, Member: member})
		if !rec.Verified {
			pipe.ZAdd(ctx, redisUnverifiedKey, redis.Z{Score: score, Member: member})
		}
		return nil
	})
	return storageErr("create", err)
}

func (r *redisOtpRepo) FindByPhoneAndCode(ctx context.Context, phone, code string) (*model.OtpRecord, error) {
	ids, err := r.client.ZRevRange(ctx, lookupKey(phone, code), 0, 0).Result()
	if err != nil {
		return nil, storageErr("find", err)
	}
	if len(ids) == 0 {
		return nil, ErrOtpNotFound
	}

	id, err := uuid.Parse(ids[0])
	if err != nil {
		return nil, storageErr("find", err)
	}
	rec, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrOtpNotFound
	}
	return rec, nil
}

func (r *redisOtpRepo) ListUnverified(ctx context.Context) ([]model.OtpRecord, error) {
	members, err := r.client.ZRange(ctx, redisUnverifiedKey, 0, -1).Result()
	if err != nil {
		return nil, storageErr("list", err)
	}
	if len(members) == 0 {
		return []model.OtpRecord{}, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(members))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, m := range members {
			cmds[i] = pipe.HGetAll(ctx, redisRecordPrefix+m)
		}
		return nil
	})
	if err != nil {
		return nil, storageErr("list", err)
	}

	out := make([]model.OtpRecord, 0, len(members))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			// index entry outlived its hash
			continue
		}
		rec, err := parseRecord(fields)
		if err != nil {
			return nil, storageErr("list", err)
		}
		out = append(out, *rec)
	}
	return out, nil
}

func (r *redisOtpRepo) RemoveAll(ctx context.Context, records []model.OtpRecord) error {
	if len(records) == 0 {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, rec := range records {
			member := rec.ID.String()
			pipe.Del(ctx, recordKey(rec.ID))
			pipe.ZRem(ctx, lookupKey(rec.Phone, rec.Code), member)
			pipe.ZRem(ctx, redisUnverifiedKey, member)
		}
		return nil
	})
	return storageErr("remove", err)
}

func (r *redisOtpRepo) Save(ctx context.Context, rec *model.OtpRecord) error {
	existing, err := r.load(ctx, rec.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrOtpNotFound
	}
	if !rec.Verified || existing.Verified {
		return nil
	}

	// the script skips hashes removed since the load
	_, err = r.MarkVerified(ctx, rec.ID)
	return err
}

func (r *redisOtpRepo) MarkVerified(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := markVerifiedScript.Run(ctx, r.client, []string{recordKey(id), redisUnverifiedKey}, id.String()).Int()
	if err != nil {
		return false, storageErr("mark verified", err)
	}
	return n == 1, nil
}

func (r *redisOtpRepo) load(ctx context.Context, id uuid.UUID) (*model.OtpRecord, error) {
	fields, err := r.client.HGetAll(ctx, recordKey(id)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, storageErr("load", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	rec, err := parseRecord(fields)
	if err != nil {
		return nil, storageErr("load", err)
	}
	return rec, nil
}

func recordFields(rec *model.OtpRecord) map[string]interface{} {
	return map[string]interface{}{
		"id":         rec.ID.String(),
		"phone":      rec.Phone,
		"code":       rec.Code,
		"created_at": rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		"verified":   boolField(rec.Verified),
	}
}

func parseRecord(fields map[string]string) (*model.OtpRecord, error) {
	id, err := uuid.Parse(fields["id"])
	if err != nil {
		return nil, fmt.Errorf("invalid record id: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return nil, fmt.Errorf("invalid created_at for %s: %w", id, err)
	}
	return &model.OtpRecord{
		ID:        id,
		Phone:     fields["phone"],
		Code:      fields["code"],
		CreatedAt: createdAt,
		Verified:  fields["verified"] == "1",
	}, nil
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
