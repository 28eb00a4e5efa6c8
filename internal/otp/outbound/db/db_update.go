package db

import (
	"context"

	"github.com/thispl/otp-generation/internal/otp/entity"
	"github.com/thispl/otp-generation/internal/pkg/goerror"
)

const updateOTPStatusQuery = `
UPDATE otp_codes
SET status = $1
WHERE id = $2 AND status = $3
`

// ConsumeOTP marks the record Consumed only if it is still Valid. A missed
// update means a concurrent verification or sweep settled the record first,
// reported as goerror.ErrNotFound.
func (s *DB) ConsumeOTP(ctx context.Context, id int64) error {
	return s.casStatus(ctx, "ConsumeOTP", id, entity.StatusConsumed)
}

// ExpireOTP marks the record Expired only if it is still Valid.
func (s *DB) ExpireOTP(ctx context.Context, id int64) error {
	return s.casStatus(ctx, "ExpireOTP", id, entity.StatusExpired)
}

func (s *DB) casStatus(ctx context.Context, op string, id int64, to entity.Status) (err error) {
	ctx, span := s.startSpan(ctx, op)
	defer func() { s.endSpan(span, err) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tag, err := s.conn.Exec(ctx, updateOTPStatusQuery, to, id, entity.StatusValid)
	if err != nil {
		return s.mapError(err)
	}

	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}
