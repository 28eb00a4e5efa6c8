package db

import (
	"context"
	"time"

	"github.com/thispl/otp-generation/internal/otp/entity"
)

const getValidOTPQuery = `
SELECT id, code, email, phone, purpose, user_ref, delivery_method, status, metadata, created_at, expires_at
FROM otp_codes
WHERE code = $1
  AND purpose = $2
  AND status = $3
  AND ((email <> '' AND email = $4) OR (phone <> '' AND phone = $5))
ORDER BY (email <> '' AND email = $4) DESC, created_at DESC
LIMIT 1
`

const countIssuedSinceQuery = `
SELECT COUNT(*)
FROM otp_codes
WHERE created_at >= $1
  AND ((email <> '' AND email = $2) OR (phone <> '' AND phone = $3))
`

const listExpiredValidQuery = `
SELECT id
FROM otp_codes
WHERE status = $1 AND expires_at < $2
ORDER BY expires_at
LIMIT $3
`

// GetValidOTP returns the newest still-valid record matching the code and
// identity scope. When both email and phone are given, an email match wins
// over a phone-only match.
func (s *DB) GetValidOTP(ctx context.Context, code, email, phone, purpose string) (rec *entity.OTPRecord, err error) {
	ctx, span := s.startSpan(ctx, "GetValidOTP")
	defer func() { s.endSpan(span, err) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var out entity.OTPRecord
	err = s.conn.QueryRow(ctx, getValidOTPQuery, code, purpose, entity.StatusValid, email, phone).Scan(
		&out.ID, &out.Code, &out.Email, &out.Phone, &out.Purpose, &out.UserRef,
		&out.DeliveryMethod, &out.Status, &out.Metadata, &out.CreatedAt, &out.ExpiresAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &out, nil
}

// CountIssuedSince counts every passcode issued for the identity scope after
// since, regardless of current status.
func (s *DB) CountIssuedSince(ctx context.Context, email, phone string, since time.Time) (count int64, err error) {
	ctx, span := s.startSpan(ctx, "CountIssuedSince")
	defer func() { s.endSpan(span, err) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err = s.conn.QueryRow(ctx, countIssuedSinceQuery, since, email, phone).Scan(&count); err != nil {
		return 0, s.mapError(err)
	}

	return count, nil
}

// ListExpiredValid returns ids of records still marked Valid whose expiry is
// behind now, oldest first, capped at limit.
func (s *DB) ListExpiredValid(ctx context.Context, now time.Time, limit int32) (ids []int64, err error) {
	ctx, span := s.startSpan(ctx, "ListExpiredValid")
	defer func() { s.endSpan(span, err) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.conn.Query(ctx, listExpiredValidQuery, entity.StatusValid, now, limit)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, s.mapError(err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return ids, nil
}
