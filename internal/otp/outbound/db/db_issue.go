package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/thispl/otp-generation/internal/otp/entity"
)

const expirePriorOTPsQuery = `
UPDATE otp_codes
SET status = $1
WHERE status = $2
  AND purpose = $3
  AND ((email <> '' AND email = $4) OR (phone <> '' AND phone = $5))
`

const insertOTPQuery = `
INSERT INTO otp_codes (id, code, email, phone, purpose, user_ref, delivery_method, status, metadata, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

// IssueOTP atomically expires every still-valid passcode for the record's
// identity scope and purpose, then inserts the new record. Both steps share
// one transaction so a reader never observes two valid codes for the same
// scope.
func (s *DB) IssueOTP(ctx context.Context, rec entity.OTPRecord) (err error) {
	ctx, span := s.startSpan(ctx, "IssueOTP")
	defer func() { s.endSpan(span, err) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rolback", "error", rErr)
		}
	}()

	if _, err = tx.Exec(ctx, expirePriorOTPsQuery,
		entity.StatusExpired, entity.StatusValid, rec.Purpose, rec.Email, rec.Phone,
	); err != nil {
		return s.mapError(err)
	}

	if _, err = tx.Exec(ctx, insertOTPQuery,
		rec.ID, rec.Code, rec.Email, rec.Phone, rec.Purpose, rec.UserRef,
		rec.DeliveryMethod, rec.Status, rec.Metadata, rec.CreatedAt, rec.ExpiresAt,
	); err != nil {
		return s.mapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return s.mapError(err)
	}

	return nil
}
