package verification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/cms/internal/common"
	"github.com/dmitrijs2005/cms/internal/dbx"
	"github.com/dmitrijs2005/cms/internal/server/models"
)

// PostgresStore keeps verification state on the users table. Each update
// runs in its own transaction holding a row lock on the user.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// UpdateVerification implements Store.
func (s *PostgresStore) UpdateVerification(ctx context.Context, userID string, fn func(rec *models.VerificationRecord) (bool, error)) error {
	if _, err := uuid.Parse(userID); err != nil {
		return common.ErrorNotFound
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `SELECT is_verified, verification_token, verification_issued_at, verification_expires_at
			FROM users WHERE id = $1 FOR UPDATE`

		rec := &models.VerificationRecord{UserID: userID}
		var token sql.NullString
		var issued, expires sql.NullTime
		err := tx.QueryRowContext(ctx, query, userID).Scan(&rec.Verified, &token, &issued, &expires)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return common.ErrorNotFound
			}
			return fmt.Errorf("db error: %w", err)
		}
		rec.Token = token.String
		rec.IssuedAt = issued.Time
		rec.ExpiresAt = expires.Time

		changed, err := fn(rec)
		if err != nil || !changed {
			return err
		}

		update := `UPDATE users
			SET is_verified = $2, verification_token = $3, verification_issued_at = $4, verification_expires_at = $5
			WHERE id = $1`
		if _, err := tx.ExecContext(ctx, update, userID, rec.Verified,
			nullString(rec.Token), nullTime(rec.IssuedAt), nullTime(rec.ExpiresAt)); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return nil
	})
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
