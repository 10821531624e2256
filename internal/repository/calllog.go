package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dialbook/dialbook/internal/model"
)

// maxCallLogPage bounds the call-log listing so a long-lived account can
// never produce an unbounded result set.
const maxCallLogPage = 200

const callLogColumns = `id, owner_id, type, contact_id, name, phone, ts, duration_seconds, created_at, updated_at`

// ListCallLogs retrieves the owner's call logs, newest first, capped at
// maxCallLogPage entries.
func (r *Repository) ListCallLogs(ctx context.Context, ownerID uuid.UUID) ([]*model.CallLog, error) {
	query := `
		SELECT ` + callLogColumns + `
		FROM call_logs
		WHERE owner_id = $1
		ORDER BY ts DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, ownerID, maxCallLogPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list call logs: %w", err)
	}
	defer rows.Close()

	var logs []*model.CallLog
	for rows.Next() {
		log, err := scanCallLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan call log: %w", err)
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating call logs: %w", err)
	}

	return logs, nil
}

// CreateCallLog inserts a new call log. Call logs are append-only: no
// update or delete path exists.
func (r *Repository) CreateCallLog(ctx context.Context, log *model.CallLog) error {
	query := `
		INSERT INTO call_logs (id, owner_id, type, contact_id, name, phone, ts, duration_seconds, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		log.ID,
		log.OwnerID,
		log.Type,
		log.ContactID,
		log.Name,
		log.Phone,
		log.Timestamp,
		log.DurationSeconds,
		log.CreatedAt,
		log.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create call log: %w", err)
	}

	return nil
}

// scanCallLog scans a single row into a CallLog model.
func scanCallLog(row pgx.Row) (*model.CallLog, error) {
	var log model.CallLog
	err := row.Scan(
		&log.ID,
		&log.OwnerID,
		&log.Type,
		&log.ContactID,
		&log.Name,
		&log.Phone,
		&log.Timestamp,
		&log.DurationSeconds,
		&log.CreatedAt,
		&log.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &log, nil
}
