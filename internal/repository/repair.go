package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// RepairSummary reports the outcome of the owner-reference repair pass.
type RepairSummary struct {
	ContactsRepaired int
	ContactsSkipped  int
	CallLogsRepaired int
	CallLogsSkipped  int
}

// Total returns the number of legacy rows examined.
func (s RepairSummary) Total() int {
	return s.ContactsRepaired + s.ContactsSkipped + s.CallLogsRepaired + s.CallLogsSkipped
}

// RepairOwnerRefs promotes legacy string-typed owner references into the
// native uuid column. Rows written by an earlier schema carry the owner in
// the text owner_ref column with owner_id NULL; such records are invisible
// to the identifier-typed query path until repaired.
//
// The pass is idempotent: repaired rows clear owner_ref and never match
// again. Rows whose owner_ref does not parse as a uuid are skipped and
// counted - they stay unretrievable, which is the documented behavior for
// unattributable records. Only the type representation is fixed; record
// identity and ownership semantics are untouched.
func (r *Repository) RepairOwnerRefs(ctx context.Context, logger *slog.Logger) (RepairSummary, error) {
	var summary RepairSummary

	repaired, skipped, err := r.repairTable(ctx, logger, "contacts")
	if err != nil {
		return summary, fmt.Errorf("repair contacts: %w", err)
	}
	summary.ContactsRepaired = repaired
	summary.ContactsSkipped = skipped

	repaired, skipped, err = r.repairTable(ctx, logger, "call_logs")
	if err != nil {
		return summary, fmt.Errorf("repair call_logs: %w", err)
	}
	summary.CallLogsRepaired = repaired
	summary.CallLogsSkipped = skipped

	return summary, nil
}

// legacyRef is a row still carrying a string-typed owner reference.
type legacyRef struct {
	id  uuid.UUID
	ref string
}

func (r *Repository) repairTable(ctx context.Context, logger *slog.Logger, table string) (repaired, skipped int, err error) {
	// Table names come from the two call sites above, never from input.
	query := fmt.Sprintf(`SELECT id, owner_ref FROM %s WHERE owner_id IS NULL AND owner_ref <> ''`, table)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return 0, 0, fmt.Errorf("select legacy rows: %w", err)
	}

	var legacy []legacyRef
	for rows.Next() {
		var l legacyRef
		if err := rows.Scan(&l.id, &l.ref); err != nil {
			rows.Close()
			return 0, 0, fmt.Errorf("scan legacy row: %w", err)
		}
		legacy = append(legacy, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, 0, fmt.Errorf("iterate legacy rows: %w", err)
	}

	update := fmt.Sprintf(`UPDATE %s SET owner_id = $2, owner_ref = '' WHERE id = $1 AND owner_id IS NULL`, table)

	for _, l := range legacy {
		ownerID, parseErr := uuid.Parse(l.ref)
		if parseErr != nil {
			logger.Warn("skipping record with unparseable owner ref",
				slog.String("table", table),
				slog.String("id", l.id.String()),
			)
			skipped++
			continue
		}

		if _, err := r.pool.Exec(ctx, update, l.id, ownerID); err != nil {
			return repaired, skipped, fmt.Errorf("promote owner ref: %w", err)
		}
		repaired++
	}

	return repaired, skipped, nil
}
