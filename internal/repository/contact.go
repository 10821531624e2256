package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/dialbook/dialbook/internal/model"
)

// ErrContactNotFound is returned when no contact matches the joint
// (id, owner_id) filter. Callers cannot distinguish "absent" from "owned
// by someone else" - that is deliberate.
var ErrContactNotFound = errors.New("contact not found")

// ContactUpdate holds the mutable contact fields for a partial update.
// Nil pointers leave the stored value unchanged.
type ContactUpdate struct {
	Name     *string
	Email    *string
	Phones   *[]string
	Avatar   *string
	Favorite *bool
}

// FavoriteChange is a tagged request variant: either an explicit value or
// a toggle of the current flag. Resolved at the API boundary, executed here.
type FavoriteChange struct {
	explicit bool
	value    bool
}

// ToggleFavorite flips the current favorite flag.
func ToggleFavorite() FavoriteChange {
	return FavoriteChange{}
}

// SetFavoriteTo sets the favorite flag to an explicit value.
func SetFavoriteTo(v bool) FavoriteChange {
	return FavoriteChange{explicit: true, value: v}
}

// Apply resolves the change against the current flag value.
func (f FavoriteChange) Apply(current bool) bool {
	if f.explicit {
		return f.value
	}
	return !current
}

const contactColumns = `id, owner_id, name, email, phones, avatar, favorite, created_at, updated_at`

// ListContacts retrieves all contacts owned by the given user, favorites
// first, then by name under byte-wise collation, id as the storage-order
// tiebreak. The ordering is deterministic across calls.
func (r *Repository) ListContacts(ctx context.Context, ownerID uuid.UUID) ([]*model.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE owner_id = $1
		ORDER BY favorite DESC, name COLLATE "C" ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*model.Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, contact)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contacts: %w", err)
	}

	return contacts, nil
}

// CreateContact inserts a new contact. The owner reference comes from the
// Contact's OwnerID field, which callers derive from the verified session -
// never from a client-supplied payload value.
func (r *Repository) CreateContact(ctx context.Context, contact *model.Contact) error {
	query := `
		INSERT INTO contacts (id, owner_id, name, email, phones, avatar, favorite, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		contact.ID,
		contact.OwnerID,
		contact.Name,
		contact.Email,
		pq.Array(contact.Phones),
		contact.Avatar,
		contact.Favorite,
		contact.CreatedAt,
		contact.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	return nil
}

// GetContact retrieves a single contact matching both id and owner.
func (r *Repository) GetContact(ctx context.Context, ownerID, id uuid.UUID) (*model.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE id = $1 AND owner_id = $2
	`

	contact, err := scanContact(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	return contact, nil
}

// UpdateContact applies a partial update to a contact matching both id and
// owner. The joint match and the update happen in a single statement.
func (r *Repository) UpdateContact(ctx context.Context, ownerID, id uuid.UUID, update ContactUpdate) (*model.Contact, error) {
	query := `UPDATE contacts SET updated_at = NOW()`
	args := []any{id, ownerID}
	argIndex := 3

	if update.Name != nil {
		query += fmt.Sprintf(", name = $%d", argIndex)
		args = append(args, *update.Name)
		argIndex++
	}
	if update.Email != nil {
		query += fmt.Sprintf(", email = $%d", argIndex)
		args = append(args, *update.Email)
		argIndex++
	}
	if update.Phones != nil {
		query += fmt.Sprintf(", phones = $%d", argIndex)
		args = append(args, pq.Array(*update.Phones))
		argIndex++
	}
	if update.Avatar != nil {
		query += fmt.Sprintf(", avatar = $%d", argIndex)
		args = append(args, *update.Avatar)
		argIndex++
	}
	if update.Favorite != nil {
		query += fmt.Sprintf(", favorite = $%d", argIndex)
		args = append(args, *update.Favorite)
		argIndex++
	}

	query += ` WHERE id = $1 AND owner_id = $2 RETURNING ` + contactColumns

	contact, err := scanContact(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	return contact, nil
}

// DeleteContact removes a contact matching both id and owner.
func (r *Repository) DeleteContact(ctx context.Context, ownerID, id uuid.UUID) error {
	query := `DELETE FROM contacts WHERE id = $1 AND owner_id = $2`

	result, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrContactNotFound
	}

	return nil
}

// SetFavorite toggles or explicitly sets the favorite flag on a contact
// matching both id and owner, atomically in a single statement.
func (r *Repository) SetFavorite(ctx context.Context, ownerID, id uuid.UUID, change FavoriteChange) (*model.Contact, error) {
	query := `
		UPDATE contacts
		SET favorite = CASE WHEN $3 THEN $4 ELSE NOT favorite END,
		    updated_at = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + contactColumns

	contact, err := scanContact(r.pool.QueryRow(ctx, query, id, ownerID, change.explicit, change.value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to set favorite: %w", err)
	}

	return contact, nil
}

// scanContact scans a single row into a Contact model.
func scanContact(row pgx.Row) (*model.Contact, error) {
	var contact model.Contact
	err := row.Scan(
		&contact.ID,
		&contact.OwnerID,
		&contact.Name,
		&contact.Email,
		pq.Array(&contact.Phones),
		&contact.Avatar,
		&contact.Favorite,
		&contact.CreatedAt,
		&contact.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if contact.Phones == nil {
		contact.Phones = []string{}
	}
	return &contact, nil
}
