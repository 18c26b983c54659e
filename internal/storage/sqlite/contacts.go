package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

const contactColumns = `id, owner_id, name, target_alias, target_account_ref, created_at`

// CreateContact persists a new contact.
func (s *SQLiteStore) CreateContact(ctx context.Context, contact *models.Contact) error {
	return createContact(ctx, s.db, contact)
}

func createContact(ctx context.Context, q querier, contact *models.Contact) error {
	if contact.CreatedAt == 0 {
		contact.CreatedAt = time.Now().Unix()
	}

	res, err := q.ExecContext(ctx,
		`INSERT INTO contacts (owner_id, name, target_alias, target_account_ref, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		contact.OwnerID, contact.Name, contact.Target.Alias, contact.Target.AccountRef, contact.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}

	contact.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read contact id: %w", err)
	}
	return nil
}

// GetContact retrieves one of the owner's contacts.
func (s *SQLiteStore) GetContact(ctx context.Context, ownerID, contactID int64) (*models.Contact, error) {
	c := &models.Contact{}
	err := s.db.QueryRowContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = ? AND owner_id = ?`,
		contactID, ownerID,
	).Scan(&c.ID, &c.OwnerID, &c.Name, &c.Target.Alias, &c.Target.AccountRef, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("contact %d: %w", contactID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return c, nil
}

// ListContacts retrieves the owner's contacts ordered by name.
func (s *SQLiteStore) ListContacts(ctx context.Context, ownerID int64) ([]*models.Contact, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE owner_id = ? ORDER BY name, id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*models.Contact
	for rows.Next() {
		c := &models.Contact{}
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Target.Alias, &c.Target.AccountRef, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contacts: %w", err)
	}

	return contacts, nil
}

// UpdateContact updates a contact's name and payment target.
func (s *SQLiteStore) UpdateContact(ctx context.Context, contact *models.Contact) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE contacts SET name = ?, target_alias = ?, target_account_ref = ? WHERE id = ? AND owner_id = ?`,
		contact.Name, contact.Target.Alias, contact.Target.AccountRef, contact.ID, contact.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	return checkAffected(res, "contact", contact.ID)
}

// DeleteContact removes a contact. Members of archived groups that referenced
// it keep their display name.
func (s *SQLiteStore) DeleteContact(ctx context.Context, ownerID, contactID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM contacts WHERE id = ? AND owner_id = ?`,
		contactID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return checkAffected(res, "contact", contactID)
}

// CountActiveMemberships counts the contact's memberships in active groups.
func (s *SQLiteStore) CountActiveMemberships(ctx context.Context, contactID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM group_members m
		 JOIN groups g ON g.id = m.group_id
		 WHERE m.contact_id = ? AND g.is_active = 1`,
		contactID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count memberships: %w", err)
	}
	return n, nil
}
