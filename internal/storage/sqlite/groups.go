package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

const groupColumns = `id, owner_user_id, name, description, is_active, created_at`

// memberSelect joins each member with its contact, if any. The owner member
// sorts first.
const memberSelect = `SELECT m.id, m.group_id, m.display_name, m.is_owner,
	c.id, c.owner_id, c.name, c.target_alias, c.target_account_ref, c.created_at
	FROM group_members m
	LEFT JOIN contacts c ON c.id = m.contact_id`

// CreateGroup persists a group and its initial members.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO groups (owner_user_id, name, description, is_active, created_at) VALUES (?, ?, ?, ?, ?)`,
		group.OwnerUserID, group.Name, group.Description, boolToInt(group.IsActive), group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	group.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read group id: %w", err)
	}

	for i := range group.Members {
		m := &group.Members[i]
		m.GroupID = group.ID
		if err := insertMember(ctx, tx, m); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetGroup retrieves one of the owner's groups with its members.
func (s *SQLiteStore) GetGroup(ctx context.Context, ownerID, groupID int64) (*models.Group, error) {
	g, owner, err := getGroupByID(ctx, s.db, groupID)
	if err != nil {
		return nil, err
	}
	// Other users' groups are indistinguishable from missing ones.
	if owner != ownerID {
		return nil, fmt.Errorf("group %d: %w", groupID, storage.ErrNotFound)
	}

	g.Members, err = listMembers(ctx, s.db, groupID)
	if err != nil {
		return nil, err
	}

	return g, nil
}

// ListGroups retrieves the owner's groups, active first, newest first.
func (s *SQLiteStore) ListGroups(ctx context.Context, ownerID int64) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+groupColumns+` FROM groups WHERE owner_user_id = ?
		 ORDER BY is_active DESC, created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		g := &models.Group{}
		var active int
		if err := rows.Scan(&g.ID, &g.OwnerUserID, &g.Name, &g.Description, &active, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		g.IsActive = active == 1
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	rows.Close()

	for _, g := range groups {
		g.Members, err = listMembers(ctx, s.db, g.ID)
		if err != nil {
			return nil, err
		}
	}

	return groups, nil
}

// UpdateGroup updates a group's name and description.
func (s *SQLiteStore) UpdateGroup(ctx context.Context, group *models.Group) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE groups SET name = ?, description = ? WHERE id = ? AND owner_user_id = ?`,
		group.Name, group.Description, group.ID, group.OwnerUserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	return checkAffected(res, "group", group.ID)
}

// SetGroupActive archives or restores a group.
func (s *SQLiteStore) SetGroupActive(ctx context.Context, ownerID, groupID int64, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE groups SET is_active = ? WHERE id = ? AND owner_user_id = ?`,
		boolToInt(active), groupID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group status: %w", err)
	}
	return checkAffected(res, "group", groupID)
}

// AddMember persists a new group member.
func (s *SQLiteStore) AddMember(ctx context.Context, member *models.Member) error {
	return insertMember(ctx, s.db, member)
}

// GetMember retrieves a member of the group.
func (s *SQLiteStore) GetMember(ctx context.Context, groupID, memberID int64) (*models.Member, error) {
	rows, err := s.db.QueryContext(ctx, memberSelect+` WHERE m.group_id = ? AND m.id = ?`, groupID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	defer rows.Close()

	members, err := scanMembers(rows)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("member %d: %w", memberID, storage.ErrNotFound)
	}
	return &members[0], nil
}

// RemoveMember deletes a member from the group.
func (s *SQLiteStore) RemoveMember(ctx context.Context, groupID, memberID int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM group_members WHERE id = ? AND group_id = ?`,
		memberID, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return checkAffected(res, "member", memberID)
}

// CountParticipations counts the expenses the member paid for or shares in.
func (s *SQLiteStore) CountParticipations(ctx context.Context, memberID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM expense_shares WHERE member_id = ?)
		      + (SELECT COUNT(*) FROM expenses WHERE payer_member_id = ?)`,
		memberID, memberID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count participations: %w", err)
	}
	return n, nil
}

func insertMember(ctx context.Context, q querier, m *models.Member) error {
	var contactID any
	if m.Contact != nil {
		contactID = m.Contact.ID
	}

	res, err := q.ExecContext(ctx,
		`INSERT INTO group_members (group_id, contact_id, display_name, is_owner) VALUES (?, ?, ?, ?)`,
		m.GroupID, contactID, m.DisplayName, boolToInt(m.IsGroupOwner),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("contact %d in group %d: %w", m.ContactID(), m.GroupID, storage.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to insert member: %w", err)
	}

	m.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read member id: %w", err)
	}
	return nil
}

func listMembers(ctx context.Context, q querier, groupID int64) ([]models.Member, error) {
	rows, err := q.QueryContext(ctx, memberSelect+` WHERE m.group_id = ? ORDER BY m.is_owner DESC, m.id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	return scanMembers(rows)
}

func scanMembers(rows *sql.Rows) ([]models.Member, error) {
	var members []models.Member
	for rows.Next() {
		var (
			m       models.Member
			isOwner int
			cID     sql.NullInt64
			cOwner  sql.NullInt64
			cName   sql.NullString
			cAlias  sql.NullString
			cRef    sql.NullString
			cAt     sql.NullInt64
		)
		if err := rows.Scan(&m.ID, &m.GroupID, &m.DisplayName, &isOwner,
			&cID, &cOwner, &cName, &cAlias, &cRef, &cAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.IsGroupOwner = isOwner == 1
		if cID.Valid {
			m.Contact = &models.Contact{
				ID:      cID.Int64,
				OwnerID: cOwner.Int64,
				Name:    cName.String,
				Target: models.PaymentTarget{
					Alias:      cAlias.String,
					AccountRef: cRef.String,
				},
				CreatedAt: cAt.Int64,
			}
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}
