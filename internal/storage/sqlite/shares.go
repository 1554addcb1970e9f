package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yuchou/tripledger/internal/models"
)

// CreateShare grants a user access to a trip.
func (s *SQLiteStore) CreateShare(ctx context.Context, share *models.Share) error {
	if share.ID == "" {
		share.ID = uuid.New().String()
	}
	if share.CreatedAt == 0 {
		share.CreatedAt = time.Now().Unix()
	}
	if share.Role == "" {
		share.Role = "editor"
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO trip_shares (id, trip_id, user_id, role, created_at) VALUES (?, ?, ?, ?, ?)",
		share.ID, share.TripID, share.UserID, share.Role, share.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert share: %w", err)
	}
	return nil
}

// DeleteShare revokes a user's access to a trip.
func (s *SQLiteStore) DeleteShare(ctx context.Context, tripID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM trip_shares WHERE trip_id = ? AND user_id = ?", tripID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete share: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("share not found for user: %s", userID)
	}
	return nil
}

// GetShare returns the share for a trip/user pair, or nil, nil when the
// trip is not shared with that user.
func (s *SQLiteStore) GetShare(ctx context.Context, tripID, userID string) (*models.Share, error) {
	share := &models.Share{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, trip_id, user_id, role, created_at FROM trip_shares WHERE trip_id = ? AND user_id = ?",
		tripID, userID,
	).Scan(&share.ID, &share.TripID, &share.UserID, &share.Role, &share.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get share: %w", err)
	}
	return share, nil
}

// CreateInvite persists a redeemable invite code.
func (s *SQLiteStore) CreateInvite(ctx context.Context, invite *models.Invite) error {
	if invite.CreatedAt == 0 {
		invite.CreatedAt = time.Now().Unix()
	}
	if invite.Role == "" {
		invite.Role = "editor"
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO trip_invites (code, trip_id, role, created_by, created_at, expires_at) VALUES (?, ?, ?, ?, ?, ?)",
		invite.Code, invite.TripID, invite.Role, invite.CreatedBy, invite.CreatedAt, invite.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert invite: %w", err)
	}
	return nil
}

// GetInvite looks up an invite by code, or nil, nil when no invite matches.
func (s *SQLiteStore) GetInvite(ctx context.Context, code string) (*models.Invite, error) {
	invite := &models.Invite{}
	err := s.db.QueryRowContext(ctx,
		"SELECT code, trip_id, role, created_by, created_at, expires_at FROM trip_invites WHERE code = ?",
		code,
	).Scan(&invite.Code, &invite.TripID, &invite.Role, &invite.CreatedBy, &invite.CreatedAt, &invite.ExpiresAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	return invite, nil
}

// listShares returns a trip's shares with collaborator email and display
// name joined from the users table.
func (s *SQLiteStore) listShares(ctx context.Context, tripID string) ([]models.Share, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sh.id, sh.trip_id, sh.user_id, sh.role, sh.created_at, u.email, u.display_name
		 FROM trip_shares sh JOIN users u ON u.id = sh.user_id
		 WHERE sh.trip_id = ? ORDER BY sh.created_at`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get shares: %w", err)
	}
	defer rows.Close()

	var shares []models.Share
	for rows.Next() {
		var sh models.Share
		if err := rows.Scan(&sh.ID, &sh.TripID, &sh.UserID, &sh.Role, &sh.CreatedAt,
			&sh.Email, &sh.DisplayName); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		shares = append(shares, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shares: %w", err)
	}
	return shares, nil
}
