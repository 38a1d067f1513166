package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"shortlinks/internal/models"
)

// tableForRole maps a role to its backing table. Users and admins share a
// shape but never a namespace, so every query goes through this mapping
// instead of duplicating per-role store code.
func tableForRole(role string) (string, error) {
	switch role {
	case models.RoleUser:
		return "users", nil
	case models.RoleAdmin:
		return "admins", nil
	default:
		return "", fmt.Errorf("unknown principal role %q", role)
	}
}

// CreatePrincipal inserts a new principal into the role-appropriate table.
// The initial secret is generated by the caller; a duplicate username
// returns ErrDuplicateUsername.
func (d *DB) CreatePrincipal(ctx context.Context, role string, p *models.Principal) error {
	table, err := tableForRole(role)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO ` + table + ` (username, password_hash, secret)
		VALUES ($1, $2, $3)
		RETURNING id, active, created_at
	`

	err = d.Pool.QueryRow(ctx, query, p.Username, p.PasswordHash, p.Secret).
		Scan(&p.ID, &p.Active, &p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateUsername
		}
		return err
	}

	p.Role = role
	return nil
}

// GetPrincipalByUsername retrieves a principal from the role-appropriate
// table, or ErrPrincipalNotFound.
func (d *DB) GetPrincipalByUsername(ctx context.Context, role, username string) (*models.Principal, error) {
	table, err := tableForRole(role)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, username, password_hash, secret, active, created_at
		FROM ` + table + ` WHERE username = $1
	`

	var p models.Principal
	err = d.Pool.QueryRow(ctx, query, username).Scan(
		&p.ID,
		&p.Username,
		&p.PasswordHash,
		&p.Secret,
		&p.Active,
		&p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPrincipalNotFound
	}
	if err != nil {
		return nil, err
	}

	p.Role = role
	return &p, nil
}

// RotateSecret stores a fresh secret for the principal. Called on login;
// every assertion issued against the previous secret stops validating.
func (d *DB) RotateSecret(ctx context.Context, role, username, secret string) error {
	table, err := tableForRole(role)
	if err != nil {
		return err
	}

	result, err := d.Pool.Exec(ctx,
		`UPDATE `+table+` SET secret = $1 WHERE username = $2`, secret, username)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrPrincipalNotFound
	}
	return nil
}

// ClearSecret nulls the principal's secret. This is the sole revocation
// mechanism; there is no assertion blacklist.
func (d *DB) ClearSecret(ctx context.Context, role, username string) error {
	table, err := tableForRole(role)
	if err != nil {
		return err
	}

	result, err := d.Pool.Exec(ctx,
		`UPDATE `+table+` SET secret = NULL WHERE username = $1`, username)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrPrincipalNotFound
	}
	return nil
}

// SetPrincipalActive toggles the active flag. Inactive principals fail
// validation regardless of secret match.
func (d *DB) SetPrincipalActive(ctx context.Context, role, username string, active bool) error {
	table, err := tableForRole(role)
	if err != nil {
		return err
	}

	result, err := d.Pool.Exec(ctx,
		`UPDATE `+table+` SET active = $1 WHERE username = $2`, active, username)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrPrincipalNotFound
	}
	return nil
}

// DeleteUser removes a user row; the links FK cascades the delete to all
// of the user's links in the same transaction.
func (d *DB) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	result, err := d.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrPrincipalNotFound
	}
	return nil
}

// GetUserCount returns the total number of users.
func (d *DB) GetUserCount(ctx context.Context) (int64, error) {
	var count int64
	err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

// GetActiveUserCount returns the number of users owning at least one link.
func (d *DB) GetActiveUserCount(ctx context.Context) (int64, error) {
	var count int64
	err := d.Pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT user_id) FROM links`).Scan(&count)
	return count, err
}
