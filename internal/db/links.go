package db

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"shortlinks/internal/models"
)

// linkColumns is the standard column list for link queries.
const linkColumns = `id, code, destination, user_id, permanent, expires_at,
	click_count, last_accessed, created_at`

// scanLink scans a row into a Link struct.
func scanLink(row pgx.Row) (*models.Link, error) {
	var link models.Link
	err := row.Scan(
		&link.ID,
		&link.Code,
		&link.Destination,
		&link.UserID,
		&link.Permanent,
		&link.ExpiresAt,
		&link.ClickCount,
		&link.LastAccessed,
		&link.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// scanLinks scans multiple rows into a slice of Links.
func scanLinks(rows pgx.Rows) ([]models.Link, error) {
	defer rows.Close()

	var links []models.Link
	for rows.Next() {
		var link models.Link
		if err := rows.Scan(
			&link.ID,
			&link.Code,
			&link.Destination,
			&link.UserID,
			&link.Permanent,
			&link.ExpiresAt,
			&link.ClickCount,
			&link.LastAccessed,
			&link.CreatedAt,
		); err != nil {
			return nil, err
		}
		links = append(links, link)
	}

	return links, rows.Err()
}

// CreateLink inserts a new link. The unique index on code is the final
// authority over allocation races; a violation surfaces as
// ErrDuplicateCode so the allocator can retry.
func (d *DB) CreateLink(ctx context.Context, link *models.Link) error {
	query := `
		INSERT INTO links (code, destination, user_id, permanent, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, click_count, created_at
	`

	err := d.Pool.QueryRow(ctx, query,
		link.Code,
		link.Destination,
		link.UserID,
		link.Permanent,
		link.ExpiresAt,
	).Scan(&link.ID, &link.ClickCount, &link.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateCode
		}
		return err
	}

	return nil
}

// GetLinkByCode retrieves a link by its short code.
func (d *DB) GetLinkByCode(ctx context.Context, code string) (*models.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE code = $1`
	return scanLink(d.Pool.QueryRow(ctx, query, code))
}

// CodeExists reports whether a short code is already taken.
func (d *DB) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := d.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM links WHERE code = $1)`, code).Scan(&exists)
	return exists, err
}

// RecordAccess bumps the click count and stamps last_accessed in one
// statement. Concurrent redirects of the same code all land; the
// increment happens in place, never read-modify-write in Go.
func (d *DB) RecordAccess(ctx context.Context, linkID uuid.UUID) error {
	query := `UPDATE links SET click_count = click_count + 1, last_accessed = NOW() WHERE id = $1`
	result, err := d.Pool.Exec(ctx, query, linkID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}
	return nil
}

// ListOptions controls pagination and sorting of link lists.
type ListOptions struct {
	Page    int
	PerPage int
	SortBy  string
	Order   string
}

// sortColumns whitelists the sortable columns.
var sortColumns = map[string]string{
	"created_at":  "created_at",
	"expires_at":  "expires_at",
	"click_count": "click_count",
	"short_code":  "code",
}

// Normalize clamps paging values and validates sorting, returning false
// when sort_by or order is not an accepted value.
func (o *ListOptions) Normalize() bool {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PerPage < 1 {
		o.PerPage = 20
	}
	if o.PerPage > 100 {
		o.PerPage = 100
	}
	if o.SortBy == "" {
		o.SortBy = "created_at"
	}
	if o.Order == "" {
		o.Order = "desc"
	}
	if _, ok := sortColumns[o.SortBy]; !ok {
		return false
	}
	return o.Order == "asc" || o.Order == "desc"
}

// orderClause builds the ORDER BY / LIMIT / OFFSET tail from normalized
// options. Column and direction come from the whitelist, never from input.
func (o *ListOptions) orderClause() string {
	direction := "ASC"
	if o.Order == "desc" {
		direction = "DESC"
	}
	offset := (o.Page - 1) * o.PerPage
	return ` ORDER BY ` + sortColumns[o.SortBy] + ` ` + direction +
		` LIMIT ` + strconv.Itoa(o.PerPage) + ` OFFSET ` + strconv.Itoa(offset)
}

// GetLinksByUser retrieves one page of a user's links plus the total count.
func (d *DB) GetLinksByUser(ctx context.Context, userID uuid.UUID, opts ListOptions) ([]models.Link, int64, error) {
	var total int64
	err := d.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM links WHERE user_id = $1`, userID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + linkColumns + ` FROM links WHERE user_id = $1` + opts.orderClause()
	rows, err := d.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, 0, err
	}

	links, err := scanLinks(rows)
	return links, total, err
}

// GetAllLinks retrieves one page of all links plus the total count.
func (d *DB) GetAllLinks(ctx context.Context, opts ListOptions) ([]models.Link, int64, error) {
	var total int64
	if err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM links`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + linkColumns + ` FROM links` + opts.orderClause()
	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	links, err := scanLinks(rows)
	return links, total, err
}

// DeleteLinkByCodeForUser deletes a link, but only if the given user owns it.
func (d *DB) DeleteLinkByCodeForUser(ctx context.Context, code string, userID uuid.UUID) error {
	result, err := d.Pool.Exec(ctx,
		`DELETE FROM links WHERE code = $1 AND user_id = $2`, code, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}
	return nil
}

// DeleteExpiredLinks removes every non-permanent link whose expiry has
// passed and returns how many were deleted.
func (d *DB) DeleteExpiredLinks(ctx context.Context, now time.Time) (int64, error) {
	result, err := d.Pool.Exec(ctx,
		`DELETE FROM links WHERE NOT permanent AND expires_at IS NOT NULL AND expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// GetSystemStats aggregates system-wide counts for admin reporting.
func (d *DB) GetSystemStats(ctx context.Context, now time.Time) (*models.SystemStats, error) {
	stats := &models.SystemStats{GeneratedAt: now}

	err := d.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE permanent OR expires_at > $1),
			COUNT(*) FILTER (WHERE NOT permanent AND expires_at < $1),
			COUNT(*) FILTER (WHERE permanent),
			COALESCE(SUM(click_count), 0)
		FROM links
	`, now).Scan(
		&stats.TotalURLs,
		&stats.ActiveURLs,
		&stats.ExpiredURLs,
		&stats.PermanentURLs,
		&stats.TotalClicks,
	)
	if err != nil {
		return nil, err
	}

	if stats.TotalUsers, err = d.GetUserCount(ctx); err != nil {
		return nil, err
	}
	if stats.ActiveUsers, err = d.GetActiveUserCount(ctx); err != nil {
		return nil, err
	}

	return stats, nil
}
