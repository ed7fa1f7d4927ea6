package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spectacle-shop/spectacle/internal/auth/domain"
	"github.com/spectacle-shop/spectacle/internal/auth/store"
)

type activityLogsRepo struct {
	db *sql.DB
}

func (r *activityLogsRepo) CreateActivityLog(ctx context.Context, l domain.ActivityLog) error {
	if !l.Action.Valid() {
		return fmt.Errorf("%w: %q", store.ErrInvalidAction, l.Action)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activity_logs (id, user_id, action, details, ip_address, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.UserID, string(l.Action), l.Details, l.IPAddress, l.UserAgent, l.CreatedAt,
	)
	return err
}

func (r *activityLogsRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.ActivityLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, action, details, ip_address, user_agent, created_at
		FROM activity_logs
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLogs(rows)
}

func (r *activityLogsRepo) ListRecent(ctx context.Context, limit int) ([]domain.ActivityLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, action, details, ip_address, user_agent, created_at
		FROM activity_logs
		ORDER BY created_at DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLogs(rows)
}

func collectLogs(rows *sql.Rows) ([]domain.ActivityLog, error) {
	var out []domain.ActivityLog
	for rows.Next() {
		var l domain.ActivityLog
		var action string
		if err := rows.Scan(&l.ID, &l.UserID, &action, &l.Details, &l.IPAddress, &l.UserAgent, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.Action = domain.Action(action)
		out = append(out, l)
	}
	return out, rows.Err()
}
