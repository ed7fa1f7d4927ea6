package service

import (
	"context"
	"time"

	"github.com/spectacle-shop/spectacle/internal/auth/domain"
	"github.com/spectacle-shop/spectacle/internal/auth/store"
	"github.com/spectacle-shop/spectacle/pkg/idx"
	"github.com/spectacle-shop/spectacle/pkg/slogx"
)

// RequestContext carries the request metadata recorded alongside audit
// events.
type RequestContext struct {
	IP        string
	UserAgent string
}

// AuditService appends records to the activity log. Writes are best-effort:
// a failed audit write is logged and swallowed so it can never fail the
// user-facing operation it describes.
type AuditService struct {
	Store store.Store
}

// Record appends one activity record for the user.
func (s *AuditService) Record(ctx context.Context, userID string, action domain.Action, details string, rc RequestContext) {
	err := s.Store.ActivityLogs().CreateActivityLog(ctx, domain.ActivityLog{
		ID:        idx.New().String(),
		UserID:    userID,
		Action:    action,
		Details:   details,
		IPAddress: rc.IP,
		UserAgent: rc.UserAgent,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		slogx.FromContext(ctx).Error("activity log write failed",
			"user_id", userID,
			"action", string(action),
			"err", err,
		)
	}
}
