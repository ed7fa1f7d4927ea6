package http

import (
	"net/http"
	"time"

	"github.com/spectacle-shop/spectacle/internal/auth/domain"
	"github.com/spectacle-shop/spectacle/internal/auth/service"
	"github.com/spectacle-shop/spectacle/pkg/httpx"
)

// LogsHandler serves the activity log endpoints.
type LogsHandler struct {
	Users *service.UserService
}

type activityLogResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	CreatedAt time.Time `json:"createdAt"`
}

// HandleOwn handles GET /auth/logs, returning the caller's recent activity.
func (h *LogsHandler) HandleOwn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	logs, err := h.Users.Logs(ctx, httpx.UserIDFromContext(ctx))
	if err != nil {
		writeServerError(w, r, err)
		return
	}

	writeLogs(w, logs)
}

// HandleAll handles GET /auth/admin/logs. The admin gate runs in
// middleware before this handler.
func (h *LogsHandler) HandleAll(w http.ResponseWriter, r *http.Request) {
	logs, err := h.Users.AllLogs(r.Context())
	if err != nil {
		writeServerError(w, r, err)
		return
	}

	writeLogs(w, logs)
}

func writeLogs(w http.ResponseWriter, logs []domain.ActivityLog) {
	out := make([]activityLogResponse, len(logs))
	for i, l := range logs {
		out[i] = activityLogResponse{
			ID:        l.ID,
			UserID:    l.UserID,
			Action:    string(l.Action),
			Details:   l.Details,
			IPAddress: l.IPAddress,
			UserAgent: l.UserAgent,
			CreatedAt: l.CreatedAt,
		}
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(out),
		"data":    out,
	})
}
