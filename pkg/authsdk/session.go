package authsdk

import (
	"context"
	"net/http"
)

// Session is an authenticated view of the service. The actual credential
// is the HttpOnly session cookie in the parent client's jar; Session only
// adds the authenticated operations and remembers the user snapshot from
// login time.
type Session struct {
	client *SDKClient
	user   User
}

// User returns the account snapshot captured when the session was created.
// Me returns the live version.
func (s *Session) User() User {
	return s.user
}

// Me fetches the current account from the service and refreshes the
// session's snapshot.
func (s *Session) Me(ctx context.Context) (*User, error) {
	var env userEnvelope
	if err := s.client.doJSON(ctx, http.MethodGet, "/auth/me", nil, &env, http.StatusOK); err != nil {
		return nil, err
	}

	s.user = env.Data
	return &env.Data, nil
}

// Logout ends the session. The service expires the session cookie; the
// jar picks up the replacement automatically.
func (s *Session) Logout(ctx context.Context) error {
	var env messageEnvelope
	return s.client.doJSON(ctx, http.MethodGet, "/auth/logout", nil, &env, http.StatusOK)
}

// UpdateDetails changes the account's name and email.
func (s *Session) UpdateDetails(ctx context.Context, name, email string) (*User, error) {
	body := map[string]string{
		"name":  name,
		"email": email,
	}

	var env userEnvelope
	if err := s.client.doJSON(ctx, http.MethodPut, "/auth/profile", body, &env, http.StatusOK); err != nil {
		return nil, err
	}

	s.user = env.Data
	return &env.Data, nil
}

// UpdatePassword changes the account password. The current password must
// be presented again even though the session is already authenticated.
func (s *Session) UpdatePassword(ctx context.Context, currentPassword, newPassword string) error {
	body := map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	}

	var env messageEnvelope
	return s.client.doJSON(ctx, http.MethodPut, "/auth/password", body, &env, http.StatusOK)
}

// Logs returns the caller's recent activity, newest first.
func (s *Session) Logs(ctx context.Context) ([]ActivityLog, error) {
	var env logsEnvelope
	if err := s.client.doJSON(ctx, http.MethodGet, "/auth/logs", nil, &env, http.StatusOK); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// AdminLogs returns recent activity across all accounts. Requires an
// admin session; others get a 403.
func (s *Session) AdminLogs(ctx context.Context) ([]ActivityLog, error) {
	var env logsEnvelope
	if err := s.client.doJSON(ctx, http.MethodGet, "/auth/admin/logs", nil, &env, http.StatusOK); err != nil {
		return nil, err
	}
	return env.Data, nil
}
