package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/spectacle-shop/spectacle/internal/auth/service"
	"github.com/spectacle-shop/spectacle/pkg/httpx"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// decodeJSON reads a JSON request body into dst. Oversized or malformed
// bodies are a client error, reported directly.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httpx.WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// requestContext extracts the audit metadata from the request.
func requestContext(r *http.Request) service.RequestContext {
	return service.RequestContext{
		IP:        httpx.IPKeyExtractor(r),
		UserAgent: r.UserAgent(),
	}
}
