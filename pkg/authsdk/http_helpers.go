package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const (
	csrfCookieName = "XSRF-TOKEN-V2"
	csrfHeaderName = "X-XSRF-TOKEN"
)

// url builds a complete URL by appending the path to the base URL.
func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

// doJSON performs a request with an optional JSON body and decodes the
// response into target. Unsafe methods get the CSRF token from the cookie
// jar echoed into the request header; if the jar holds no token yet, a
// probe GET is issued first to have the service mint one.
func (c *SDKClient) doJSON(
	ctx context.Context,
	method, path string,
	body any,
	target any,
	expectedStatus int,
) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if method != http.MethodGet && method != http.MethodHead {
		token, err := c.csrfToken(ctx, req.URL)
		if err != nil {
			return err
		}
		req.Header.Set(csrfHeaderName, token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	return decodeJSON(resp, target, expectedStatus)
}

// csrfToken returns the double-submit token for the target URL, priming
// the jar with a probe request when necessary.
func (c *SDKClient) csrfToken(ctx context.Context, u *url.URL) (string, error) {
	if token := c.csrfFromJar(u); token != "" {
		return token, nil
	}

	// Any safe request mints the token cookie.
	if err := c.doJSON(ctx, http.MethodGet, "/livez", nil, &HealthResponse{}, http.StatusOK); err != nil {
		return "", fmt.Errorf("failed to obtain CSRF token: %w", err)
	}

	if token := c.csrfFromJar(u); token != "" {
		return token, nil
	}
	return "", fmt.Errorf("service did not issue a CSRF token")
}

func (c *SDKClient) csrfFromJar(u *url.URL) string {
	if c.HTTPClient.Jar == nil {
		return ""
	}
	for _, cookie := range c.HTTPClient.Jar.Cookies(u) {
		if cookie.Name == csrfCookieName {
			return cookie.Value
		}
	}
	return ""
}

// decodeJSON decodes a JSON response into the target. Non-expected status
// codes produce a typed *APIError.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, bodyBytes)
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
