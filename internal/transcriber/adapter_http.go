package transcriber

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxErrorBody caps how much of a failed response ends up in an error.
const maxErrorBody = 512

// sendJSON performs req and decodes a 2xx JSON body into out. Anything else is
// returned as an error carrying the status and the start of the body.
func sendJSON(client *http.Client, req *http.Request, out any) (time.Duration, error) {
	start := time.Now()
	resp, err := client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return elapsed, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return elapsed, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return elapsed, fmt.Errorf("decode response: %w", err)
	}
	return elapsed, nil
}

func endpointURL(baseURL, fallback, path string) string {
	if baseURL == "" {
		baseURL = fallback
	}
	return strings.TrimSuffix(baseURL, "/") + path
}
