//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
)

// DecodeJSON decodes the response body into dst, failing the test on error.
func DecodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// AssertStatus checks the response status code.
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// AssertErrorCode checks the code field of an error or rejection body.
func AssertErrorCode(t *testing.T, resp *http.Response, expectedCode string) {
	t.Helper()
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	DecodeJSON(t, resp, &body)
	if body.Code != expectedCode {
		t.Fatalf("expected error code %q, got %q (%s)", expectedCode, body.Code, body.Message)
	}
}

// CountEvents returns the number of stored events for a game.
func CountEvents(t *testing.T, env *TestEnv, gameID uuid.UUID) int {
	t.Helper()
	var n int
	err := env.Pool.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM game_events WHERE game_id = $1", gameID).Scan(&n)
	if err != nil {
		t.Fatalf("count events: %v", err)
	}
	return n
}

// CountUnpublished returns the number of events the relay has not sent yet.
func CountUnpublished(t *testing.T, env *TestEnv) int {
	t.Helper()
	var n int
	err := env.Pool.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM game_events WHERE published_at IS NULL").Scan(&n)
	if err != nil {
		t.Fatalf("count unpublished: %v", err)
	}
	return n
}
