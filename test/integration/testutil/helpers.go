//go:build integration

package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/patience/platform/internal/domain"
)

// GET performs a GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	resp, err := http.Get(env.Server.URL + path)
	if err != nil {
		env.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// POST performs a POST request with an optional JSON body.
func (env *TestEnv) POST(path string, body interface{}) *http.Response {
	env.t.Helper()
	return env.POSTWithHeaders(path, body, nil)
}

// POSTWithHeaders performs a POST request with extra headers.
func (env *TestEnv) POSTWithHeaders(path string, body interface{}, headers map[string]string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("POST %s: encode: %v", path, err)
		}
	}
	req, err := http.NewRequest(http.MethodPost, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("POST %s: new request: %v", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// CreateGame starts a game over HTTP and returns its state.
func (env *TestEnv) CreateGame() domain.Game {
	env.t.Helper()
	resp := env.POST("/games", nil)
	defer resp.Body.Close()
	AssertStatus(env.t, resp, http.StatusCreated)

	var result struct {
		Game domain.Game `json:"game"`
	}
	DecodeJSON(env.t, resp, &result)
	return result.Game
}

// FakeUUID returns a random UUID string that matches no stored game.
func FakeUUID() string {
	return uuid.New().String()
}
