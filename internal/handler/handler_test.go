package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/patience/platform/internal/domain"
	"github.com/patience/platform/internal/game"
	"github.com/patience/platform/internal/guard"
	"github.com/patience/platform/internal/infra"
	"github.com/patience/platform/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- RespondJSON Tests ---

func TestRespondJSON(t *testing.T) {
	t.Run("200 with body", func(t *testing.T) {
		w := httptest.NewRecorder()
		RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		assert.Equal(t, http.StatusOK, w.Code)
		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "ok", body["status"])
	})

	t.Run("201 with body", func(t *testing.T) {
		w := httptest.NewRecorder()
		RespondJSON(w, http.StatusCreated, map[string]int{"id": 42})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("204 with nil body", func(t *testing.T) {
		w := httptest.NewRecorder()
		RespondJSON(w, http.StatusNoContent, nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

// --- RespondError Tests ---

func TestRespondError(t *testing.T) {
	t.Run("AppError maps to correct status", func(t *testing.T) {
		tests := []struct {
			err        error
			wantStatus int
			wantCode   string
		}{
			{domain.ErrNotFound("game", "123"), 404, "NOT_FOUND"},
			{domain.ErrValidation("bad input"), 400, "VALIDATION_ERROR"},
			{domain.ErrConflict("duplicate"), 409, "CONFLICT"},
			{fmt.Errorf("forfeitGame: %w", domain.ErrConcurrentAppend), 409, "CONFLICT"},
			{domain.ErrCorruptLog("sequence %d out of order", 3), 500, "INTERNAL_ERROR"},
			{domain.ErrInternal("oops", nil), 500, "INTERNAL_ERROR"},
		}

		for _, tt := range tests {
			t.Run(tt.err.Error(), func(t *testing.T) {
				w := httptest.NewRecorder()
				RespondError(w, tt.err)
				assert.Equal(t, tt.wantStatus, w.Code)

				var body map[string]string
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, tt.wantCode, body["code"])
			})
		}
	})

	t.Run("generic error returns 500", func(t *testing.T) {
		w := httptest.NewRecorder()
		RespondError(w, assert.AnError)
		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "INTERNAL_ERROR", body["code"])
		assert.Equal(t, "internal server error", body["message"])
	})
}

func TestRespondRejection(t *testing.T) {
	tests := []struct {
		code       domain.RejectionCode
		wantStatus int
	}{
		{domain.RejectGameNotFound, http.StatusNotFound},
		{domain.RejectGameAlreadyForfeited, http.StatusConflict},
		{domain.RejectGameAlreadyCompleted, http.StatusConflict},
		{domain.RejectStockEmpty, http.StatusUnprocessableEntity},
		{domain.RejectFoundationSequence, http.StatusUnprocessableEntity},
		{domain.RejectGameNotWon, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			w := httptest.NewRecorder()
			RespondRejection(w, &domain.Rejection{Code: tt.code, Message: "declined"})
			assert.Equal(t, tt.wantStatus, w.Code)

			var body map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, string(tt.code), body["code"])
			assert.Equal(t, "declined", body["message"])
		})
	}
}

// --- DecodeJSON Tests ---

func TestDecodeJSON(t *testing.T) {
	t.Run("valid JSON body", func(t *testing.T) {
		body := bytes.NewBufferString(`{"name":"test","value":42}`)
		r := httptest.NewRequest(http.MethodPost, "/", body)
		var dst struct {
			Name  string `json:"name"`
			Value int    `json:"value"`
		}
		require.NoError(t, DecodeJSON(r, &dst))
		assert.Equal(t, "test", dst.Name)
		assert.Equal(t, 42, dst.Value)
	})

	t.Run("invalid JSON returns error", func(t *testing.T) {
		body := bytes.NewBufferString(`{invalid`)
		r := httptest.NewRequest(http.MethodPost, "/", body)
		var dst map[string]interface{}
		err := DecodeJSON(r, &dst)
		require.Error(t, err)
	})

	t.Run("unknown field returns error", func(t *testing.T) {
		body := bytes.NewBufferString(`{"tableauIndex":1,"extra":true}`)
		r := httptest.NewRequest(http.MethodPost, "/", body)
		var dst wasteToTableauRequest
		require.Error(t, DecodeJSON(r, &dst))
	})

	t.Run("body exceeding 1MiB returns error", func(t *testing.T) {
		bigBody := `{"name":"` + strings.Repeat("x", 1<<20+1) + `"}`
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(bigBody))
		var dst map[string]interface{}
		err := DecodeJSON(r, &dst)
		require.Error(t, err)
	})
}

// --- ClientIP Tests ---

func TestClientIP(t *testing.T) {
	t.Run("X-Forwarded-For single IP", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Forwarded-For", "1.2.3.4")
		assert.Equal(t, "1.2.3.4", ClientIP(r))
	})

	t.Run("X-Forwarded-For multiple IPs takes first", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8, 9.10.11.12")
		assert.Equal(t, "1.2.3.4", ClientIP(r))
	})

	t.Run("X-Forwarded-For with spaces", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Forwarded-For", "  1.2.3.4  ")
		assert.Equal(t, "1.2.3.4", ClientIP(r))
	})

	t.Run("no X-Forwarded-For uses RemoteAddr", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "10.0.0.1:54321"
		assert.Equal(t, "10.0.0.1", ClientIP(r))
	})

	t.Run("RemoteAddr without port", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "10.0.0.1"
		assert.Equal(t, "10.0.0.1", ClientIP(r))
	})
}

// --- RequestID Middleware Tests ---

func TestRequestID(t *testing.T) {
	t.Run("generates ID when none provided", func(t *testing.T) {
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := GetRequestID(r.Context())
			assert.NotEmpty(t, id)
			w.WriteHeader(http.StatusOK)
		}))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("uses provided X-Request-ID", func(t *testing.T) {
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := GetRequestID(r.Context())
			assert.Equal(t, "my-custom-id", id)
			w.WriteHeader(http.StatusOK)
		}))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Request-ID", "my-custom-id")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, "my-custom-id", w.Header().Get("X-Request-ID"))
	})
}

func TestGetRequestID_EmptyContext(t *testing.T) {
	id := GetRequestID(context.Background())
	assert.Empty(t, id)
}

// --- JSONContentType Middleware Tests ---

func TestJSONContentType(t *testing.T) {
	handler := JSONContentType(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

// --- CORS Middleware Tests ---

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORSWithOrigins(t *testing.T) {
	t.Run("sets CORS headers", func(t *testing.T) {
		handler := CORSWithOrigins("*")(okHandler())

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "GET")
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")
		assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Request-ID")
	})

	t.Run("OPTIONS returns 204", func(t *testing.T) {
		handler := CORSWithOrigins("https://example.com")(okHandler())

		r := httptest.NewRequest(http.MethodOptions, "/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("echoes listed origin", func(t *testing.T) {
		handler := CORSWithOrigins("https://a.example", "https://b.example")(okHandler())

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Origin", "https://b.example")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, "https://b.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Origin", w.Header().Get("Vary"))
	})

	t.Run("unlisted origin gets no header", func(t *testing.T) {
		handler := CORSWithOrigins("https://a.example", "https://b.example")(okHandler())

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

// --- Recovery Middleware Tests ---

func TestRecovery(t *testing.T) {
	t.Run("recovers from panic", func(t *testing.T) {
		logger := noopLogger()
		handler := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("something went wrong")
		}))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()

		assert.NotPanics(t, func() {
			handler.ServeHTTP(w, r)
		})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	})

	t.Run("passes through without panic", func(t *testing.T) {
		logger := noopLogger()
		handler := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"ok":true}`))
		}))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

// --- RateLimit / Idempotency Middleware Tests ---

func TestRateLimit(t *testing.T) {
	handler := RateLimit(guard.NewRateLimiter(2, time.Minute))(okHandler())

	codes := make([]int, 0, 3)
	for iter := 0; iter < 3; iter++ {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code, "other clients are unaffected")
}

func TestIdempotency(t *testing.T) {
	status := http.StatusOK
	calls := 0
	handler := Idempotency(guard.NewIdempotencyGuard(time.Hour))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(status)
	}))

	send := func(method, path, key string) int {
		r := httptest.NewRequest(method, path, nil)
		if key != "" {
			r.Header.Set("Idempotency-Key", key)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w.Code
	}

	t.Run("duplicate POST is rejected", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, send(http.MethodPost, "/games/a/stock/deal", "k1"))
		assert.Equal(t, http.StatusConflict, send(http.MethodPost, "/games/a/stock/deal", "k1"))
	})

	t.Run("same key on another path is independent", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, send(http.MethodPost, "/games/b/stock/deal", "k1"))
	})

	t.Run("requests without a key pass", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, send(http.MethodPost, "/games/a/stock/deal", ""))
		assert.Equal(t, http.StatusOK, send(http.MethodPost, "/games/a/stock/deal", ""))
	})

	t.Run("GET ignores the key", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, send(http.MethodGet, "/games/a", "k2"))
		assert.Equal(t, http.StatusOK, send(http.MethodGet, "/games/a", "k2"))
	})

	t.Run("server error releases the key", func(t *testing.T) {
		status = http.StatusInternalServerError
		assert.Equal(t, http.StatusInternalServerError, send(http.MethodPost, "/games/c/forfeit", "k3"))
		status = http.StatusOK
		assert.Equal(t, http.StatusOK, send(http.MethodPost, "/games/c/forfeit", "k3"))
	})

	t.Run("success keeps the key", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, send(http.MethodPost, "/games/d/forfeit", "k4"))
		assert.Equal(t, http.StatusConflict, send(http.MethodPost, "/games/d/forfeit", "k4"))
	})

	t.Run("rejection releases the key", func(t *testing.T) {
		status = http.StatusUnprocessableEntity
		assert.Equal(t, http.StatusUnprocessableEntity, send(http.MethodPost, "/games/e/stock/deal", "k5"))
		assert.Equal(t, http.StatusUnprocessableEntity, send(http.MethodPost, "/games/e/stock/deal", "k5"))
		status = http.StatusOK
	})
}

func TestIdempotency_RetryAfterConcurrentAppend(t *testing.T) {
	calls := 0
	handler := Idempotency(guard.NewIdempotencyGuard(time.Hour))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			RespondError(w, domain.ErrConcurrentAppend)
			return
		}
		RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))

	send := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/games/a/stock/deal", nil)
		r.Header.Set("Idempotency-Key", "retry-1")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	first := send()
	assert.Equal(t, http.StatusConflict, first.Code)
	assert.Contains(t, first.Body.String(), `"CONFLICT"`)

	second := send()
	assert.Equal(t, http.StatusOK, second.Code, "the conflicting attempt appended nothing, so the key is free")
	assert.Equal(t, 2, calls)

	third := send()
	assert.Equal(t, http.StatusConflict, third.Code)
	assert.Contains(t, third.Body.String(), "DUPLICATE_REQUEST")
	assert.Equal(t, 2, calls)
}

// --- Health Tests ---

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	t.Run("no dependencies is healthy", func(t *testing.T) {
		w := httptest.NewRecorder()
		HealthHandler(nil)(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "healthy")
	})

	t.Run("failing dependency is reported", func(t *testing.T) {
		deps := map[string]infra.Pinger{
			"redis": pingerFunc(func(context.Context) error { return errors.New("connection refused") }),
		}
		w := httptest.NewRecorder()
		HealthHandler(deps)(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, "redis", body["dependency"])
		assert.Equal(t, "connection refused", body["error"])
	})
}

// --- responseWriter Tests ---

func TestResponseWriter_CapturesStatus(t *testing.T) {
	w := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: w, status: 200}

	rw.WriteHeader(http.StatusNotFound)
	assert.Equal(t, 404, rw.status)
	assert.Equal(t, 404, w.Code)
}

// --- Game routes ---

func newGameRouter(t *testing.T) http.Handler {
	t.Helper()
	engine := game.NewEngine(game.Deps{
		Events: repository.NewMemoryEventStore(),
		Random: rand.New(rand.NewSource(7)),
		Logger: noopLogger(),
	})
	r := chi.NewRouter()
	NewGameHandler(engine).Routes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, rd))
	return w
}

type commandBody struct {
	Game  domain.Game       `json:"game"`
	Event *domain.GameEvent `json:"event"`
}

func createGame(t *testing.T, h http.Handler) domain.Game {
	t.Helper()
	w := do(t, h, http.MethodPost, "/games", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body commandBody
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.NotNil(t, body.Event)
	assert.Equal(t, domain.EventGameCreated, body.Event.Type())
	return body.Game
}

func TestGameRoutes_CreateAndGet(t *testing.T) {
	h := newGameRouter(t)
	created := createGame(t, h)
	assert.Equal(t, domain.StatusInProgress, created.Status)
	assert.Equal(t, 1, created.Version)

	w := do(t, h, http.MethodGet, "/games/"+created.GameID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	var got domain.Game
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, created.GameID, got.GameID)
	assert.Equal(t, domain.DeckSize, got.Table.CardCount())
}

func TestGameRoutes_Commands(t *testing.T) {
	h := newGameRouter(t)
	id := createGame(t, h).GameID.String()

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"deal", "/stock/deal", "", http.StatusOK, ""},
		{"reset with stock left", "/waste/reset", "", http.StatusUnprocessableEntity, "STOCK_NOT_EMPTY"},
		{"move onto itself", "/tableau-to-tableau", `{"fromIndex":0,"toIndex":0,"count":1}`, http.StatusUnprocessableEntity, "INVALID_MOVE"},
		{"missing field", "/tableau-to-tableau", `{"fromIndex":0,"toIndex":1}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"malformed body", "/waste-to-tableau", `{"tableauIndex":`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown field", "/waste-to-foundation", `{"foundationIndex":0,"pile":2}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"claim too early", "/claim-victory", "", http.StatusUnprocessableEntity, "GAME_NOT_WON"},
		{"forfeit", "/forfeit", "", http.StatusOK, ""},
		{"forfeit again", "/forfeit", "", http.StatusConflict, "GAME_ALREADY_FORFEITED"},
		{"deal after forfeit", "/stock/deal", "", http.StatusConflict, "GAME_ALREADY_FORFEITED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/games/"+id+tt.path, tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode == "" {
				return
			}
			var body map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body["code"])
			assert.NotEmpty(t, body["message"])
		})
	}

	w := do(t, h, http.MethodGet, "/games/"+id+"/events", "")
	require.Equal(t, http.StatusOK, w.Code)
	var events []domain.GameEvent
	require.NoError(t, json.NewDecoder(w.Body).Decode(&events))
	require.Len(t, events, 3, "rejected commands append nothing")
	assert.Equal(t, domain.EventStockDealtToWaste, events[1].Type())
	assert.Equal(t, domain.EventGameForfeited, events[2].Type())
}

func TestGameRoutes_UnknownGame(t *testing.T) {
	h := newGameRouter(t)
	id := uuid.New().String()

	t.Run("get", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/games/"+id, "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "NOT_FOUND")
	})

	t.Run("events", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/games/"+id+"/events", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("command", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/games/"+id+"/stock/deal", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "GAME_NOT_FOUND")
	})

	t.Run("malformed id", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/games/not-a-uuid", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// helper

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
