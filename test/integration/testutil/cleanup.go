//go:build integration

package testutil

import "context"

// CleanAll truncates every table written by the tests.
func (env *TestEnv) CleanAll() {
	env.t.Helper()
	if _, err := env.Pool.Exec(context.Background(), "TRUNCATE game_events RESTART IDENTITY"); err != nil {
		env.t.Fatalf("CleanAll: %v", err)
	}
}
