package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskmatch/internal/domain"
	engine "riskmatch/internal/matching"
	"riskmatch/internal/scoring"
)

const (
	testdata = "../../internal/fixture/testdata"
	acme     = testdata + "/acme.yaml"
	broken   = testdata + "/nested/bad-weights.yaml"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("RISKMATCH_DATABASE_URL", "")
	t.Setenv("RISKMATCH_POLICY_FILE", "")
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--no-color"}, args...))
	err := root.Execute()
	return out.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var ee *exitErr
	require.True(t, errors.As(err, &ee), "want *exitErr, got %v", err)
	return ee.code
}

func TestScore(t *testing.T) {
	out, err := run(t, "score", "--format", "json", acme)
	require.NoError(t, err)
	var got scoring.OverallScore
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "acme-2026", got.AssessmentID)
	assert.Equal(t, 57, got.OverallScore)
	assert.Equal(t, scoring.RiskMedium, got.RiskBand)

	out, err = run(t, "score", acme)
	require.NoError(t, err)
	assert.Contains(t, out, "Overall score: 57/100  MEDIUM")
}

func TestScoreExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"below threshold", []string{"score", "--fail-below", "60", acme}, exitFailThreshold},
		{"missing fixture", []string{"score", "nope.yaml"}, exitInput},
		{"invalid weights", []string{"score", broken}, exitInvalidConfig},
		{"unknown format", []string{"score", "--format", "xml", acme}, exitInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.code, exitCode(t, err))
		})
	}

	_, err := run(t, "score", "--fail-below", "50", acme)
	assert.NoError(t, err)
}

func TestMatch(t *testing.T) {
	out, err := run(t, "match", "--format", "json", acme)
	require.NoError(t, err)
	var runOut engine.MatchRun
	require.NoError(t, json.Unmarshal([]byte(out), &runOut))
	assert.NotEmpty(t, runOut.ID)
	require.Len(t, runOut.Matches, 2)
	assert.Equal(t, "keyholder", runOut.Matches[0].VendorID)
	assert.Equal(t, engine.MaxTotalScore, runOut.Matches[0].TotalScore)

	out, err = run(t, "match", "--format", "json", "--limit", "1", acme)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &runOut))
	assert.Len(t, runOut.Matches, 1)

	out, err = run(t, "match", acme)
	require.NoError(t, err)
	assert.Contains(t, out, "1. Keyholder")
	assert.Contains(t, out, "Matches priority #1: Access Control")

	_, err = run(t, "match", broken)
	require.Error(t, err)
	assert.Equal(t, exitInput, exitCode(t, err), "fixture without priorities")
}

func TestMatchWithPolicyFile(t *testing.T) {
	out, err := run(t, "policy")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(out), 0o644))

	_, err = run(t, "match", "--policy", path, acme)
	assert.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("rank_boosts: [99, 1, 1]\n"), 0o644))
	_, err = run(t, "match", "--policy", path, acme)
	require.Error(t, err)
	assert.Equal(t, exitInvalidConfig, exitCode(t, err))
}

func TestRank(t *testing.T) {
	out, err := run(t, "rank", "--format", "json", "--limit", "1", acme)
	require.NoError(t, err)
	var scores []engine.BaseScore
	require.NoError(t, json.Unmarshal([]byte(out), &scores))
	require.Len(t, scores, 1)
	assert.Equal(t, "keyholder", scores[0].VendorID)
	assert.Equal(t, engine.MaxTotalBase, scores[0].TotalBase)

	out, err = run(t, "rank", "--format", "json", "--all", acme)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &scores))
	assert.Len(t, scores, 2)

	out, err = run(t, "rank", "--format", "json", "--min-score", "101", acme)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestBatch(t *testing.T) {
	out, err := run(t, "batch", testdata)
	require.Error(t, err)
	assert.Equal(t, exitInput, exitCode(t, err))
	assert.Contains(t, out, "acme.yaml: 57 MEDIUM")
	assert.Contains(t, out, "bad-weights.yaml")
	assert.Contains(t, out, "1 scored, 1 failed")

	out, err = run(t, "batch", "--format", "json", "--pattern", "*.yaml", testdata)
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Len(t, rows, 1)

	_, err = run(t, "batch", "--pattern", "*.yaml", "--fail-below", "60", testdata)
	require.Error(t, err)
	assert.Equal(t, exitFailThreshold, exitCode(t, err))

	_, err = run(t, "batch", "--pattern", "*.json", testdata)
	require.Error(t, err)
	assert.Equal(t, exitInput, exitCode(t, err))
}

func TestPolicy(t *testing.T) {
	out, err := run(t, "policy")
	require.NoError(t, err)
	assert.Contains(t, out, "rank_boosts:")
	assert.Contains(t, out, "speed_thresholds:")

	_, err = run(t, "policy", "--policy", "missing.yaml")
	require.Error(t, err)
	assert.Equal(t, exitInvalidConfig, exitCode(t, err))
}

func TestDatabaseCommandsNeedURL(t *testing.T) {
	for _, args := range [][]string{{"migrate"}, {"seed", acme}, {"serve"}} {
		t.Run(args[0], func(t *testing.T) {
			_, err := run(t, args...)
			require.Error(t, err)
			assert.Equal(t, exitInvalidConfig, exitCode(t, err))
		})
	}
}

func TestClassify(t *testing.T) {
	err := classify(domain.ErrNotFound, "x")
	assert.Equal(t, exitNotFound, exitCode(t, err))
	err = classify(domain.ErrInvalidConfiguration, "x")
	assert.Equal(t, exitInvalidConfig, exitCode(t, err))
	err = classify(errors.New("boom"), "score %s", "a")
	assert.EqualError(t, err, "score a: boom")
}
