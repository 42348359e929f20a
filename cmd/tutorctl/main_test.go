package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	cfg := "store:\n  driver: file\n  path: " + filepath.Join(dir, "profiles") + "\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClassify(t *testing.T) {
	out, err := run(t, "classify", "hello there")
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "greeting", result["intent"])
}

func TestTurnFeedbackAndProfile(t *testing.T) {
	cfgPath := writeConfig(t)
	convPath := filepath.Join(t.TempDir(), "conv.json")

	out, err := run(t, "-c", cfgPath, "-u", "ayesha", "turn", "yaar recursion samajh nahi aa raha", "--conversation", convPath, "--reply", "Let's start with a tiny example.")
	require.NoError(t, err)

	var decision struct {
		InteractionID string `json:"interaction_id"`
		Metrics       struct {
			MessageCount int `json:"message_count"`
		} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decision))
	require.NotEmpty(t, decision.InteractionID)
	assert.Equal(t, 1, decision.Metrics.MessageCount)

	_, err = run(t, "-c", cfgPath, "-u", "ayesha", "feedback", decision.InteractionID, "5", "--conversation", convPath)
	require.NoError(t, err)

	out, err = run(t, "-c", cfgPath, "-u", "ayesha", "profile", "export")
	require.NoError(t, err)
	var profile map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &profile))
	assert.Equal(t, "ayesha", profile["user_id"])
	assert.EqualValues(t, 1, profile["feedback_count"])

	exported := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(exported, []byte(out), 0o644))

	_, err = run(t, "-c", cfgPath, "-u", "ayesha", "profile", "reset")
	require.NoError(t, err)
	out, err = run(t, "-c", cfgPath, "-u", "ayesha", "profile", "export")
	require.NoError(t, err)
	assert.Contains(t, out, `"feedback_count":0`)

	_, err = run(t, "-c", cfgPath, "-u", "ayesha", "profile", "import", exported)
	require.NoError(t, err)
	out, err = run(t, "-c", cfgPath, "-u", "ayesha", "profile", "export")
	require.NoError(t, err)
	assert.Contains(t, out, `"feedback_count":1`)
}

func TestTurnPromptOutput(t *testing.T) {
	out, err := run(t, "turn", "--prompt", "I will just memorize all the formulas without understanding")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "[Response policy]"))
}

func TestFeedbackRejected(t *testing.T) {
	_, err := run(t, "-c", writeConfig(t), "feedback", "missing-id", "4")
	assert.Error(t, err)

	_, err = run(t, "feedback", "x", "five")
	assert.Error(t, err)
}

func TestImportRejectsCorruptProfile(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"version": 1, "user_id": 5}`), 0o644))
	_, err := run(t, "-c", writeConfig(t), "profile", "import", bad)
	assert.Error(t, err)
}
