package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SKILLTRACK_DB_DRIVER", "memory")
	t.Setenv("SKILLTRACK_LOG_LEVEL", "disabled")
	t.Setenv("SKILLTRACK_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestSkillAdd(t *testing.T) {
	out, err := runCLI(t, "skill", "add", "Welding")
	require.NoError(t, err)
	assert.Contains(t, out, `skill "Welding" created with id`)
}

func TestUserAddJSON(t *testing.T) {
	out, err := runCLI(t, "--json", "user", "add", "--name", "Ann Smith", "--login", "ann", "--password", "pw-ann")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "ann", got["login"])
	assert.NotZero(t, got["id"])
}

func TestUserAddRejectsShortPassword(t *testing.T) {
	_, err := runCLI(t, "user", "add", "--name", "Ann Smith", "--login", "ann", "--password", "pw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password must be 4-72 bytes")
}

func TestUserAddRequiresFlags(t *testing.T) {
	_, err := runCLI(t, "user", "add", "--name", "Ann Smith")
	assert.Error(t, err)
}

func TestTrainerGrantUnknownUser(t *testing.T) {
	_, err := runCLI(t, "trainer", "grant", "--user", "99", "--skill", "1")
	assert.Error(t, err)
}

func TestSeed(t *testing.T) {
	out, err := runCLI(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 4 user(s), 3 skill(s), 3 class(es)")
}

func TestSessionsPrune(t *testing.T) {
	out, err := runCLI(t, "sessions", "prune", "--older-than", "1h")
	require.NoError(t, err)
	assert.Contains(t, out, "0 session(s) deleted")
}

func TestMigrateRejectsMemoryDriver(t *testing.T) {
	_, err := runCLI(t, "migrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate needs")
}
