package main

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/foxxcyber/compwatch/internal/testutil"
)

// run executes compctl against api with a fresh state dir per test
func run(t *testing.T, api *testutil.API, stdin string, args ...string) (string, error) {
	t.Helper()

	outputFormat, listAll, deleteYes, menuForce = "table", false, false, false
	authEmail, authPassword, searchType, searchLocation = "", "", "", ""

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--api-url", api.Server.URL}, args...))

	err := rootCmd.ExecuteContext(t.Context())
	return buf.String(), err
}

func TestCompctl_ProtectedCommandWithoutLogin(t *testing.T) {
	t.Setenv("COMPWATCH_HOME", t.TempDir())
	api := testutil.NewAPI(t)

	out, err := run(t, api, "", "competitors", "list")

	require.Error(t, err)
	assert.Contains(t, out, "authentication required, please log in")
}

func TestCompctl_RegisterAddListDelete(t *testing.T) {
	t.Setenv("COMPWATCH_HOME", t.TempDir())
	api := testutil.NewAPI(t)

	out, err := run(t, api, "", "register", "--email", "owner@example.com", "--password", "correct-horse")
	require.NoError(t, err)
	assert.Contains(t, out, "registered and logged in as owner@example.com")

	out, err = run(t, api, "", "competitors", "add", "--name", "Brew Lab", "--website", "https://brewlab.example")
	require.NoError(t, err)
	assert.Contains(t, out, "added Brew Lab")

	out, err = run(t, api, "", "-o", "yaml", "competitors", "list")
	require.NoError(t, err)
	var listed []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Brew Lab", listed[0]["name"])
	assert.Equal(t, true, listed[0]["is_selected"])

	id := fmt.Sprint(listed[0]["id"])

	out, err = run(t, api, "", "sync")
	require.NoError(t, err)
	assert.Contains(t, out, "synced menu for Brew Lab (1 items)")
	assert.Contains(t, out, "menu sync finished: 1 of 1 succeeded")

	out, err = run(t, api, "n\n", "competitors", "delete", id)
	require.NoError(t, err)
	assert.Contains(t, out, "nothing deleted")

	out, err = run(t, api, "", "competitors", "delete", id, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted Brew Lab")
	assert.Contains(t, out, "no competitors")
}
