package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevEnv(t *testing.T) {
	env := devEnv([]string{"APP_ENV=staging", "HOME=/home/dana"})

	assert.Contains(t, env, "APP_ENV=staging")
	assert.NotContains(t, env, "APP_ENV=development")
	assert.Contains(t, env, "JWT_SECRET=dev-secret-change-me")
	assert.Contains(t, env, "API_BASE_URL=http://localhost:5000")
	assert.Equal(t, "PORT=8090", env[len(env)-1])
}

func TestIsUpToDate(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "input.css")
	out := filepath.Join(dir, "output.css")
	require.NoError(t, os.WriteFile(in, []byte("a"), 0o644))

	assert.False(t, isUpToDate(out, []string{in}), "missing output")

	require.NoError(t, os.WriteFile(out, []byte("b"), 0o644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(in, past, past))
	assert.True(t, isUpToDate(out, []string{in, filepath.Join(dir, "gone.templ")}))

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(in, future, future))
	assert.False(t, isUpToDate(out, []string{in}))
}
