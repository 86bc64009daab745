package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fxnlabs/hsa-runtime/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runApp runs hsactl with args against a config path in a fresh directory
// and returns what the command printed.
func runApp(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"hsactl", "--config", configPath}, args...))
	return out.String(), err
}

func missingConfig(t *testing.T) string {
	return filepath.Join(t.TempDir(), "hsa.yaml")
}

func TestInitCommand(t *testing.T) {
	path := missingConfig(t)

	_, err := runApp(t, path, "init")
	require.NoError(t, err)
	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fixtures.ConfigTemplate, written)

	_, err = runApp(t, path, "init")
	assert.ErrorContains(t, err, "already exists")

	_, err = runApp(t, path, "init", "--force")
	assert.NoError(t, err)
}

func TestAgentsCommand(t *testing.T) {
	out, err := runApp(t, missingConfig(t), "agents")
	require.NoError(t, err)
	assert.Contains(t, out, "AMD gfx90a [GPU] (selected)")
	assert.Contains(t, out, "Generic host [CPU]")
	assert.Contains(t, out, "coarse_grained")
	assert.Contains(t, out, "1.0 GiB")
	assert.Contains(t, out, "queue 0: MULTI, 1024 slots")
}

func TestRunCommand(t *testing.T) {
	path := missingConfig(t)
	for _, kernel := range []string{"fill_u32", "vector_add_f32", "scale_f32"} {
		t.Run(kernel, func(t *testing.T) {
			out, err := runApp(t, path, "run", "--n", "300", "--workgroup", "32", kernel)
			require.NoError(t, err)
			assert.Contains(t, out, kernel+": 300 work-items verified")
		})
	}

	t.Run("unknown kernel", func(t *testing.T) {
		_, err := runApp(t, path, "run", "matmul")
		assert.ErrorContains(t, err, `unknown kernel "matmul"`)
	})

	t.Run("zero work-items", func(t *testing.T) {
		_, err := runApp(t, path, "run", "--n", "0", "fill_u32")
		assert.Error(t, err)
	})
}

func TestStressCommand(t *testing.T) {
	out, err := runApp(t, missingConfig(t), "stress", "--producers", "4", "--dispatches", "300", "--n", "64")
	require.NoError(t, err)
	assert.Contains(t, out, "1,200 dispatches from 4 producers")
}

func TestVersionCommand(t *testing.T) {
	out, err := runApp(t, missingConfig(t), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "version dev")
	assert.Contains(t, out, "drivers: software")
}

func TestDriverOverride(t *testing.T) {
	_, err := runApp(t, missingConfig(t), "--driver", "opencl", "version")
	assert.ErrorContains(t, err, "unknown runtime driver")
}

func TestInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hsa.yaml")
	require.NoError(t, os.WriteFile(path, []byte("queue:\n  size: 1000\n"), 0o644))
	_, err := runApp(t, path, "version")
	assert.ErrorContains(t, err, "not a power of two")
}
