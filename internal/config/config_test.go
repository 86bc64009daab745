package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fxnlabs/hsa-runtime/fixtures"
	"github.com/fxnlabs/hsa-runtime/internal/hsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		config, err := LoadConfig("../../fixtures/tests/config/valid_config.yaml")
		require.NoError(t, err)
		require.NotNil(t, config)

		assert.Equal(t, "debug", config.Logger.Verbosity)
		assert.Equal(t, DriverSoftware, config.Runtime.Driver)
		assert.Equal(t, uint32(256), config.Queue.Size)
		assert.Equal(t, 2*time.Second, config.Signal.WaitTimeout)
		assert.Equal(t, "127.0.0.1:9464", config.Metrics.ListenAddress)

		require.Len(t, config.Device.Agents, 1)
		agent := config.Device.Agents[0]
		assert.Equal(t, "test-gpu", agent.Name)
		assert.True(t, agent.KernelDispatch)
		assert.Equal(t, uint32(1), agent.QueueMinSize)
		assert.Equal(t, uint32(1024), agent.QueueMaxSize)
		require.Len(t, agent.Regions, 3)
		assert.Equal(t, uint64(1024), agent.Regions[0].AllocMaxSize)

		segment, flags, err := agent.Regions[2].Class()
		require.NoError(t, err)
		assert.Equal(t, hsa.SegmentKernarg, segment)
		assert.Equal(t, hsa.GlobalFlag(0), flags)
	})

	t.Run("non-existent file", func(t *testing.T) {
		_, err := LoadConfig("non-existent-file.yaml")
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		dir, err := os.Getwd()
		require.NoError(t, err)

		configPath := filepath.Join(dir, "..", "..", "fixtures", "tests", "invalid_config", "config.yaml")
		_, err = LoadConfig(configPath)
		assert.Error(t, err)
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("queue:\n  size: 64\n"), 0o600))

		config, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, uint32(64), config.Queue.Size)
		assert.Equal(t, "info", config.Logger.Verbosity)
		assert.Equal(t, 5*time.Second, config.Signal.WaitTimeout)
		assert.Len(t, config.Device.Agents, 2)
	})

	invalid := []struct {
		name string
		file string
	}{
		{"queue size not power of two", "bad_queue_size.yaml"},
		{"fine and coarse on one region", "mixed_grain.yaml"},
		{"unknown segment", "unknown_segment.yaml"},
		{"malformed yaml", "malformed.yaml"},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(filepath.Join("../../fixtures/tests/config", tc.file))
			assert.Error(t, err)
		})
	}
}

func TestTemplateMatchesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, fixtures.ConfigTemplate, 0o600))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), config)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"default is valid", func(c *Config) {}, ""},
		{"unknown driver", func(c *Config) { c.Runtime.Driver = "opencl" }, "unknown runtime driver"},
		{"zero queue size", func(c *Config) { c.Queue.Size = 0 }, "not a power of two"},
		{"zero wait timeout", func(c *Config) { c.Signal.WaitTimeout = 0 }, "must be positive"},
		{"no agents", func(c *Config) { c.Device.Agents = nil }, "at least one agent"},
		{"hardware driver ignores profile", func(c *Config) {
			c.Runtime.Driver = DriverHSA
			c.Device.Agents = nil
		}, ""},
		{"unknown agent type", func(c *Config) { c.Device.Agents[0].Type = "fpga" }, "unknown device type"},
		{"inverted queue bounds", func(c *Config) {
			c.Device.Agents[1].QueueMinSize = 256
			c.Device.Agents[1].QueueMaxSize = 128
		}, "exceeds max size"},
		{"flags on group segment", func(c *Config) {
			c.Device.Agents[1].Regions[2].Flags = []string{"kernarg"}
		}, "only apply to global"},
		{"max allocation beyond region", func(c *Config) {
			c.Device.Agents[1].Regions[0].AllocMaxSize = c.Device.Agents[1].Regions[0].Size + 1
		}, "exceeds region size"},
		{"unknown flag", func(c *Config) {
			c.Device.Agents[1].Regions[0].Flags = []string{"sticky"}
		}, "unknown global region flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
