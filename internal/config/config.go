package config

import (
	"fmt"
	"os"
	"time"

	"github.com/fxnlabs/hsa-runtime/internal/hsa"
	"gopkg.in/yaml.v3"
)

const (
	DriverSoftware = "software"
	DriverHSA      = "hsa"

	DefaultConfigPath = "hsa.yaml"
)

type Config struct {
	Logger struct {
		Verbosity string `yaml:"verbosity"`
	} `yaml:"logger"`
	Runtime struct {
		Driver string `yaml:"driver"`
	} `yaml:"runtime"`
	Queue struct {
		Size uint32 `yaml:"size"`
	} `yaml:"queue"`
	Signal struct {
		WaitTimeout time.Duration `yaml:"waitTimeout"`
	} `yaml:"signal"`
	Metrics struct {
		ListenAddress string `yaml:"listenAddress"`
	} `yaml:"metrics"`
	Device DeviceProfile `yaml:"device"`
}

// DeviceProfile describes the agents the software device exposes. The
// hardware driver ignores it.
type DeviceProfile struct {
	Agents []AgentProfile `yaml:"agents"`
}

type AgentProfile struct {
	Name           string          `yaml:"name"`
	Vendor         string          `yaml:"vendor"`
	Type           string          `yaml:"type"`
	KernelDispatch bool            `yaml:"kernelDispatch"`
	QueueMinSize   uint32          `yaml:"queueMinSize"`
	QueueMaxSize   uint32          `yaml:"queueMaxSize"`
	Regions        []RegionProfile `yaml:"regions"`
}

type RegionProfile struct {
	Segment      string   `yaml:"segment"`
	Flags        []string `yaml:"flags"`
	Size         uint64   `yaml:"size"`
	AllocMaxSize uint64   `yaml:"allocMaxSize"`
	RuntimeAlloc bool     `yaml:"runtimeAlloc"`
}

// DeviceType parses the agent's type name.
func (a AgentProfile) DeviceType() (hsa.DeviceType, error) {
	return hsa.ParseDeviceType(a.Type)
}

// Class parses the region's segment and flag names.
func (r RegionProfile) Class() (hsa.Segment, hsa.GlobalFlag, error) {
	segment, err := hsa.ParseSegment(r.Segment)
	if err != nil {
		return 0, 0, err
	}
	var flags hsa.GlobalFlag
	for _, name := range r.Flags {
		f, err := hsa.ParseGlobalFlag(name)
		if err != nil {
			return 0, 0, err
		}
		flags |= f
	}
	return segment, flags, nil
}

// Default returns a host CPU agent and one GPU agent with the usual trio of
// coarse-grained, fine-grained and kernarg memory.
func Default() *Config {
	cfg := &Config{}
	cfg.Logger.Verbosity = "info"
	cfg.Runtime.Driver = DriverSoftware
	cfg.Queue.Size = 1024
	cfg.Signal.WaitTimeout = 5 * time.Second
	cfg.Device.Agents = []AgentProfile{
		{
			Name:         "host",
			Vendor:       "Generic",
			Type:         "cpu",
			QueueMinSize: 64,
			QueueMaxSize: 4096,
			Regions: []RegionProfile{
				{Segment: "global", Flags: []string{"fine_grained", "kernarg"}, Size: 1 << 30, AllocMaxSize: 1 << 28, RuntimeAlloc: true},
			},
		},
		{
			Name:           "gfx90a",
			Vendor:         "AMD",
			Type:           "gpu",
			KernelDispatch: true,
			QueueMinSize:   64,
			QueueMaxSize:   131072,
			Regions: []RegionProfile{
				{Segment: "global", Flags: []string{"coarse_grained"}, Size: 1 << 30, AllocMaxSize: 1 << 28, RuntimeAlloc: true},
				{Segment: "global", Flags: []string{"fine_grained", "kernarg"}, Size: 1 << 28, AllocMaxSize: 1 << 26, RuntimeAlloc: true},
				{Segment: "group", Size: 64 << 10},
			},
		},
	}
	return cfg
}

// LoadConfig reads the YAML file at path over the defaults and validates the
// result. A device section in the file replaces the default agent list.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := Default()
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

func isPowerOfTwo(v uint32) bool {
	return v != 0 && v&(v-1) == 0
}

// Validate checks the settings the runtime cannot recover from later.
func (c *Config) Validate() error {
	switch c.Runtime.Driver {
	case DriverSoftware, DriverHSA:
	default:
		return fmt.Errorf("unknown runtime driver %q (want %q or %q)", c.Runtime.Driver, DriverSoftware, DriverHSA)
	}
	if !isPowerOfTwo(c.Queue.Size) {
		return fmt.Errorf("queue size %d is not a power of two", c.Queue.Size)
	}
	if c.Signal.WaitTimeout <= 0 {
		return fmt.Errorf("signal wait timeout must be positive, got %s", c.Signal.WaitTimeout)
	}
	if c.Runtime.Driver != DriverSoftware {
		return nil
	}
	if len(c.Device.Agents) == 0 {
		return fmt.Errorf("software device needs at least one agent")
	}
	for i, agent := range c.Device.Agents {
		if err := agent.validate(); err != nil {
			return fmt.Errorf("device agent %d (%s): %w", i, agent.Name, err)
		}
	}
	return nil
}

func (a AgentProfile) validate() error {
	if _, err := a.DeviceType(); err != nil {
		return err
	}
	if !isPowerOfTwo(a.QueueMinSize) || !isPowerOfTwo(a.QueueMaxSize) {
		return fmt.Errorf("queue bounds [%d, %d] must be powers of two", a.QueueMinSize, a.QueueMaxSize)
	}
	if a.QueueMinSize > a.QueueMaxSize {
		return fmt.Errorf("queue min size %d exceeds max size %d", a.QueueMinSize, a.QueueMaxSize)
	}
	for j, region := range a.Regions {
		segment, flags, err := region.Class()
		if err != nil {
			return fmt.Errorf("region %d: %w", j, err)
		}
		if flags != 0 && segment != hsa.SegmentGlobal {
			return fmt.Errorf("region %d: flags only apply to global regions", j)
		}
		if flags.Has(hsa.GlobalFlagFineGrained) && flags.Has(hsa.GlobalFlagCoarseGrained) {
			return fmt.Errorf("region %d: both fine and coarse grained", j)
		}
		if region.AllocMaxSize > region.Size {
			return fmt.Errorf("region %d: max allocation %d exceeds region size %d", j, region.AllocMaxSize, region.Size)
		}
		if region.RuntimeAlloc && region.AllocMaxSize == 0 {
			return fmt.Errorf("region %d: runtime allocation allowed with zero max allocation size", j)
		}
	}
	return nil
}
