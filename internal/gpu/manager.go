package gpu

import (
	"fmt"

	"github.com/fxnlabs/hsa-runtime/internal/config"
	"github.com/fxnlabs/hsa-runtime/internal/hsa"
	"go.uber.org/zap"
)

// NewDriver returns the driver named by cfg.Runtime.Driver. Asking for the
// hardware driver in a build without it is an error rather than a silent
// fallback to the software device.
func NewDriver(cfg *config.Config, log *zap.Logger) (hsa.Driver, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch cfg.Runtime.Driver {
	case config.DriverSoftware, "":
		log.Info("Using software device")
		return NewSoftDriver(cfg.Device, log)
	case config.DriverHSA:
		drv := tryCreateHSADriver(log)
		if drv == nil {
			return nil, fmt.Errorf("hsa driver requested but %s", HSAUnavailableReason)
		}
		log.Info("Using HSA runtime driver")
		return drv, nil
	}
	return nil, fmt.Errorf("unknown driver %q", cfg.Runtime.Driver)
}

// DriverName reports which implementation drv is.
func DriverName(drv hsa.Driver) string {
	switch drv.(type) {
	case *SoftDriver:
		return config.DriverSoftware
	case nil:
		return "none"
	}
	return config.DriverHSA
}
