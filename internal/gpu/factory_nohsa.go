//go:build !hsa
// +build !hsa

package gpu

import (
	"github.com/fxnlabs/hsa-runtime/internal/hsa"
	"go.uber.org/zap"
)

// HSAUnavailableReason explains why the hardware driver cannot be used.
const HSAUnavailableReason = "this binary was built without the hsa tag"

// tryCreateHSADriver returns nil when the hsa build tag is NOT present
func tryCreateHSADriver(log *zap.Logger) hsa.Driver {
	log.Debug("HSA driver not compiled in")
	return nil
}
