//go:build hsa
// +build hsa

package gpu

import (
	"github.com/fxnlabs/hsa-runtime/internal/hsa"
	"go.uber.org/zap"
)

// HSAUnavailableReason is empty when the hardware driver is compiled in.
const HSAUnavailableReason = ""

// tryCreateHSADriver creates the hardware driver when the hsa build tag is present
func tryCreateHSADriver(log *zap.Logger) hsa.Driver {
	return NewHSADriver(log)
}
