//go:build hsa
// +build hsa

package gpu

/*
#include <hsa/hsa.h>
#include <stdint.h>
*/
import "C"

import (
	"runtime/cgo"

	"github.com/fxnlabs/hsa-runtime/internal/hsa"
)

// The runtime calls these with the cgo.Handle passed as the iteration's
// user data.

//export goVisitAgent
func goVisitAgent(agent C.hsa_agent_t, data C.uintptr_t) C.hsa_status_t {
	visit := cgo.Handle(data).Value().(agentVisitor)
	return C.hsa_status_t(visit(hsa.AgentHandle(agent.handle)))
}

//export goVisitRegion
func goVisitRegion(region C.hsa_region_t, data C.uintptr_t) C.hsa_status_t {
	visit := cgo.Handle(data).Value().(regionVisitor)
	return C.hsa_status_t(visit(hsa.RegionHandle(region.handle)))
}

//export goVisitSymbol
func goVisitSymbol(symbol C.hsa_executable_symbol_t, data C.uintptr_t) C.hsa_status_t {
	visit := cgo.Handle(data).Value().(symbolVisitor)
	return C.hsa_status_t(visit(hsa.SymbolHandle(symbol.handle)))
}
