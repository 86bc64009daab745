package hsa

import (
	"errors"
	"fmt"
)

// Kind classifies an Error. Callers match on kinds through errors.Is with
// the Err* sentinels below.
type Kind int

const (
	KindStatus Kind = iota
	KindInitialization
	KindShutdown
	KindAgentNotFound
	KindQueueCreation
	KindMemoryAllocation
	KindCodeObjectReader
	KindCodeObjectLoad
	KindExecutableCreation
	KindExecutableFreeze
	KindKernelNotFound
	KindExecution
	KindMemoryRegionNotFound
	KindSignalOperation
	KindInvalidArgument
	KindInvalidAgent
	KindInvalidRegion
	KindInvalidAllocation
	KindInvalidCodeObject
	KindInvalidExecutable
	KindInvalidISA
	KindInvalidSymbolName
	KindFrozenExecutable
	KindVariableAlreadyDefined
	KindVariableUndefined
	KindIncompatibleArguments
	KindOutOfResources
	KindNotInitialized
	KindFatal
)

var kindNames = [...]string{
	KindStatus:                 "HSA error",
	KindInitialization:         "HSA initialization failed",
	KindShutdown:               "HSA shutdown failed",
	KindAgentNotFound:          "no GPU agent found",
	KindQueueCreation:          "queue creation failed",
	KindMemoryAllocation:       "memory allocation failed",
	KindCodeObjectReader:       "code object reader creation failed",
	KindCodeObjectLoad:         "code object load failed",
	KindExecutableCreation:     "executable creation failed",
	KindExecutableFreeze:       "executable freeze failed",
	KindKernelNotFound:         "kernel not found",
	KindExecution:              "kernel execution failed",
	KindMemoryRegionNotFound:   "required memory region not found",
	KindSignalOperation:        "signal operation failed",
	KindInvalidArgument:        "invalid argument",
	KindInvalidAgent:           "invalid agent",
	KindInvalidRegion:          "invalid region",
	KindInvalidAllocation:      "invalid allocation",
	KindInvalidCodeObject:      "invalid code object",
	KindInvalidExecutable:      "invalid executable",
	KindInvalidISA:             "invalid ISA",
	KindInvalidSymbolName:      "invalid symbol name",
	KindFrozenExecutable:       "frozen executable",
	KindVariableAlreadyDefined: "variable already defined",
	KindVariableUndefined:      "variable undefined",
	KindIncompatibleArguments:  "incompatible arguments",
	KindOutOfResources:         "out of resources",
	KindNotInitialized:         "runtime not initialized",
	KindFatal:                  "fatal HSA error",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is the single failure type returned by this package.
type Error struct {
	Kind   Kind
	Status Status // zero when the failure did not come from the driver
	Detail string
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindStatus:
		return fmt.Sprintf("HSA error %s: %s", e.Status, e.Detail)
	case e.Detail == "":
		return e.Kind.String()
	default:
		return e.Kind.String() + ": " + e.Detail
	}
}

// Is matches any *Error of the same kind, so sentinels compare by kind only.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrInitialization       = &Error{Kind: KindInitialization}
	ErrShutdown             = &Error{Kind: KindShutdown}
	ErrAgentNotFound        = &Error{Kind: KindAgentNotFound}
	ErrQueueCreation        = &Error{Kind: KindQueueCreation}
	ErrMemoryAllocation     = &Error{Kind: KindMemoryAllocation}
	ErrCodeObjectReader     = &Error{Kind: KindCodeObjectReader}
	ErrCodeObjectLoad       = &Error{Kind: KindCodeObjectLoad}
	ErrExecutableCreation   = &Error{Kind: KindExecutableCreation}
	ErrExecutableFreeze     = &Error{Kind: KindExecutableFreeze}
	ErrKernelNotFound       = &Error{Kind: KindKernelNotFound}
	ErrExecution            = &Error{Kind: KindExecution}
	ErrMemoryRegionNotFound = &Error{Kind: KindMemoryRegionNotFound}
	ErrSignalOperation      = &Error{Kind: KindSignalOperation}
	ErrInvalidArgument      = &Error{Kind: KindInvalidArgument}
	ErrOutOfResources       = &Error{Kind: KindOutOfResources}
	ErrNotInitialized       = &Error{Kind: KindNotInitialized}
	ErrFatal                = &Error{Kind: KindFatal}
)

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// statusKinds maps driver statuses onto error kinds. Anything missing falls
// through to KindStatus.
var statusKinds = map[Status]Kind{
	StatusErrorInvalidArgument:        KindInvalidArgument,
	StatusErrorInvalidQueueCreation:   KindQueueCreation,
	StatusErrorInvalidAllocation:      KindInvalidAllocation,
	StatusErrorInvalidAgent:           KindInvalidAgent,
	StatusErrorInvalidRegion:          KindInvalidRegion,
	StatusErrorOutOfResources:         KindOutOfResources,
	StatusErrorNotInitialized:         KindNotInitialized,
	StatusErrorInvalidCodeObject:      KindInvalidCodeObject,
	StatusErrorInvalidExecutable:      KindInvalidExecutable,
	StatusErrorFrozenExecutable:       KindFrozenExecutable,
	StatusErrorInvalidSymbolName:      KindInvalidSymbolName,
	StatusErrorVariableAlreadyDefined: KindVariableAlreadyDefined,
	StatusErrorVariableUndefined:      KindVariableUndefined,
	StatusErrorIncompatibleArguments:  KindIncompatibleArguments,
	StatusErrorInvalidISA:             KindInvalidISA,
	StatusErrorInvalidISAName:         KindInvalidISA,
	StatusErrorFatal:                  KindFatal,
}

// fromStatus translates a driver status into an *Error, prefixing the
// driver's description with what was being attempted.
func fromStatus(drv Driver, status Status, context string) *Error {
	description := drv.StatusString(status)
	if description == "" {
		description = status.String()
	}
	if context != "" {
		description = context + ": " + description
	}
	kind, ok := statusKinds[status]
	if !ok {
		kind = KindStatus
	}
	return &Error{Kind: kind, Status: status, Detail: description}
}

// wrapAs re-labels err under kind, keeping the translated description and
// the original status. Fatal errors keep their kind.
func wrapAs(kind Kind, err error) *Error {
	var e *Error
	if !errors.As(err, &e) {
		return &Error{Kind: kind, Detail: err.Error()}
	}
	if e.Kind == KindFatal {
		return e
	}
	return &Error{Kind: kind, Status: e.Status, Detail: e.Error()}
}

// IsFatal reports whether err carries the fatal kind. Callers should abort
// rather than retry.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatal)
}
