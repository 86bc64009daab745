package hsa

import "fmt"

// Status is a runtime status code as reported by the underlying driver.
// Values match hsa_status_t.
type Status uint32

const (
	StatusSuccess   Status = 0x0
	StatusInfoBreak Status = 0x1

	StatusError                        Status = 0x1000
	StatusErrorInvalidArgument         Status = 0x1001
	StatusErrorInvalidQueueCreation    Status = 0x1002
	StatusErrorInvalidAllocation       Status = 0x1003
	StatusErrorInvalidAgent            Status = 0x1004
	StatusErrorInvalidRegion           Status = 0x1005
	StatusErrorInvalidSignal           Status = 0x1006
	StatusErrorInvalidQueue            Status = 0x1007
	StatusErrorOutOfResources          Status = 0x1008
	StatusErrorInvalidPacketFormat     Status = 0x1009
	StatusErrorResourceFree            Status = 0x100A
	StatusErrorNotInitialized          Status = 0x100B
	StatusErrorRefcountOverflow        Status = 0x100C
	StatusErrorIncompatibleArguments   Status = 0x100D
	StatusErrorInvalidIndex            Status = 0x100E
	StatusErrorInvalidISA              Status = 0x100F
	StatusErrorInvalidCodeObject       Status = 0x1010
	StatusErrorInvalidExecutable       Status = 0x1011
	StatusErrorFrozenExecutable        Status = 0x1012
	StatusErrorInvalidSymbolName       Status = 0x1013
	StatusErrorVariableAlreadyDefined  Status = 0x1014
	StatusErrorVariableUndefined       Status = 0x1015
	StatusErrorException               Status = 0x1016
	StatusErrorInvalidISAName          Status = 0x1017
	StatusErrorInvalidCodeSymbol       Status = 0x1018
	StatusErrorInvalidExecutableSymbol Status = 0x1019
	StatusErrorInvalidFile             Status = 0x1020
	StatusErrorInvalidCodeObjectReader Status = 0x1021
	StatusErrorInvalidCache            Status = 0x1022
	StatusErrorInvalidWavefront        Status = 0x1023
	StatusErrorInvalidSignalGroup      Status = 0x1024
	StatusErrorInvalidRuntimeState     Status = 0x1025
	StatusErrorFatal                   Status = 0x1026
)

var statusNames = map[Status]string{
	StatusSuccess:                      "HSA_STATUS_SUCCESS",
	StatusInfoBreak:                    "HSA_STATUS_INFO_BREAK",
	StatusError:                        "HSA_STATUS_ERROR",
	StatusErrorInvalidArgument:         "HSA_STATUS_ERROR_INVALID_ARGUMENT",
	StatusErrorInvalidQueueCreation:    "HSA_STATUS_ERROR_INVALID_QUEUE_CREATION",
	StatusErrorInvalidAllocation:       "HSA_STATUS_ERROR_INVALID_ALLOCATION",
	StatusErrorInvalidAgent:            "HSA_STATUS_ERROR_INVALID_AGENT",
	StatusErrorInvalidRegion:           "HSA_STATUS_ERROR_INVALID_REGION",
	StatusErrorInvalidSignal:           "HSA_STATUS_ERROR_INVALID_SIGNAL",
	StatusErrorInvalidQueue:            "HSA_STATUS_ERROR_INVALID_QUEUE",
	StatusErrorOutOfResources:          "HSA_STATUS_ERROR_OUT_OF_RESOURCES",
	StatusErrorInvalidPacketFormat:     "HSA_STATUS_ERROR_INVALID_PACKET_FORMAT",
	StatusErrorResourceFree:            "HSA_STATUS_ERROR_RESOURCE_FREE",
	StatusErrorNotInitialized:          "HSA_STATUS_ERROR_NOT_INITIALIZED",
	StatusErrorRefcountOverflow:        "HSA_STATUS_ERROR_REFCOUNT_OVERFLOW",
	StatusErrorIncompatibleArguments:   "HSA_STATUS_ERROR_INCOMPATIBLE_ARGUMENTS",
	StatusErrorInvalidIndex:            "HSA_STATUS_ERROR_INVALID_INDEX",
	StatusErrorInvalidISA:              "HSA_STATUS_ERROR_INVALID_ISA",
	StatusErrorInvalidCodeObject:       "HSA_STATUS_ERROR_INVALID_CODE_OBJECT",
	StatusErrorInvalidExecutable:       "HSA_STATUS_ERROR_INVALID_EXECUTABLE",
	StatusErrorFrozenExecutable:        "HSA_STATUS_ERROR_FROZEN_EXECUTABLE",
	StatusErrorInvalidSymbolName:       "HSA_STATUS_ERROR_INVALID_SYMBOL_NAME",
	StatusErrorVariableAlreadyDefined:  "HSA_STATUS_ERROR_VARIABLE_ALREADY_DEFINED",
	StatusErrorVariableUndefined:       "HSA_STATUS_ERROR_VARIABLE_UNDEFINED",
	StatusErrorException:               "HSA_STATUS_ERROR_EXCEPTION",
	StatusErrorInvalidISAName:          "HSA_STATUS_ERROR_INVALID_ISA_NAME",
	StatusErrorInvalidCodeSymbol:       "HSA_STATUS_ERROR_INVALID_CODE_SYMBOL",
	StatusErrorInvalidExecutableSymbol: "HSA_STATUS_ERROR_INVALID_EXECUTABLE_SYMBOL",
	StatusErrorInvalidFile:             "HSA_STATUS_ERROR_INVALID_FILE",
	StatusErrorInvalidCodeObjectReader: "HSA_STATUS_ERROR_INVALID_CODE_OBJECT_READER",
	StatusErrorInvalidCache:            "HSA_STATUS_ERROR_INVALID_CACHE",
	StatusErrorInvalidWavefront:        "HSA_STATUS_ERROR_INVALID_WAVEFRONT",
	StatusErrorInvalidSignalGroup:      "HSA_STATUS_ERROR_INVALID_SIGNAL_GROUP",
	StatusErrorInvalidRuntimeState:     "HSA_STATUS_ERROR_INVALID_RUNTIME_STATE",
	StatusErrorFatal:                   "HSA_STATUS_ERROR_FATAL",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("HSA status code: 0x%x", uint32(s))
}

// OK reports whether s is SUCCESS or the INFO_BREAK early-stop sentinel.
func (s Status) OK() bool {
	return s == StatusSuccess || s == StatusInfoBreak
}
