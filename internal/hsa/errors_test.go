package hsa_test

import (
	"errors"
	"testing"

	"github.com/fxnlabs/hsa-runtime/internal/hsa"
	mocks "github.com/fxnlabs/hsa-runtime/mocks/hsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpen_InitFailure(t *testing.T) {
	drv := mocks.NewMockDriver(t)
	drv.On("Init").Return(hsa.StatusErrorOutOfResources)
	drv.On("StatusString", hsa.StatusErrorOutOfResources).Return("insufficient resources")

	_, err := hsa.Open(drv, zap.NewNop())
	require.ErrorIs(t, err, hsa.ErrInitialization)
	assert.False(t, errors.Is(err, hsa.ErrOutOfResources), "wrapping relabels the kind")
	assert.False(t, hsa.IsFatal(err))

	var herr *hsa.Error
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, hsa.StatusErrorOutOfResources, herr.Status)
	assert.Contains(t, err.Error(), "initialize runtime: insufficient resources")
}

func TestOpen_FatalStaysFatal(t *testing.T) {
	drv := mocks.NewMockDriver(t)
	drv.On("Init").Return(hsa.StatusErrorFatal)
	drv.On("StatusString", hsa.StatusErrorFatal).Return("")

	_, err := hsa.Open(drv, nil)
	require.Error(t, err)
	assert.True(t, hsa.IsFatal(err))
	assert.False(t, errors.Is(err, hsa.ErrInitialization))
	// An empty driver description falls back to the status name.
	assert.Contains(t, err.Error(), "HSA_STATUS_ERROR_FATAL")
}

func TestRuntime_CloseFailureIsSticky(t *testing.T) {
	drv := mocks.NewMockDriver(t)
	drv.On("Init").Return(hsa.StatusSuccess)
	drv.On("ShutDown").Return(hsa.StatusErrorNotInitialized).Once()
	drv.On("StatusString", hsa.StatusErrorNotInitialized).Return("not initialized")

	rt, err := hsa.Open(drv, zap.NewNop())
	require.NoError(t, err)

	first := rt.Close()
	require.ErrorIs(t, first, hsa.ErrShutdown)
	assert.Same(t, first, rt.Close())
	drv.AssertNumberOfCalls(t, "ShutDown", 1)
}

func TestFindGPU_DriverErrors(t *testing.T) {
	t.Run("walk fails", func(t *testing.T) {
		drv := mocks.NewMockDriver(t)
		drv.On("Init").Return(hsa.StatusSuccess)
		drv.On("IterateAgents", mock.Anything).Return(hsa.StatusErrorNotInitialized)
		drv.On("StatusString", hsa.StatusErrorNotInitialized).Return("not initialized")

		rt, err := hsa.Open(drv, zap.NewNop())
		require.NoError(t, err)
		_, err = rt.FindGPU()
		assert.ErrorIs(t, err, hsa.ErrNotInitialized)
		assert.Contains(t, err.Error(), "iterate agents")
	})

	t.Run("only cpu agents", func(t *testing.T) {
		drv := mocks.NewMockDriver(t)
		drv.On("Init").Return(hsa.StatusSuccess)
		drv.On("IterateAgents", mock.Anything).Return(func(visit func(hsa.AgentHandle) hsa.Status) hsa.Status {
			for _, h := range []hsa.AgentHandle{11, 12} {
				if s := visit(h); s != hsa.StatusSuccess {
					return s
				}
			}
			return hsa.StatusSuccess
		})
		drv.On("AgentUint32", mock.Anything, hsa.AgentInfoDevice).Return(uint32(hsa.DeviceTypeCPU), hsa.StatusSuccess)

		rt, err := hsa.Open(drv, zap.NewNop())
		require.NoError(t, err)
		_, err = rt.FindGPU()
		assert.ErrorIs(t, err, hsa.ErrAgentNotFound)
		drv.AssertNumberOfCalls(t, "AgentUint32", 2)
	})
}

func TestError_Formatting(t *testing.T) {
	assert.Equal(t, "kernel not found", hsa.ErrKernelNotFound.Error())
	assert.Equal(t, "HSA error HSA_STATUS_ERROR_FATAL: boom",
		(&hsa.Error{Kind: hsa.KindStatus, Status: hsa.StatusErrorFatal, Detail: "boom"}).Error())
	assert.Equal(t, "invalid argument: size is zero",
		(&hsa.Error{Kind: hsa.KindInvalidArgument, Detail: "size is zero"}).Error())
	assert.Equal(t, "Kind(99)", hsa.Kind(99).String())
	assert.Equal(t, "HSA status code: 0xdead", hsa.Status(0xdead).String())
}
