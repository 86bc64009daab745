package hsa_test

import (
	"testing"

	"github.com/fxnlabs/hsa-runtime/fixtures"
	"github.com/fxnlabs/hsa-runtime/internal/gpu"
	"github.com/fxnlabs/hsa-runtime/internal/hsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntime_LoadExecutable(t *testing.T) {
	_, rt := openSoft(t, testProfile())
	agent := findGPU(t, rt)

	exe, err := rt.LoadExecutable(agent, fixtures.BuiltinKernels)
	require.NoError(t, err)
	defer exe.Destroy()
	assert.True(t, exe.Frozen())

	names, err := exe.SymbolNames(agent)
	require.NoError(t, err)
	assert.Equal(t, []string{"fill_u32.kd", "vector_add_f32.kd", "scale_f32.kd"}, names)

	sym, err := exe.KernelSymbol("vector_add_f32.kd", agent)
	require.NoError(t, err)
	name, err := sym.Name()
	require.NoError(t, err)
	assert.Equal(t, "vector_add_f32.kd", name)
	size, err := sym.KernargSegmentSize()
	require.NoError(t, err)
	assert.Equal(t, uint32(32), size)

	d, err := sym.Dispatch(0x1000, [3]uint16{64, 1, 1}, [3]uint32{128, 1, 1})
	require.NoError(t, err)
	assert.NotZero(t, d.KernelObject)
	assert.Equal(t, hsa.Address(0x1000), d.KernargAddress)
	assert.Equal(t, [3]uint32{128, 1, 1}, d.GridSize)
}

func TestExecutable_KernelSymbolErrors(t *testing.T) {
	_, rt := openSoft(t, testProfile())
	agent := findGPU(t, rt)
	exe, err := rt.LoadExecutable(agent, fixtures.BuiltinKernels)
	require.NoError(t, err)
	defer exe.Destroy()

	_, err = exe.KernelSymbol("", agent)
	assert.ErrorIs(t, err, hsa.ErrInvalidArgument)
	_, err = exe.KernelSymbol("bad\x00name", agent)
	assert.ErrorIs(t, err, hsa.ErrInvalidArgument)

	_, err = exe.KernelSymbol("missing.kd", agent)
	require.ErrorIs(t, err, hsa.ErrKernelNotFound)
	var herr *hsa.Error
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, hsa.StatusErrorInvalidSymbolName, herr.Status)
	assert.Contains(t, err.Error(), "missing.kd")
}

func TestExecutable_LoadErrors(t *testing.T) {
	_, rt := openSoft(t, testProfile())
	agent := findGPU(t, rt)

	t.Run("empty code object", func(t *testing.T) {
		exe, err := rt.NewExecutable()
		require.NoError(t, err)
		defer exe.Destroy()
		assert.ErrorIs(t, exe.LoadCodeObject(agent, nil), hsa.ErrInvalidArgument)
	})

	t.Run("incompatible code object carries a hint", func(t *testing.T) {
		blob, err := gpu.CodeObject{ISA: "gfx90a", Kernels: []gpu.CodeObjectKernel{{Symbol: "a.kd", Kernel: "fill_u32"}}}.Marshal()
		require.NoError(t, err)
		_, err = rt.LoadExecutable(agent, blob)
		require.ErrorIs(t, err, hsa.ErrCodeObjectLoad)
		assert.Contains(t, err.Error(), "does not match the agent")
	})

	t.Run("corrupt code object", func(t *testing.T) {
		_, err := rt.LoadExecutable(agent, []byte("isa: [soft-gfx"))
		require.ErrorIs(t, err, hsa.ErrCodeObjectLoad)
		assert.Contains(t, err.Error(), "corrupted")
	})

	t.Run("unresolved kernel fails the freeze", func(t *testing.T) {
		blob, err := gpu.CodeObject{ISA: gpu.SoftISA, Kernels: []gpu.CodeObjectKernel{{Symbol: "x.kd", Kernel: "nope"}}}.Marshal()
		require.NoError(t, err)
		_, err = rt.LoadExecutable(agent, blob)
		assert.ErrorIs(t, err, hsa.ErrExecutableFreeze)
	})
}

func TestExecutable_Destroy(t *testing.T) {
	_, rt := openSoft(t, testProfile())
	agent := findGPU(t, rt)
	exe, err := rt.LoadExecutable(agent, fixtures.BuiltinKernels)
	require.NoError(t, err)

	destroyed := &hsa.Error{Kind: hsa.KindInvalidExecutable}
	require.NoError(t, exe.Destroy())
	assert.NoError(t, exe.Destroy())
	assert.Zero(t, exe.Handle())

	_, err = exe.KernelSymbol("fill_u32.kd", agent)
	assert.ErrorIs(t, err, destroyed)
	assert.ErrorIs(t, exe.Freeze(), destroyed)
	for _, err := range exe.Symbols(agent) {
		assert.ErrorIs(t, err, destroyed)
	}
}
