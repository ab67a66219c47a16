package sandbox_test

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/programme-lv/coderun/internal/sandbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextAccessors(t *testing.T) {
	ctx := sandbox.NewContext("coderunner", sandbox.Limits{
		CPUTimeSec: 5,
		MemoryMB:   100000,
		DiskMB:     10,
		MaxProcs:   10,
	})

	assert.Equal(t, "coderunner", ctx.RunAs())
	assert.Equal(t, 5, ctx.CPUTimeSec())
	assert.Equal(t, int64(100000000), ctx.MemoryKB())
	assert.Equal(t, int64(10000000), ctx.DiskBytes())
	assert.Equal(t, 10, ctx.MaxProcs())
}

func TestLimitsValidate(t *testing.T) {
	require.NoError(t, sandbox.DefaultLimits().Validate())
	require.NoError(t, sandbox.Limits{CPUTimeSec: 1, MaxProcs: 1}.Validate())

	bad := []sandbox.Limits{
		{CPUTimeSec: 0, MaxProcs: 1},
		{CPUTimeSec: 1, MaxProcs: 0},
		{CPUTimeSec: 1, MaxProcs: 1, MemoryMB: -1},
		{CPUTimeSec: 1, MaxProcs: 1, DiskMB: -1},
	}
	for _, l := range bad {
		assert.Error(t, l.Validate(), "%+v", l)
	}
}

func TestEnvErrorIsDetectedThroughWrapping(t *testing.T) {
	err := sandbox.NewEnvError("rename source", os.ErrPermission)
	wrapped := fmt.Errorf("compile: %w", err)

	assert.True(t, sandbox.IsEnvError(wrapped))
	assert.True(t, errors.Is(wrapped, os.ErrPermission))
	assert.False(t, sandbox.IsEnvError(errors.New("plain")))
	assert.Contains(t, err.Error(), "rename source")
}
