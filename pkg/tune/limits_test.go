package tune

import (
	"context"
	"testing"
	"time"

	"github.com/saylorsolutions/scryptenc/pkg/scryptenc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimits_MemoryLimit(t *testing.T) {
	const gib = 1 << 30
	tests := map[string]struct {
		limits Limits
		total  uint64
		want   uint64
	}{
		"encrypt defaults":     {EncryptDefaults(), 8 * gib, gib},
		"decrypt defaults":     {DecryptDefaults(), 8 * gib, 4 * gib},
		"fraction clamped":     {Limits{MaxMemoryFraction: 0.9}, 8 * gib, 4 * gib},
		"zero fraction":        {Limits{}, 8 * gib, 4 * gib},
		"capped by max":        {Limits{MaxMemory: 64 << 20, MaxMemoryFraction: 0.5}, 8 * gib, 64 << 20},
		"floored":              {Limits{MaxMemory: 1024, MaxMemoryFraction: 0.5}, 8 * gib, MinMemory},
		"unknown total":        {EncryptDefaults(), 0, FallbackMemory / 8},
		"unknown total w/ max": {Limits{MaxMemory: 256 << 20, MaxMemoryFraction: 0.5}, 0, 128 << 20},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.limits.MemoryLimit(tc.total))
		})
	}
}

func TestLimits_Validate(t *testing.T) {
	assert.NoError(t, EncryptDefaults().Validate())
	assert.NoError(t, DecryptDefaults().Validate())
	assert.NoError(t, Limits{MaxMemory: MinMemory, MaxMemoryFraction: 0.5, MaxTime: time.Second}.Validate())

	tests := map[string]struct {
		limits  Limits
		wantErr error
	}{
		"memory under 1 MiB": {Limits{MaxMemory: 1024, MaxMemoryFraction: 0.5, MaxTime: time.Second}, ErrMemoryTooSmall},
		"zero fraction":      {Limits{MaxMemoryFraction: 0, MaxTime: time.Second}, ErrInvalidFraction},
		"negative fraction":  {Limits{MaxMemoryFraction: -0.1, MaxTime: time.Second}, ErrInvalidFraction},
		"fraction over half": {Limits{MaxMemoryFraction: 0.51, MaxTime: time.Second}, ErrInvalidFraction},
		"zero time":          {Limits{MaxMemoryFraction: 0.5}, ErrInvalidTime},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := tc.limits.Validate()
			assert.ErrorIs(t, err, tc.wantErr)
			assert.ErrorIs(t, err, ErrInvalidLimits)
		})
	}
}

func TestPick_TimeBound(t *testing.T) {
	// 1M ops per second for 1 second with plenty of memory.
	params := Pick(1<<30, 1<<20, time.Second)
	assert.Equal(t, uint32(8), params.R())
	assert.Equal(t, uint32(1), params.P())
	// maxN = 2^20 / 32 = 2^15, so the first N over 2^14 is 2^15.
	assert.Equal(t, uint8(15), params.LogN())
	assert.NoError(t, Check(params, 1<<30, 1<<20, time.Second))
}

func TestPick_MemoryBound(t *testing.T) {
	// 16 MiB of memory and lots of time.
	params := Pick(16<<20, 1<<30, 10*time.Second)
	assert.Equal(t, uint32(8), params.R())
	// maxN = 2^24 / 1024 = 2^14, so N = 2^14.
	assert.Equal(t, uint8(14), params.LogN())
	assert.Greater(t, params.P(), uint32(1))
	assert.NoError(t, Check(params, 16<<20, 1<<30, 10*time.Second))
}

func TestPick_Minimums(t *testing.T) {
	params := Pick(0, 0, 0)
	assert.Equal(t, uint8(1), params.LogN())
	assert.LessOrEqual(t, params.Ops(), uint64(minOps))

	params = Pick(MinMemory, 0, 0)
	assert.Equal(t, uint8(10), params.LogN())
	assert.Equal(t, uint32(1), params.P())
	assert.LessOrEqual(t, params.Ops(), uint64(minOps))
}

func TestCheck(t *testing.T) {
	params, err := scryptenc.NewParams(20, 8, 1)
	require.NoError(t, err)

	assert.NoError(t, Check(params, 1<<30, 1<<30, time.Second))
	assert.ErrorIs(t, Check(params, 1<<20, 1<<30, time.Second), ErrTooMuchMemory)
	assert.ErrorIs(t, Check(params, 1<<30, 1<<20, time.Second), ErrTooMuchTime)

	huge, err := scryptenc.NewParams(50, 8, 1)
	require.NoError(t, err)
	assert.ErrorIs(t, Check(huge, 1<<59, 1<<62, time.Hour), ErrTooMuchMemory)
}

func TestEstimate(t *testing.T) {
	params, err := scryptenc.NewParams(10, 8, 1)
	require.NoError(t, err)

	mem, dur := Estimate(params, float64(params.Ops()))
	assert.Equal(t, params.Memory(), mem)
	assert.Equal(t, time.Second, dur)

	_, dur = Estimate(params, 0)
	assert.Zero(t, dur)
}

func TestCPUPerf(t *testing.T) {
	perf, err := CPUPerf(context.Background())
	require.NoError(t, err)
	assert.Greater(t, perf, float64(0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = CPUPerf(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTotalMemory(t *testing.T) {
	total, ok := TotalMemory()
	if !ok {
		t.Skip("Total memory isn't available on this platform")
	}
	assert.Greater(t, total, uint64(0))
	assert.Equal(t, total, SystemMemory())
}
