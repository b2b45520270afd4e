package scryptenc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParams(t *testing.T) {
	params := DefaultParams()
	assert.Equal(t, uint8(17), params.LogN())
	assert.Equal(t, uint64(131072), params.N())
	assert.Equal(t, uint32(8), params.R())
	assert.Equal(t, uint32(1), params.P())
	assert.Equal(t, "N = 131072; r = 8; p = 1;", params.String())

	_, err := ValidateParams(params.LogN(), params.R(), params.P(), DefaultMaxMemory)
	assert.NoError(t, err, "Default params should fit under the default ceiling")
}

func TestNewParams(t *testing.T) {
	tests := map[string]struct {
		logN    uint8
		r, p    uint32
		wantErr error
	}{
		"minimal":         {1, 1, 1, nil},
		"typical":         {10, 8, 1, nil},
		"zero logN":       {0, 8, 1, ErrInvalidLogN},
		"logN too large":  {64, 8, 1, ErrInvalidLogN},
		"zero r":          {10, 0, 1, ErrInvalidR},
		"zero p":          {10, 8, 0, ErrInvalidP},
		"r*p at 2^30":     {1, 1 << 15, 1 << 15, ErrParamsTooLarge},
		"r*p over 2^30":   {1, 1 << 20, 1 << 20, ErrParamsTooLarge},
		"unaddressable":   {63, 1, 1, ErrParamsTooLarge},
		"r*p under 2^30":  {1, 1, 1<<30 - 1, nil},
		"zero everything": {0, 0, 0, ErrInvalidLogN},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			params, err := NewParams(tc.logN, tc.r, tc.p)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.ErrorIs(t, err, ErrParams)
				assert.Equal(t, Params{}, params)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.logN, params.LogN())
			assert.Equal(t, tc.r, params.R())
			assert.Equal(t, tc.p, params.P())
		})
	}
}

func TestValidateParams_Ceiling(t *testing.T) {
	// 128 * 8 * 2^10 = 1 MiB
	_, err := ValidateParams(10, 8, 1, 1<<20)
	assert.NoError(t, err)

	_, err = ValidateParams(11, 8, 1, 1<<20)
	assert.ErrorIs(t, err, ErrParamsTooLarge)

	// 128 * r * p dominates here.
	_, err = ValidateParams(1, 8, 1025, 1<<20)
	assert.ErrorIs(t, err, ErrParamsTooLarge)

	_, err = ValidateParams(40, 8, 1, DefaultMaxMemory)
	assert.ErrorIs(t, err, ErrParamsTooLarge)

	_, err = ValidateParams(20, 8, 1, 0)
	assert.NoError(t, err, "A zero ceiling should disable the memory check")
}

func TestParams_Costs(t *testing.T) {
	params, err := NewParams(10, 8, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(128*8*1024+128*8*2+256*8), params.Memory())
	assert.Equal(t, uint64(4*1024*8*2), params.Ops())
}
