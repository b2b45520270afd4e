package tune

import (
	"context"
	"time"

	"github.com/saylorsolutions/scryptenc/pkg/kdf"
)

const (
	perfLogN    = 7
	perfOps     = 4 * (1 << perfLogN)
	perfMinTime = 100 * time.Millisecond
)

// CPUPerf measures how many Salsa20/8 cores per second this machine computes, by deriving small keys for at least
// 100ms.
func CPUPerf(ctx context.Context) (float64, error) {
	var (
		salt  [8]byte
		calls uint64
		start = time.Now()
	)
	for {
		if _, err := kdf.Key(ctx, nil, salt[:], perfLogN, 1, 1, 16); err != nil {
			return 0, err
		}
		calls++
		if elapsed := time.Since(start); elapsed >= perfMinTime {
			return float64(calls*perfOps) / elapsed.Seconds(), nil
		}
	}
}
