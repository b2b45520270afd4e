// Package tune chooses scrypt cost parameters that fit within memory and time limits, and checks that the parameters
// of an existing container do too.
//
// Parameters are picked from a measurement of how many Salsa20/8 cores this machine computes per second, and the
// share of total memory the caller is willing to spend.
//
//	limits := tune.EncryptDefaults()
//	perf, err := tune.CPUPerf(ctx)
//	if err != nil {
//		return err
//	}
//	params := tune.Pick(limits.MemoryLimit(tune.SystemMemory()), perf, limits.MaxTime)
package tune
