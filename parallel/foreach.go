// Package parallel runs indexed work on a bounded number of goroutines.
package parallel

import "sync"
import "sync/atomic"

// ForEach calls body for every index in [0, length) on at most limit workers.
// Once a call fails no new indices are started, and the error of the lowest
// failed index is returned.
func ForEach(length, limit int, body func(i int) error) error {
	if length <= 0 {
		return nil
	}
	if limit <= 0 {
		limit = 1
	}
	if limit > length {
		limit = length
	}

	var next int64 = -1
	var failed atomic.Bool
	errs := make([]error, length)

	var wg sync.WaitGroup
	wg.Add(limit)
	for w := 0; w < limit; w++ {
		go func() {
			defer wg.Done()
			for !failed.Load() {
				i := int(atomic.AddInt64(&next, 1))
				if i >= length {
					return
				}
				if errs[i] = body(i); errs[i] != nil {
					failed.Store(true)
				}
			}
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
