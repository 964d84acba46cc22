package utils

import (
	"context"
	"fmt"
	"time"
)

// Retry 执行 fn 直到成功，最多 attempts 次。
// backoff=true 时间隔按 1x,2x,4x... 递增，ctx 结束时立即返回。
func Retry(ctx context.Context, attempts int, delay time.Duration, backoff bool, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		wait := delay
		if backoff {
			wait = delay * time.Duration(1<<i)
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("retry canceled after %d attempts: %w", i+1, err)
		case <-t.C:
		}
	}
	return fmt.Errorf("after %d attempts, last error: %w", attempts, err)
}
