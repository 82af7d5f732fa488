package server

import (
	"context"
	"testing"
	"time"

	"github.com/example/sheetlease/logger"
	"github.com/example/sheetlease/testutil"
)

func TestTokenBucketRateLimiter_AllowWithinBurst(t *testing.T) {
	rl := NewTokenBucketRateLimiter(10, 3, time.Minute, logger.NewNoOpLogger())

	for i := range 3 {
		testutil.AssertTrue(t, rl.Allow(), "request %d within burst should pass", i)
	}
	testutil.AssertFalse(t, rl.Allow(), "request beyond burst should be rejected")
}

func TestTokenBucketRateLimiter_ZeroWindowDisablesLimiting(t *testing.T) {
	rl := NewTokenBucketRateLimiter(1, 1, 0, logger.NewNoOpLogger())

	for range 100 {
		testutil.AssertTrue(t, rl.Allow())
	}
}

func TestTokenBucketRateLimiter_NonPositiveBurstClampedToOne(t *testing.T) {
	rl := NewTokenBucketRateLimiter(10, 0, time.Minute, logger.NewNoOpLogger())

	testutil.AssertTrue(t, rl.Allow())
	testutil.AssertFalse(t, rl.Allow())
}

func TestTokenBucketRateLimiter_WaitHonorsContext(t *testing.T) {
	rl := NewTokenBucketRateLimiter(1, 1, time.Hour, logger.NewNoOpLogger())
	testutil.AssertTrue(t, rl.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	testutil.AssertError(t, rl.Wait(ctx))
}
