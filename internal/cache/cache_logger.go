package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// BatchInvalidate invalidates multiple patterns in batch
func BatchInvalidate(ctx context.Context, helper *CacheHelper, patterns []string) error {
	var lastErr error
	for _, pattern := range patterns {
		if err := helper.InvalidatePattern(ctx, pattern); err != nil {
			lastErr = err
			slog.ErrorContext(ctx, "Failed to invalidate pattern in batch",
				"error", err,
				"pattern", pattern)
		}
	}
	return lastErr
}

// InvalidateMenteeCache invalidates all mentee-related caches using pipeline
func InvalidateMenteeCache(ctx context.Context, cm *CacheManager, accountID string) {
	// Delete specific keys using single call
	SafeDelete(ctx, cm.Mentee,
		fmt.Sprintf("id:%s", accountID),
		fmt.Sprintf("details:%s", accountID))

	// Invalidate patterns
	SafeInvalidatePattern(ctx, cm.Mentee, "mentor:*")
	SafeInvalidatePattern(ctx, cm.Mentee, "list:*")
	SafeInvalidatePattern(ctx, cm.Account, fmt.Sprintf("id:%s*", accountID))
}

// InvalidateReportCache invalidates all report-related caches
func InvalidateReportCache(ctx context.Context, cm *CacheManager, reportID uint, authorID string) {
	SafeDelete(ctx, cm.Report, fmt.Sprintf("id:%d", reportID))
	SafeInvalidatePattern(ctx, cm.Report, fmt.Sprintf("author:%s:*", authorID))
	SafeInvalidatePattern(ctx, cm.Report, "recipient:*")
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("report:%d:*", reportID))
}
