package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the panel cache",
	Long: `Manage cached dashboard panels.

Entries carry their own expiry envelope, so an entry can sit in the backend
after its TTL has passed until a read or a cleanup removes it. Stats report
both states separately.`,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Long:  `Display entry counts for the configured backend, split by validity state.`,
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all cached panels",
	Long:  `Remove every cached panel in the configured namespace. The next dashboard load fetches fresh data.`,
	RunE:  runCacheClear,
}

var cacheCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove expired cache entries",
	Long:  `Remove entries whose TTL has already passed. Valid entries are left untouched.`,
	RunE:  runCacheCleanup,
}

var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate <key>",
	Short: "Remove a single cache entry",
	Long: `Remove one cached panel by its unprefixed key, for example quote:SPY or
sentiment. The namespace prefix is applied automatically.`,
	Args: cobra.ExactArgs(1),
	RunE: runCacheInvalidate,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheCleanupCmd)
	cacheCmd.AddCommand(cacheInvalidateCmd)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	application, err := openApplication()
	if err != nil {
		return err
	}
	defer func() { _ = application.Shutdown() }()

	stats := application.Cache().Stats(context.Background())

	fmt.Printf("Cache Statistics:\n")
	fmt.Printf("  Total entries:   %d\n", stats.TotalEntries)
	fmt.Printf("  Valid entries:   %d\n", stats.ValidEntries)
	fmt.Printf("  Expired entries: %d\n", stats.ExpiredEntries)

	if stats.TotalEntries > 0 {
		fmt.Printf("  Valid share:     %.1f%%\n", float64(stats.ValidEntries)/float64(stats.TotalEntries)*100)
	}

	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	application, err := openApplication()
	if err != nil {
		return err
	}
	defer func() { _ = application.Shutdown() }()

	c := application.Cache()
	ctx := context.Background()

	if c.Stats(ctx).TotalEntries == 0 {
		fmt.Println("Cache is already empty")
		return nil
	}

	removed := c.ClearAll(ctx)
	fmt.Printf("Cleared %d cache entries\n", removed)
	return nil
}

func runCacheCleanup(cmd *cobra.Command, args []string) error {
	application, err := openApplication()
	if err != nil {
		return err
	}
	defer func() { _ = application.Shutdown() }()

	removed := application.Cache().Cleanup(context.Background())
	if removed > 0 {
		fmt.Printf("Removed %d expired cache entries\n", removed)
	} else {
		fmt.Println("No expired entries to clean up")
	}

	return nil
}

func runCacheInvalidate(cmd *cobra.Command, args []string) error {
	application, err := openApplication()
	if err != nil {
		return err
	}
	defer func() { _ = application.Shutdown() }()

	key := args[0]
	application.Cache().Remove(context.Background(), key)

	fmt.Printf("Invalidated cache key %q\n", key)
	return nil
}
