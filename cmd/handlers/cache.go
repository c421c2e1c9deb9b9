package handlers

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"postforge/internal/config"
	"postforge/internal/logger"
	"postforge/internal/store"
)

// NewCacheCmd creates the post archive management command
func NewCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the generated post archive",
		Long:  `Inspect, clean, and manage the SQLite archive of generated posts and scoring attempts.`,
	}

	// Add subcommands
	cacheCmd.AddCommand(newCacheStatsCmd())
	cacheCmd.AddCommand(newCacheCleanCmd())
	cacheCmd.AddCommand(newCacheClearCmd())

	return cacheCmd
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show archive statistics and storage information",
		Long:  `Display statistics about the archive including number of stored posts, recorded attempts, and storage usage.`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := runCacheStats(); err != nil {
				logger.Error("Failed to get cache stats", err)
				os.Exit(1)
			}
		},
	}
}

func newCacheCleanCmd() *cobra.Command {
	cleanCmd := &cobra.Command{
		Use:   "clean",
		Short: "Prune old scoring attempts from the archive",
		Long:  `Remove scoring attempt records older than the given age. Archived posts are kept; only the per-attempt audit trail is pruned.`,
		Run: func(cmd *cobra.Command, args []string) {
			olderThan, _ := cmd.Flags().GetDuration("older-than")
			if err := runCacheClean(olderThan); err != nil {
				logger.Error("Failed to clean cache", err)
				os.Exit(1)
			}
		},
	}

	cleanCmd.Flags().Duration("older-than", 30*24*time.Hour, "Remove attempts older than this age")
	return cleanCmd
}

func newCacheClearCmd() *cobra.Command {
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the archive (removes all stored posts and attempts)",
		Long:  `Remove all archived posts and scoring attempts from the SQLite database. The registry and published files are untouched.`,
		Run: func(cmd *cobra.Command, args []string) {
			confirm, _ := cmd.Flags().GetBool("confirm")
			if err := runCacheClear(confirm); err != nil {
				logger.Error("Failed to clear cache", err)
				os.Exit(1)
			}
		},
	}

	clearCmd.Flags().Bool("confirm", false, "Skip confirmation prompt")
	return clearCmd
}

func runCacheStats() error {
	fmt.Println("📊 Archive Statistics")
	fmt.Println("====================")

	cacheStore, err := store.NewStore(config.Get().Cache.Directory)
	if err != nil {
		return fmt.Errorf("failed to initialize archive store: %w", err)
	}
	defer func() {
		if err := cacheStore.Close(); err != nil {
			logger.Error("Failed to close archive store", err)
		}
	}()

	stats, err := cacheStore.GetCacheStats()
	if err != nil {
		return fmt.Errorf("failed to get archive statistics: %w", err)
	}

	fmt.Printf("📄 Posts archived: %d\n", stats.PostCount)
	fmt.Printf("🎯 Attempts recorded: %d\n", stats.AttemptCount)
	fmt.Printf("💾 Archive size: %.2f MB\n", float64(stats.CacheSize)/1024/1024)
	fmt.Printf("📅 Last updated: %s\n", stats.LastUpdated.Format("2006-01-02 15:04:05"))

	return nil
}

func runCacheClean(olderThan time.Duration) error {
	cacheStore, err := store.NewStore(config.Get().Cache.Directory)
	if err != nil {
		return fmt.Errorf("failed to initialize archive store: %w", err)
	}
	defer func() {
		if err := cacheStore.Close(); err != nil {
			logger.Error("Failed to close archive store", err)
		}
	}()

	if err := cacheStore.CleanupOldAttempts(olderThan); err != nil {
		return fmt.Errorf("failed to clean old attempts: %w", err)
	}

	stats, err := cacheStore.GetCacheStats()
	if err != nil {
		return fmt.Errorf("failed to get archive statistics: %w", err)
	}
	fmt.Printf("✅ Pruned attempts older than %s; %d attempts remain\n", olderThan, stats.AttemptCount)
	return nil
}

func runCacheClear(confirm bool) error {
	if !confirm {
		fmt.Print("⚠️  This will remove all archived posts and attempts. Continue? [y/N]: ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" && response != "yes" {
			fmt.Println("Archive clear cancelled")
			return nil
		}
	}

	fmt.Println("🗑️  Clearing archive...")

	cacheStore, err := store.NewStore(config.Get().Cache.Directory)
	if err != nil {
		return fmt.Errorf("failed to initialize archive store: %w", err)
	}
	defer func() {
		if err := cacheStore.Close(); err != nil {
			logger.Error("Failed to close archive store", err)
		}
	}()

	if err := cacheStore.ClearCache(); err != nil {
		return fmt.Errorf("failed to clear archive: %w", err)
	}

	fmt.Println("✅ Archive cleared successfully")
	return nil
}
