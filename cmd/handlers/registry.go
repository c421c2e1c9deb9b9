package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"postforge/internal/config"
	"postforge/internal/logger"
	"postforge/internal/registry"
)

// NewRegistryCmd creates the publication registry management command
func NewRegistryCmd() *cobra.Command {
	registryCmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect and rebuild the publication registry",
		Long: `The registry tracks published slugs, covered locations, and consumed
cover photos. Sync rebuilds it from the content trees; stats shows what
it currently holds.`,
	}

	registryCmd.AddCommand(newRegistrySyncCmd())
	registryCmd.AddCommand(newRegistryStatsCmd())

	return registryCmd
}

func newRegistrySyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Rebuild the registry from the content trees",
		Long: `Scan both content trees for generated posts and rebuild published
identity from their frontmatter. The primary tree wins slug collisions;
consumed photos are unioned with the existing snapshot.`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := runRegistrySync(); err != nil {
				logger.Error("Registry sync failed", err)
				os.Exit(1)
			}
		},
	}
}

func newRegistryStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show registry contents",
		Run: func(cmd *cobra.Command, args []string) {
			if err := runRegistryStats(); err != nil {
				logger.Error("Failed to read registry", err)
				os.Exit(1)
			}
		},
	}
}

func runRegistrySync() error {
	cfg := config.Get()

	reg, err := registry.Open(cfg.RegistryPath())
	if err != nil {
		return fmt.Errorf("failed to open registry: %w", err)
	}

	fmt.Println("🔄 Syncing registry from content trees...")
	if err := reg.Sync(contentTrees(cfg)); err != nil {
		return err
	}

	stats := reg.GetStats()
	fmt.Printf("✅ Registry synced: %d published posts, %d photos consumed\n",
		stats.Published, stats.UsedPhotos)
	return nil
}

func runRegistryStats() error {
	cfg := config.Get()

	reg, err := registry.Open(cfg.RegistryPath())
	if err != nil {
		return fmt.Errorf("failed to open registry: %w", err)
	}

	stats := reg.GetStats()
	fmt.Println("📒 Registry Statistics")
	fmt.Println("=====================")
	fmt.Printf("📄 Published posts:  %d\n", stats.Published)
	fmt.Printf("📷 Photos consumed:  %d\n", stats.UsedPhotos)
	fmt.Printf("🧭 Topics tracked:   %d\n", stats.Topics)
	if !stats.SyncedAt.IsZero() {
		fmt.Printf("📅 Last synced:      %s\n", stats.SyncedAt.Format("2006-01-02 15:04:05"))
	}

	records := reg.Published()
	if len(records) > 0 {
		fmt.Println("\nPublished posts:")
		for _, record := range records {
			location := record.Location.Name
			if record.Location.Qualifier != "" {
				location = fmt.Sprintf("%s, %s", location, record.Location.Qualifier)
			}
			fmt.Printf("  %s (%s, tree: %s)\n", record.Slug, location, record.SourceTree)
		}
	}
	return nil
}
