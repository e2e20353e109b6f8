package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/streed/smart-notes/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the provider response cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached provider response",
	RunE:  runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	if appConfig == nil || appConfig.CacheDirectory == "" {
		fmt.Println("Response caching is disabled.")
		return nil
	}

	store := responseCache
	if store == nil {
		opened, err := cache.Open(appConfig.CacheDirectory)
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		defer opened.Close()
		store = opened
	}

	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Printf("Cleared response cache at %s\n", appConfig.CacheDirectory)
	return nil
}
