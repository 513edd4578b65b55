package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/franz/voice-vault/internal/cache"
	"github.com/franz/voice-vault/internal/util"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and prune the local audio cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached generations, most recent first",
	RunE:  runCacheList,
}

var cacheSizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Show the total disk space used by cached audio",
	RunE:  runCacheSize,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear <type>",
	Short: "Delete all cached audio of a type (tts, sfx or music)",
	Args:  cobra.ExactArgs(1),
	RunE:  runCacheClear,
}

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one cached generation by its record ID",
	Args:  cobra.ExactArgs(1),
	RunE:  runCacheDelete,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheSizeCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheDeleteCmd)

	cacheListCmd.Flags().String("type", "tts", "Audio type to list (tts, sfx or music)")
}

// truncatePrompt keeps listings one line per record
func truncatePrompt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func runCacheList(cmd *cobra.Command, args []string) error {
	typeName, _ := cmd.Flags().GetString("type")

	audioType, err := cache.ParseAudioType(typeName)
	if err != nil {
		return err
	}

	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := svc.ListCachedAudio(audioType)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		util.WarnLog("No cached %s audio", audioType)
		return nil
	}

	// Fit the prompt column into whatever terminal width is left after
	// the fixed columns
	promptWidth := util.GetTerminalWidth() - 70
	if promptWidth < 20 {
		promptWidth = 20
	}

	for _, r := range records {
		fmt.Printf("%-36s  %6.1fs  %-20s  %s\n", r.ID, r.DurationSeconds, r.CreatedAt, truncatePrompt(r.Prompt, promptWidth))
	}

	util.InfoLog("%d records", len(records))
	return nil
}

func runCacheSize(cmd *cobra.Command, args []string) error {
	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	size, err := svc.CacheSize()
	if err != nil {
		return err
	}

	fmt.Println(humanize.Bytes(uint64(size)))
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	audioType, err := cache.ParseAudioType(args[0])
	if err != nil {
		return err
	}

	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	files, records, err := svc.ClearCache(audioType)
	if err != nil {
		return err
	}

	util.SuccessLog("Cleared %d files and %d records for %s", files, records, audioType)
	return nil
}

func runCacheDelete(cmd *cobra.Command, args []string) error {
	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := svc.DeleteCachedAudio(args[0]); err != nil {
		return err
	}

	util.SuccessLog("Deleted %s", args[0])
	return nil
}
