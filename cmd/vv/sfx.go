package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/franz/voice-vault/internal/elevenlabs"
	"github.com/franz/voice-vault/internal/util"
)

var sfxCmd = &cobra.Command{
	Use:   "sfx <description>...",
	Short: "Generate a sound effect and cache the result",
	Long: `Generate a sound effect from a text description and store the audio
in the local cache. The generated file's path is printed on stdout.

  vv sfx --duration 2 "heavy wooden door slamming shut"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSFX,
}

func init() {
	rootCmd.AddCommand(sfxCmd)

	sfxCmd.Flags().Float64("duration", 0, "Length in seconds (default 3)")
	sfxCmd.Flags().Float64("influence", 0, "How literally to follow the prompt (0..1, default 0.5)")
}

func runSFX(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	duration, _ := cmd.Flags().GetFloat64("duration")
	influence, _ := cmd.Flags().GetFloat64("influence")

	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	record, err := svc.GenerateSoundEffect(context.Background(), elevenlabs.SFXRequest{
		Text:            text,
		DurationSeconds: duration,
		PromptInfluence: influence,
	})
	if err != nil {
		return err
	}

	util.SuccessLog("Generated %.1fs sound effect (%s)", record.DurationSeconds, record.ID)
	fmt.Println(record.LocalPath)
	return nil
}
