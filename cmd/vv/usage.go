package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/franz/voice-vault/internal/util"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show subscription quota and capabilities",
	RunE:  runUsage,
}

func init() {
	rootCmd.AddCommand(usageCmd)
}

func runUsage(cmd *cobra.Command, args []string) error {
	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	usage, err := svc.GetUsage(context.Background())
	if err != nil {
		return err
	}

	used := float64(0)
	if usage.CharacterLimit > 0 {
		used = float64(usage.CharacterCount) / float64(usage.CharacterLimit) * 100
	}

	util.InfoLog("Characters: %d / %d (%.1f%% used)", usage.CharacterCount, usage.CharacterLimit, used)
	util.InfoLog("Voice slots: %d (professional: %d)", usage.VoiceLimit, usage.ProfessionalVoiceLimit)

	if usage.NextCharacterCountResetUnix > 0 {
		reset := time.Unix(usage.NextCharacterCountResetUnix, 0)
		util.InfoLog("Quota resets %s", humanize.Time(reset))
	}

	cloning := "no"
	if usage.CanUseInstantVoiceCloning {
		cloning = "yes"
	}
	fmt.Printf("Instant voice cloning: %s\n", cloning)

	return nil
}
