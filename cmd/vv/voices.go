package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dhowden/tag"
	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/franz/voice-vault/internal/elevenlabs"
	"github.com/franz/voice-vault/internal/util"
)

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List, clone and delete voices",
}

var voicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the account's voices",
	Long: `List the voices available on the account.

By default this fetches the live list from the API and refreshes the
local mirror. With --cached the locally mirrored profiles are shown
without any network access.`,
	RunE: runVoicesList,
}

var voicesCloneCmd = &cobra.Command{
	Use:   "clone --name <name> <sample>...",
	Short: "Create a cloned voice from local audio samples",
	Long: `Create an instant voice clone from one or more local audio samples.

Each sample file is inspected before upload; obviously broken files are
rejected locally instead of wasting quota on a failed clone.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVoicesClone,
}

var voicesDeleteCmd = &cobra.Command{
	Use:   "delete <voice-id>",
	Short: "Delete a voice from the account and the local mirror",
	Args:  cobra.ExactArgs(1),
	RunE:  runVoicesDelete,
}

func init() {
	rootCmd.AddCommand(voicesCmd)
	voicesCmd.AddCommand(voicesListCmd)
	voicesCmd.AddCommand(voicesCloneCmd)
	voicesCmd.AddCommand(voicesDeleteCmd)

	voicesListCmd.Flags().Bool("cached", false, "List from the local mirror without network access")

	voicesCloneCmd.Flags().String("name", "", "Name for the new voice (required)")
	voicesCloneCmd.Flags().String("description", "", "Description for the new voice")
	voicesCloneCmd.MarkFlagRequired("name")
}

func runVoicesList(cmd *cobra.Command, args []string) error {
	cached, _ := cmd.Flags().GetBool("cached")

	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	var voices []elevenlabs.VoiceProfile
	if cached {
		voices, err = svc.ListCachedVoices()
	} else {
		voices, err = svc.ListVoices(context.Background())
	}
	if err != nil {
		return err
	}

	if len(voices) == 0 {
		util.WarnLog("No voices found")
		return nil
	}

	for _, v := range voices {
		fmt.Printf("%-24s  %-10s  %s\n", v.VoiceID, v.Category, v.Name)
		if v.Description != "" {
			fmt.Printf("%-24s  %-10s  %s\n", "", "", v.Description)
		}
	}

	util.InfoLog("%d voices", len(voices))
	return nil
}

// inspectSample sanity-checks an audio sample before upload and returns
// its size. Tag parsing failures are a warning, not an error: raw
// recordings often carry no tags at all.
func inspectSample(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("cannot access sample %s: %w", path, err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("sample %s is a directory", path)
	}
	if info.Size() == 0 {
		return 0, fmt.Errorf("sample %s is empty", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("cannot read sample %s: %w", path, err)
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		util.DebugLog("No readable tags in %s: %v", filepath.Base(path), err)
		return info.Size(), nil
	}

	util.DebugLog("Sample %s: %s, %s", filepath.Base(path), meta.FileType(), humanize.Bytes(uint64(info.Size())))
	return info.Size(), nil
}

func runVoicesClone(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	description, _ := cmd.Flags().GetString("description")

	var totalBytes int64
	for _, sample := range args {
		size, err := inspectSample(sample)
		if err != nil {
			return err
		}
		totalBytes += size
	}

	util.InfoLog("Cloning voice %q from %d samples (%s)", name, len(args), humanize.Bytes(uint64(totalBytes)))

	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	// The upload is a single multipart request, so the bar is a spinner
	// rather than byte-accurate progress.
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("Uploading samples"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-time.After(100 * time.Millisecond):
				bar.Add(1)
			}
		}
	}()

	voice, err := svc.CloneVoice(context.Background(), elevenlabs.CloneRequest{
		Name:        name,
		Description: description,
		SampleFiles: args,
	})
	close(done)
	bar.Finish()
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return err
	}

	util.SuccessLog("Created voice %q (%s)", voice.Name, voice.VoiceID)
	return nil
}

func runVoicesDelete(cmd *cobra.Command, args []string) error {
	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := svc.DeleteVoice(context.Background(), args[0]); err != nil {
		return err
	}

	util.SuccessLog("Deleted voice %s", args[0])
	return nil
}
