package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/franz/voice-vault/internal/elevenlabs"
	"github.com/franz/voice-vault/internal/util"
)

var speakCmd = &cobra.Command{
	Use:   "speak <text>...",
	Short: "Synthesize speech and cache the result",
	Long: `Synthesize speech for the given text and store the audio in the
local cache. The generated file's path is printed on stdout so it can be
piped into a player:

  mpv "$(vv speak --voice 21m00Tcm4TlvDq8ikWAM 'Hello there')"

Instead of a raw voice ID, --character resolves the voice through a
stored character assignment.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSpeak,
}

func init() {
	rootCmd.AddCommand(speakCmd)

	speakCmd.Flags().String("voice", "", "Voice ID to synthesize with")
	speakCmd.Flags().String("character", "", "Resolve the voice from a character assignment")
	speakCmd.Flags().String("project", "", "Project scope for --character lookup")
	speakCmd.Flags().String("model", "", "Model ID override")
	speakCmd.Flags().Float64("stability", -1, "Voice stability override (0..1)")
	speakCmd.Flags().Float64("similarity", -1, "Similarity boost override (0..1)")
}

func runSpeak(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	voiceID, _ := cmd.Flags().GetString("voice")
	character, _ := cmd.Flags().GetString("character")
	projectID, _ := cmd.Flags().GetString("project")
	modelID, _ := cmd.Flags().GetString("model")
	stability, _ := cmd.Flags().GetFloat64("stability")
	similarity, _ := cmd.Flags().GetFloat64("similarity")

	if voiceID == "" && character == "" {
		return fmt.Errorf("a voice is required (use --voice or --character)")
	}
	if voiceID != "" && character != "" {
		return fmt.Errorf("--voice and --character are mutually exclusive")
	}

	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	if character != "" {
		assignments, err := svc.ListCharacterVoices(projectID)
		if err != nil {
			return err
		}
		for _, a := range assignments {
			if a.CharacterName == character {
				voiceID = a.VoiceID
				break
			}
		}
		if voiceID == "" {
			return fmt.Errorf("no voice assigned to character %q", character)
		}
		util.DebugLog("Character %q resolved to voice %s", character, voiceID)
	}

	req := elevenlabs.TTSRequest{
		Text:    text,
		VoiceID: voiceID,
		ModelID: modelID,
	}

	if stability >= 0 || similarity >= 0 {
		settings := elevenlabs.DefaultVoiceSettings()
		if stability >= 0 {
			settings.Stability = stability
		}
		if similarity >= 0 {
			settings.SimilarityBoost = similarity
		}
		req.VoiceSettings = &settings
	}

	record, err := svc.Speak(context.Background(), req)
	if err != nil {
		return err
	}

	util.SuccessLog("Synthesized %.1fs of speech (%s)", record.DurationSeconds, record.ID)
	fmt.Println(record.LocalPath)
	return nil
}
