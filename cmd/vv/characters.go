package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/franz/voice-vault/internal/util"
)

var charactersCmd = &cobra.Command{
	Use:     "characters",
	Aliases: []string{"chars"},
	Short:   "Manage character-to-voice assignments",
}

var charactersAssignCmd = &cobra.Command{
	Use:   "assign <character> <voice-id>",
	Short: "Assign a voice to a character",
	Long: `Assign a voice to a character name, optionally scoped to a project.

The voice's display name is captured from the local mirror at assignment
time so listings stay readable even when the voice is later deleted.`,
	Args: cobra.ExactArgs(2),
	RunE: runCharactersAssign,
}

var charactersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List character-to-voice assignments",
	RunE:  runCharactersList,
}

var charactersRemoveCmd = &cobra.Command{
	Use:   "remove <assignment-id>",
	Short: "Remove an assignment by its ID",
	Args:  cobra.ExactArgs(1),
	RunE:  runCharactersRemove,
}

func init() {
	rootCmd.AddCommand(charactersCmd)
	charactersCmd.AddCommand(charactersAssignCmd)
	charactersCmd.AddCommand(charactersListCmd)
	charactersCmd.AddCommand(charactersRemoveCmd)

	charactersAssignCmd.Flags().String("project", "", "Project to scope the assignment to")
	charactersListCmd.Flags().String("project", "", "Only show assignments for this project")
}

func runCharactersAssign(cmd *cobra.Command, args []string) error {
	character, voiceID := args[0], args[1]
	projectID, _ := cmd.Flags().GetString("project")

	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	// Resolve the display name from the mirror; an unmirrored voice is
	// allowed, the name just stays empty.
	voiceName := ""
	if profile, err := st.GetVoiceProfile(voiceID); err == nil && profile != nil {
		voiceName = profile.Name
	}

	assignment, err := svc.AssignCharacterVoice(character, voiceID, voiceName, projectID)
	if err != nil {
		return err
	}

	util.SuccessLog("Assigned %q to voice %s (%s)", assignment.CharacterName, assignment.VoiceID, assignment.ID)
	return nil
}

func runCharactersList(cmd *cobra.Command, args []string) error {
	projectID, _ := cmd.Flags().GetString("project")

	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	assignments, err := svc.ListCharacterVoices(projectID)
	if err != nil {
		return err
	}

	if len(assignments) == 0 {
		util.WarnLog("No character assignments found")
		return nil
	}

	for _, a := range assignments {
		name := a.VoiceName
		if name == "" {
			name = "-"
		}
		project := a.ProjectID
		if project == "" {
			project = "-"
		}
		fmt.Printf("%-36s  %-20s  %-24s  %-12s  %s\n", a.ID, a.CharacterName, a.VoiceID, name, project)
	}

	util.InfoLog("%d assignments", len(assignments))
	return nil
}

func runCharactersRemove(cmd *cobra.Command, args []string) error {
	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := svc.RemoveCharacterVoice(args[0]); err != nil {
		return err
	}

	util.SuccessLog("Removed assignment %s", args[0])
	return nil
}
