package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/franz/voice-vault/internal/util"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the API credential",
}

var authSetCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Store the API key after validating it",
	Long: `Store the ElevenLabs API key in the local database.

The key is validated against the API before it is stored; an invalid or
revoked key is rejected. When run interactively the key is read from a
hidden prompt, otherwise it is read from stdin (for scripting):

  echo "$ELEVEN_KEY" | vv auth set-key`,
	RunE: runAuthSet,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a key is stored and the account quota",
	RunE:  runAuthStatus,
}

var authRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Delete the stored API key",
	RunE:  runAuthRemove,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authRemoveCmd)
}

func runAuthSet(cmd *cobra.Command, args []string) error {
	var key string

	if util.IsTerminal(os.Stdin.Fd()) {
		fmt.Fprint(os.Stderr, "API key: ")
		secret, err := util.ReadSecret(os.Stdin.Fd())
		if err != nil {
			return fmt.Errorf("failed to read key: %w", err)
		}
		fmt.Fprintln(os.Stderr)
		key = secret
	} else {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read key from stdin: %w", err)
		}
		key = strings.TrimSpace(line)
	}

	if key == "" {
		return fmt.Errorf("no API key provided")
	}

	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	util.InfoLog("Validating key...")
	if err := svc.SetAPIKey(context.Background(), key); err != nil {
		return err
	}

	util.SuccessLog("API key stored")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	has, err := svc.HasAPIKey()
	if err != nil {
		return err
	}
	if !has {
		util.WarnLog("No API key stored. Run 'vv auth set-key' first.")
		return nil
	}

	util.SuccessLog("API key is stored")

	usage, err := svc.GetUsage(context.Background())
	if err != nil {
		util.WarnLog("Could not fetch quota: %v", err)
		return nil
	}

	util.InfoLog("Characters used: %d / %d", usage.CharacterCount, usage.CharacterLimit)
	util.InfoLog("Voice slots: %d", usage.VoiceLimit)

	return nil
}

func runAuthRemove(cmd *cobra.Command, args []string) error {
	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := svc.RemoveAPIKey(); err != nil {
		return err
	}

	util.SuccessLog("API key removed")
	return nil
}
