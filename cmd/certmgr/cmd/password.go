package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shrilakshmikakati/certifiacte-manager-sub001/config"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/crypto"
)

var passwordCheck string

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Generate or assess an encryption password",
	Long: `Without flags, generates a fresh random password of the configured
length and prints it. With --check, scores the supplied password instead.`,
	Args: cobra.NoArgs,
	RunE: runPassword,
}

func init() {
	rootCmd.AddCommand(passwordCmd)
	passwordCmd.Flags().StringVar(&passwordCheck, "check", "", "Score this password instead of generating one")
}

func runPassword(cmd *cobra.Command, args []string) error {
	if passwordCheck != "" {
		strength := crypto.ValidateKeyStrength(passwordCheck)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(strength)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	password, err := crypto.GeneratePassword(cfg.PasswordLength)
	if err != nil {
		return err
	}
	fmt.Println(password)
	return nil
}
