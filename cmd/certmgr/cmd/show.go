package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var showByCode bool

var showCmd = &cobra.Command{
	Use:   "show [certificate-id]",
	Short: "Print a stored certificate record as JSON",
	Long: `Fetches a certificate by its ID (or, with --code, by its public
verification code) and prints the record. Encryption secrets are never
included in the output.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showByCode, "code", false, "Look up by verification code instead of ID")
}

func runShow(cmd *cobra.Command, args []string) error {
	reg, cleanup, err := buildRegistry()
	if err != nil {
		return err
	}
	defer cleanup()

	fetch := reg.Get
	if showByCode {
		fetch = reg.LookupByCode
	}
	rec, err := fetch(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}
