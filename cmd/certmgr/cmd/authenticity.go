package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var authenticityJSONOutput bool

var authenticityCmd = &cobra.Command{
	Use:   "authenticity [certificate-id]",
	Short: "Verify a certificate against its content hash and ledger anchor",
	Long: `Recomputes the certificate's content hash from its identity fields,
compares it to the stored value, and checks whether the hash is anchored
on the ledger. Exits non-zero when the certificate is not authentic.`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthenticity,
}

func init() {
	rootCmd.AddCommand(authenticityCmd)
	authenticityCmd.Flags().BoolVar(&authenticityJSONOutput, "json", false, "Output results as JSON")
}

func runAuthenticity(cmd *cobra.Command, args []string) error {
	reg, cleanup, err := buildRegistry()
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := reg.VerifyAuthenticity(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if authenticityJSONOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		fmt.Printf("Certificate:  %s\n", report.CertificateID)
		fmt.Printf("Content hash: %s\n", report.ContentHash)
		fmt.Printf("Hash matches: %v\n", report.HashMatches)
		fmt.Printf("Anchored:     %v\n", report.Anchored)
		if report.Authentic {
			fmt.Println("Result: AUTHENTIC")
		} else {
			fmt.Println("Result: NOT AUTHENTIC")
		}
	}

	if !report.Authentic {
		os.Exit(1)
	}
	return nil
}
