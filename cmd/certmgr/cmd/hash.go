package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shrilakshmikakati/certifiacte-manager-sub001/certificate"
)

var hashCmd = &cobra.Command{
	Use:   "hash [record.json]",
	Short: "Compute the content hash of a certificate record file",
	Long: `Reads a certificate record as JSON and prints its content hash: the
SHA-256 of the canonicalized identity fields, hex-encoded with the 0x
prefix. Identical logical content always hashes identically.`,
	Args: cobra.ExactArgs(1),
	RunE: runHash,
}

var codegenCmd = &cobra.Command{
	Use:   "codegen",
	Short: "Generate a verification code",
	Long: `Prints a freshly generated verification code: 32 uppercase
hexadecimal characters. Uniqueness against a record store is enforced at
issuance, not here.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := certificate.NewVerificationCode()
		if err != nil {
			return err
		}
		fmt.Println(code)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hashCmd)
	rootCmd.AddCommand(codegenCmd)
}

func runHash(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading record file: %w", err)
	}
	var rec certificate.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("parsing record file: %w", err)
	}
	hash, err := certificate.HashRecord(&rec)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
