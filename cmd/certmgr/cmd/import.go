package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shrilakshmikakati/certifiacte-manager-sub001/certificate"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/ingest"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/registry"
)

var (
	importDryRun     bool
	importJSONOutput bool
	importActorID    string
)

var importCmd = &cobra.Command{
	Use:   "import [file.csv]",
	Short: "Batch-import certificate candidates from a CSV file",
	Long: `Reads a CSV file whose first row is a header, normalizes the headers
against the known synonym table, validates every row, and creates one
pending certificate per valid row. Invalid rows are reported and skipped;
they never block the rest of the batch.

With --dry-run the file is validated and the report printed, but no
certificates are created.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Validate only, create nothing")
	importCmd.Flags().BoolVar(&importJSONOutput, "json", false, "Output results as JSON")
	importCmd.Flags().StringVar(&importActorID, "actor", "cli", "Actor recorded in certificate history")
}

// readCSVRows adapts a CSV file into the header-keyed rows the ingestion
// pipeline consumes. Short records are padded so trailing empty cells do
// not drop fields.
func readCSVRows(path string) ([]ingest.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening csv file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv file %s has no header row", path)
	}

	header := records[0]
	rows := make([]ingest.Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(ingest.Row, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func runImport(cmd *cobra.Command, args []string) error {
	rows, err := readCSVRows(args[0])
	if err != nil {
		return err
	}

	report := ingest.NewPipeline().Parse(rows)
	if importDryRun || !report.CanProceed() {
		return printImportReport(report, nil)
	}

	reg, cleanup, err := buildRegistry()
	if err != nil {
		return err
	}
	defer cleanup()

	candidates := make([]ingest.Candidate, 0, len(report.Results))
	for _, r := range report.Results {
		candidates = append(candidates, r.Candidate)
	}
	actor := certificate.Actor{
		ID:          importActorID,
		Permissions: []certificate.Permission{certificate.PermissionCreate},
	}
	result := reg.CreateBatch(cmd.Context(), candidates, actor)
	return printImportReport(report, result)
}

func printImportReport(report *ingest.Report, result *registry.BatchResult) error {
	if importJSONOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		out := struct {
			Validation *ingest.Report        `json:"validation"`
			Creation   *registry.BatchResult `json:"creation,omitempty"`
		}{report, result}
		return enc.Encode(out)
	}

	fmt.Printf("Rows:    %d\n", report.TotalRows)
	fmt.Printf("Valid:   %d\n", report.ValidRows)
	fmt.Printf("Invalid: %d\n", report.InvalidRows)
	for _, e := range report.Errors {
		fmt.Printf("  row %d: %s\n", e.Row, e.Message)
	}
	if result == nil {
		if !report.CanProceed() {
			fmt.Println("\nNo valid rows; nothing to create.")
		}
		return nil
	}

	fmt.Printf("\nCreated: %d of %d\n", result.Succeeded, result.Total)
	for _, item := range result.Items {
		if item.Error != "" {
			fmt.Printf("  row %d: FAILED: %s\n", item.Index+1, item.Error)
		} else {
			fmt.Printf("  row %d: %s\n", item.Index+1, item.CertificateID)
		}
	}
	if result.Failed > 0 {
		os.Exit(1)
	}
	return nil
}
