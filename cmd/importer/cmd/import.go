package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"statement-import-service/cmd/importer/config"
	"statement-import-service/internal/dedup"
	"statement-import-service/internal/models"
	"statement-import-service/internal/parsers"
	"statement-import-service/internal/remoteparse"
	"statement-import-service/internal/reporter"
	"statement-import-service/internal/store"
	"statement-import-service/pkg/errors"
)

// Flags for the import command
var (
	importFile      string
	accountID       string
	statementYear   int
	currency        string
	onDuplicates    string
	outputFormat    string
	outputFile      string
	dsn             string
	parseServiceURL string
	dryRun          bool
	skipAutoMatch   bool
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a bank statement file",
	Long: `Import parses one bank statement export, filters lines already stored
for the account, and inserts the remainder into the finance database.

CSV and Excel files are parsed locally. PDF statements are forwarded to the
document parsing service (--parse-service-url); image-based PDFs come back
with an OCR preview that must be confirmed before import.

Examples:
  # Parse only, show what would be imported
  importer import --file statement.csv --account ACC-1 --year 2024 --dry-run

  # Import into the database
  importer import --file statement.xlsx --account ACC-1 --dsn $DATABASE_URL

  # Keep duplicate lines instead of skipping them
  importer import --file statement.csv --account ACC-1 --dsn $DATABASE_URL \
    --on-duplicates include

  # Decide per duplicate interactively
  importer import --file statement.csv --account ACC-1 --dsn $DATABASE_URL \
    --on-duplicates ask

  # Write a JSON report
  importer import --file statement.csv --account ACC-1 --dry-run \
    --output-format json --output-file report.json`,

	PreRunE: validateImportFlags,
	RunE:    runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importFile, "file", "i", "", "path to the statement file (required)")
	importCmd.Flags().StringVarP(&accountID, "account", "a", "", "bank account identifier (required)")
	importCmd.Flags().IntVar(&statementYear, "year", 0, "statement year for DD/MM dates (default: from the period banner)")
	importCmd.Flags().StringVar(&currency, "currency", "IDR", "account currency code")
	importCmd.Flags().StringVar(&onDuplicates, "on-duplicates", "skip", "duplicate handling: skip, include, ask")

	importCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	importCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")

	importCmd.Flags().StringVar(&dsn, "dsn", "", "PostgreSQL connection string (or IMPORTER_DSN)")
	importCmd.Flags().StringVar(&parseServiceURL, "parse-service-url", "", "base URL of the document parsing service for PDFs")
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and report without storing anything")
	importCmd.Flags().BoolVar(&skipAutoMatch, "skip-automatch", false, "do not run journal matching after insert")

	importCmd.MarkFlagRequired("file")
	importCmd.MarkFlagRequired("account")

	viper.BindPFlag("dsn", importCmd.Flags().Lookup("dsn"))
	viper.BindPFlag("parse-service-url", importCmd.Flags().Lookup("parse-service-url"))
	viper.BindPFlag("output-format", importCmd.Flags().Lookup("output-format"))
}

func validateImportFlags(cmd *cobra.Command, args []string) error {
	dsn = viper.GetString("dsn")
	parseServiceURL = viper.GetString("parse-service-url")
	outputFormat = viper.GetString("output-format")

	if err := validateFileExists(importFile, "statement file"); err != nil {
		return err
	}

	validFormats := map[string]bool{"console": true, "json": true, "csv": true}
	if !validFormats[outputFormat] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", outputFormat)
	}

	if _, err := dedup.ParseStrategy(onDuplicates); err != nil {
		return err
	}

	if !dryRun && dsn == "" {
		return fmt.Errorf("a database DSN is required unless --dry-run is set (use --dsn or IMPORTER_DSN)")
	}

	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Importing %s for account %s\n", importFile, accountID)
	}

	txns, metadata, skipped, bothLegs, err := parseStatementFile(ctx)
	if err != nil {
		return err
	}

	report := &reporter.ImportReport{
		File:        filepath.Base(importFile),
		AccountID:   accountID,
		Parsed:      len(txns),
		Skipped:     skipped,
		BothLegRows: bothLegs,
		DryRun:      dryRun,
		GeneratedAt: time.Now(),
		Metadata:    metadata,
	}

	if dryRun {
		report.Transactions = txns
		return writeImportReport(report)
	}

	st, err := store.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer st.Close()

	existing, err := st.FetchExisting(ctx, accountID)
	if err != nil {
		return err
	}

	strategy, _ := dedup.ParseStrategy(onDuplicates)
	kept, dupes := dedup.NewFilter(strategy, promptDuplicateDecision).Apply(txns, existing)
	report.Duplicates = len(dupes.Duplicates)

	batchID := uuid.New().String()
	report.BatchID = batchID

	inserted, err := st.InsertTransactions(ctx, accountID, batchID, "cli", kept)
	if err != nil {
		return err
	}
	report.Inserted = int(inserted)
	report.Transactions = kept

	if err := st.UpsertMetadata(ctx, accountID, batchID, metadata); err != nil {
		return err
	}

	if !skipAutoMatch && inserted > 0 {
		outcome, err := st.AutoMatch(ctx, accountID, batchID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: auto-match failed, statement lines are stored: %v\n", err)
		} else {
			report.AutoMatch = outcome
		}
	}

	return writeImportReport(report)
}

// parseStatementFile dispatches on extension: PDFs go to the remote parsing
// service, everything else through the local parser.
func parseStatementFile(ctx context.Context) ([]*models.Transaction, *models.StatementMetadata, int, int, error) {
	f, err := os.Open(importFile)
	if err != nil {
		return nil, nil, 0, 0, fmt.Errorf("failed to open statement file: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(importFile), ".pdf") {
		if parseServiceURL == "" {
			return nil, nil, 0, 0, fmt.Errorf("PDF statements need the document parsing service; set --parse-service-url")
		}
		client := remoteparse.NewClient(parseServiceURL, 0)
		resp, err := client.ParseDocument(ctx, filepath.Base(importFile), f, accountID)
		if err != nil {
			if errors.HasCode(err, errors.CodeNeedsOCR) {
				writeOCRPreview(os.Stderr, resp)
			}
			return nil, nil, 0, 0, err
		}
		return resp.Transactions, metadataOrEmpty(resp.Metadata), 0, 0, nil
	}

	parser, err := parsers.NewStatementParser(config.CreateParserConfig(importFile, statementYear, currency))
	if err != nil {
		return nil, nil, 0, 0, err
	}
	result, err := parser.ParseReader(f, importFile)
	if err != nil {
		return nil, nil, 0, 0, err
	}
	return result.Transactions, result.Metadata,
		result.Stats.SkippedRows, result.Stats.BothLegRows, nil
}

// writeOCRPreview surfaces the parsing service's OCR preview so the user can
// confirm the document content before retrying the import.
func writeOCRPreview(w io.Writer, resp *remoteparse.Response) {
	if resp == nil || len(resp.Preview) == 0 {
		return
	}
	fmt.Fprintf(w, "OCR preview:\n%s\n", resp.Preview)
}

// promptDuplicateDecision asks on the terminal whether to keep one duplicate
// line. Used only with --on-duplicates ask.
func promptDuplicateDecision(txn *models.Transaction) bool {
	fmt.Fprintf(os.Stderr, "Duplicate: %s %s debit=%s credit=%s. Import anyway? [y/N] ",
		txn.Date.Format(models.DateLayout), txn.Description, txn.Debit, txn.Credit)

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

func writeImportReport(report *reporter.ImportReport) error {
	generator, err := reporter.NewSafeReportGenerator(config.CreateReportConfig(outputFormat), nil)
	if err != nil {
		return err
	}
	return generator.WriteToFile(report, outputFile)
}

func metadataOrEmpty(md *models.StatementMetadata) *models.StatementMetadata {
	if md == nil {
		return &models.StatementMetadata{}
	}
	return md
}
