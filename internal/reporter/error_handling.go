package reporter

import (
	"os"
	"path/filepath"

	"statement-import-service/pkg/errors"
	"statement-import-service/pkg/logger"
)

// SafeReportGenerator wraps ReportGenerator with logging and file output
// handling for the CLI path.
type SafeReportGenerator struct {
	*ReportGenerator
	logger logger.Logger
}

// NewSafeReportGenerator creates a report generator that logs its work
func NewSafeReportGenerator(config *ReportConfig, log logger.Logger) (*SafeReportGenerator, error) {
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	generator, err := NewReportGenerator(config)
	if err != nil {
		return nil, errors.ConfigurationError(
			errors.CodeInvalidConfig,
			"report_config",
			config,
			err,
		)
	}

	return &SafeReportGenerator{
		ReportGenerator: generator,
		logger:          log.WithComponent("reporter"),
	}, nil
}

// WriteToFile renders the report into the given path, creating parent
// directories as needed. An empty path writes to stdout instead.
func (srg *SafeReportGenerator) WriteToFile(report *ImportReport, path string) error {
	if path == "" {
		return srg.GenerateReport(report, os.Stdout)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.FileError(errors.CodeFilePermission, path, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.FileError(errors.CodeFilePermission, path, err)
	}
	defer f.Close()

	if err := srg.GenerateReport(report, f); err != nil {
		return err
	}

	srg.logger.WithFields(logger.Fields{
		"path":   path,
		"format": string(srg.config.Format),
	}).Info("Report written")
	return nil
}
