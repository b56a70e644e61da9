package parsers

import "fmt"

// Config controls one statement parse. StatementYear completes two-field
// DD/MM dates; when zero, the year from the statement's period banner is
// used, and failing that the current year. Currency is stamped onto each
// produced transaction.
type Config struct {
	// SourceName identifies the file in errors and logs
	SourceName string
	// StatementYear is the externally supplied or user-confirmed year for
	// dates lacking one; 0 means derive from the period banner
	StatementYear int
	// Currency is the account currency code, e.g. "IDR"
	Currency string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		SourceName: "statement",
		Currency:   "IDR",
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.StatementYear < 0 {
		return fmt.Errorf("statement year cannot be negative")
	}
	if c.StatementYear > 0 && (c.StatementYear < 1990 || c.StatementYear > 2200) {
		return fmt.Errorf("statement year %d out of range", c.StatementYear)
	}
	return nil
}
