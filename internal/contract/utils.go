package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/pulse/schema"
)

// Label constants.
const (
	CriticalValue = "Critical" // Critical value
	HighValue     = "High"     // High value
	MediumValue   = "Medium"   // Medium value
	LowValue      = "Low"      // Low value
)

// Color variables for console output.
var (
	CriticalColor = color.New(color.FgRed, color.Bold)     // criticalColor represents standard danger.
	HighColor     = color.New(color.FgMagenta, color.Bold) // highColor represents strong, distinct warning.
	MediumColor   = color.New(color.FgYellow)              // mediumColor represents standard caution, not bold.
	LowColor      = color.New(color.FgCyan)                // lowColor represents informational / low-priority signal.
)

// GetPlainLabel returns a plain text label for a severity. This is the core
// logic used for CSV, JSON, and table printing.
func GetPlainLabel(s schema.Severity) string {
	switch s {
	case schema.CriticalSeverity:
		return CriticalValue
	case schema.HighSeverity:
		return HighValue
	case schema.MediumSeverity:
		return MediumValue
	default:
		return LowValue
	}
}

// GetColorLabel returns a colored severity label for console output (table).
func GetColorLabel(s schema.Severity) string {
	text := GetPlainLabel(s)

	switch text {
	case CriticalValue:
		return CriticalColor.Sprint(text)
	case HighValue:
		return HighColor.Sprint(text)
	case MediumValue:
		return MediumColor.Sprint(text)
	default:
		return LowColor.Sprint(text)
	}
}

// UrgencySeverity maps a breach urgency onto the severity scale used for labels.
func UrgencySeverity(u schema.Urgency) schema.Severity {
	switch u {
	case schema.CriticalUrgency:
		return schema.CriticalSeverity
	case schema.HighUrgency:
		return schema.HighSeverity
	case schema.MediumUrgency:
		return schema.MediumSeverity
	default:
		return schema.LowSeverity
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program with the code from ExitCode.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	code := ExitCode(err)
	if code == 0 {
		code = 1
	}
	os.Exit(code)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetStateDir returns the default directory for persisted JSON documents.
func GetStateDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".pulse"
	}
	return filepath.Join(homeDir, ".pulse")
}

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	return filepath.Join(GetStateDir(), "cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for sample history.
func GetHistoryDBFilePath() string {
	return filepath.Join(GetStateDir(), "history.db")
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and at least one character.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
