package audit

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	configurationRootsKeyConstant           = "roots"
	configurationPatternsKeyConstant        = "patterns"
	configurationExcludesKeyConstant        = "excludes"
	configurationFormatKeyConstant          = "format"
	configurationConcurrencyKeyConstant     = "concurrency"
	configurationHistoryFallbackKeyConstant = "history_fallback"
	configurationOnlyInvalidKeyConstant     = "only_invalid"
	configurationFailOnInvalidKeyConstant   = "fail_on_invalid"
	configurationKeySeparatorConstant       = "."
	defaultRootPathConstant                 = "."
	defaultConcurrencyConstant              = 4
	tildeSymbolConstant                     = "~"
	tildeSlashPrefixConstant                = "~/"
)

// CommandConfiguration captures persistent settings for the audit command.
type CommandConfiguration struct {
	Roots           []string `mapstructure:"roots"`
	Patterns        []string `mapstructure:"patterns"`
	Excludes        []string `mapstructure:"excludes"`
	Format          string   `mapstructure:"format"`
	Concurrency     int      `mapstructure:"concurrency"`
	HistoryFallback bool     `mapstructure:"history_fallback"`
	OnlyInvalid     bool     `mapstructure:"only_invalid"`
	FailOnInvalid   bool     `mapstructure:"fail_on_invalid"`
}

// DefaultCommandConfiguration returns baseline configuration values for the audit command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Roots:           []string{defaultRootPathConstant},
		Patterns:        []string{"**/debian/patches/**/*.patch", "**/debian/patches/**/*.diff"},
		Excludes:        []string{"**/.git/**"},
		Format:          string(ReportFormatCSV),
		Concurrency:     defaultConcurrencyConstant,
		HistoryFallback: true,
		OnlyInvalid:     false,
		FailOnInvalid:   false,
	}
}

// DefaultConfigurationValues flattens the defaults into viper keys under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	values := map[string]any{
		configurationRootsKeyConstant:           defaults.Roots,
		configurationPatternsKeyConstant:        defaults.Patterns,
		configurationExcludesKeyConstant:        defaults.Excludes,
		configurationFormatKeyConstant:          defaults.Format,
		configurationConcurrencyKeyConstant:     defaults.Concurrency,
		configurationHistoryFallbackKeyConstant: defaults.HistoryFallback,
		configurationOnlyInvalidKeyConstant:     defaults.OnlyInvalid,
		configurationFailOnInvalidKeyConstant:   defaults.FailOnInvalid,
	}

	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return values
	}

	prefixedValues := make(map[string]any, len(values))
	for key, value := range values {
		prefixedValues[trimmedPrefix+configurationKeySeparatorConstant+key] = value
	}
	return prefixedValues
}

// sanitize trims whitespace and applies defaults to unset configuration values.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.Roots = sanitizeRoots(configuration.Roots)
	if len(sanitized.Roots) == 0 {
		sanitized.Roots = defaults.Roots
	}

	sanitized.Patterns = sanitizeEntries(configuration.Patterns)
	if len(sanitized.Patterns) == 0 {
		sanitized.Patterns = defaults.Patterns
	}

	sanitized.Excludes = sanitizeEntries(configuration.Excludes)

	sanitized.Format = strings.ToLower(strings.TrimSpace(configuration.Format))
	if len(sanitized.Format) == 0 {
		sanitized.Format = defaults.Format
	}

	if sanitized.Concurrency <= 0 {
		sanitized.Concurrency = defaults.Concurrency
	}

	return sanitized
}

func sanitizeEntries(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for index := range raw {
		trimmed := strings.TrimSpace(raw[index])
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}

func sanitizeRoots(raw []string) []string {
	entries := sanitizeEntries(raw)
	for index := range entries {
		entries[index] = expandHomeDirectory(entries[index])
	}
	return entries
}

// expandHomeDirectory resolves a leading ~ or ~/ to the user's home directory.
func expandHomeDirectory(candidatePath string) string {
	if candidatePath != tildeSymbolConstant && !strings.HasPrefix(candidatePath, tildeSlashPrefixConstant) {
		return candidatePath
	}
	homeDirectory, homeDirectoryError := os.UserHomeDir()
	if homeDirectoryError != nil || len(homeDirectory) == 0 {
		return candidatePath
	}
	return filepath.Join(homeDirectory, strings.TrimPrefix(candidatePath, tildeSymbolConstant))
}
