package audit

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/dep3audit/internal/dep3"
	"github.com/temirov/dep3audit/internal/execshell"
	"github.com/temirov/dep3audit/internal/history"
	"github.com/temirov/dep3audit/internal/patches/discovery"
)

const (
	commandNameConstant             = "audit [root...]"
	commandShortDescriptionConstant = "Audit patch files for DEP3 header compliance"
	commandLongDescriptionConstant  = "audit discovers patch files beneath the provided roots, validates their DEP3 headers, and writes a compliance report."
	flagRootName                    = "root"
	flagRootDescription             = "Directory to scan for patches (repeatable)."
	flagPatternName                 = "pattern"
	flagPatternDescription          = "Glob pattern selecting patch files relative to each root (repeatable)."
	flagExcludeName                 = "exclude"
	flagExcludeDescription          = "Glob pattern excluding paths relative to each root (repeatable)."
	flagFormatName                  = "format"
	flagFormatDescription           = "Report format: csv, yaml, or toml."
	flagConcurrencyName             = "concurrency"
	flagConcurrencyDescription      = "Maximum number of patches parsed in parallel."
	flagHistoryFallbackName         = "history-fallback"
	flagHistoryFallbackDescription  = "Fill missing Author and Last-Update values from git history."
	flagOnlyInvalidName             = "only-invalid"
	flagOnlyInvalidDescription      = "Report only patches that are not compliant."
	flagFailOnInvalidName           = "fail-on-invalid"
	flagFailOnInvalidDescription    = "Exit with an error when any patch is not compliant."
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current audit configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the audit cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Discoverer            PatchDiscoverer
	Parser                PatchParser
	HistoryResolver       HistoryResolver
}

// Build constructs the cobra command for patch audit workflows.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandNameConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().StringSlice(flagRootName, nil, flagRootDescription)
	command.Flags().StringSlice(flagPatternName, nil, flagPatternDescription)
	command.Flags().StringSlice(flagExcludeName, nil, flagExcludeDescription)
	command.Flags().String(flagFormatName, "", flagFormatDescription)
	command.Flags().Int(flagConcurrencyName, 0, flagConcurrencyDescription)
	command.Flags().Bool(flagHistoryFallbackName, false, flagHistoryFallbackDescription)
	command.Flags().Bool(flagOnlyInvalidName, false, flagOnlyInvalidDescription)
	command.Flags().Bool(flagFailOnInvalidName, false, flagFailOnInvalidDescription)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	options := builder.parseOptions(command, arguments)
	logger := builder.resolveLogger()

	historyResolver, historyError := builder.resolveHistoryResolver(options, logger)
	if historyError != nil {
		return historyError
	}

	service := NewService(builder.resolveDiscoverer(), builder.resolveParser(logger), historyResolver, logger, command.OutOrStdout())
	_, runError := service.Run(command.Context(), options)
	return runError
}

// parseOptions merges configuration with explicitly set flags and positional roots.
func (builder *CommandBuilder) parseOptions(command *cobra.Command, arguments []string) CommandOptions {
	configuration := builder.resolveConfiguration()
	flags := command.Flags()

	if flags.Changed(flagRootName) {
		configuration.Roots, _ = flags.GetStringSlice(flagRootName)
	}
	if len(arguments) > 0 {
		if flags.Changed(flagRootName) {
			configuration.Roots = append(append([]string{}, configuration.Roots...), arguments...)
		} else {
			configuration.Roots = append([]string{}, arguments...)
		}
	}
	if flags.Changed(flagPatternName) {
		configuration.Patterns, _ = flags.GetStringSlice(flagPatternName)
	}
	if flags.Changed(flagExcludeName) {
		configuration.Excludes, _ = flags.GetStringSlice(flagExcludeName)
	}
	if flags.Changed(flagFormatName) {
		configuration.Format, _ = flags.GetString(flagFormatName)
	}
	if flags.Changed(flagConcurrencyName) {
		configuration.Concurrency, _ = flags.GetInt(flagConcurrencyName)
	}
	if flags.Changed(flagHistoryFallbackName) {
		configuration.HistoryFallback, _ = flags.GetBool(flagHistoryFallbackName)
	}
	if flags.Changed(flagOnlyInvalidName) {
		configuration.OnlyInvalid, _ = flags.GetBool(flagOnlyInvalidName)
	}
	if flags.Changed(flagFailOnInvalidName) {
		configuration.FailOnInvalid, _ = flags.GetBool(flagFailOnInvalidName)
	}

	sanitized := configuration.sanitize()
	return CommandOptions{
		Roots:           sanitized.Roots,
		Patterns:        sanitized.Patterns,
		Excludes:        sanitized.Excludes,
		Format:          ReportFormat(sanitized.Format),
		Concurrency:     sanitized.Concurrency,
		HistoryFallback: sanitized.HistoryFallback,
		OnlyInvalid:     sanitized.OnlyInvalid,
		FailOnInvalid:   sanitized.FailOnInvalid,
	}
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveDiscoverer() PatchDiscoverer {
	if builder.Discoverer != nil {
		return builder.Discoverer
	}
	return discovery.NewFilesystemPatchDiscoverer()
}

func (builder *CommandBuilder) resolveParser(logger *zap.Logger) PatchParser {
	if builder.Parser != nil {
		return builder.Parser
	}
	return dep3.NewParser(dep3.WithLogger(logger))
}

func (builder *CommandBuilder) resolveHistoryResolver(options CommandOptions, logger *zap.Logger) (HistoryResolver, error) {
	if !options.HistoryFallback {
		return nil, nil
	}
	if builder.HistoryResolver != nil {
		return builder.HistoryResolver, nil
	}
	shellExecutor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
	if executorError != nil {
		return nil, executorError
	}
	return history.NewGitResolver(shellExecutor), nil
}
