// Package cli builds the dep3audit command-line interface: a Cobra root
// command carrying the audit and show subcommands, backed by a Viper
// configuration loader and a zap logger created once flags are parsed.
package cli
