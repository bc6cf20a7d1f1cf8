// Package utils holds the configuration and logging plumbing shared by the
// dep3audit commands.
//
// ConfigurationLoader layers embedded defaults, an optional YAML file and
// DEP3AUDIT_ prefixed environment variables through Viper. LoggerFactory
// builds zap loggers that write to standard error so reports on standard
// output stay machine readable.
package utils
