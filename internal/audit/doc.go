// Package audit implements the patch compliance audit used by the dep3audit CLI.
//
// It exposes CommandBuilder for wiring the audit Cobra command and Service for
// driving the workflow programmatically: discover patch files, parse their
// DEP3 headers concurrently, fill missing authorship from git history, and
// write a CSV, YAML or TOML report.
package audit
