package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	commandFailedTemplateConstant    = "%s exited with code %d: %s"
	commandExecutionTemplateConstant = "%s could not be executed: %v"
	commandArgumentSeparatorConstant = " "
)

// CommandName identifies an executable supported by the executor.
type CommandName string

// Supported command names.
const (
	CommandGit CommandName = "git"
)

// CommandDetails describes the invocation of a command.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand pairs a command name with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// String renders the command line for diagnostics.
func (command ShellCommand) String() string {
	if len(command.Details.Arguments) == 0 {
		return string(command.Name)
	}
	return string(command.Name) + commandArgumentSeparatorConstant + strings.Join(command.Details.Arguments, commandArgumentSeparatorConstant)
}

// ExecutionResult captures the observable output of a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner executes shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// Initialization errors returned by NewShellExecutor.
var (
	ErrLoggerNotConfigured        = errors.New("shell executor logger not configured")
	ErrCommandRunnerNotConfigured = errors.New("shell executor command runner not configured")
)

// CommandFailedError reports a command that ran and exited with a non-zero code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command.
func (failure CommandFailedError) Error() string {
	return fmt.Sprintf(commandFailedTemplateConstant, failure.Command, failure.Result.ExitCode, strings.TrimSpace(failure.Result.StandardError))
}

// CommandExecutionError reports a command that could not be started or awaited.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (failure CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionTemplateConstant, failure.Command, failure.Cause)
}

// Unwrap exposes the underlying failure.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}
