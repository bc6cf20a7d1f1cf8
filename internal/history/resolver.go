package history

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/temirov/dep3audit/internal/execshell"
)

const (
	gitLogSubcommandConstant      = "log"
	gitMaxCountFlagConstant       = "-1"
	gitLogFormatFlagConstant      = "--format=%an <%ae>%x09%cs"
	gitPathSeparatorFlagConstant  = "--"
	historyFieldSeparatorConstant = "\t"
	historyLookupErrorTemplate    = "unable to read git history for %s: %w"
	historyMalformedErrorTemplate = "unexpected git log output for %s: %q"
	expectedHistoryFieldCount     = 2
)

// ErrNoHistory indicates the patch has no commits in the enclosing repository.
var ErrNoHistory = errors.New("patch has no git history")

// GitExecutor exposes the git invocation used for history lookups.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Entry is the most recent commit information for a patch.
type Entry struct {
	Author     string
	LastUpdate string
}

// GitResolver looks up patch history with git log.
type GitResolver struct {
	executor GitExecutor
}

// NewGitResolver constructs a resolver backed by the provided executor.
func NewGitResolver(executor GitExecutor) *GitResolver {
	return &GitResolver{executor: executor}
}

// Resolve returns the author and commit date of the last commit touching patchPath.
func (resolver *GitResolver) Resolve(executionContext context.Context, patchPath string) (Entry, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:        gitLogArguments(filepath.Base(patchPath)),
		WorkingDirectory: filepath.Dir(patchPath),
	}

	executionResult, executionError := resolver.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return Entry{}, fmt.Errorf(historyLookupErrorTemplate, patchPath, executionError)
	}

	output := strings.TrimSpace(executionResult.StandardOutput)
	if len(output) == 0 {
		return Entry{}, ErrNoHistory
	}

	historyFields := strings.SplitN(output, historyFieldSeparatorConstant, expectedHistoryFieldCount)
	if len(historyFields) != expectedHistoryFieldCount {
		return Entry{}, fmt.Errorf(historyMalformedErrorTemplate, patchPath, output)
	}

	return Entry{
		Author:     strings.TrimSpace(historyFields[0]),
		LastUpdate: strings.TrimSpace(historyFields[1]),
	}, nil
}

func gitLogArguments(fileName string) []string {
	return []string{
		gitLogSubcommandConstant,
		gitMaxCountFlagConstant,
		gitLogFormatFlagConstant,
		gitPathSeparatorFlagConstant,
		fileName,
	}
}
