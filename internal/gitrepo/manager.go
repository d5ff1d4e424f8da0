package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/repofleet/internal/execshell"
)

// Operation identifies a git action performed by the repository manager.
type Operation string

// Operations reported inside GitOperationError values.
const (
	OperationClone   Operation = "clone"
	OperationPull    Operation = "pull"
	OperationInspect Operation = "inspect"
)

const (
	cloneSubcommandConstant                 = "clone"
	pullSubcommandConstant                  = "pull"
	revParseSubcommandConstant              = "rev-parse"
	insideWorkTreeFlagConstant              = "--is-inside-work-tree"
	fastForwardOnlyFlagConstant             = "--ff-only"
	insideWorkTreeOutputConstant            = "true"
	terminalPromptEnvironmentKeyConstant    = "GIT_TERMINAL_PROMPT"
	terminalPromptDisabledValueConstant     = "0"
	configurationCountEnvironmentKey        = "GIT_CONFIG_COUNT"
	configurationKeyEnvironmentKeyConstant  = "GIT_CONFIG_KEY_0"
	configurationValueEnvironmentKey        = "GIT_CONFIG_VALUE_0"
	configurationSingleEntryValueConstant   = "1"
	extraHeaderConfigurationKeyConstant     = "http.extraHeader"
	authorizationHeaderTemplateConstant     = "Authorization: %s"
	operationFailureMessageTemplateConstant = "git %s failed for %s: %v"
)

// ErrGitExecutorNotConfigured indicates the repository manager requires a git executor.
var ErrGitExecutorNotConfigured = errors.New("git executor not configured")

// GitExecutor abstracts git invocation for repository operations.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// GitOperationError reports a git action that failed for a specific path.
type GitOperationError struct {
	Operation      Operation
	RepositoryPath string
	Cause          error
}

// Error describes the failed operation.
func (operationError GitOperationError) Error() string {
	return fmt.Sprintf(operationFailureMessageTemplateConstant, operationError.Operation, operationError.RepositoryPath, operationError.Cause)
}

// Unwrap exposes the underlying execution failure.
func (operationError GitOperationError) Unwrap() error {
	return operationError.Cause
}

// RepositoryManager performs git operations for fleet synchronization. Remote
// credentials travel through per-invocation environment variables rather than
// remote URLs so they never reach process listings or on-disk git
// configuration.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a repository manager backed by the provided executor.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// IsWorkingCopy reports whether the path holds a git working copy. A git
// answer of any kind settles the question without error; only a failure to
// run git at all is reported.
func (manager *RepositoryManager) IsWorkingCopy(executionContext context.Context, repositoryPath string) (bool, error) {
	commandDetails := execshell.CommandDetails{
		Arguments:            []string{revParseSubcommandConstant, insideWorkTreeFlagConstant},
		WorkingDirectory:     repositoryPath,
		EnvironmentVariables: buildCommandEnvironment(""),
	}
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		commandFailedError := execshell.CommandFailedError{}
		if errors.As(executionError, &commandFailedError) {
			return false, nil
		}
		return false, GitOperationError{Operation: OperationInspect, RepositoryPath: repositoryPath, Cause: executionError}
	}
	return strings.TrimSpace(executionResult.StandardOutput) == insideWorkTreeOutputConstant, nil
}

// CloneRepository clones the remote URL into the destination path.
func (manager *RepositoryManager) CloneRepository(executionContext context.Context, remoteURL string, destinationPath string, authorizationHeader string) error {
	commandDetails := execshell.CommandDetails{
		Arguments:            []string{cloneSubcommandConstant, remoteURL, destinationPath},
		EnvironmentVariables: buildCommandEnvironment(authorizationHeader),
	}
	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return GitOperationError{Operation: OperationClone, RepositoryPath: destinationPath, Cause: executionError}
	}
	return nil
}

// PullRepository fast-forwards the working copy at the repository path.
func (manager *RepositoryManager) PullRepository(executionContext context.Context, repositoryPath string, authorizationHeader string) error {
	commandDetails := execshell.CommandDetails{
		Arguments:            []string{pullSubcommandConstant, fastForwardOnlyFlagConstant},
		WorkingDirectory:     repositoryPath,
		EnvironmentVariables: buildCommandEnvironment(authorizationHeader),
	}
	_, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return GitOperationError{Operation: OperationPull, RepositoryPath: repositoryPath, Cause: executionError}
	}
	return nil
}

func buildCommandEnvironment(authorizationHeader string) map[string]string {
	commandEnvironment := map[string]string{
		terminalPromptEnvironmentKeyConstant: terminalPromptDisabledValueConstant,
	}
	if len(strings.TrimSpace(authorizationHeader)) == 0 {
		return commandEnvironment
	}
	commandEnvironment[configurationCountEnvironmentKey] = configurationSingleEntryValueConstant
	commandEnvironment[configurationKeyEnvironmentKeyConstant] = extraHeaderConfigurationKeyConstant
	commandEnvironment[configurationValueEnvironmentKey] = fmt.Sprintf(authorizationHeaderTemplateConstant, authorizationHeader)
	return commandEnvironment
}
