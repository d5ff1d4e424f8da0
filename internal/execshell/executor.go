package execshell

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// CommandName identifies the executable a ShellCommand runs.
type CommandName string

// CommandGit identifies the git executable.
const CommandGit CommandName = "git"

const (
	commandFieldNameConstant               = "command"
	argumentsFieldNameConstant             = "arguments"
	workingDirectoryFieldNameConstant      = "working_directory"
	exitCodeFieldNameConstant              = "exit_code"
	standardErrorFieldNameConstant         = "standard_error"
	commandStartedMessageConstant          = "Executing command"
	commandCompletedMessageConstant        = "Command completed"
	commandFailedMessageConstant           = "Command failed"
	commandFailedTemplateConstant          = "command %s exited with code %d"
	commandExecutionFailedTemplateConstant = "command %s could not be executed: %v"
)

var (
	// ErrLoggerNotConfigured indicates the executor requires a logger instance.
	ErrLoggerNotConfigured = errors.New("shell executor logger not configured")
	// ErrCommandRunnerNotConfigured indicates the executor requires a command runner.
	ErrCommandRunnerNotConfigured = errors.New("shell executor command runner not configured")
)

// CommandDetails describes arguments, working directory, and environment for
// a shell command.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
}

// ShellCommand couples an executable name with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures process output and exit information.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner abstracts process execution for testability.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandFailedError describes a command that ran and exited unsuccessfully.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error summarizes the failed command.
func (commandFailedError CommandFailedError) Error() string {
	return fmt.Sprintf(commandFailedTemplateConstant, commandFailedError.Command.Name, commandFailedError.Result.ExitCode)
}

// CommandExecutionError describes a command that could not be executed at all.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error summarizes the execution failure.
func (commandExecutionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionFailedTemplateConstant, commandExecutionError.Command.Name, commandExecutionError.Cause)
}

// Unwrap exposes the underlying cause.
func (commandExecutionError CommandExecutionError) Unwrap() error {
	return commandExecutionError.Cause
}

// ShellExecutor coordinates command execution with structured logging and
// lifecycle notifications for interactive output.
type ShellExecutor struct {
	logger        *zap.Logger
	commandRunner CommandRunner
	eventObserver CommandEventObserver
}

// NewShellExecutor constructs an executor that discards lifecycle events.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner) (*ShellExecutor, error) {
	return NewShellExecutorWithObserver(logger, commandRunner, noopCommandEventObserver{})
}

// NewShellExecutorWithObserver constructs an executor that reports command
// lifecycle events to the provided observer.
func NewShellExecutorWithObserver(logger *zap.Logger, commandRunner CommandRunner, eventObserver CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	if eventObserver == nil {
		eventObserver = noopCommandEventObserver{}
	}
	return &ShellExecutor{logger: logger, commandRunner: commandRunner, eventObserver: eventObserver}, nil
}

// ExecuteGit runs git with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

func (executor *ShellExecutor) execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.logger.Debug(commandStartedMessageConstant,
		zap.String(commandFieldNameConstant, string(command.Name)),
		zap.Strings(argumentsFieldNameConstant, command.Details.Arguments),
		zap.String(workingDirectoryFieldNameConstant, command.Details.WorkingDirectory))
	executor.eventObserver.CommandStarted(command)

	executionResult, runError := executor.commandRunner.Run(executionContext, command)
	if runError != nil {
		executor.logger.Error(commandFailedMessageConstant,
			zap.String(commandFieldNameConstant, string(command.Name)),
			zap.Error(runError))
		executor.eventObserver.CommandExecutionFailed(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.eventObserver.CommandCompleted(command, executionResult)
	if executionResult.ExitCode != 0 {
		executor.logger.Debug(commandFailedMessageConstant,
			zap.String(commandFieldNameConstant, string(command.Name)),
			zap.Int(exitCodeFieldNameConstant, executionResult.ExitCode),
			zap.String(standardErrorFieldNameConstant, executionResult.StandardError))
		return executionResult, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Debug(commandCompletedMessageConstant,
		zap.String(commandFieldNameConstant, string(command.Name)),
		zap.Int(exitCodeFieldNameConstant, executionResult.ExitCode))
	return executionResult, nil
}
