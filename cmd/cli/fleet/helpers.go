package fleet

import (
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/repofleet/internal/execshell"
	"github.com/temirov/repofleet/internal/gitrepo"
	"github.com/temirov/repofleet/internal/manifest"
	"github.com/temirov/repofleet/internal/prompt"
	"github.com/temirov/repofleet/internal/remote"
	"github.com/temirov/repofleet/internal/remote/devops"
	"github.com/temirov/repofleet/internal/remote/githubapi"
	"github.com/temirov/repofleet/internal/secrets"
	"github.com/temirov/repofleet/internal/syncer"
	"github.com/temirov/repofleet/internal/ui"
	"github.com/temirov/repofleet/internal/utils"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// Prompter covers the interactive questions fleet commands ask.
type Prompter interface {
	Ask(question string, deadline time.Duration) prompt.Answer
	AskLine(question string) (string, error)
	AskSecret(question string) (string, error)
	AskSelection(question string, options []prompt.SelectionOption, deadline time.Duration) []string
}

// PrompterFactory constructs prompters scoped to a command.
type PrompterFactory func(command *cobra.Command) Prompter

// ManifestStore describes the document operations fleet commands require.
type ManifestStore interface {
	DocumentPath() string
	Load() manifest.Configuration
	LoadStored() manifest.Configuration
	Save(configuration manifest.Configuration) error
}

// RemoteDirectory combines project discovery with remote location resolution.
type RemoteDirectory interface {
	remote.Lister
	RepositoryRemoteURL(organizationURL string, projectName string, repositoryName string) string
	AuthorizationHeaderFor(organizationURL string, secret string) string
}

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveManifestStore(provided ManifestStore, command *cobra.Command, logger *zap.Logger) (ManifestStore, error) {
	if provided != nil {
		return provided, nil
	}

	manifestPath := ""
	contextAccessor := utils.NewCommandContextAccessor()
	if contextManifestPath, manifestPathAvailable := contextAccessor.ManifestPath(command.Context()); manifestPathAvailable {
		manifestPath = contextManifestPath
	}

	documentStore, storeError := manifest.NewStore(manifestPath, secrets.NewCodec(), logger)
	if storeError != nil {
		return nil, storeError
	}
	return documentStore, nil
}

func resolveRemoteDirectory(provided RemoteDirectory) (RemoteDirectory, error) {
	if provided != nil {
		return provided, nil
	}

	registry, registryError := remote.NewRegistry(githubapi.NewProvider(), devops.NewProvider(nil))
	if registryError != nil {
		return nil, registryError
	}
	return registry, nil
}

func resolveRepositoryManager(provided syncer.WorkingCopyManager, logger *zap.Logger, humanReadableLogging bool) (syncer.WorkingCopyManager, error) {
	if provided != nil {
		return provided, nil
	}

	var eventObserver execshell.CommandEventObserver
	if humanReadableLogging {
		eventObserver = ui.NewConsoleCommandEventLogger(logger)
	}

	shellExecutor, executorError := execshell.NewShellExecutorWithObserver(logger, execshell.NewOSCommandRunner(), eventObserver)
	if executorError != nil {
		return nil, executorError
	}

	repositoryManager, managerError := gitrepo.NewRepositoryManager(shellExecutor)
	if managerError != nil {
		return nil, managerError
	}
	return repositoryManager, nil
}

func resolvePrompter(factory PrompterFactory, command *cobra.Command, outputWriter io.Writer) Prompter {
	if factory != nil {
		if prompter := factory(command); prompter != nil {
			return prompter
		}
	}
	return prompt.NewConsolePrompter(command.InOrStdin(), outputWriter)
}
