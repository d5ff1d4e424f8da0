package fleet

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/repofleet/internal/bootstrap"
	"github.com/temirov/repofleet/internal/reconcile"
	"github.com/temirov/repofleet/internal/syncer"
	"github.com/temirov/repofleet/internal/utils"
	flagutils "github.com/temirov/repofleet/internal/utils/flags"
)

const (
	syncUseConstant                         = "sync"
	syncShortDescriptionConstant            = "Clone missing repositories and pull existing ones"
	syncLongDescriptionConstant             = "sync brings the local repository tree in line with every tracked organization, cloning what is missing and fast-forwarding what is already checked out."
	nonInteractiveFlagNameConstant          = "non-interactive"
	nonInteractiveFlagDescriptionConstant   = "Fail instead of prompting when input is required"
	dryRunFlagNameConstant                  = "dry-run"
	dryRunFlagDescriptionConstant           = "Preview clone and pull operations without running git"
	parallelClonesFlagNameConstant          = "parallel-clones"
	parallelClonesFlagDescriptionConstant   = "Number of repositories synchronized concurrently"
	manifestStoreErrorTemplateConstant      = "unable to open fleet manifest: %w"
	remoteDirectoryErrorTemplateConstant    = "unable to construct remote directory: %w"
	repositoryManagerErrorTemplateConstant  = "unable to construct repository manager: %w"
	initializerConstructionTemplateConstant = "unable to construct fleet initializer: %w"
	reconcilerConstructionTemplateConstant  = "unable to construct selection reconciler: %w"
	syncServiceConstructionTemplateConstant = "unable to construct sync engine: %w"
)

// SyncCommandBuilder assembles the sync command.
type SyncCommandBuilder struct {
	LoggerProvider               LoggerProvider
	ManifestStore                ManifestStore
	RemoteDirectory              RemoteDirectory
	RepositoryManager            syncer.WorkingCopyManager
	PrompterFactory              PrompterFactory
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() SyncConfiguration

	nonInteractiveFlagValue bool
	dryRunFlagValue         bool
}

// Build constructs the sync command.
func (builder *SyncCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   syncUseConstant,
		Short: syncShortDescriptionConstant,
		Long:  syncLongDescriptionConstant,
		RunE:  builder.run,
	}

	flagutils.AddToggleFlag(command.Flags(), &builder.nonInteractiveFlagValue, nonInteractiveFlagNameConstant, "", false, nonInteractiveFlagDescriptionConstant)
	flagutils.AddToggleFlag(command.Flags(), &builder.dryRunFlagValue, dryRunFlagNameConstant, "", false, dryRunFlagDescriptionConstant)
	command.Flags().Int(parallelClonesFlagNameConstant, defaultParallelClonesConstant, parallelClonesFlagDescriptionConstant)

	return command, nil
}

func (builder *SyncCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	nonInteractive := configuration.NonInteractive
	if command.Flags().Changed(nonInteractiveFlagNameConstant) {
		nonInteractive = builder.nonInteractiveFlagValue
	}

	dryRun := configuration.DryRun
	if command.Flags().Changed(dryRunFlagNameConstant) {
		dryRun = builder.dryRunFlagValue
	}

	parallelClones := configuration.ParallelClones
	if command.Flags().Changed(parallelClonesFlagNameConstant) {
		parallelClones, _ = command.Flags().GetInt(parallelClonesFlagNameConstant)
	}

	logger := resolveLogger(builder.LoggerProvider)
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}

	outputWriter := utils.NewFlushingWriter(command.OutOrStdout())

	documentStore, storeError := resolveManifestStore(builder.ManifestStore, command, logger)
	if storeError != nil {
		return fmt.Errorf(manifestStoreErrorTemplateConstant, storeError)
	}

	remoteDirectory, directoryError := resolveRemoteDirectory(builder.RemoteDirectory)
	if directoryError != nil {
		return fmt.Errorf(remoteDirectoryErrorTemplateConstant, directoryError)
	}

	repositoryManager, managerError := resolveRepositoryManager(builder.RepositoryManager, logger, humanReadableLogging)
	if managerError != nil {
		return fmt.Errorf(repositoryManagerErrorTemplateConstant, managerError)
	}

	prompter := resolvePrompter(builder.PrompterFactory, command, outputWriter)

	initializer, initializerError := bootstrap.NewService(remoteDirectory, prompter, documentStore, logger, outputWriter, bootstrap.ServiceConfiguration{})
	if initializerError != nil {
		return fmt.Errorf(initializerConstructionTemplateConstant, initializerError)
	}

	reconciler, reconcilerError := reconcile.NewService(remoteDirectory, prompter, logger, outputWriter, reconcile.ServiceConfiguration{NonInteractive: nonInteractive})
	if reconcilerError != nil {
		return fmt.Errorf(reconcilerConstructionTemplateConstant, reconcilerError)
	}

	syncService, serviceError := syncer.NewService(documentStore, initializer, reconciler, remoteDirectory, repositoryManager, logger, outputWriter)
	if serviceError != nil {
		return fmt.Errorf(syncServiceConstructionTemplateConstant, serviceError)
	}

	return syncService.Run(command.Context(), syncer.RunOptions{
		NonInteractive: nonInteractive,
		DryRun:         dryRun,
		ParallelClones: parallelClones,
	})
}

func (builder *SyncCommandBuilder) resolveConfiguration() SyncConfiguration {
	if builder.ConfigurationProvider == nil {
		defaults := DefaultToolsConfiguration()
		return defaults.Sync
	}

	provided := builder.ConfigurationProvider()
	return provided.sanitize()
}
