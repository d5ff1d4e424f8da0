package fleet

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/repofleet/internal/bootstrap"
	"github.com/temirov/repofleet/internal/utils"
	flagutils "github.com/temirov/repofleet/internal/utils/flags"
)

const (
	initUseConstant                 = "init"
	initShortDescriptionConstant    = "Create the fleet manifest interactively"
	initLongDescriptionConstant     = "init walks through repository root, organization, and project selection, then writes the fleet manifest with secrets protected at rest."
	forceFlagNameConstant           = "force"
	forceFlagDescriptionConstant    = "Recreate the manifest even when a complete one exists"
	manifestExistsTemplateConstant  = "Fleet manifest already exists at %s. Use --force to recreate it.\n"
	initializerRunTemplateConstant  = "fleet initialization failed: %w"
	manifestCreatedTemplateConstant = "Fleet manifest written to %s.\n"
)

// InitCommandBuilder assembles the init command.
type InitCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ManifestStore         ManifestStore
	RemoteDirectory       RemoteDirectory
	PrompterFactory       PrompterFactory
	ConfigurationProvider func() InitConfiguration

	forceFlagValue bool
}

// Build constructs the init command.
func (builder *InitCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   initUseConstant,
		Short: initShortDescriptionConstant,
		Long:  initLongDescriptionConstant,
		RunE:  builder.run,
	}

	flagutils.AddToggleFlag(command.Flags(), &builder.forceFlagValue, forceFlagNameConstant, "", false, forceFlagDescriptionConstant)

	return command, nil
}

func (builder *InitCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	force := configuration.Force
	if command.Flags().Changed(forceFlagNameConstant) {
		force = builder.forceFlagValue
	}

	logger := resolveLogger(builder.LoggerProvider)
	outputWriter := utils.NewFlushingWriter(command.OutOrStdout())

	documentStore, storeError := resolveManifestStore(builder.ManifestStore, command, logger)
	if storeError != nil {
		return fmt.Errorf(manifestStoreErrorTemplateConstant, storeError)
	}

	if !force && documentStore.Load().IsComplete() {
		fmt.Fprintf(outputWriter, manifestExistsTemplateConstant, documentStore.DocumentPath())
		return nil
	}

	remoteDirectory, directoryError := resolveRemoteDirectory(builder.RemoteDirectory)
	if directoryError != nil {
		return fmt.Errorf(remoteDirectoryErrorTemplateConstant, directoryError)
	}

	prompter := resolvePrompter(builder.PrompterFactory, command, outputWriter)

	initializer, initializerError := bootstrap.NewService(remoteDirectory, prompter, documentStore, logger, outputWriter, bootstrap.ServiceConfiguration{})
	if initializerError != nil {
		return fmt.Errorf(initializerConstructionTemplateConstant, initializerError)
	}

	if _, runError := initializer.Run(command.Context()); runError != nil {
		return fmt.Errorf(initializerRunTemplateConstant, runError)
	}

	fmt.Fprintf(outputWriter, manifestCreatedTemplateConstant, documentStore.DocumentPath())
	return nil
}

func (builder *InitCommandBuilder) resolveConfiguration() InitConfiguration {
	if builder.ConfigurationProvider == nil {
		defaults := DefaultToolsConfiguration()
		return defaults.Init
	}

	provided := builder.ConfigurationProvider()
	return provided.sanitize()
}
