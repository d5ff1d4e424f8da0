package fleet

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/repofleet/internal/status"
	"github.com/temirov/repofleet/internal/utils"
)

const (
	statusUseConstant                         = "status"
	statusShortDescriptionConstant            = "Show the tracked fleet without touching the network"
	statusLongDescriptionConstant             = "status summarizes the stored fleet manifest: organizations, tracked projects, repository counts, and secret state."
	statusServiceConstructionTemplateConstant = "unable to construct status overview: %w"
)

// StatusCommandBuilder assembles the status command.
type StatusCommandBuilder struct {
	LoggerProvider LoggerProvider
	ManifestStore  ManifestStore
}

// Build constructs the status command.
func (builder *StatusCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   statusUseConstant,
		Short: statusShortDescriptionConstant,
		Long:  statusLongDescriptionConstant,
		RunE:  builder.run,
	}

	return command, nil
}

func (builder *StatusCommandBuilder) run(command *cobra.Command, arguments []string) error {
	logger := resolveLogger(builder.LoggerProvider)
	outputWriter := utils.NewFlushingWriter(command.OutOrStdout())

	documentStore, storeError := resolveManifestStore(builder.ManifestStore, command, logger)
	if storeError != nil {
		return fmt.Errorf(manifestStoreErrorTemplateConstant, storeError)
	}

	overview, overviewError := status.NewService(documentStore, outputWriter)
	if overviewError != nil {
		return fmt.Errorf(statusServiceConstructionTemplateConstant, overviewError)
	}

	overview.Report()
	return nil
}
