package fleet_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/repofleet/cmd/cli/fleet"
)

func executeStatusCommand(t *testing.T, builder fleet.StatusCommandBuilder) (*bytes.Buffer, error) {
	t.Helper()

	command, buildError := builder.Build()
	require.NoError(t, buildError)

	command.SetContext(context.Background())
	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)
	command.SetArgs([]string{})

	return outputBuffer, command.Execute()
}

func TestStatusCommandRendersOverview(t *testing.T) {
	manifestStore := &stubManifestStore{
		documentPath:  testDocumentPathConstant,
		configuration: buildCompleteConfiguration(t.TempDir()),
	}

	builder := fleet.StatusCommandBuilder{
		LoggerProvider: func() *zap.Logger { return zap.NewNop() },
		ManifestStore:  manifestStore,
	}

	outputBuffer, executionError := executeStatusCommand(t, builder)
	require.NoError(t, executionError)

	statusOutput := outputBuffer.String()
	require.Contains(t, statusOutput, "Manifest: "+testDocumentPathConstant)
	require.Contains(t, statusOutput, testOrganizationURLConstant)
	require.Contains(t, statusOutput, "stored (plaintext)")
}

func TestStatusCommandAnnouncesIncompleteManifest(t *testing.T) {
	manifestStore := &stubManifestStore{documentPath: testDocumentPathConstant}

	builder := fleet.StatusCommandBuilder{
		LoggerProvider: func() *zap.Logger { return zap.NewNop() },
		ManifestStore:  manifestStore,
	}

	outputBuffer, executionError := executeStatusCommand(t, builder)
	require.NoError(t, executionError)
	require.Contains(t, outputBuffer.String(), "Run repofleet init")
}
