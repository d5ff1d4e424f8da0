package fleet_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/repofleet/cmd/cli/fleet"
	"github.com/temirov/repofleet/internal/manifest"
	"github.com/temirov/repofleet/internal/prompt"
	flagutils "github.com/temirov/repofleet/internal/utils/flags"
)

func executeInitCommand(t *testing.T, builder fleet.InitCommandBuilder, arguments []string) (*bytes.Buffer, error) {
	t.Helper()

	command, buildError := builder.Build()
	require.NoError(t, buildError)

	command.SetContext(context.Background())
	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)

	normalizedArguments := flagutils.NormalizeToggleArguments(arguments)
	if normalizedArguments == nil {
		normalizedArguments = []string{}
	}
	command.SetArgs(normalizedArguments)

	return outputBuffer, command.Execute()
}

func TestInitCommandManifestLifecycle(t *testing.T) {
	testCases := []struct {
		name            string
		storedComplete  bool
		configuration   fleet.InitConfiguration
		arguments       []string
		expectInterview bool
	}{
		{
			name:            "skips_when_manifest_complete",
			storedComplete:  true,
			arguments:       []string{},
			expectInterview: false,
		},
		{
			name:            "force_flag_recreates_manifest",
			storedComplete:  true,
			arguments:       []string{"--force"},
			expectInterview: true,
		},
		{
			name:            "configured_force_recreates_manifest",
			storedComplete:  true,
			configuration:   fleet.InitConfiguration{Force: true},
			arguments:       []string{},
			expectInterview: true,
		},
		{
			name:            "first_run_creates_manifest",
			storedComplete:  false,
			arguments:       []string{},
			expectInterview: true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		t.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(t *testing.T) {
			repositoryRoot := t.TempDir()
			manifestStore := &stubManifestStore{documentPath: testDocumentPathConstant}
			if testCase.storedComplete {
				manifestStore.configuration = buildCompleteConfiguration(repositoryRoot)
			}

			prompterStub := &scriptedPrompter{
				askLineAnswers:   []string{repositoryRoot, testOrganizationURLConstant},
				askSecretAnswers: []string{testSecretConstant},
				askAnswers:       []prompt.Answer{prompt.AnswerNo, prompt.AnswerNo},
			}
			capturedConfiguration := testCase.configuration

			builder := fleet.InitCommandBuilder{
				LoggerProvider:  func() *zap.Logger { return zap.NewNop() },
				ManifestStore:   manifestStore,
				RemoteDirectory: buildTrackedRemoteDirectory(),
				PrompterFactory: func(*cobra.Command) fleet.Prompter {
					return prompterStub
				},
				ConfigurationProvider: func() fleet.InitConfiguration {
					return capturedConfiguration
				},
			}

			outputBuffer, executionError := executeInitCommand(t, builder, testCase.arguments)
			require.NoError(t, executionError)

			if !testCase.expectInterview {
				require.Empty(t, manifestStore.savedConfigurations)
				require.Empty(t, prompterStub.askedQuestions)
				require.Contains(t, outputBuffer.String(), "already exists at "+testDocumentPathConstant)
				return
			}

			require.Len(t, manifestStore.savedConfigurations, 1)
			savedConfiguration := manifestStore.savedConfigurations[0]
			require.Equal(t, repositoryRoot, savedConfiguration.RepositoryRoot)
			require.Len(t, savedConfiguration.Organizations, 1)
			require.Equal(t, testOrganizationURLConstant, savedConfiguration.Organizations[0].BaseURL)
			require.Equal(t, testSecretConstant, savedConfiguration.Organizations[0].Secret)
			require.Equal(t,
				[]manifest.Project{{Name: testProjectNameConstant, Repositories: []string{testRepositoryNameConstant}}},
				savedConfiguration.Organizations[0].Projects)
			require.Contains(t, outputBuffer.String(), "Fleet manifest written to "+testDocumentPathConstant)
		})
	}
}
