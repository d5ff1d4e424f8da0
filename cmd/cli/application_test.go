package cli_test

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/temirov/repofleet/cmd/cli"
	"github.com/temirov/repofleet/cmd/cli/fleet"
)

func TestEmbeddedDefaultConfigurationMatchesDefaults(t *testing.T) {
	embeddedContent, embeddedType := cli.EmbeddedDefaultConfiguration()
	require.NotEmpty(t, embeddedContent)

	configurationReader := viper.New()
	configurationReader.SetConfigType(embeddedType)
	require.NoError(t, configurationReader.ReadConfig(bytes.NewReader(embeddedContent)))

	var decodedConfiguration cli.ApplicationConfiguration
	require.NoError(t, configurationReader.Unmarshal(&decodedConfiguration))

	require.Equal(t, "info", decodedConfiguration.Common.LogLevel)
	require.Equal(t, "structured", decodedConfiguration.Common.LogFormat)
	require.Empty(t, decodedConfiguration.Common.ManifestPath)

	defaultToolsConfiguration := fleet.DefaultToolsConfiguration()
	require.Equal(t, defaultToolsConfiguration.Sync, decodedConfiguration.Tools.Sync)
	require.Equal(t, defaultToolsConfiguration.Init, decodedConfiguration.Tools.Init)
}

func TestApplicationRootCommandListsSubcommands(t *testing.T) {
	originalArguments := os.Args
	defer func() {
		os.Args = originalArguments
	}()
	os.Args = []string{"repofleet"}

	pipeReader, pipeWriter, pipeError := os.Pipe()
	require.NoError(t, pipeError)

	originalStdout := os.Stdout
	os.Stdout = pipeWriter
	defer func() {
		os.Stdout = originalStdout
	}()

	executionError := cli.NewApplication().Execute()

	os.Stdout = originalStdout
	require.NoError(t, pipeWriter.Close())

	capturedBytes, readError := io.ReadAll(pipeReader)
	require.NoError(t, readError)
	require.NoError(t, pipeReader.Close())
	require.NoError(t, executionError)

	helpOutput := string(capturedBytes)
	require.Contains(t, helpOutput, "repofleet")
	require.Contains(t, helpOutput, "sync")
	require.Contains(t, helpOutput, "init")
	require.Contains(t, helpOutput, "status")
}
