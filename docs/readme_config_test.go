package docs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/repofleet/cmd/cli"
	"github.com/temirov/repofleet/cmd/cli/fleet"
)

const (
	readmeFileNameConstant           = "README.md"
	yamlFenceStartConstant           = "```yaml"
	yamlFenceEndConstant             = "```"
	configHeaderMarkerConstant       = "# config.yaml"
	configurationTypeConstant        = "yaml"
	parentDirectoryReferenceConstant = ".."
	missingHeaderMessageConstant     = "README example missing config header marker"
	missingStartFenceMessageConstant = "README example missing yaml fence start"
	missingEndFenceMessageConstant   = "README example missing yaml fence end"
)

type readmeConfigurationDocument struct {
	Common map[string]any            `yaml:"common"`
	Tools  map[string]map[string]any `yaml:"tools"`
}

func TestReadmeConfigurationExampleParses(testInstance *testing.T) {
	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	readmePath := filepath.Join(workingDirectory, parentDirectoryReferenceConstant, readmeFileNameConstant)
	contentBytes, readError := os.ReadFile(readmePath)
	require.NoError(testInstance, readError)

	contentText := string(contentBytes)
	headerIndex := strings.Index(contentText, configHeaderMarkerConstant)
	require.NotEqual(testInstance, -1, headerIndex, missingHeaderMessageConstant)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant)

	remainingText := contentText[headerIndex:]
	fenceEndRelativeIndex := strings.Index(remainingText, yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)
	fenceEndIndex := headerIndex + fenceEndRelativeIndex

	snippetContent := strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : fenceEndIndex])

	var document readmeConfigurationDocument
	require.NoError(testInstance, yaml.Unmarshal([]byte(snippetContent), &document))
	require.Contains(testInstance, document.Common, "log_level")
	require.Contains(testInstance, document.Common, "log_format")
	require.Contains(testInstance, document.Common, "manifest_path")
	require.Contains(testInstance, document.Tools, "sync")
	require.Contains(testInstance, document.Tools, "init")

	configurationReader := viper.New()
	configurationReader.SetConfigType(configurationTypeConstant)
	require.NoError(testInstance, configurationReader.ReadConfig(strings.NewReader(snippetContent)))

	var applicationConfiguration cli.ApplicationConfiguration
	require.NoError(testInstance, configurationReader.Unmarshal(&applicationConfiguration))

	require.Equal(testInstance, "info", applicationConfiguration.Common.LogLevel)
	require.Equal(testInstance, "structured", applicationConfiguration.Common.LogFormat)
	require.Empty(testInstance, applicationConfiguration.Common.ManifestPath)

	defaultToolsConfiguration := fleet.DefaultToolsConfiguration()
	require.Equal(testInstance, defaultToolsConfiguration.Sync, applicationConfiguration.Tools.Sync)
	require.Equal(testInstance, defaultToolsConfiguration.Init, applicationConfiguration.Tools.Init)
}
