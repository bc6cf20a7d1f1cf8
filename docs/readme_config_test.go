package docs_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/temirov/dep3audit/cmd/cli"
)

const (
	readmeFileNameConstant           = "README.md"
	yamlFenceStartConstant           = "```yaml"
	yamlFenceEndConstant             = "```"
	configHeaderMarkerConstant       = "# config.yaml"
	parentDirectoryReferenceConstant = ".."
	configurationTypeConstant        = "yaml"
	missingHeaderMessageConstant     = "README example missing config header marker"
	missingStartFenceMessageConstant = "README example missing yaml fence start"
	missingEndFenceMessageConstant   = "README example missing yaml fence end"
)

func readmeConfigurationSnippet(testInstance *testing.T) string {
	testInstance.Helper()
	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	contentBytes, readError := os.ReadFile(filepath.Join(workingDirectory, parentDirectoryReferenceConstant, readmeFileNameConstant))
	require.NoError(testInstance, readError)

	contentText := string(contentBytes)
	headerIndex := strings.Index(contentText, configHeaderMarkerConstant)
	require.NotEqual(testInstance, -1, headerIndex, missingHeaderMessageConstant)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant)

	fenceEndRelativeIndex := strings.Index(contentText[headerIndex:], yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)

	return strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : headerIndex+fenceEndRelativeIndex])
}

func decodeConfiguration(testInstance *testing.T, content []byte) cli.ApplicationConfiguration {
	testInstance.Helper()
	viperInstance := viper.New()
	viperInstance.SetConfigType(configurationTypeConstant)
	require.NoError(testInstance, viperInstance.ReadConfig(bytes.NewReader(content)))

	configuration := cli.ApplicationConfiguration{}
	require.NoError(testInstance, viperInstance.Unmarshal(&configuration))
	return configuration
}

func TestReadmeConfigurationMatchesEmbeddedDefaults(testInstance *testing.T) {
	snippet := readmeConfigurationSnippet(testInstance)
	embeddedContent, _ := cli.EmbeddedDefaultConfiguration()

	require.Equal(testInstance, decodeConfiguration(testInstance, embeddedContent), decodeConfiguration(testInstance, []byte(snippet)))
}
