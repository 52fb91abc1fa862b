package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/temirov/reposync/cmd/cli"
)

const (
	testConfigurationFileNameConstant = "reposync.json"
	testConfigurationContentConstant  = `{
  "common": {"log_level": "error", "log_format": "structured"},
  "project_name": "acme",
  "repo_org": "acme-io",
  "docs_base_path": "/tmp/docs",
  "repositories": [{"name": "svc-a"}],
  "documentation_sources": [{"repo": "acme-io/handbook", "tag": "v2"}]
}`
	testSyncCommandNameConstant   = "sync"
	testCommitCommandNameConstant = "commit"
	testPushCommandNameConstant   = "push"
)

func writeConfigurationFile(testInstance *testing.T) string {
	testInstance.Helper()

	configurationPath := filepath.Join(testInstance.TempDir(), testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testConfigurationContentConstant), 0o600))
	return configurationPath
}

func TestApplicationRegistersWorkspaceCommands(testInstance *testing.T) {
	application := cli.NewApplication()

	registeredCommandNames := map[string]bool{}
	for _, registeredCommand := range application.RootCommand().Commands() {
		registeredCommandNames[registeredCommand.Name()] = true
	}

	require.True(testInstance, registeredCommandNames[testSyncCommandNameConstant])
	require.True(testInstance, registeredCommandNames[testCommitCommandNameConstant])
	require.True(testInstance, registeredCommandNames[testPushCommandNameConstant])
}

func TestApplicationPrintsResolvedConfiguration(testInstance *testing.T) {
	configurationPath := writeConfigurationFile(testInstance)

	application := cli.NewApplication()
	rootCommand := application.RootCommand()

	outputBuffer := &bytes.Buffer{}
	rootCommand.SetOut(outputBuffer)
	rootCommand.SetErr(outputBuffer)
	rootCommand.SetArgs([]string{"--config", configurationPath, "--print-config"})

	require.NoError(testInstance, rootCommand.Execute())
	require.Contains(testInstance, outputBuffer.String(), `"project_name": "acme"`)
	require.Contains(testInstance, outputBuffer.String(), `"repo_org": "acme-io"`)
	require.Contains(testInstance, outputBuffer.String(), `"github_host": "github.com"`)
}

func TestApplicationRejectsMalformedConfiguration(testInstance *testing.T) {
	configurationPath := filepath.Join(testInstance.TempDir(), testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte("{not json"), 0o600))

	application := cli.NewApplication()
	rootCommand := application.RootCommand()

	rootCommand.SetOut(&bytes.Buffer{})
	rootCommand.SetErr(&bytes.Buffer{})
	rootCommand.SetArgs([]string{"--config", configurationPath})

	require.Error(testInstance, rootCommand.Execute())
}

func TestEmbeddedDefaultConfigurationDecodes(testInstance *testing.T) {
	embeddedContent, configurationType := cli.EmbeddedDefaultConfiguration()
	require.NotEmpty(testInstance, embeddedContent)
	require.Equal(testInstance, "json", configurationType)

	viperInstance := viper.New()
	viperInstance.SetConfigType(configurationType)
	require.NoError(testInstance, viperInstance.ReadConfig(bytes.NewReader(embeddedContent)))

	var decodedConfiguration cli.ApplicationConfiguration
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "mapstructure", Result: &decodedConfiguration, Squash: true})
	require.NoError(testInstance, decoderError)
	require.NoError(testInstance, decoder.Decode(viperInstance.AllSettings()))

	require.Equal(testInstance, "info", decodedConfiguration.Common.LogLevel)
	require.Equal(testInstance, "structured", decodedConfiguration.Common.LogFormat)
	require.Equal(testInstance, "github.com", decodedConfiguration.Workspace.GitHubHost)
}
