package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/reposync/internal/utils"
)

const (
	testConfigurationNameConstant     = "reposync"
	testConfigurationTypeConstant     = "json"
	testEnvironmentPrefixConstant     = "REPOSYNC"
	testConfigurationFileNameConstant = "reposync.json"
)

type loaderTestConfiguration struct {
	ProjectName string `mapstructure:"project_name"`
	GitHubHost  string `mapstructure:"github_host"`
	LogLevel    string `mapstructure:"log_level"`
}

func TestLoadConfigurationReadsFileAndAppliesDefaults(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	configurationFilePath := filepath.Join(temporaryDirectory, testConfigurationFileNameConstant)
	configurationContent := []byte(`{"project_name": "acme"}`)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, configurationContent, 0o644))

	loader := utils.NewConfigurationLoader(
		testConfigurationNameConstant,
		testConfigurationTypeConstant,
		testEnvironmentPrefixConstant,
		[]string{temporaryDirectory},
	)

	defaultValues := map[string]any{
		"github_host": "github.com",
		"log_level":   "info",
	}

	var loadedTarget loaderTestConfiguration
	loadedMetadata, loadError := loader.LoadConfiguration(configurationFilePath, defaultValues, &loadedTarget)

	require.NoError(testInstance, loadError)
	require.Equal(testInstance, configurationFilePath, loadedMetadata.ConfigFileUsed)
	require.Equal(testInstance, "acme", loadedTarget.ProjectName)
	require.Equal(testInstance, "github.com", loadedTarget.GitHubHost)
	require.Equal(testInstance, "info", loadedTarget.LogLevel)
}

func TestLoadConfigurationMergesEmbeddedBeneathUserConfiguration(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	configurationFilePath := filepath.Join(temporaryDirectory, testConfigurationFileNameConstant)
	configurationContent := []byte(`{"project_name": "acme"}`)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, configurationContent, 0o644))

	loader := utils.NewConfigurationLoader(
		testConfigurationNameConstant,
		testConfigurationTypeConstant,
		testEnvironmentPrefixConstant,
		[]string{temporaryDirectory},
	)
	loader.SetEmbeddedConfiguration([]byte(`{"project_name": "embedded", "log_level": "debug"}`))

	var loadedTarget loaderTestConfiguration
	_, loadError := loader.LoadConfiguration(configurationFilePath, nil, &loadedTarget)

	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "acme", loadedTarget.ProjectName)
	require.Equal(testInstance, "debug", loadedTarget.LogLevel)
}

func TestLoadConfigurationMissingFileFallsBackToDefaults(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()

	loader := utils.NewConfigurationLoader(
		testConfigurationNameConstant,
		testConfigurationTypeConstant,
		testEnvironmentPrefixConstant,
		[]string{temporaryDirectory},
	)

	var loadedTarget loaderTestConfiguration
	loadedMetadata, loadError := loader.LoadConfiguration("", map[string]any{"log_level": "warn"}, &loadedTarget)

	require.NoError(testInstance, loadError)
	require.Empty(testInstance, loadedMetadata.ConfigFileUsed)
	require.Equal(testInstance, "warn", loadedTarget.LogLevel)
}

func TestLoadConfigurationReportsMalformedDocument(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	configurationFilePath := filepath.Join(temporaryDirectory, testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(`{"project_name": `), 0o644))

	loader := utils.NewConfigurationLoader(
		testConfigurationNameConstant,
		testConfigurationTypeConstant,
		testEnvironmentPrefixConstant,
		[]string{temporaryDirectory},
	)

	var loadedTarget loaderTestConfiguration
	_, loadError := loader.LoadConfiguration(configurationFilePath, nil, &loadedTarget)

	require.Error(testInstance, loadError)
}
