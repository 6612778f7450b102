package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/releasekit/internal/utils"
)

const (
	testConfigurationNameConstant        = "config"
	testConfigurationTypeConstant        = "yaml"
	testEnvironmentPrefixConstant        = "TESTRELEASEKIT"
	testArtifactsDirectoryKeyConstant    = "tools.release.artifacts_dir"
	testEnvironmentVariableNameConstant  = "TESTRELEASEKIT_TOOLS_RELEASE_ARTIFACTS_DIR"
	testDefaultArtifactsDirectory        = "dist"
	testEmbeddedArtifactsDirectory       = "build"
	testFileArtifactsDirectory           = "artifacts"
	testEnvironmentArtifactsDirectory    = "/srv/artifacts"
	testEmbeddedConfigurationConstant    = "tools:\n  release:\n    artifacts_dir: build\n"
	testFileConfigurationConstant        = "tools:\n  release:\n    artifacts_dir: artifacts\n"
	testMalformedConfigurationConstant   = "tools:\n  release: [\n"
	testConfigurationFileNameConstant    = "config.yaml"
	testNestedConfigurationDirectoryName = "nested"
)

type releaseConfigurationFixture struct {
	Tools struct {
		Release struct {
			ArtifactsDirectory string `mapstructure:"artifacts_dir"`
		} `mapstructure:"release"`
	} `mapstructure:"tools"`
}

func newTestConfigurationLoader(searchPaths ...string) *utils.ConfigurationLoader {
	return utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, searchPaths)
}

func defaultTestValues() map[string]any {
	return map[string]any{testArtifactsDirectoryKeyConstant: testDefaultArtifactsDirectory}
}

func writeConfigurationFile(testInstance *testing.T, directory string, content string) string {
	configurationFilePath := filepath.Join(directory, testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(content), 0o600))
	return configurationFilePath
}

func TestLoadConfigurationPrecedence(testInstance *testing.T) {
	testInstance.Run("defaults_apply_without_other_sources", func(testInstance *testing.T) {
		fixture := releaseConfigurationFixture{}
		metadata, loadError := newTestConfigurationLoader(testInstance.TempDir()).LoadConfiguration("", defaultTestValues(), &fixture)
		require.NoError(testInstance, loadError)
		require.Equal(testInstance, testDefaultArtifactsDirectory, fixture.Tools.Release.ArtifactsDirectory)
		require.Empty(testInstance, metadata.ConfigFileUsed)
	})

	testInstance.Run("embedded_overrides_defaults", func(testInstance *testing.T) {
		loader := newTestConfigurationLoader(testInstance.TempDir())
		loader.SetEmbeddedConfiguration([]byte(testEmbeddedConfigurationConstant), testConfigurationTypeConstant)

		fixture := releaseConfigurationFixture{}
		_, loadError := loader.LoadConfiguration("", defaultTestValues(), &fixture)
		require.NoError(testInstance, loadError)
		require.Equal(testInstance, testEmbeddedArtifactsDirectory, fixture.Tools.Release.ArtifactsDirectory)
	})

	testInstance.Run("file_overrides_embedded", func(testInstance *testing.T) {
		searchDirectory := testInstance.TempDir()
		writeConfigurationFile(testInstance, searchDirectory, testFileConfigurationConstant)

		loader := newTestConfigurationLoader(searchDirectory)
		loader.SetEmbeddedConfiguration([]byte(testEmbeddedConfigurationConstant), testConfigurationTypeConstant)

		fixture := releaseConfigurationFixture{}
		metadata, loadError := loader.LoadConfiguration("", defaultTestValues(), &fixture)
		require.NoError(testInstance, loadError)
		require.Equal(testInstance, testFileArtifactsDirectory, fixture.Tools.Release.ArtifactsDirectory)
		require.Equal(testInstance, filepath.Join(searchDirectory, testConfigurationFileNameConstant), metadata.ConfigFileUsed)
	})

	testInstance.Run("environment_overrides_file", func(testInstance *testing.T) {
		searchDirectory := testInstance.TempDir()
		writeConfigurationFile(testInstance, searchDirectory, testFileConfigurationConstant)
		testInstance.Setenv(testEnvironmentVariableNameConstant, testEnvironmentArtifactsDirectory)

		fixture := releaseConfigurationFixture{}
		_, loadError := newTestConfigurationLoader(searchDirectory).LoadConfiguration("", defaultTestValues(), &fixture)
		require.NoError(testInstance, loadError)
		require.Equal(testInstance, testEnvironmentArtifactsDirectory, fixture.Tools.Release.ArtifactsDirectory)
	})
}

func TestLoadConfigurationExplicitFilePath(testInstance *testing.T) {
	configurationDirectory := filepath.Join(testInstance.TempDir(), testNestedConfigurationDirectoryName)
	require.NoError(testInstance, os.MkdirAll(configurationDirectory, 0o755))
	configurationFilePath := writeConfigurationFile(testInstance, configurationDirectory, testFileConfigurationConstant)

	fixture := releaseConfigurationFixture{}
	metadata, loadError := newTestConfigurationLoader(testInstance.TempDir()).LoadConfiguration(configurationFilePath, defaultTestValues(), &fixture)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, testFileArtifactsDirectory, fixture.Tools.Release.ArtifactsDirectory)
	require.Equal(testInstance, configurationFilePath, metadata.ConfigFileUsed)
}

func TestLoadConfigurationReportsMalformedFiles(testInstance *testing.T) {
	searchDirectory := testInstance.TempDir()
	writeConfigurationFile(testInstance, searchDirectory, testMalformedConfigurationConstant)

	fixture := releaseConfigurationFixture{}
	_, loadError := newTestConfigurationLoader(searchDirectory).LoadConfiguration("", defaultTestValues(), &fixture)
	require.Error(testInstance, loadError)
	require.Contains(testInstance, loadError.Error(), "unable to read configuration")
}
