package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/dep3audit/internal/audit"
	"github.com/temirov/dep3audit/internal/utils"
)

const (
	testApplicationNameConstant        = "dep3audit"
	testEnvironmentPrefixConstant      = "DEP3AUDIT"
	testConfigurationNameConstant      = "config"
	testConfigurationTypeConstant      = "yaml"
	testConfigurationFileNameConstant  = "config.yaml"
	testAuditConfigurationKeyConstant  = "tools.audit"
	testXDGDirectoryNameConstant       = "xdg"
	testEmbeddedConfigurationConstant  = "common:\n  log_level: info\n  log_format: structured\ntools:\n  audit:\n    format: yaml\n    concurrency: 2\n"
	testFileConfigurationConstant      = "tools:\n  audit:\n    roots:\n      - /srv/packages\n    concurrency: 8\n    only_invalid: true\n"
	testMalformedConfigurationConstant = "tools: [unterminated\n"
)

type auditApplicationConfiguration struct {
	Common struct {
		LogLevel  string `mapstructure:"log_level"`
		LogFormat string `mapstructure:"log_format"`
	} `mapstructure:"common"`
	Tools struct {
		Audit audit.CommandConfiguration `mapstructure:"audit"`
	} `mapstructure:"tools"`
}

func auditDefaultValues() map[string]any {
	defaultValues := audit.DefaultConfigurationValues(testAuditConfigurationKeyConstant)
	defaultValues["common.log_level"] = string(utils.LogLevelInfo)
	defaultValues["common.log_format"] = string(utils.LogFormatStructured)
	return defaultValues
}

func isolateUserConfigurationDirectory(testInstance *testing.T) string {
	testInstance.Helper()
	homeDirectory := testInstance.TempDir()
	testInstance.Setenv("HOME", homeDirectory)
	testInstance.Setenv("XDG_CONFIG_HOME", filepath.Join(homeDirectory, testXDGDirectoryNameConstant))
	userConfigurationDirectory, directoryError := os.UserConfigDir()
	require.NoError(testInstance, directoryError)
	return filepath.Join(userConfigurationDirectory, testApplicationNameConstant)
}

func writeConfigurationFile(testInstance *testing.T, directory string, content string) string {
	testInstance.Helper()
	require.NoError(testInstance, os.MkdirAll(directory, 0o755))
	configurationPath := filepath.Join(directory, testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(content), 0o600))
	return configurationPath
}

func TestConfigurationLoaderLayersAuditSettings(testInstance *testing.T) {
	testCases := []struct {
		name                string
		embedded            bool
		fileContent         string
		environment         map[string]string
		expectedAudit       func(configuration audit.CommandConfiguration) audit.CommandConfiguration
		expectedLogLevel    string
		expectEmbeddedUsed  bool
		expectConfiguration bool
	}{
		{
			name: "defaults_only",
			expectedAudit: func(configuration audit.CommandConfiguration) audit.CommandConfiguration {
				return configuration
			},
			expectedLogLevel: "info",
		},
		{
			name:     "embedded_over_defaults",
			embedded: true,
			expectedAudit: func(configuration audit.CommandConfiguration) audit.CommandConfiguration {
				configuration.Format = string(audit.ReportFormatYAML)
				configuration.Concurrency = 2
				return configuration
			},
			expectedLogLevel:   "info",
			expectEmbeddedUsed: true,
		},
		{
			name:        "file_over_embedded",
			embedded:    true,
			fileContent: testFileConfigurationConstant,
			expectedAudit: func(configuration audit.CommandConfiguration) audit.CommandConfiguration {
				configuration.Format = string(audit.ReportFormatYAML)
				configuration.Roots = []string{"/srv/packages"}
				configuration.Concurrency = 8
				configuration.OnlyInvalid = true
				return configuration
			},
			expectedLogLevel:    "info",
			expectEmbeddedUsed:  true,
			expectConfiguration: true,
		},
		{
			name:        "environment_over_file",
			embedded:    true,
			fileContent: testFileConfigurationConstant,
			environment: map[string]string{
				"DEP3AUDIT_TOOLS_AUDIT_FORMAT":          string(audit.ReportFormatTOML),
				"DEP3AUDIT_TOOLS_AUDIT_CONCURRENCY":     "16",
				"DEP3AUDIT_TOOLS_AUDIT_FAIL_ON_INVALID": "true",
				"DEP3AUDIT_COMMON_LOG_LEVEL":            "debug",
			},
			expectedAudit: func(configuration audit.CommandConfiguration) audit.CommandConfiguration {
				configuration.Format = string(audit.ReportFormatTOML)
				configuration.Roots = []string{"/srv/packages"}
				configuration.Concurrency = 16
				configuration.OnlyInvalid = true
				configuration.FailOnInvalid = true
				return configuration
			},
			expectedLogLevel:    "debug",
			expectEmbeddedUsed:  true,
			expectConfiguration: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			isolateUserConfigurationDirectory(testInstance)
			for environmentName, environmentValue := range testCase.environment {
				testInstance.Setenv(environmentName, environmentValue)
			}

			configurationPath := ""
			if len(testCase.fileContent) > 0 {
				configurationPath = writeConfigurationFile(testInstance, testInstance.TempDir(), testCase.fileContent)
			}

			loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{testInstance.TempDir()})
			if testCase.embedded {
				loader.SetEmbeddedConfiguration([]byte(testEmbeddedConfigurationConstant), testConfigurationTypeConstant)
			}

			configuration := auditApplicationConfiguration{}
			sources, loadError := loader.LoadConfiguration(configurationPath, auditDefaultValues(), &configuration)
			require.NoError(testInstance, loadError)
			require.Equal(testInstance, testCase.expectedAudit(audit.DefaultCommandConfiguration()), configuration.Tools.Audit)
			require.Equal(testInstance, testCase.expectedLogLevel, configuration.Common.LogLevel)
			require.Equal(testInstance, testCase.expectEmbeddedUsed, sources.EmbeddedDefaultsUsed)
			if testCase.expectConfiguration {
				require.Equal(testInstance, configurationPath, sources.ConfigFileUsed)
			} else {
				require.Empty(testInstance, sources.ConfigFileUsed)
			}
		})
	}
}

func TestConfigurationLoaderFindsUserConfigurationDirectory(testInstance *testing.T) {
	userConfigurationDirectory := isolateUserConfigurationDirectory(testInstance)
	configurationPath := writeConfigurationFile(testInstance, userConfigurationDirectory, testFileConfigurationConstant)

	searchPaths := utils.DefaultSearchPaths(testApplicationNameConstant)
	require.Equal(testInstance, []string{".", userConfigurationDirectory}, searchPaths)

	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, []string{testInstance.TempDir(), userConfigurationDirectory})
	configuration := auditApplicationConfiguration{}
	sources, loadError := loader.LoadConfiguration("", auditDefaultValues(), &configuration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, configurationPath, sources.ConfigFileUsed)
	require.Equal(testInstance, []string{"/srv/packages"}, configuration.Tools.Audit.Roots)
}

func TestConfigurationLoaderReportsMalformedFile(testInstance *testing.T) {
	configurationPath := writeConfigurationFile(testInstance, testInstance.TempDir(), testMalformedConfigurationConstant)

	loader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, nil)
	configuration := auditApplicationConfiguration{}
	_, loadError := loader.LoadConfiguration(configurationPath, auditDefaultValues(), &configuration)
	require.Error(testInstance, loadError)
	require.Contains(testInstance, loadError.Error(), configurationPath)
}
