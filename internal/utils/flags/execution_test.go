package flags_test

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	flagutils "github.com/temirov/releasekit/internal/utils/flags"
)

const (
	testBindingDisabledCaseNameConstant = "binding_disabled"
	testBindingEnabledCaseNameConstant  = "binding_enabled"
	testFlagUnchangedCaseNameConstant   = "flag_unchanged_uses_fallback"
	testFlagChangedCaseNameConstant     = "flag_changed_overrides_fallback"
)

func TestBindExecutionFlags(testInstance *testing.T) {
	testCases := []struct {
		name        string
		definitions flagutils.ExecutionFlagDefinitions
		expectFlag  bool
	}{
		{
			name:        testBindingDisabledCaseNameConstant,
			definitions: flagutils.ExecutionFlagDefinitions{},
			expectFlag:  false,
		},
		{
			name: testBindingEnabledCaseNameConstant,
			definitions: flagutils.ExecutionFlagDefinitions{
				DryRun: flagutils.ExecutionFlagDefinition{Name: flagutils.DryRunFlagName, Usage: flagutils.DryRunFlagUsage, Enabled: true},
			},
			expectFlag: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			command := &cobra.Command{Use: "release"}
			flagutils.BindExecutionFlags(command, flagutils.ExecutionDefaults{}, testCase.definitions)

			boundFlag := command.PersistentFlags().Lookup(flagutils.DryRunFlagName)
			if testCase.expectFlag {
				require.NotNil(testInstance, boundFlag)
			} else {
				require.Nil(testInstance, boundFlag)
			}
		})
	}
}

func TestResolveBoolFlag(testInstance *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		fallback      bool
		expectedValue bool
	}{
		{
			name:          testFlagUnchangedCaseNameConstant,
			arguments:     nil,
			fallback:      true,
			expectedValue: true,
		},
		{
			name:          testFlagChangedCaseNameConstant,
			arguments:     []string{"--" + flagutils.DryRunFlagName},
			fallback:      false,
			expectedValue: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			command := &cobra.Command{Use: "release", RunE: func(*cobra.Command, []string) error { return nil }}
			command.Flags().Bool(flagutils.DryRunFlagName, false, flagutils.DryRunFlagUsage)
			command.SetArgs(testCase.arguments)
			require.NoError(testInstance, command.Execute())

			require.Equal(testInstance, testCase.expectedValue, flagutils.ResolveBoolFlag(command, flagutils.DryRunFlagName, testCase.fallback))
		})
	}
}
