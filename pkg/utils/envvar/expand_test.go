package envvar_test

import (
	"testing"

	"github.com/kroft-dev/kroft/pkg/utils/envvar"
	"github.com/stretchr/testify/assert"
)

func TestExpand(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		envVars  map[string]string
		expected string
	}{
		{
			name:     "empty_string",
			input:    "",
			expected: "",
		},
		{
			name:     "no_placeholders",
			input:    "/home/pi/.ssh/id_ed25519",
			expected: "/home/pi/.ssh/id_ed25519",
		},
		{
			name:     "single_placeholder",
			input:    "${HOMELAB_DIR}/kroft.yaml",
			envVars:  map[string]string{"HOMELAB_DIR": "/srv/homelab"},
			expected: "/srv/homelab/kroft.yaml",
		},
		{
			name:     "multiple_placeholders",
			input:    "${USER_A}@${HOST_A}",
			envVars:  map[string]string{"USER_A": "pi", "HOST_A": "192.168.1.10"},
			expected: "pi@192.168.1.10",
		},
		{
			name:     "unset_variable_expands_to_empty",
			input:    "prefix-${KROFT_TEST_UNSET_VARIABLE}-suffix",
			expected: "prefix--suffix",
		},
		{
			name:     "bare_dollar_not_expanded",
			input:    "cost is $5",
			expected: "cost is $5",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			for key, value := range testCase.envVars {
				t.Setenv(key, value)
			}

			assert.Equal(t, testCase.expected, envvar.Expand(testCase.input))
		})
	}
}
