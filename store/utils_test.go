package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveDSNOptions(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		keys        []string
		expected    string
		expectedErr error
	}{
		{"no options, no keys", "bigtable://dev.dev", []string{}, "bigtable://dev.dev", nil},
		{"no options, multiple keys", "bigtable://dev.dev", []string{"a", "b", "c"}, "bigtable://dev.dev", nil},

		{"one option, no matching key", "bigtable://dev.dev?e=5", []string{"a", "b", "c"}, "bigtable://dev.dev?e=5", nil},
		{"one option, multiple matching key", "bigtable://dev.dev?c=3", []string{"c", "c", "c"}, "bigtable://dev.dev", nil},

		{"multiple options, no matching key", "bigtable://dev.dev?a=1&b=2&e=5", []string{"c", "f", "g"}, "bigtable://dev.dev?a=1&b=2&e=5", nil},
		{"multiple options, multiple matching key", "bigtable://dev.dev?a=1&b=2&e=5", []string{"b", "e", "e"}, "bigtable://dev.dev?a=1", nil},

		{"credentials", "bigtable://prod.main?credentials=/etc/key.json&compression=none", []string{"credentials"}, "bigtable://prod.main?compression=none", nil},

		{"multiple options with duplicates, multiple matching key", "bigtable://dev.dev?a=1&b=2&e=5&a=11&b=22&e=55", []string{"b", "e", "e"}, "bigtable://dev.dev?a=1&a=11", nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			actual, err := RemoveDSNOptions(test.in, test.keys...)
			if test.expectedErr == nil {
				require.NoError(t, err)
				assert.Equal(t, test.expected, actual)
			} else {
				assert.Equal(t, test.expectedErr, err)
			}
		})
	}
}
