// Copyright 2019 dfuse Platform Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package basebigt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSNParser(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expect      Config
		expectError string
	}{
		{
			name:   "happy",
			input:  "bigtable://project.instance",
			expect: Config{Project: "project", Instance: "instance", MaxVersions: 1, MaxRowsBeforeFlush: 85000, MaxBytesBeforeFlush: 85000000},
		},
		{
			name:   "emulator endpoint",
			input:  "bigtable://dev.dev?host=localhost&port=8086&compression=none",
			expect: Config{Project: "dev", Instance: "dev", Host: "localhost", Port: "8086", Compression: "none", MaxVersions: 1, MaxRowsBeforeFlush: 85000, MaxBytesBeforeFlush: 85000000},
		},
		{
			name:   "specific flushing props",
			input:  "bigtable://project.instance?maxRowsBeforeFlush=50&maxBytesBeforeFlush=1000&maxVersions=3&credentials=/tmp/key.json",
			expect: Config{Project: "project", Instance: "instance", CredentialsFile: "/tmp/key.json", MaxVersions: 3, MaxRowsBeforeFlush: 50, MaxBytesBeforeFlush: 1000},
		},
		{
			name:        "invalid scheme",
			input:       "bigkv://project.instance",
			expectError: "dsn: invalid scheme \"bigkv\", expected 'bigtable'",
		},
		{
			name:        "path present",
			input:       "bigtable://project.instance/tbl",
			expectError: "dsn: path component invalid, tables are named on each operation",
		},
		{
			name:        "invalid host short",
			input:       "bigtable://project",
			expectError: "dsn: invalid, ensure host component looks like 'project.instance'",
		},
		{
			name:        "invalid host long",
			input:       "bigtable://project.instance.whatever",
			expectError: "dsn: invalid, ensure host component looks like 'project.instance'",
		},
		{
			name:        "host without port",
			input:       "bigtable://project.instance?host=localhost",
			expectError: "dsn: config: host and port must be set together",
		},
		{
			name:        "invalid port",
			input:       "bigtable://project.instance?host=localhost&port=http",
			expectError: "dsn: config: invalid port \"http\"",
		},
		{
			name:        "invalid max rows",
			input:       "bigtable://project.instance?maxRowsBeforeFlush=r2d2",
			expectError: "dsn: invalid parameter for maxRowsBeforeFlush, strconv.ParseUint: parsing \"r2d2\": invalid syntax",
		},
		{
			name:        "zero max versions",
			input:       "bigtable://project.instance?maxVersions=0",
			expectError: "dsn: config: max versions must be greater than 0, got 0",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := ParseDSN(test.input)
			if test.expectError == "" {
				require.NoError(t, err)
				assert.Equal(t, test.expect, *cfg)
			} else {
				require.Error(t, err)
				assert.Equal(t, test.expectError, err.Error())
			}
		})
	}
}

func TestLoadProperties(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		expect      Config
		expectError bool
	}{
		{
			name:    "legacy zookeeper keys",
			content: "zookeeperHost=127.0.0.1\nzookeeperPort=2181\n",
			expect:  Config{Project: "dev", Instance: "dev", Host: "127.0.0.1", Port: "2181", MaxVersions: 1, MaxRowsBeforeFlush: 85000, MaxBytesBeforeFlush: 85000000},
		},
		{
			name:    "full",
			content: "project=acme\ninstance=main\nhost=emulator\nport=8086\ncompression=none\nmaxVersions=5\n",
			expect:  Config{Project: "acme", Instance: "main", Host: "emulator", Port: "8086", Compression: "none", MaxVersions: 5, MaxRowsBeforeFlush: 85000, MaxBytesBeforeFlush: 85000000},
		},
		{
			name:    "production",
			content: "project=acme\ninstance=main\ncredentials=/etc/key.json\n",
			expect:  Config{Project: "acme", Instance: "main", CredentialsFile: "/etc/key.json", MaxVersions: 1, MaxRowsBeforeFlush: 85000, MaxBytesBeforeFlush: 85000000},
		},
		{
			name:        "missing instance",
			content:     "project=acme\n",
			expectError: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bigtable.properties")
			require.NoError(t, os.WriteFile(path, []byte(test.content), 0644))

			cfg, err := LoadProperties(path)
			if test.expectError {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expect, *cfg)
		})
	}
}

func TestLoadPropertiesMissingFile(t *testing.T) {
	_, err := LoadProperties(filepath.Join(t.TempDir(), "absent.properties"))
	require.Error(t, err)
}
