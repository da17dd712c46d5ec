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
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const (
	DefaultMaxVersions         = 1
	DefaultMaxRowsBeforeFlush  = 85000
	DefaultMaxBytesBeforeFlush = 85000000

	devProject  = "dev"
	devInstance = "dev"
)

// ErrInvalidConfig is wrapped by every error returned by `Config.Validate`.
var ErrInvalidConfig = errors.New("config")

// Config holds everything needed to reach a Bigtable instance. When `Host`
// and `Port` are set, the connection goes to that endpoint without TLS nor
// authentication, which is how the emulator is reached.
type Config struct {
	Project         string
	Instance        string
	Host            string
	Port            string
	CredentialsFile string

	// Compression is the value compression mode, see `store.NewCompressor`.
	Compression string
	MaxVersions int

	MaxRowsBeforeFlush  uint64
	MaxBytesBeforeFlush uint64
}

func NewConfig() *Config {
	return &Config{
		MaxVersions:         DefaultMaxVersions,
		MaxRowsBeforeFlush:  DefaultMaxRowsBeforeFlush,
		MaxBytesBeforeFlush: DefaultMaxBytesBeforeFlush,
	}
}

func (c *Config) Emulated() bool {
	return c.Host != ""
}

func (c *Config) Endpoint() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c *Config) Validate() error {
	if (c.Host == "") != (c.Port == "") {
		return fmt.Errorf("%w: host and port must be set together", ErrInvalidConfig)
	}

	if c.Port != "" {
		if _, err := strconv.ParseUint(c.Port, 10, 16); err != nil {
			return fmt.Errorf("%w: invalid port %q", ErrInvalidConfig, c.Port)
		}
	}

	if c.Emulated() {
		if c.Project == "" {
			c.Project = devProject
		}
		if c.Instance == "" {
			c.Instance = devInstance
		}
	}

	if c.Project == "" || c.Instance == "" {
		return fmt.Errorf("%w: project and instance are required", ErrInvalidConfig)
	}

	if c.MaxVersions <= 0 {
		return fmt.Errorf("%w: max versions must be greater than 0, got %d", ErrInvalidConfig, c.MaxVersions)
	}

	return nil
}

func (c *Config) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("project", c.Project)
	enc.AddString("instance", c.Instance)
	if c.Emulated() {
		enc.AddString("endpoint", c.Endpoint())
	}
	enc.AddString("compression", c.Compression)
	enc.AddInt("max_versions", c.MaxVersions)
	enc.AddUint64("max_rows_before_flush", c.MaxRowsBeforeFlush)
	enc.AddUint64("max_bytes_before_flush", c.MaxBytesBeforeFlush)
	return nil
}

// ParseDSN supports bigtable://project.instance?host=localhost&port=8086&compression=none
func ParseDSN(dsn string) (*Config, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, err
	}

	if u.Scheme != "bigtable" {
		return nil, fmt.Errorf("dsn: invalid scheme %q, expected 'bigtable'", u.Scheme)
	}

	hostParts := strings.Split(u.Host, ".")
	if len(hostParts) != 2 {
		return nil, fmt.Errorf("dsn: invalid, ensure host component looks like 'project.instance'")
	}

	if path := strings.Trim(u.Path, "/"); path != "" {
		return nil, fmt.Errorf("dsn: path component invalid, tables are named on each operation")
	}

	query := u.Query()
	cfg := NewConfig()
	cfg.Project = hostParts[0]
	cfg.Instance = hostParts[1]
	cfg.Host = query.Get("host")
	cfg.Port = query.Get("port")
	cfg.CredentialsFile = query.Get("credentials")
	cfg.Compression = query.Get("compression")

	if qMaxVersions := query.Get("maxVersions"); qMaxVersions != "" {
		mv, err := strconv.ParseUint(qMaxVersions, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("dsn: invalid parameter for maxVersions, %s", err)
		}
		cfg.MaxVersions = int(mv)
	}

	if qMaxRows := query.Get("maxRowsBeforeFlush"); qMaxRows != "" {
		mr, err := strconv.ParseUint(qMaxRows, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("dsn: invalid parameter for maxRowsBeforeFlush, %s", err)
		}
		cfg.MaxRowsBeforeFlush = mr
	}

	if qMaxBytes := query.Get("maxBytesBeforeFlush"); qMaxBytes != "" {
		mb, err := strconv.ParseUint(qMaxBytes, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("dsn: invalid parameter for maxBytesBeforeFlush, %s", err)
		}
		cfg.MaxBytesBeforeFlush = mb
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("dsn: %w", err)
	}

	return cfg, nil
}

// LoadProperties reads a Java-style properties file. Recognized keys are
// `project`, `instance`, `host`, `port`, `credentials`, `compression` and
// `maxVersions`. The `zookeeperHost` and `zookeeperPort` keys are accepted as
// aliases of `host` and `port` so existing connection files keep working.
func LoadProperties(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("properties")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read properties %q: %w", path, err)
	}

	cfg := NewConfig()
	cfg.Project = v.GetString("project")
	cfg.Instance = v.GetString("instance")
	cfg.Host = firstNonEmpty(v.GetString("host"), v.GetString("zookeeperHost"))
	cfg.Port = firstNonEmpty(v.GetString("port"), v.GetString("zookeeperPort"))
	cfg.CredentialsFile = v.GetString("credentials")
	cfg.Compression = v.GetString("compression")
	if v.IsSet("maxVersions") {
		cfg.MaxVersions = v.GetInt("maxVersions")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("properties %q: %w", path, err)
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
