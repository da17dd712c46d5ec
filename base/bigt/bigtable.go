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
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/bigtable"
	"go.opencensus.io/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Bigtable is a connection to a Bigtable instance, it owns both the data
// client and the admin client. It is safe for concurrent use and must be
// closed by its owner once done.
type Bigtable struct {
	Client *bigtable.Client
	Admin  *bigtable.AdminClient

	config *Config
}

func New(ctx context.Context, config *Config, opts ...option.ClientOption) (*Bigtable, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	opts = append(clientOptions(config), opts...)

	zlog.Info("connecting to bigtable", zap.Object("config", config))
	client, err := bigtable.NewClient(ctx, config.Project, config.Instance, opts...)
	if err != nil {
		return nil, fmt.Errorf("bigtable client: %w", err)
	}

	adminClient, err := bigtable.NewAdminClient(ctx, config.Project, config.Instance, opts...)
	if err != nil {
		if closeErr := client.Close(); closeErr != nil {
			zlog.Warn("unable to close bigtable client", zap.Error(closeErr))
		}
		return nil, fmt.Errorf("bigtable admin client: %w", err)
	}

	return &Bigtable{
		Client: client,
		Admin:  adminClient,
		config: config,
	}, nil
}

func clientOptions(config *Config) (out []option.ClientOption) {
	if config.Emulated() {
		return []option.ClientOption{
			option.WithEndpoint(config.Endpoint()),
			option.WithoutAuthentication(),
			option.WithGRPCDialOption(grpc.WithInsecure()),
		}
	}

	if config.CredentialsFile != "" {
		out = append(out, option.WithCredentialsFile(config.CredentialsFile))
	}

	return out
}

func (b *Bigtable) Config() *Config {
	return b.config
}

// Table returns a short-lived handle on table `name`.
func (b *Bigtable) Table(name string) *BaseTable {
	return NewBaseTable(name, nil, b.Client, b.config.MaxRowsBeforeFlush, b.config.MaxBytesBeforeFlush)
}

func (b *Bigtable) Close() error {
	return multierr.Combine(
		b.Admin.Close(),
		b.Client.Close(),
	)
}

func (b *Bigtable) StartSpan(ctx context.Context, protocol string, name string, attributes ...trace.Attribute) (context.Context, *trace.Span) {
	childCtx, span := trace.StartSpan(ctx, fmt.Sprintf("cfstore/%s/%s", protocol, name))
	span.AddAttributes(append(attributes, trace.StringAttribute("instance", b.config.Instance))...)

	return childCtx, span
}

func IsAlreadyExistsError(err error) bool {
	return hasCode(err, codes.AlreadyExists)
}

func IsNotFoundError(err error) bool {
	return hasCode(err, codes.NotFound)
}

func hasCode(err error, code codes.Code) bool {
	var grpcErr interface{ GRPCStatus() *status.Status }
	if !errors.As(err, &grpcErr) {
		return false
	}

	return grpcErr.GRPCStatus().Code() == code
}
