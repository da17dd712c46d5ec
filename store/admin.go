package store

import (
	"context"
	"fmt"
	"sort"

	basebigt "github.com/streamingfast/cfstore/base/bigt"
	"go.uber.org/zap"
)

// CreateTable creates `name` with the given column families, `DefaultFamily`
// when none is given. Each family keeps the configured number of versions.
// When the table already exists, it is left untouched and `ErrTableExists`
// is returned.
func (c *Client) CreateTable(ctx context.Context, name string, families ...string) (err error) {
	ctx, op := c.startOp(ctx, "create_table", name, zap.Strings("families", families))
	defer op.end(&err)

	if err := c.ensureOpen(); err != nil {
		return err
	}

	if name == "" {
		return invalidArgument("table name is required")
	}

	families, err = normalizeFamilies(families)
	if err != nil {
		return err
	}

	table := basebigt.NewBaseTable(name, families, c.bt.Client, c.bt.Config().MaxRowsBeforeFlush, c.bt.Config().MaxBytesBeforeFlush)
	if err := table.Create(ctx, c.bt.Admin, c.bt.Config().MaxVersions); err != nil {
		if basebigt.IsAlreadyExistsError(err) {
			return ErrTableExists
		}
		return fmt.Errorf("create table: %w", err)
	}

	return nil
}

func normalizeFamilies(families []string) ([]string, error) {
	if len(families) == 0 {
		return []string{DefaultFamily}, nil
	}

	seen := make(map[string]bool, len(families))
	out := make([]string, 0, len(families))
	for _, family := range families {
		if family == "" {
			return nil, invalidArgument("column family name cannot be empty")
		}

		if seen[family] {
			continue
		}
		seen[family] = true
		out = append(out, family)
	}

	return out, nil
}

// DropTable deletes `name` and all its rows, `ErrTableNotFound` is returned
// when it does not exist.
func (c *Client) DropTable(ctx context.Context, name string) (err error) {
	ctx, op := c.startOp(ctx, "drop_table", name)
	defer op.end(&err)

	if err := c.ensureOpen(); err != nil {
		return err
	}

	exists, err := c.tableExists(ctx, name)
	if err != nil {
		return err
	}

	if !exists {
		return ErrTableNotFound
	}

	if err := c.bt.Admin.DeleteTable(ctx, name); err != nil {
		if basebigt.IsNotFoundError(err) {
			return ErrTableNotFound
		}
		return fmt.Errorf("delete table: %w", err)
	}

	return nil
}

func (c *Client) TableExists(ctx context.Context, name string) (exists bool, err error) {
	ctx, op := c.startOp(ctx, "table_exists", name)
	defer op.end(&err)

	if err := c.ensureOpen(); err != nil {
		return false, err
	}

	return c.tableExists(ctx, name)
}

func (c *Client) tableExists(ctx context.Context, name string) (bool, error) {
	tables, err := c.bt.Admin.Tables(ctx)
	if err != nil {
		return false, fmt.Errorf("list tables: %w", err)
	}

	for _, table := range tables {
		if table == name {
			return true, nil
		}
	}

	return false, nil
}

// ListTables returns the name of every table of the instance, sorted.
func (c *Client) ListTables(ctx context.Context) (tables []string, err error) {
	ctx, op := c.startOp(ctx, "list_tables", "")
	defer op.end(&err)

	if err := c.ensureOpen(); err != nil {
		return nil, err
	}

	tables, err = c.bt.Admin.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	sort.Strings(tables)
	return tables, nil
}
