package db

import (
	"fmt"
	"sort"
	"strings"
)

// TableSchema describes the destination table as reported by
// INFORMATION_SCHEMA.COLUMNS.
type TableSchema struct {
	Name    string
	Columns []ColumnSchema
}

// ColumnSchema describes one destination column.
type ColumnSchema struct {
	Name      string
	Type      string
	Nullable  bool
	MaxLength int
	Position  int
}

// HasColumn reports whether the table has a column with the given name.
func (t *TableSchema) HasColumn(name string) bool {
	for _, col := range t.Columns {
		if col.Name == name {
			return true
		}
	}
	return false
}

// ColumnNames returns the column names in ordinal order.
func (t *TableSchema) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// splitTable separates an optional schema qualifier ("dbo.orders") from the
// table name.
func splitTable(table string) (schemaName, tableName string) {
	if i := strings.IndexByte(table, '.'); i >= 0 {
		return table[:i], table[i+1:]
	}
	return "", table
}

// TableSchema fetches the column layout of one table from
// INFORMATION_SCHEMA.COLUMNS.
func (c *Connection) TableSchema(table string) (*TableSchema, error) {
	schemaName, tableName := splitTable(table)

	var query string
	args := []interface{}{tableName}

	switch c.Type {
	case SQLServer:
		query = `
            SELECT COLUMN_NAME, DATA_TYPE,
                CASE WHEN IS_NULLABLE = 'YES' THEN 1 ELSE 0 END,
                COALESCE(CHARACTER_MAXIMUM_LENGTH, 0),
                ORDINAL_POSITION
            FROM INFORMATION_SCHEMA.COLUMNS
            WHERE TABLE_NAME = @p1`
		if schemaName != "" {
			query += " AND TABLE_SCHEMA = @p2"
			args = append(args, schemaName)
		}
		query += " ORDER BY ORDINAL_POSITION"

	case PostgreSQL:
		query = `
            SELECT column_name, data_type,
                CASE WHEN is_nullable = 'YES' THEN 1 ELSE 0 END,
                COALESCE(character_maximum_length, 0),
                ordinal_position
            FROM information_schema.columns
            WHERE table_name = $1`
		if schemaName != "" {
			query += " AND table_schema = $2"
			args = append(args, schemaName)
		}
		query += " ORDER BY ordinal_position"

	case MySQL:
		query = `
            SELECT COLUMN_NAME, DATA_TYPE,
                CASE WHEN IS_NULLABLE = 'YES' THEN 1 ELSE 0 END,
                COALESCE(CHARACTER_MAXIMUM_LENGTH, 0),
                ORDINAL_POSITION
            FROM information_schema.COLUMNS
            WHERE TABLE_NAME = ? AND TABLE_SCHEMA = DATABASE()`
		query += " ORDER BY ORDINAL_POSITION"

	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.Type)
	}

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query schema for table %s: %w", table, err)
	}
	defer rows.Close()

	schema := &TableSchema{Name: table}
	for rows.Next() {
		var col ColumnSchema
		if err := rows.Scan(&col.Name, &col.Type, &col.Nullable, &col.MaxLength, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan schema row: %w", err)
		}
		schema.Columns = append(schema.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schema rows: %w", err)
	}

	if len(schema.Columns) == 0 {
		return nil, fmt.Errorf("table %s not found or has no columns", table)
	}

	return schema, nil
}

// ColumnDiff is the result of comparing column names between two tables.
type ColumnDiff struct {
	OnlyInFirst  []string
	OnlyInSecond []string
	Shared       []string
}

// CompareColumns compares column names between two tables and reports which
// columns exist in only one of them.
func (c *Connection) CompareColumns(first, second string) (*ColumnDiff, error) {
	firstSchema, err := c.TableSchema(first)
	if err != nil {
		return nil, err
	}
	secondSchema, err := c.TableSchema(second)
	if err != nil {
		return nil, err
	}

	inFirst := make(map[string]bool, len(firstSchema.Columns))
	for _, col := range firstSchema.Columns {
		inFirst[col.Name] = true
	}
	inSecond := make(map[string]bool, len(secondSchema.Columns))
	for _, col := range secondSchema.Columns {
		inSecond[col.Name] = true
	}

	diff := &ColumnDiff{}
	for name := range inFirst {
		if inSecond[name] {
			diff.Shared = append(diff.Shared, name)
		} else {
			diff.OnlyInFirst = append(diff.OnlyInFirst, name)
		}
	}
	for name := range inSecond {
		if !inFirst[name] {
			diff.OnlyInSecond = append(diff.OnlyInSecond, name)
		}
	}

	sort.Strings(diff.OnlyInFirst)
	sort.Strings(diff.OnlyInSecond)
	sort.Strings(diff.Shared)
	return diff, nil
}
