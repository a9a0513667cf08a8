package db

import (
	"fmt"
	"strings"
)

// SQL Server rejects statements with more than 2100 parameters; stay under
// it so a large batch still loads in one transaction.
const maxStatementParams = 2000

func escapeIdentifier(identifier string, dbType DBType) string {
	switch dbType {
	case SQLServer:
		return fmt.Sprintf("[%s]", identifier)
	case PostgreSQL:
		return fmt.Sprintf(`"%s"`, identifier)
	case MySQL:
		return fmt.Sprintf("`%s`", identifier)
	default:
		return identifier
	}
}

func escapeIdentifiers(identifiers []string, dbType DBType) []string {
	escaped := make([]string, len(identifiers))
	for i, id := range identifiers {
		escaped[i] = escapeIdentifier(id, dbType)
	}
	return escaped
}

// escapeTable quotes each part of a possibly schema-qualified table name.
func escapeTable(table string, dbType DBType) string {
	schemaName, tableName := splitTable(table)
	if schemaName == "" {
		return escapeIdentifier(tableName, dbType)
	}
	return escapeIdentifier(schemaName, dbType) + "." + escapeIdentifier(tableName, dbType)
}

// placeholder returns the dialect's placeholder for the n-th parameter
// (1-based).
func placeholder(n int, dbType DBType) string {
	switch dbType {
	case SQLServer:
		return fmt.Sprintf("@p%d", n)
	case PostgreSQL:
		return fmt.Sprintf("$%d", n)
	default:
		return "?"
	}
}

// Truncate empties the destination table.
func (c *Connection) Truncate(table string) error {
	query := fmt.Sprintf("TRUNCATE TABLE %s", escapeTable(table, c.Type))
	if c.cfg.Verbose {
		fmt.Printf("Executing SQL: %s\n", query)
	}
	if _, err := c.db.Exec(query); err != nil {
		return fmt.Errorf("failed to truncate table %s: %w", table, err)
	}
	return nil
}

// InsertBatch inserts rows into table with multi-row parameterized INSERT
// statements inside a single transaction. Every row must have the same
// length as columns. Batches larger than the dialect's parameter limit are
// split across statements within the transaction.
func (c *Connection) InsertBatch(table string, columns []string, rows [][]interface{}) error {
	if c.db == nil {
		return fmt.Errorf("sql: database is closed")
	}
	if len(rows) == 0 {
		return nil
	}
	if len(columns) == 0 {
		return fmt.Errorf("no columns to insert into table %s", table)
	}

	rowsPerStmt := maxStatementParams / len(columns)
	if rowsPerStmt < 1 {
		rowsPerStmt = 1
	}

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for start := 0; start < len(rows); start += rowsPerStmt {
		end := start + rowsPerStmt
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		valueLists := make([]string, 0, len(chunk))
		values := make([]interface{}, 0, len(chunk)*len(columns))
		for _, row := range chunk {
			if len(row) != len(columns) {
				return fmt.Errorf("row has %d values but %d columns were given", len(row), len(columns))
			}
			placeholders := make([]string, len(columns))
			for i, val := range row {
				values = append(values, val)
				placeholders[i] = placeholder(len(values), c.Type)
			}
			valueLists = append(valueLists, "("+strings.Join(placeholders, ", ")+")")
		}

		query := fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES %s",
			escapeTable(table, c.Type),
			strings.Join(escapeIdentifiers(columns, c.Type), ", "),
			strings.Join(valueLists, ", "),
		)

		if c.cfg.Verbose {
			fmt.Printf("Executing SQL: %s\n", query)
		}

		if _, err := tx.Exec(query, values...); err != nil {
			return fmt.Errorf("failed to execute query: %s, error: %w", query, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpsertRow inserts or updates a single row keyed on keyCol. columns fixes
// the parameter order; data supplies the values. Rows missing the key value
// are rejected.
func (c *Connection) UpsertRow(table, keyCol string, columns []string, data map[string]interface{}) error {
	if c.db == nil {
		return fmt.Errorf("sql: database is closed")
	}
	if _, ok := data[keyCol]; !ok {
		return fmt.Errorf("row for table %s has no value for key column %s", table, keyCol)
	}

	switch c.Type {
	case SQLServer:
		return c.sqlserverUpsert(table, keyCol, columns, data)
	case PostgreSQL:
		return c.postgresUpsert(table, keyCol, columns, data)
	case MySQL:
		return c.mysqlUpsert(table, keyCol, columns, data)
	default:
		return fmt.Errorf("unsupported database type: %s", c.Type)
	}
}

// rowValues collects the present columns and their values in column order.
func rowValues(columns []string, data map[string]interface{}) ([]string, []interface{}) {
	present := make([]string, 0, len(columns))
	values := make([]interface{}, 0, len(columns))
	for _, col := range columns {
		if val, ok := data[col]; ok {
			present = append(present, col)
			values = append(values, val)
		}
	}
	return present, values
}

func (c *Connection) sqlserverUpsert(table, keyCol string, columns []string, data map[string]interface{}) error {
	present, values := rowValues(columns, data)

	sourceCols := make([]string, len(present))
	insertCols := make([]string, len(present))
	sourceVals := make([]string, len(present))
	updateClauses := make([]string, 0, len(present))
	for i, col := range present {
		esc := escapeIdentifier(col, c.Type)
		sourceCols[i] = fmt.Sprintf("%s AS %s", placeholder(i+1, c.Type), esc)
		insertCols[i] = esc
		sourceVals[i] = "source." + esc
		if col != keyCol {
			updateClauses = append(updateClauses, fmt.Sprintf("%s = source.%s", esc, esc))
		}
	}

	keyEsc := escapeIdentifier(keyCol, c.Type)
	query := fmt.Sprintf(
		"MERGE INTO %s AS target USING (SELECT %s) AS source ON target.%s = source.%s",
		escapeTable(table, c.Type),
		strings.Join(sourceCols, ", "),
		keyEsc, keyEsc,
	)
	if len(updateClauses) > 0 {
		query += fmt.Sprintf(" WHEN MATCHED THEN UPDATE SET %s", strings.Join(updateClauses, ", "))
	}
	query += fmt.Sprintf(
		" WHEN NOT MATCHED THEN INSERT (%s) VALUES (%s);",
		strings.Join(insertCols, ", "),
		strings.Join(sourceVals, ", "),
	)

	if c.cfg.Verbose {
		fmt.Printf("Executing SQL: %s\n", query)
	}
	if _, err := c.db.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to execute query: %s, error: %w", query, err)
	}
	return nil
}

func (c *Connection) postgresUpsert(table, keyCol string, columns []string, data map[string]interface{}) error {
	present, values := rowValues(columns, data)

	placeholders := make([]string, len(present))
	updateClauses := make([]string, 0, len(present))
	for i, col := range present {
		placeholders[i] = placeholder(i+1, c.Type)
		if col != keyCol {
			esc := escapeIdentifier(col, c.Type)
			updateClauses = append(updateClauses, fmt.Sprintf("%s = EXCLUDED.%s", esc, esc))
		}
	}

	var query string
	if len(updateClauses) > 0 {
		query = fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
			escapeTable(table, c.Type),
			strings.Join(escapeIdentifiers(present, c.Type), ", "),
			strings.Join(placeholders, ", "),
			escapeIdentifier(keyCol, c.Type),
			strings.Join(updateClauses, ", "),
		)
	} else {
		query = fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING",
			escapeTable(table, c.Type),
			strings.Join(escapeIdentifiers(present, c.Type), ", "),
			strings.Join(placeholders, ", "),
			escapeIdentifier(keyCol, c.Type),
		)
	}

	if c.cfg.Verbose {
		fmt.Printf("Executing SQL: %s\n", query)
	}
	if _, err := c.db.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to execute query: %s, error: %w", query, err)
	}
	return nil
}

func (c *Connection) mysqlUpsert(table, keyCol string, columns []string, data map[string]interface{}) error {
	present, values := rowValues(columns, data)

	placeholders := make([]string, len(present))
	updateClauses := make([]string, 0, len(present))
	for i, col := range present {
		placeholders[i] = "?"
		if col != keyCol {
			esc := escapeIdentifier(col, c.Type)
			updateClauses = append(updateClauses, fmt.Sprintf("%s = VALUES(%s)", esc, esc))
		}
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		escapeTable(table, c.Type),
		strings.Join(escapeIdentifiers(present, c.Type), ", "),
		strings.Join(placeholders, ", "),
	)
	if len(updateClauses) > 0 {
		query += fmt.Sprintf(" ON DUPLICATE KEY UPDATE %s", strings.Join(updateClauses, ", "))
	}

	if c.cfg.Verbose {
		fmt.Printf("Executing SQL: %s\n", query)
	}
	if _, err := c.db.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to execute query: %s, error: %w", query, err)
	}
	return nil
}
