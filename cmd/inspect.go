package cmd

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ChristianPRO1982/audio-splitter/internal"
	"github.com/spf13/cobra"
)

var (
	inspectSampleRows int
)

// jsonColumns hold JSON documents and are printed indented
var jsonColumns = map[string]bool{
	"tags":     true,
	"segments": true,
	"items":    true,
}

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect [database-path]",
	Short: "Inspect the backend database",
	Long: `Inspect the schema and contents of the backend's project database.

Without an argument the database in --data-dir is used.

Examples:
  audio-splitter inspect                          # <data-dir>/audio-splitter.db
  audio-splitter inspect /srv/audio/audio-splitter.db --sample 10`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var dbPath string
		if len(args) > 0 {
			dbPath = args[0]
		} else {
			paths, err := internal.NewStoragePaths(cfg.Server.DataDir)
			if err != nil {
				return err
			}
			dbPath = paths.DatabasePath()
		}

		if _, err := os.Stat(dbPath); err != nil {
			return fmt.Errorf("no database at %s: %w", dbPath, err)
		}
		return inspectDatabase(cmd.OutOrStdout(), dbPath)
	},
}

func inspectDatabase(out io.Writer, dbPath string) error {
	db, err := internal.OpenDatabase(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	tables, err := getTables(db)
	if err != nil {
		return fmt.Errorf("failed to get tables: %w", err)
	}

	_, _ = fmt.Fprintf(out, "Database: %s\n", dbPath)
	_, _ = fmt.Fprintf(out, "Found %d table(s)\n\n", len(tables))

	for _, tableName := range tables {
		if err := inspectTable(out, db, tableName); err != nil {
			_, _ = fmt.Fprintf(out, "⚠️  Error inspecting table %s: %v\n", tableName, err)
			continue
		}
		_, _ = fmt.Fprintln(out)
	}

	return nil
}

func getTables(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			continue
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func inspectTable(out io.Writer, db *sql.DB, tableName string) error {
	_, _ = fmt.Fprintln(out, sectionStyle.Render("Table: "+tableName))

	var rowCount int
	if err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %q", tableName)).Scan(&rowCount); err != nil {
		return fmt.Errorf("failed to get row count: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Rows: %d\n\n", rowCount)

	columns, err := getTableSchema(db, tableName)
	if err != nil {
		return fmt.Errorf("failed to get schema: %w", err)
	}

	_, _ = fmt.Fprintln(out, "Schema:")
	for _, col := range columns {
		pk := ""
		if col.PrimaryKey {
			pk = " [PRIMARY KEY]"
		}
		notNull := ""
		if col.NotNull {
			notNull = " NOT NULL"
		}
		_, _ = fmt.Fprintf(out, "  • %s: %s%s%s\n", col.Name, col.Type, notNull, pk)
	}
	_, _ = fmt.Fprintln(out)

	if rowCount > 0 && inspectSampleRows > 0 {
		if err := showSampleData(out, db, tableName, columns, inspectSampleRows); err != nil {
			_, _ = fmt.Fprintf(out, "⚠️  Error showing sample data: %v\n", err)
		}
	}

	return nil
}

type ColumnInfo struct {
	Name       string
	Type       string
	NotNull    bool
	PrimaryKey bool
}

func getTableSchema(db *sql.DB, tableName string) ([]ColumnInfo, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%q)", tableName))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var columns []ColumnInfo
	for rows.Next() {
		var col ColumnInfo
		var cid int
		var notNull, pk int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &defaultValue, &pk); err != nil {
			continue
		}
		col.NotNull = notNull == 1
		col.PrimaryKey = pk == 1
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func showSampleData(out io.Writer, db *sql.DB, tableName string, columns []ColumnInfo, limit int) error {
	if len(columns) == 0 {
		return nil
	}

	colNames := make([]string, len(columns))
	for i, col := range columns {
		colNames[i] = fmt.Sprintf("%q", col.Name)
	}

	query := fmt.Sprintf("SELECT %s FROM %q LIMIT %d", strings.Join(colNames, ", "), tableName, limit)
	rows, err := db.Query(query)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	_, _ = fmt.Fprintf(out, "Sample Data (first %d rows):\n", limit)
	rowNum := 0
	for rows.Next() {
		rowNum++
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			_, _ = fmt.Fprintf(out, "  ⚠️  Row %d: error scanning: %v\n", rowNum, err)
			continue
		}

		_, _ = fmt.Fprintf(out, "\n  Row %d:\n", rowNum)
		for i, col := range columns {
			_, _ = fmt.Fprintf(out, "    %s: %s\n", col.Name, formatCell(col.Name, values[i]))
		}
	}

	return rows.Err()
}

// formatCell renders one sampled value, indenting JSON documents
func formatCell(column string, val interface{}) string {
	if val == nil {
		return "<NULL>"
	}
	var s string
	switch v := val.(type) {
	case []byte:
		s = string(v)
	default:
		s = fmt.Sprintf("%v", v)
	}

	if jsonColumns[column] && json.Valid([]byte(s)) {
		var doc interface{}
		if json.Unmarshal([]byte(s), &doc) == nil {
			if pretty, err := json.MarshalIndent(doc, "      ", "  "); err == nil {
				return string(pretty)
			}
		}
	}

	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if strings.Contains(s, "\n") {
		s = strings.Split(s, "\n")[0] + "..."
	}
	return s
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().IntVar(&inspectSampleRows, "sample", 3, "Number of sample rows to show")
}
