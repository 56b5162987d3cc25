package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"complexcare/internal/models"
	"complexcare/internal/repositories"
	"complexcare/internal/utils"
)

const (
	maxJunctionTableColumns = 6
	minJunctionTableFKs     = 2
	publicSchema            = "public"
)

// SchemaInspector reads the database catalogue.
type SchemaInspector interface {
	GetTables(ctx context.Context, schema string) ([]string, error)
	GetColumns(ctx context.Context, schema, table string) ([]models.Column, error)
	GetPrimaryKeys(ctx context.Context, schema, table string) ([]string, error)
	GetForeignKeys(ctx context.Context, schema, table string) ([]models.ForeignKey, error)
	GetUniqueConstraintsBatch(ctx context.Context, schema string, tableColumns []repositories.TableColumn) (map[string]bool, error)
	ColumnsBySchema(ctx context.Context, schema string) (map[string][]string, error)
	TableStats(ctx context.Context, schema string) ([]models.TableStats, error)
	ServerVersion(ctx context.Context) (string, error)
	PoolStats() models.PoolStats
}

// DiagnosticsService backs the database analysis endpoints.
type DiagnosticsService struct {
	inspector SchemaInspector
	expected  map[string][]string
	log       *zap.Logger
}

func NewDiagnosticsService(inspector SchemaInspector, expected map[string][]string, log *zap.Logger) *DiagnosticsService {
	return &DiagnosticsService{inspector: inspector, expected: expected, log: log}
}

func (s *DiagnosticsService) Analyze(ctx context.Context) (*models.DatabaseAnalysis, error) {
	stats, err := s.inspector.TableStats(ctx, publicSchema)
	if err != nil {
		return nil, storeErr("table stats", err)
	}
	version, err := s.inspector.ServerVersion(ctx)
	if err != nil {
		return nil, storeErr("server version", err)
	}
	return &models.DatabaseAnalysis{
		Tables:  stats,
		Pool:    s.inspector.PoolStats(),
		Version: version,
	}, nil
}

// Validate compares the live public schema with the expected tables and
// columns. Extra columns are tolerated; extra tables are reported.
func (s *DiagnosticsService) Validate(ctx context.Context) (*models.SchemaValidation, error) {
	live, err := s.inspector.ColumnsBySchema(ctx, publicSchema)
	if err != nil {
		return nil, storeErr("read schema", err)
	}

	v := &models.SchemaValidation{
		MissingTables:  []string{},
		MissingColumns: map[string][]string{},
		ExtraTables:    []string{},
	}
	for table, columns := range s.expected {
		have, ok := live[table]
		if !ok {
			v.MissingTables = append(v.MissingTables, table)
			continue
		}
		for _, col := range columns {
			if !utils.Contains(have, col) {
				v.MissingColumns[table] = append(v.MissingColumns[table], col)
			}
		}
	}
	for table := range live {
		if _, ok := s.expected[table]; !ok {
			v.ExtraTables = append(v.ExtraTables, table)
		}
	}
	sort.Strings(v.MissingTables)
	sort.Strings(v.ExtraTables)

	v.Valid = len(v.MissingTables) == 0 && len(v.MissingColumns) == 0
	if !v.Valid {
		s.log.Warn("schema validation failed",
			zap.Strings("missing_tables", v.MissingTables),
			zap.Int("tables_missing_columns", len(v.MissingColumns)))
	}
	return v, nil
}

// Diagram renders the public schema as a Mermaid ER diagram.
func (s *DiagnosticsService) Diagram(ctx context.Context) (string, error) {
	tables, err := s.readTables(ctx, publicSchema)
	if err != nil {
		return "", storeErr("read tables", err)
	}
	relationships, err := s.relationships(ctx, publicSchema, tables)
	if err != nil {
		return "", storeErr("read relationships", err)
	}
	return renderMermaid(tables, relationships), nil
}

func (s *DiagnosticsService) readTables(ctx context.Context, schema string) ([]models.Table, error) {
	names, err := s.inspector.GetTables(ctx, schema)
	if err != nil {
		return nil, err
	}

	tables := make([]models.Table, 0, len(names))
	for _, name := range names {
		t := models.Table{Name: name}
		if t.Columns, err = s.inspector.GetColumns(ctx, schema, name); err != nil {
			return nil, fmt.Errorf("columns of %s: %w", name, err)
		}
		if t.PrimaryKeys, err = s.inspector.GetPrimaryKeys(ctx, schema, name); err != nil {
			return nil, fmt.Errorf("primary keys of %s: %w", name, err)
		}
		if t.ForeignKeys, err = s.inspector.GetForeignKeys(ctx, schema, name); err != nil {
			return nil, fmt.Errorf("foreign keys of %s: %w", name, err)
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// relationships derives ER edges from foreign keys. Junction tables become
// many-to-many edges between the tables they join; a foreign key column with
// a unique constraint is one-to-one.
func (s *DiagnosticsService) relationships(ctx context.Context, schema string, tables []models.Table) ([]models.Relationship, error) {
	junctions := junctionTables(tables)

	var candidates []repositories.TableColumn
	for _, t := range tables {
		if junctions[t.Name] {
			continue
		}
		for _, fk := range t.ForeignKeys {
			candidates = append(candidates, repositories.TableColumn{Table: t.Name, Column: fk.FromColumn})
		}
	}
	unique, err := s.inspector.GetUniqueConstraintsBatch(ctx, schema, candidates)
	if err != nil {
		return nil, err
	}

	var rels []models.Relationship
	for _, t := range tables {
		if junctions[t.Name] {
			for i := 0; i < len(t.ForeignKeys); i++ {
				for j := i + 1; j < len(t.ForeignKeys); j++ {
					rels = append(rels, models.Relationship{
						FromTable: t.ForeignKeys[i].ToTable,
						ToTable:   t.ForeignKeys[j].ToTable,
						Type:      "}o--o{",
					})
				}
			}
			continue
		}
		for _, fk := range t.ForeignKeys {
			relType := "||--o{"
			if unique[t.Name+":"+fk.FromColumn] {
				relType = "||--||"
			}
			rels = append(rels, models.Relationship{FromTable: fk.ToTable, ToTable: t.Name, Type: relType})
		}
	}
	return rels, nil
}

// junctionTables finds narrow tables whose primary key is made of at least
// two foreign keys, such as patient_assignments.
func junctionTables(tables []models.Table) map[string]bool {
	out := make(map[string]bool)
	for _, t := range tables {
		if len(t.ForeignKeys) < minJunctionTableFKs || len(t.PrimaryKeys) < minJunctionTableFKs ||
			len(t.Columns) > maxJunctionTableColumns {
			continue
		}
		fkInPK := 0
		for _, pk := range t.PrimaryKeys {
			if isForeignKey(t.ForeignKeys, pk) {
				fkInPK++
			}
		}
		if fkInPK >= minJunctionTableFKs {
			out[t.Name] = true
		}
	}
	return out
}

func renderMermaid(tables []models.Table, rels []models.Relationship) string {
	var sb strings.Builder
	sb.WriteString("erDiagram\n")

	seen := make(map[string]bool)
	for _, r := range rels {
		key := r.FromTable + ":" + r.Type + ":" + r.ToTable
		if seen[key] {
			continue
		}
		seen[key] = true
		fmt.Fprintf(&sb, "    %s %s %s : \"\"\n", strings.ToUpper(r.FromTable), r.Type, strings.ToUpper(r.ToTable))
	}
	if len(seen) > 0 {
		sb.WriteString("\n")
	}

	for _, t := range tables {
		fmt.Fprintf(&sb, "    %s {\n", strings.ToUpper(t.Name))
		for _, col := range t.Columns {
			keys := ""
			if utils.Contains(t.PrimaryKeys, col.Name) {
				keys = " PK"
			}
			if isForeignKey(t.ForeignKeys, col.Name) {
				keys += " FK"
			}
			fmt.Fprintf(&sb, "        %s %s%s\n", mermaidType(col.DataType), col.Name, keys)
		}
		sb.WriteString("    }\n\n")
	}
	return sb.String()
}

var mermaidTypes = map[string]string{
	"integer":                     "int",
	"bigint":                      "bigint",
	"smallint":                    "smallint",
	"text":                        "text",
	"date":                        "date",
	"boolean":                     "boolean",
	"real":                        "real",
	"double precision":            "double",
	"json":                        "json",
	"jsonb":                       "jsonb",
	"uuid":                        "uuid",
	"bytea":                       "bytea",
	"timestamp with time zone":    "timestamptz",
	"timestamp without time zone": "timestamp",
	"time without time zone":      "time",
	"character varying":           "varchar",
	"character":                   "char",
	"numeric":                     "numeric",
	"array":                       "array",
}

// mermaidType shortens information_schema type names; Mermaid attribute
// types cannot contain spaces.
func mermaidType(dataType string) string {
	dt := strings.ToLower(dataType)
	if short, ok := mermaidTypes[dt]; ok {
		return short
	}
	if i := strings.IndexByte(dt, '('); i > 0 {
		if short, ok := mermaidTypes[strings.TrimSpace(dt[:i])]; ok {
			return short
		}
	}
	return strings.ReplaceAll(dt, " ", "_")
}

func isForeignKey(fks []models.ForeignKey, column string) bool {
	for _, fk := range fks {
		if fk.FromColumn == column {
			return true
		}
	}
	return false
}
