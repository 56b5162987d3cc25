package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"complexcare/internal/models"
	"complexcare/internal/repositories"
)

type fakeInspector struct {
	tables  []models.Table
	columns map[string][]string
	unique  map[string]bool
}

func (f *fakeInspector) table(name string) models.Table {
	for _, t := range f.tables {
		if t.Name == name {
			return t
		}
	}
	return models.Table{}
}

func (f *fakeInspector) GetTables(context.Context, string) ([]string, error) {
	names := make([]string, len(f.tables))
	for i, t := range f.tables {
		names[i] = t.Name
	}
	return names, nil
}

func (f *fakeInspector) GetColumns(_ context.Context, _, table string) ([]models.Column, error) {
	return f.table(table).Columns, nil
}

func (f *fakeInspector) GetPrimaryKeys(_ context.Context, _, table string) ([]string, error) {
	return f.table(table).PrimaryKeys, nil
}

func (f *fakeInspector) GetForeignKeys(_ context.Context, _, table string) ([]models.ForeignKey, error) {
	return f.table(table).ForeignKeys, nil
}

func (f *fakeInspector) GetUniqueConstraintsBatch(context.Context, string, []repositories.TableColumn) (map[string]bool, error) {
	return f.unique, nil
}

func (f *fakeInspector) ColumnsBySchema(context.Context, string) (map[string][]string, error) {
	return f.columns, nil
}

func (f *fakeInspector) TableStats(context.Context, string) ([]models.TableStats, error) {
	return []models.TableStats{{Name: "patients", EstimatedRows: 120, ColumnCount: 14}}, nil
}

func (f *fakeInspector) ServerVersion(context.Context) (string, error) {
	return "PostgreSQL 16.4", nil
}

func (f *fakeInspector) PoolStats() models.PoolStats {
	return models.PoolStats{TotalConns: 4, IdleConns: 3, AcquiredConns: 1, MaxConns: 10}
}

func cols(names ...string) []models.Column {
	out := make([]models.Column, len(names))
	for i, n := range names {
		out[i] = models.Column{Name: n, DataType: "uuid"}
	}
	return out
}

func TestValidateSchema(t *testing.T) {
	expected := map[string][]string{
		"tenants":  {"id", "name"},
		"patients": {"id", "tenant_id", "nhs_number"},
		"invoices": {"id"},
	}
	inspector := &fakeInspector{columns: map[string][]string{
		"tenants":      {"id", "name", "legacy_flag"},
		"patients":     {"id", "tenant_id"},
		"old_sessions": {"id"},
	}}
	svc := NewDiagnosticsService(inspector, expected, zap.NewNop())

	v, err := svc.Validate(context.Background())
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, []string{"invoices"}, v.MissingTables)
	assert.Equal(t, map[string][]string{"patients": {"nhs_number"}}, v.MissingColumns)
	assert.Equal(t, []string{"old_sessions"}, v.ExtraTables)

	inspector.columns["patients"] = append(inspector.columns["patients"], "nhs_number")
	inspector.columns["invoices"] = []string{"id"}
	v, err = svc.Validate(context.Background())
	require.NoError(t, err)
	assert.True(t, v.Valid, "extra tables and columns do not fail validation")
}

func TestAnalyze(t *testing.T) {
	svc := NewDiagnosticsService(&fakeInspector{}, nil, zap.NewNop())

	a, err := svc.Analyze(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "PostgreSQL 16.4", a.Version)
	assert.Equal(t, int32(10), a.Pool.MaxConns)
	require.Len(t, a.Tables, 1)
	assert.Equal(t, int64(120), a.Tables[0].EstimatedRows)
}

func TestDiagram(t *testing.T) {
	inspector := &fakeInspector{
		tables: []models.Table{
			{Name: "patients", Columns: cols("id", "tenant_id"), PrimaryKeys: []string{"id"}},
			{Name: "care_professionals", Columns: cols("id"), PrimaryKeys: []string{"id"}},
			{
				Name:        "patient_assignments",
				Columns:     cols("tenant_id", "care_professional_id", "patient_id"),
				PrimaryKeys: []string{"care_professional_id", "patient_id"},
				ForeignKeys: []models.ForeignKey{
					{FromColumn: "care_professional_id", ToTable: "care_professionals", ToColumn: "id"},
					{FromColumn: "patient_id", ToTable: "patients", ToColumn: "id"},
				},
			},
			{
				Name:        "clinical_notes",
				Columns:     cols("id", "patient_id"),
				PrimaryKeys: []string{"id"},
				ForeignKeys: []models.ForeignKey{{FromColumn: "patient_id", ToTable: "patients", ToColumn: "id"}},
			},
		},
		unique: map[string]bool{},
	}
	svc := NewDiagnosticsService(inspector, nil, zap.NewNop())

	diagram, err := svc.Diagram(context.Background())
	require.NoError(t, err)
	assert.Contains(t, diagram, "erDiagram\n")
	assert.Contains(t, diagram, "CARE_PROFESSIONALS }o--o{ PATIENTS")
	assert.Contains(t, diagram, "PATIENTS ||--o{ CLINICAL_NOTES")
	assert.Contains(t, diagram, "uuid patient_id FK")
	assert.Contains(t, diagram, "uuid id PK")
	assert.NotContains(t, diagram, "PATIENTS ||--o{ PATIENT_ASSIGNMENTS")
}

func TestMermaidType(t *testing.T) {
	assert.Equal(t, "timestamptz", mermaidType("timestamp with time zone"))
	assert.Equal(t, "varchar", mermaidType("character varying(255)"))
	assert.Equal(t, "user_defined", mermaidType("USER DEFINED"))
}
