package models

type Column struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	Nullable bool   `json:"nullable"`
}

type ForeignKey struct {
	ConstraintName string `json:"constraint_name"`
	FromColumn     string `json:"from_column"`
	ToTable        string `json:"to_table"`
	ToColumn       string `json:"to_column"`
}

type Table struct {
	Name        string       `json:"name"`
	Columns     []Column     `json:"columns"`
	PrimaryKeys []string     `json:"primary_keys"`
	ForeignKeys []ForeignKey `json:"foreign_keys"`
}

type Relationship struct {
	FromTable string
	ToTable   string
	Type      string // "||--o{", "||--||", etc.
}

type TableStats struct {
	Name          string `json:"name"`
	EstimatedRows int64  `json:"estimated_rows"`
	ColumnCount   int    `json:"column_count"`
	TotalBytes    int64  `json:"total_bytes"`
}

type PoolStats struct {
	TotalConns    int32 `json:"total_conns"`
	IdleConns     int32 `json:"idle_conns"`
	AcquiredConns int32 `json:"acquired_conns"`
	MaxConns      int32 `json:"max_conns"`
}

type DatabaseAnalysis struct {
	Tables  []TableStats `json:"tables"`
	Pool    PoolStats    `json:"pool"`
	Version string       `json:"version"`
}

type SchemaValidation struct {
	Valid          bool                `json:"valid"`
	MissingTables  []string            `json:"missing_tables"`
	MissingColumns map[string][]string `json:"missing_columns"`
	ExtraTables    []string            `json:"extra_tables"`
}
