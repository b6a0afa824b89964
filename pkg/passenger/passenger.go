// Package passenger loads the fixed passenger dataset the dashboard reports on.
package passenger

// Column names as they appear in the dataset header.
const (
	ColumnID       = "PassengerId"
	ColumnSurvived = "Survived"
	ColumnClass    = "Pclass"
	ColumnName     = "Name"
	ColumnSex      = "Sex"
	ColumnAge      = "Age"
	ColumnFare     = "Fare"
	ColumnEmbarked = "Embarked"
)

// Record is a single passenger row. Pointer fields are nil when the value is
// missing from the source.
type Record struct {
	ID       string
	Survived *bool
	Class    *int
	Name     string
	Sex      string
	Age      *float64
	Fare     *float64
	Embarked string
}

// Dataset is the read-only collection of records loaded at startup.
type Dataset struct {
	Records []Record

	// columns records which header names were present in the source.
	columns map[string]bool
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// HasColumn reports whether the source header contained name.
func (d *Dataset) HasColumn(name string) bool {
	if d == nil {
		return false
	}
	return d.columns[name]
}

// New wraps records in a Dataset with every known column marked present.
// It is meant for building datasets in code rather than from a file.
func New(records []Record) *Dataset {
	cols := make(map[string]bool, len(knownColumns))
	for _, c := range knownColumns {
		cols[c] = true
	}
	return &Dataset{Records: records, columns: cols}
}

var knownColumns = []string{
	ColumnID, ColumnSurvived, ColumnClass, ColumnName,
	ColumnSex, ColumnAge, ColumnFare, ColumnEmbarked,
}
