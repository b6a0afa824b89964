package passenger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Load reads the dataset from a CSV file. A missing or unreadable file is an
// error; missing columns or cells are not.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ds, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	return ds, nil
}

// Parse reads CSV with a header row from r.
func Parse(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("dataset has no header row")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	columns := make(map[string]bool, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		for _, known := range knownColumns {
			if strings.EqualFold(name, known) {
				index[known] = i
				columns[known] = true
			}
		}
	}

	ds := &Dataset{columns: columns}
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}

		cell := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		ds.Records = append(ds.Records, Record{
			ID:       cell(ColumnID),
			Survived: parseFlag(cell(ColumnSurvived)),
			Class:    parseInt(cell(ColumnClass)),
			Name:     cell(ColumnName),
			Sex:      cell(ColumnSex),
			Age:      parseFloat(cell(ColumnAge)),
			Fare:     parseFloat(cell(ColumnFare)),
			Embarked: cell(ColumnEmbarked),
		})
	}

	return ds, nil
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func parseInt(s string) *int {
	f := parseFloat(s)
	if f == nil {
		return nil
	}
	v := int(*f)
	return &v
}

func parseFlag(s string) *bool {
	f := parseFloat(s)
	if f == nil {
		return nil
	}
	v := *f != 0
	return &v
}
