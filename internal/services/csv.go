package services

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// CSV sources store the whole table as the connection descriptor. The first
// record is the header row. Column dtypes are inferred from the values: a
// column where every value parses as an integer is int64, one where every
// value parses as a number is float64, anything else is object.

const (
	dtypeInt64   = "int64"
	dtypeFloat64 = "float64"
	dtypeObject  = "object"
)

func parseCSVTable(content string) (headers []string, rows [][]string, err error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid csv content: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("csv content is empty")
	}

	return records[0], records[1:], nil
}

func inferColumnTypes(headers []string, rows [][]string) []string {
	dtypes := make([]string, len(headers))
	for col := range headers {
		dtype := dtypeInt64
		for _, row := range rows {
			if col >= len(row) {
				continue
			}
			value := row[col]
			if dtype == dtypeInt64 {
				if _, err := strconv.ParseInt(value, 10, 64); err == nil {
					continue
				}
				dtype = dtypeFloat64
			}
			if dtype == dtypeFloat64 {
				if _, err := strconv.ParseFloat(value, 64); err == nil {
					continue
				}
				dtype = dtypeObject
				break
			}
		}
		if len(rows) == 0 {
			dtype = dtypeObject
		}
		dtypes[col] = dtype
	}
	return dtypes
}

// csvRecords parses content and returns every row as a typed record. No
// query filtering happens here.
func csvRecords(content string) ([]map[string]any, error) {
	headers, rows, err := parseCSVTable(content)
	if err != nil {
		return nil, err
	}

	dtypes := inferColumnTypes(headers, rows)

	records := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		record := make(map[string]any, len(headers))
		for col, header := range headers {
			if col >= len(row) {
				record[header] = nil
				continue
			}
			record[header] = convertCSVValue(row[col], dtypes[col])
		}
		records = append(records, record)
	}

	return records, nil
}

// csvColumns returns column name/dtype pairs from the first parse.
func csvColumns(content string) ([]ColumnInfo, error) {
	headers, rows, err := parseCSVTable(content)
	if err != nil {
		return nil, err
	}

	dtypes := inferColumnTypes(headers, rows)

	columns := make([]ColumnInfo, len(headers))
	for i, header := range headers {
		columns[i] = ColumnInfo{ColumnName: header, DataType: dtypes[i]}
	}
	return columns, nil
}

func convertCSVValue(value, dtype string) any {
	switch dtype {
	case dtypeInt64:
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	case dtypeFloat64:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return value
}
