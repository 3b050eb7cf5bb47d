package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVRecords_TypedValues(t *testing.T) {
	records, err := csvRecords("id,score,label\n1,9.5,good\n2,3,bad\n")
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.Equal(t, int64(1), records[0]["id"])
	require.Equal(t, 9.5, records[0]["score"])
	require.Equal(t, "good", records[0]["label"])

	// An integer-looking value in a float64 column still becomes a float
	require.Equal(t, 3.0, records[1]["score"])
}

func TestCSVRecords_RaggedRowRejected(t *testing.T) {
	// The csv reader enforces rectangular input, so a ragged row is an error
	_, err := csvRecords("a,b\n1\n")
	require.Error(t, err)
}

func TestCSVRecords_EmptyContent(t *testing.T) {
	_, err := csvRecords("")
	require.Error(t, err)
}

func TestCSVColumns_TypeInference(t *testing.T) {
	columns, err := csvColumns("ints,floats,mixed,text\n1,1.5,1,x\n2,2,oops,y\n")
	require.NoError(t, err)

	require.Equal(t, []ColumnInfo{
		{ColumnName: "ints", DataType: "int64"},
		{ColumnName: "floats", DataType: "float64"},
		{ColumnName: "mixed", DataType: "object"},
		{ColumnName: "text", DataType: "object"},
	}, columns)
}

func TestCSVColumns_HeaderOnly(t *testing.T) {
	// Without data rows there is nothing to infer from
	columns, err := csvColumns("a,b\n")
	require.NoError(t, err)
	require.Equal(t, []ColumnInfo{
		{ColumnName: "a", DataType: "object"},
		{ColumnName: "b", DataType: "object"},
	}, columns)
}
