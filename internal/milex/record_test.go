package milex

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	total := 12.5

	failed := FailedRecord("LTU", 2024, "https://example.org/LTU/2024", errors.New("timeout"))
	require.Equal(t, StatusFailed, Classify(failed))
	require.Empty(t, failed.FieldData)
	require.Equal(t, "timeout", failed.Error)

	require.Equal(t, StatusNoData, Classify(Record{Country: "LTU", Year: 2024}))
	require.Equal(t, StatusSuccess, Classify(Record{TotalExpenditureAll: &total}))
	require.Equal(t, StatusSuccess, Classify(Record{
		FieldData: map[string]float64{"Land forces - 1. Personnel": 1},
	}))
}
