package handler

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envelope-ledger/internal/ledger"
)

func TestParseSplits(t *testing.T) {
	catID := uuid.New().String()

	t.Run("negates magnitudes against a negative transaction", func(t *testing.T) {
		splits, err := parseSplits([]SplitRequest{
			{CategoryID: catID, Amount: "30", Expected: "25"},
		}, -1)
		require.NoError(t, err)
		require.Len(t, splits, 1)
		assert.True(t, decimal.RequireFromString("-30").Equal(splits[0].Amount))
		assert.True(t, decimal.RequireFromString("-25").Equal(splits[0].Expected))
	})

	t.Run("zero sign leaves mixed signs untouched", func(t *testing.T) {
		splits, err := parseSplits([]SplitRequest{
			{CategoryID: catID, Amount: "-100"},
			{CategoryID: uuid.New().String(), Amount: "100"},
		}, 0)
		require.NoError(t, err)
		require.Len(t, splits, 2)
		assert.True(t, decimal.RequireFromString("-100").Equal(splits[0].Amount))
		assert.True(t, decimal.RequireFromString("100").Equal(splits[1].Amount))
	})

	t.Run("carries split id and principal through", func(t *testing.T) {
		splitID := uuid.New().String()
		principal := "-700"
		splits, err := parseSplits([]SplitRequest{
			{SplitID: &splitID, CategoryID: catID, Amount: "-1000", Principal: &principal},
		}, -1)
		require.NoError(t, err)
		require.Len(t, splits, 1)
		require.NotNil(t, splits[0].SplitID)
		assert.Equal(t, splitID, splits[0].SplitID.String())
		require.NotNil(t, splits[0].Principal)
		assert.True(t, decimal.RequireFromString("-700").Equal(*splits[0].Principal))
	})

	t.Run("bad input surfaces as a validation error", func(t *testing.T) {
		cases := []struct {
			name  string
			req   SplitRequest
			field string
		}{
			{"bad category id", SplitRequest{CategoryID: "not-a-uuid", Amount: "10"}, "splits.category_id"},
			{"bad amount", SplitRequest{CategoryID: catID, Amount: "ten"}, "splits.amount"},
			{"bad expected", SplitRequest{CategoryID: catID, Amount: "10", Expected: "oops"}, "splits.expected"},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := parseSplits([]SplitRequest{tc.req}, 1)

				var validationErr ledger.ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Equal(t, tc.field, validationErr.Field)
			})
		}
	})
}

func TestParseDate(t *testing.T) {
	t.Run("accepts YYYY-MM-DD", func(t *testing.T) {
		d, err := parseDate("date", "2024-03-15")
		require.NoError(t, err)
		assert.Equal(t, 2024, d.Year())
		assert.Equal(t, 15, d.Day())
	})

	t.Run("rejects other layouts", func(t *testing.T) {
		_, err := parseDate("date", "15/03/2024")

		var validationErr ledger.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "date", validationErr.Field)
	})
}

func TestParseDecimal(t *testing.T) {
	d, err := parseDecimal("amount", "-10.25")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("-10.25").Equal(d))

	_, err = parseDecimal("amount", "")
	var validationErr ledger.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
