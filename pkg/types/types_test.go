package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestDecimalMarshalsAsNumber(t *testing.T) {
	price, ok := Money("12.50")
	require.True(t, ok)

	raw, err := json.Marshal(map[string]decimal.Decimal{"price": price})
	require.NoError(t, err)
	require.JSONEq(t, `{"price": 12.5}`, string(raw))
}

func TestMoneyRejectsGarbage(t *testing.T) {
	_, ok := Money("twelve")
	require.False(t, ok)
}

func TestAPIErrorOmitsEmptyDetails(t *testing.T) {
	raw, err := json.Marshal(APIError{Error: "No fields to update", Code: "VALIDATION_ERROR"})
	require.NoError(t, err)
	require.JSONEq(t, `{"error":"No fields to update","code":"VALIDATION_ERROR"}`, string(raw))
}
