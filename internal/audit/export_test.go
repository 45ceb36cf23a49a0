package audit

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"carbon-market/credit-exchange/exchange-backend/internal/ledger"
)

func TestWriteXLSX(t *testing.T) {
	buyer := uuid.New()
	seller := uuid.New()
	txs := []ledger.Transaction{
		{ID: 1, Buyer: buyer, Seller: buyer, ProjectID: 1, Amount: 1000, Price: 0, Height: 5, Type: ledger.TxIssuance},
		{ID: 2, Buyer: buyer, Seller: seller, ProjectID: 1, Amount: 150, Price: 12, Height: 9, Type: ledger.TxPurchase},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, txs))

	file, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer file.Close()

	rows, err := file.GetRows("Transactions")
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus two records")
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, "ISSUANCE", rows[1][1])
	assert.Equal(t, "PURCHASE", rows[2][1])
}

func TestWriteXLSXEmptyLog(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, nil))
	assert.NotZero(t, buf.Len())
}
