package audit

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"carbon-market/credit-exchange/exchange-backend/internal/ledger"
)

var exportHeader = []string{"ID", "Type", "Project", "Buyer", "Seller", "Amount", "Price", "Height"}

// WriteXLSX renders the given transaction log as an XLSX workbook.
func WriteXLSX(w io.Writer, txs []ledger.Transaction) error {
	file := excelize.NewFile()
	defer file.Close()

	const sheet = "Transactions"
	if err := file.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}

	for col, name := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
		if err := file.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	for i, tx := range txs {
		row := i + 2
		values := []interface{}{
			tx.ID, string(tx.Type), tx.ProjectID,
			tx.Buyer.String(), tx.Seller.String(),
			tx.Amount, tx.Price, tx.Height,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := file.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	if err := file.AutoFilter(sheet, fmt.Sprintf("A1:H%d", len(txs)+1), nil); err != nil {
		return err
	}
	if err := file.SetPanes(sheet, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return err
	}

	return file.Write(w)
}
