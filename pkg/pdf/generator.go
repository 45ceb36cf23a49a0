package pdf

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// CertificateData carries everything printed on a retirement certificate.
type CertificateData struct {
	CertificateID uint64
	Account       string
	ProjectID     uint64
	ProjectName   string
	Standard      string
	VintageYear   int
	Amount        uint64
	Reason        string
	Height        uint64
	Hash          string
}

// Generator renders retirement certificates as PDF documents.
type Generator struct{}

// NewGenerator creates a PDF generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// RenderCertificate writes a single-page certificate for the given retirement
// to w.
func (g *Generator) RenderCertificate(w io.Writer, data CertificateData) error {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle(fmt.Sprintf("Retirement Certificate #%d", data.CertificateID), false)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 22)
	doc.CellFormat(0, 14, "Certificate of Carbon Credit Retirement", "", 1, "C", false, 0, "")

	doc.SetFont("Helvetica", "", 11)
	doc.CellFormat(0, 8, fmt.Sprintf("Certificate No. %d", data.CertificateID), "", 1, "C", false, 0, "")
	doc.Ln(6)

	doc.SetFont("Helvetica", "", 12)
	doc.MultiCell(0, 7, fmt.Sprintf(
		"This certifies that account %s has permanently retired %d carbon credits.",
		data.Account, data.Amount), "", "C", false)
	doc.Ln(8)

	rows := [][2]string{
		{"Project", fmt.Sprintf("#%d %s", data.ProjectID, data.ProjectName)},
		{"Standard", data.Standard},
		{"Vintage Year", fmt.Sprintf("%d", data.VintageYear)},
		{"Credits Retired", fmt.Sprintf("%d tCO2e", data.Amount)},
		{"Reason", data.Reason},
		{"Ledger Height", fmt.Sprintf("%d", data.Height)},
	}
	for _, row := range rows {
		doc.SetFont("Helvetica", "B", 11)
		doc.CellFormat(50, 8, row[0], "1", 0, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 11)
		doc.CellFormat(0, 8, row[1], "1", 1, "L", false, 0, "")
	}

	doc.Ln(10)
	doc.SetFont("Courier", "", 9)
	doc.MultiCell(0, 5, "Certificate hash: "+data.Hash, "", "L", false)

	return doc.Output(w)
}
