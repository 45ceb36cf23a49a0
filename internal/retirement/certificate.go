package retirement

import (
	"encoding/hex"

	"carbon-market/credit-exchange/exchange-backend/pkg/pdf"
)

// Certificate assembles the printable certificate data for one retirement.
func (s *Service) Certificate(id uint64) (pdf.CertificateData, bool) {
	s.state.Lock()
	defer s.state.Unlock()

	r, ok := s.state.RetirementByID(id)
	if !ok {
		return pdf.CertificateData{}, false
	}

	data := pdf.CertificateData{
		CertificateID: r.ID,
		Account:       r.Account.String(),
		ProjectID:     r.ProjectID,
		Amount:        r.Amount,
		Reason:        r.Reason,
		Height:        r.RetiredAt,
		Hash:          hex.EncodeToString(r.Certificate[:]),
	}
	if p, ok := s.state.ProjectByID(r.ProjectID); ok {
		data.ProjectName = p.Name
		data.Standard = string(p.Standard)
		data.VintageYear = p.VintageYear
	}
	return data, true
}
