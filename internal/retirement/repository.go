package retirement

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"carbon-market/credit-exchange/exchange-backend/internal/ledger"
)

// Repository archives retirement certificates off the operation path. The
// ledger record is authoritative; the archive exists for certificate lookups
// after a restart and must never fail a retirement.
type Repository interface {
	SaveCertificate(ctx context.Context, r *ledger.Retirement, p *ledger.Project)
}

// CertificateRecord is the archived form of a retirement certificate.
type CertificateRecord struct {
	ID          uint64         `gorm:"primaryKey" json:"id"`
	Account     uuid.UUID      `gorm:"type:uuid;not null;index" json:"account"`
	ProjectID   uint64         `gorm:"not null;index" json:"project_id"`
	Amount      uint64         `gorm:"not null" json:"amount"`
	RetiredAt   uint64         `gorm:"not null" json:"retired_at"`
	Reason      string         `json:"reason"`
	Hash        string         `gorm:"size:64;not null" json:"hash"`
	ProjectMeta datatypes.JSON `json:"project_meta"`
	ArchivedAt  time.Time      `gorm:"autoCreateTime" json:"archived_at"`
}

// TableName sets the archive table name.
func (CertificateRecord) TableName() string {
	return "retirement_certificates"
}

type gormRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormRepository migrates the certificate table and returns a Repository
// bound to db.
func NewGormRepository(db *gorm.DB, logger *zap.Logger) (Repository, error) {
	if err := db.AutoMigrate(&CertificateRecord{}); err != nil {
		return nil, err
	}
	return &gormRepository{db: db, logger: logger}, nil
}

// SaveCertificate implements Repository.
func (r *gormRepository) SaveCertificate(_ context.Context, rec *ledger.Retirement, project *ledger.Project) {
	meta, _ := json.Marshal(map[string]interface{}{
		"name":         project.Name,
		"standard":     project.Standard,
		"vintage_year": project.VintageYear,
		"methodology":  project.Methodology,
	})
	row := CertificateRecord{
		ID:          rec.ID,
		Account:     rec.Account,
		ProjectID:   rec.ProjectID,
		Amount:      rec.Amount,
		RetiredAt:   rec.RetiredAt,
		Reason:      rec.Reason,
		Hash:        hex.EncodeToString(rec.Certificate[:]),
		ProjectMeta: datatypes.JSON(meta),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			r.logger.Error("Failed to archive certificate",
				zap.Uint64("retirement_id", rec.ID), zap.Error(err))
		}
	}()
}
