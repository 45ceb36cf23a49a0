package exchange

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"carbon-market/credit-exchange/exchange-backend/internal/audit"
	"carbon-market/credit-exchange/exchange-backend/internal/bank"
	"carbon-market/credit-exchange/exchange-backend/internal/chain"
	"carbon-market/credit-exchange/exchange-backend/internal/ledger"
	"carbon-market/credit-exchange/exchange-backend/internal/market"
	"carbon-market/credit-exchange/exchange-backend/internal/platform"
	"carbon-market/credit-exchange/exchange-backend/internal/projects"
	"carbon-market/credit-exchange/exchange-backend/internal/retirement"
	"carbon-market/credit-exchange/exchange-backend/internal/verifiers"
)

// Options wires an Exchange. Sink and CertArchive may be nil.
type Options struct {
	State            *ledger.State
	Bank             bank.Bank
	Clock            chain.Clock
	Owner            uuid.UUID
	Escrow           uuid.UUID
	MinVerifierStake uint64
	MinProjectStake  uint64
	FeeBasisPoints   uint64
	RetirementFee    uint64
	Sink             audit.Sink
	CertArchive      retirement.Repository
	Logger           *zap.Logger
}

// Exchange bundles every service of the marketplace engine over one shared
// ledger state.
type Exchange struct {
	State      *ledger.State
	Verifiers  *verifiers.Service
	Projects   *projects.Service
	Market     *market.Service
	Retirement *retirement.Service
	Platform   *platform.Service
	Audit      *audit.Service
}

// New assembles the engine.
func New(opts Options) *Exchange {
	return &Exchange{
		State: opts.State,
		Verifiers: verifiers.NewService(opts.State, opts.Bank, opts.Clock,
			verifiers.Params{MinStake: opts.MinVerifierStake, Escrow: opts.Escrow}, opts.Logger),
		Projects: projects.NewService(opts.State, opts.Bank, opts.Clock,
			projects.Params{MinStake: opts.MinProjectStake, Escrow: opts.Escrow}, opts.Sink, opts.Logger),
		Market: market.NewService(opts.State, opts.Bank, opts.Clock,
			market.Params{FeeBasisPoints: opts.FeeBasisPoints, Escrow: opts.Escrow}, opts.Sink, opts.Logger),
		Retirement: retirement.NewService(opts.State, opts.Bank, opts.Clock,
			retirement.Params{Fee: opts.RetirementFee, Escrow: opts.Escrow}, opts.Sink, opts.CertArchive, opts.Logger),
		Platform: platform.NewService(opts.State, opts.Bank,
			platform.Params{Owner: opts.Owner, Escrow: opts.Escrow}, opts.Logger),
		Audit: audit.NewService(opts.State, opts.Logger),
	}
}
