package consensus

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/verdant-labs/verdant/amount"
	"github.com/verdant-labs/verdant/types"
)

// oneCredit is the atomic representation of a single carbon credit,
// reusing the fixed-point scale of the native asset.
const oneCredit = amount.Amount(amount.NanoVRD)

// awardCarbonCredits accrues credits to the miner scaled by the energy
// source. Pure bookkeeping: consensus validity never depends on it.
func (e *Engine) awardCarbonCredits(minerAddress string, source types.EnergySource) {
	credit := oneCredit.MulF64(e.params.BaseCredit * source.CreditMultiplier())

	e.mu.Lock()
	e.credits[minerAddress] += credit
	balance := e.credits[minerAddress]
	e.mu.Unlock()

	e.logger.Debug("carbon credits accrued",
		zap.String("miner", minerAddress),
		zap.String("energy_source", string(source)),
		zap.String("awarded", credit.String()),
		zap.String("balance", balance.String()))
}

// CarbonCredits returns an address's accrued credit, 0 when unknown.
func (e *Engine) CarbonCredits(address string) amount.Amount {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.credits[address]
}

// SpendCarbonCredits deducts credits on behalf of a carbon-market
// collaborator. The only way a credit balance ever decreases.
func (e *Engine) SpendCarbonCredits(address string, credits amount.Amount) error {
	if credits <= 0 {
		return fmt.Errorf("credit amount must be positive, got %s", credits)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.credits[address] < credits {
		return fmt.Errorf("insufficient carbon credits: %s holds %s, needs %s",
			address, e.credits[address], credits)
	}
	e.credits[address] -= credits
	return nil
}
