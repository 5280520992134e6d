package consensus

import (
	"sync"

	"github.com/verdant-labs/verdant/amount"
)

type tradeSide string

const (
	tradeBuy  tradeSide = "buy"
	tradeSell tradeSide = "sell"
)

type trade struct {
	side    tradeSide
	party   string
	credits amount.Amount
}

// CarbonMarket lets external collaborators trade the credits miners
// accrue. Prices drift with the buy/sell volume imbalance; the tape is
// cleared after each adjustment.
type CarbonMarket struct {
	mu     sync.Mutex
	engine *Engine
	price  amount.Amount
	tape   []trade
}

// NewCarbonMarket opens a market over the engine's credit ledger with an
// initial price of 10 VRD per credit.
func NewCarbonMarket(engine *Engine) *CarbonMarket {
	return &CarbonMarket{
		engine: engine,
		price:  amount.Amount(10 * amount.NanoVRD),
	}
}

func (m *CarbonMarket) CreditPrice() amount.Amount {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.price
}

// Buy spends credits from the buyer's accrued balance and reports the
// cost at the current price.
func (m *CarbonMarket) Buy(buyer string, credits amount.Amount) (amount.Amount, error) {
	return m.execute(tradeBuy, buyer, credits)
}

// Sell spends credits from the seller's accrued balance and reports the
// revenue at the current price.
func (m *CarbonMarket) Sell(seller string, credits amount.Amount) (amount.Amount, error) {
	return m.execute(tradeSell, seller, credits)
}

func (m *CarbonMarket) execute(side tradeSide, party string, credits amount.Amount) (amount.Amount, error) {
	if err := m.engine.SpendCarbonCredits(party, credits); err != nil {
		return 0, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	value := m.price.MulF64(credits.ToVRD())
	m.tape = append(m.tape, trade{side: side, party: party, credits: credits})
	return value, nil
}

// AdjustPrice moves the credit price 10% toward the dominant side of the
// recorded volume, then clears the tape.
func (m *CarbonMarket) AdjustPrice() {
	m.mu.Lock()
	defer m.mu.Unlock()

	var buyVolume, sellVolume amount.Amount
	for _, t := range m.tape {
		switch t.side {
		case tradeBuy:
			buyVolume += t.credits
		case tradeSell:
			sellVolume += t.credits
		}
	}

	if buyVolume > sellVolume {
		m.price = m.price.MulF64(1.1)
	} else if sellVolume > buyVolume {
		m.price = m.price.MulF64(0.9)
	}
	m.tape = nil
}
