package consensus

import "github.com/verdant-labs/verdant/amount"

// RewardAt returns the block reward due when totalMined blocks have
// already been mined: the base reward halved once per completed halving
// interval, floored at one whole VRD.
func (e *Engine) RewardAt(totalMined int64) amount.Amount {
	halvings := totalMined / e.params.HalvingInterval
	reward := int64(1)
	if halvings < 63 {
		reward = e.params.BaseReward >> uint(halvings)
		if reward < 1 {
			reward = 1
		}
	}
	return amount.Amount(reward * int64(amount.NanoVRD))
}

// NextReward is the reward for the block about to be mined.
func (e *Engine) NextReward() amount.Amount {
	return e.RewardAt(e.BlocksMined())
}
