package chain

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/verdant-labs/verdant/amount"
)

// TotalSupply caps the native asset at one billion VRD.
const TotalSupply = amount.Amount(1_000_000_000 * amount.NanoVRD)

const accountStripes = 64

// accountStripe holds the balances, reservations, and in-flight transfer
// marks for the addresses hashing into it. Each stripe has its own lock,
// so transfers touching disjoint stripes proceed in parallel.
type accountStripe struct {
	mu       sync.Mutex
	balances map[string]amount.Amount
	reserved map[string]amount.Amount
	inflight map[string]string
}

// AccountTable is the one piece of state shared across shards: the
// native-asset balance of every address, plus the reservations taken by
// in-flight cross-shard transfers. Pair operations lock both affected
// stripes in index order, so the two-phase commit cannot deadlock
// against a concurrent transfer over the same addresses.
type AccountTable struct {
	stripes [accountStripes]accountStripe

	supplyMu    sync.Mutex
	circulating amount.Amount
}

func NewAccountTable() *AccountTable {
	t := &AccountTable{}
	for i := range t.stripes {
		t.stripes[i].balances = make(map[string]amount.Amount)
		t.stripes[i].reserved = make(map[string]amount.Amount)
		t.stripes[i].inflight = make(map[string]string)
	}
	return t
}

func stripeIndex(address string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(address))
	return h.Sum32() % accountStripes
}

func (t *AccountTable) stripeFor(address string) *accountStripe {
	return &t.stripes[stripeIndex(address)]
}

// lockPair locks the stripes of both addresses in index order and
// returns the matching unlock. Identical stripes are locked once; the
// fixed order is what keeps concurrent pair operations deadlock-free.
func (t *AccountTable) lockPair(a, b string) func() {
	ia, ib := stripeIndex(a), stripeIndex(b)
	if ia == ib {
		s := &t.stripes[ia]
		s.mu.Lock()
		return s.mu.Unlock
	}
	if ia > ib {
		ia, ib = ib, ia
	}
	first, second := &t.stripes[ia], &t.stripes[ib]
	first.mu.Lock()
	second.mu.Lock()
	return func() {
		second.mu.Unlock()
		first.mu.Unlock()
	}
}

// Balance returns the confirmed balance, 0 for unknown addresses.
func (t *AccountTable) Balance(address string) amount.Amount {
	s := t.stripeFor(address)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[address]
}

// available is the unlocked part of a balance; callers hold the stripe lock.
func (s *accountStripe) available(address string) amount.Amount {
	return s.balances[address] - s.reserved[address]
}

// Fund mints amt to an address from the unissued supply. Used for
// genesis allocations and mining rewards.
func (t *AccountTable) Fund(address string, amt amount.Amount) error {
	if amt <= 0 {
		return ErrInvalidAmount
	}

	t.supplyMu.Lock()
	if t.circulating+amt > TotalSupply {
		t.supplyMu.Unlock()
		return ErrSupplyExhausted
	}
	t.circulating += amt
	t.supplyMu.Unlock()

	s := t.stripeFor(address)
	s.mu.Lock()
	s.balances[address] += amt
	s.mu.Unlock()
	return nil
}

// Circulating reports how much of the supply has been issued.
func (t *AccountTable) Circulating() amount.Amount {
	t.supplyMu.Lock()
	defer t.supplyMu.Unlock()
	return t.circulating
}

// Transfer moves funds between two addresses in one critical section:
// the sender is debited total and the recipient credited amt with no
// intermediate state observable. Used by same-shard transactions, where
// total exceeds amt by the fee, which is burned.
func (t *AccountTable) Transfer(sender, recipient string, total, amt amount.Amount) error {
	if amt <= 0 || total < amt {
		return ErrInvalidAmount
	}

	unlock := t.lockPair(sender, recipient)
	defer unlock()

	ss := t.stripeFor(sender)
	if ss.available(sender) < total {
		return fmt.Errorf("%w: %s needs %s", ErrInsufficientBalance, sender, total)
	}

	ss.balances[sender] -= total
	t.stripeFor(recipient).balances[recipient] += amt
	return nil
}

// Reserve is the prepare phase of a cross-shard transfer: it places a
// hold of total on the sender and marks both addresses as participating
// in transfer id. It votes no, changing nothing, if the sender's
// unlocked balance is short or either address already has a different
// transfer in flight.
func (t *AccountTable) Reserve(id, sender, recipient string, total amount.Amount) error {
	if total <= 0 {
		return ErrInvalidAmount
	}

	unlock := t.lockPair(sender, recipient)
	defer unlock()

	ss, rs := t.stripeFor(sender), t.stripeFor(recipient)
	if other, busy := ss.inflight[sender]; busy && other != id {
		return fmt.Errorf("%w: %s", ErrAddressBusy, sender)
	}
	if other, busy := rs.inflight[recipient]; busy && other != id {
		return fmt.Errorf("%w: %s", ErrAddressBusy, recipient)
	}
	if ss.available(sender) < total {
		return fmt.Errorf("%w: %s needs %s", ErrInsufficientBalance, sender, total)
	}

	ss.reserved[sender] += total
	ss.inflight[sender] = id
	rs.inflight[recipient] = id
	return nil
}

// Commit finalizes a prepared transfer as a single non-interruptible
// step: debit the held total, credit amt, release the hold. No observer
// of balances ever sees the debit without the credit.
func (t *AccountTable) Commit(id, sender, recipient string, total, amt amount.Amount) error {
	if amt <= 0 || total < amt {
		return ErrInvalidAmount
	}

	unlock := t.lockPair(sender, recipient)
	defer unlock()

	ss, rs := t.stripeFor(sender), t.stripeFor(recipient)
	if ss.inflight[sender] != id || rs.inflight[recipient] != id {
		return fmt.Errorf("%w: %s", ErrUnknownTransfer, id)
	}
	if ss.reserved[sender] < total {
		return fmt.Errorf("%w: reservation smaller than %s", ErrTransferMismatch, total)
	}

	ss.balances[sender] -= total
	ss.reserved[sender] -= total
	if ss.reserved[sender] == 0 {
		delete(ss.reserved, sender)
	}
	rs.balances[recipient] += amt

	delete(ss.inflight, sender)
	delete(rs.inflight, recipient)
	return nil
}

// Abort releases whatever the prepare phase reserved for transfer id.
// Safe to call when prepare never took effect; balances are untouched.
func (t *AccountTable) Abort(id, sender, recipient string, total amount.Amount) {
	unlock := t.lockPair(sender, recipient)
	defer unlock()

	ss, rs := t.stripeFor(sender), t.stripeFor(recipient)
	if ss.inflight[sender] == id {
		ss.reserved[sender] -= total
		if ss.reserved[sender] <= 0 {
			delete(ss.reserved, sender)
		}
		delete(ss.inflight, sender)
	}
	if rs.inflight[recipient] == id {
		delete(rs.inflight, recipient)
	}
}
