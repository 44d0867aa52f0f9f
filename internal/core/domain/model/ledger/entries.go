package ledger

import (
	"slices"

	"parcelshare/internal/core/domain/model/kernel"
)

// Entries is every transaction of one assignment, oldest first.
type Entries []*Transaction

// Payment returns the live PAYMENT entry: the latest one that did not fail.
func (e Entries) Payment() *Transaction {
	for _, tx := range slices.Backward(e) {
		if tx.Type() == TypePayment && tx.Status() != StatusFailed {
			return tx
		}
	}
	return nil
}

// Payout returns the PAYOUT entry if release already happened.
func (e Entries) Payout() *Transaction {
	return e.first(TypePayout)
}

// Commission returns the COMMISSION entry written alongside the payout.
func (e Entries) Commission() *Transaction {
	return e.first(TypeCommission)
}

// Refunded sums every REFUND entry in the payment currency.
func (e Entries) Refunded(currency string) (kernel.Money, error) {
	total, err := kernel.NewMoney(0, currency)
	if err != nil {
		return kernel.Money{}, err
	}
	for _, tx := range e {
		if tx.Type() != TypeRefund {
			continue
		}
		if total, err = total.Add(tx.Amount()); err != nil {
			return kernel.Money{}, err
		}
	}
	return total, nil
}

// Count returns how many entries have the given type and status.
func (e Entries) Count(kind Type, status Status) int {
	n := 0
	for _, tx := range e {
		if tx.Type() == kind && tx.Status() == status {
			n++
		}
	}
	return n
}

// Changed returns entries that need to be written.
func (e Entries) Changed() Entries {
	var out Entries
	for _, tx := range e {
		if tx.IsNew() || tx.IsDirty() {
			out = append(out, tx)
		}
	}
	return out
}

func (e Entries) first(kind Type) *Transaction {
	for _, tx := range e {
		if tx.Type() == kind {
			return tx
		}
	}
	return nil
}
