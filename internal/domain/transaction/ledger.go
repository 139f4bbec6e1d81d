package transaction

import (
	"sort"

	"github.com/shopspring/decimal"
)

// BalanceChange is an amount to add to one account balance.
type BalanceChange struct {
	AccountID int64
	Delta     decimal.Decimal
}

// Leg is one row of the ledger together with its balance direction.
type Leg struct {
	Params    CreateParams
	Type      string
	Direction int
}

// Apply returns t with the changes applied. Transfer legs keep their type and
// direction; other rows take the direction of their (possibly new) type.
func (p UpdateParams) Apply(t Transaction) Transaction {
	if p.AccountID != nil {
		t.AccountID = *p.AccountID
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Type != nil && !t.IsTransfer() {
		t.Type = *p.Type
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Tags != nil {
		t.Tags = *p.Tags
	}
	if !t.IsTransfer() {
		t.Direction = DirectionFor(t.Type)
	}
	return t
}

// CreateEffects is the balance change of writing a new row.
func CreateEffects(leg Leg) []BalanceChange {
	return netChanges([]BalanceChange{{
		AccountID: leg.Params.AccountID,
		Delta:     leg.Params.Amount.Mul(decimal.NewFromInt(int64(leg.Direction))),
	}})
}

// UpdateEffects reverses the effect of old and applies the effect of next.
// Changes to the same account are netted, so an amount edit produces a single
// delta and a description edit produces none.
func UpdateEffects(old, next *Transaction) []BalanceChange {
	return netChanges([]BalanceChange{
		{AccountID: old.AccountID, Delta: old.SignedAmount().Neg()},
		{AccountID: next.AccountID, Delta: next.SignedAmount()},
	})
}

// ReversalEffects undoes every leg, as when a transaction or a whole transfer
// is deleted.
func ReversalEffects(legs []*Transaction) []BalanceChange {
	changes := make([]BalanceChange, 0, len(legs))
	for _, leg := range legs {
		changes = append(changes, BalanceChange{AccountID: leg.AccountID, Delta: leg.SignedAmount().Neg()})
	}
	return netChanges(changes)
}

// TransferLegs returns the outgoing and incoming rows of a transfer.
func TransferLegs(p TransferParams) (from, to Leg) {
	leg := func(accountID int64, direction int) Leg {
		return Leg{
			Params: CreateParams{
				UserID:      p.UserID,
				AccountID:   accountID,
				Amount:      p.Amount,
				Description: p.Description,
				Category:    TransferCategory,
				Date:        p.Date,
				Tags:        p.Tags,
			},
			Type:      TypeTransfer,
			Direction: direction,
		}
	}
	return leg(p.FromAccountID, DirectionOut), leg(p.ToAccountID, DirectionIn)
}

// CheckFunds returns ErrInsufficientFunds when balance cannot cover amount.
func CheckFunds(balance, amount decimal.Decimal) error {
	if balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	return nil
}

// netChanges sums deltas per account, drops zero deltas and orders the result
// by account id, the order in which balances are locked.
func netChanges(changes []BalanceChange) []BalanceChange {
	totals := make(map[int64]decimal.Decimal, len(changes))
	for _, c := range changes {
		totals[c.AccountID] = totals[c.AccountID].Add(c.Delta)
	}

	out := make([]BalanceChange, 0, len(totals))
	for id, delta := range totals {
		if delta.IsZero() {
			continue
		}
		out = append(out, BalanceChange{AccountID: id, Delta: delta})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out
}
