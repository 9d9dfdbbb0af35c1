package core

import "github.com/shopspring/decimal"

// PersonnelCost unifies the two historical shapes of a day's staffing
// cost: a single aggregate amount ("personnel": number) and an itemized
// list ("personnelEntries": [{name, amount}]). Old documents carry the
// scalar, newer ones the list, and a merged document may carry both.
// Total is the only accessor callers need; nothing downstream branches
// on shape.
type PersonnelCost struct {
	Scalar decimal.Decimal
	Items  []Entry
}

// ScalarPersonnel builds a cost in the aggregate-amount shape.
func ScalarPersonnel(amount decimal.Decimal) PersonnelCost {
	return PersonnelCost{Scalar: amount}
}

// ItemizedPersonnel builds a cost in the line-item shape.
func ItemizedPersonnel(items []Entry) PersonnelCost {
	return PersonnelCost{Items: items}
}

// Total returns the staffing cost for the day regardless of shape.
func (p PersonnelCost) Total() decimal.Decimal {
	return p.Scalar.Add(sumEntries(p.Items))
}

// IsZero reports whether the cost carries no amount and no items. A day
// whose lists are all empty and whose personnel cost is zero is deleted
// rather than kept as an empty shell.
func (p PersonnelCost) IsZero() bool {
	return p.Scalar.IsZero() && len(p.Items) == 0
}

// Add merges an aggregate amount into the cost, keeping whatever items
// are already present.
func (p PersonnelCost) Add(amount decimal.Decimal) PersonnelCost {
	return PersonnelCost{Scalar: p.Scalar.Add(amount), Items: p.Items}
}

// Append adds a line item, keeping any scalar already present.
func (p PersonnelCost) Append(item Entry) PersonnelCost {
	items := make([]Entry, 0, len(p.Items)+1)
	items = append(items, p.Items...)
	items = append(items, item)
	return PersonnelCost{Scalar: p.Scalar, Items: items}
}

// Remove drops the line item with the given id. The second return value
// reports whether anything was removed.
func (p PersonnelCost) Remove(itemID string) (PersonnelCost, bool) {
	items := make([]Entry, 0, len(p.Items))
	removed := false
	for _, it := range p.Items {
		if it.ID == itemID {
			removed = true
			continue
		}
		items = append(items, it)
	}
	return PersonnelCost{Scalar: p.Scalar, Items: items}, removed
}
