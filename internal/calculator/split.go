package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billsplit/internal/models"
)

// DefaultTaxRate is the tax applied to receipts when none is configured (8.5%).
var DefaultTaxRate = decimal.RequireFromString("0.085")

// Summary holds the bill-level amounts shown alongside the receipt.
type Summary struct {
	Subtotal decimal.Decimal
	TaxRate  decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ValidateTaxRate rejects rates outside [0, 1].
func ValidateTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("tax rate %s must be between 0 and 1", rate)
	}
	return nil
}

// Summarize computes subtotal, tax and total for the receipt.
// Based on: total = subtotal × (1 + tax_rate), with tax rounded to cents.
func Summarize(items []models.ReceiptItem, taxRate decimal.Decimal) Summary {
	subtotal := Subtotal(items)
	tax := subtotal.Mul(taxRate).Round(2)
	return Summary{
		Subtotal: subtotal,
		TaxRate:  taxRate,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// CalculateShares computes how much each participant owes including proportional tax.
// Shares follow roster order; participants without items get a zero share.
// Based on the algorithm: person_total = person_subtotal × (1 + tax_rate)
func CalculateShares(roster []models.Participant, items []models.ReceiptItem, taxRate decimal.Decimal) []models.Share {
	totals := ComputeTotals(roster, items)

	byParticipant := make(map[string][]models.ShareItem, len(roster))
	for _, item := range items {
		if !item.IsAssigned() {
			continue
		}
		byParticipant[item.AssignedTo] = append(byParticipant[item.AssignedTo], models.ShareItem{
			ItemID: item.ID,
			Name:   item.Name,
			Price:  item.Price,
		})
	}

	shares := make([]models.Share, len(roster))
	for i, p := range roster {
		subtotal := totals[p.ID]
		tax := subtotal.Mul(taxRate).Round(2)
		shares[i] = models.Share{
			ParticipantID: p.ID,
			DisplayName:   p.DisplayName,
			ColorTag:      p.ColorTag,
			Subtotal:      subtotal,
			Tax:           tax,
			Total:         subtotal.Add(tax),
			Items:         byParticipant[p.ID],
		}
	}

	return shares
}
