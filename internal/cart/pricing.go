package cart

import "math"

const (
	// FreeShippingThreshold is the subtotal at which shipping is waived.
	FreeShippingThreshold int64 = 5000
	// StandardShippingCost applies below FreeShippingThreshold.
	StandardShippingCost int64 = 500
	// TaxRate is the Japanese consumption tax.
	TaxRate = 0.10
)

// roundHalfUp rounds toward +Inf on .5, the same way the storefront UI rounds.
func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}

func ShippingCost(subtotal int64) int64 {
	if subtotal >= FreeShippingThreshold {
		return 0
	}
	return StandardShippingCost
}

// Tax is the consumption tax on subtotal, rounded half up.
func Tax(subtotal int64) int64 {
	return roundHalfUp(float64(subtotal) * TaxRate)
}

// FinalTotal is subtotal + rounded tax + shipping. Only the tax is rounded.
func FinalTotal(subtotal int64) int64 {
	return subtotal + Tax(subtotal) + ShippingCost(subtotal)
}

func AmountForFreeShipping(subtotal int64) int64 {
	return max(0, FreeShippingThreshold-subtotal)
}

// TaxIncludedAmount rounds the subtotal with tax applied as a whole.
func TaxIncludedAmount(subtotal int64) int64 {
	return roundHalfUp(float64(subtotal) * (1 + TaxRate))
}
