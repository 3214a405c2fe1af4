package domain

// Rate tiers. Boundary amounts fall into the lower rate: exactly 50,000
// pays 2.00% and exactly 100,000 pays 1.00%.
const (
	tierOneLimit = 50_000
	tierTwoLimit = 100_000

	RateSmall  = 3.00
	RateMedium = 2.00
	RateLarge  = 1.00
)

// RateFor maps a quote amount to its commission rate percentage.
func RateFor(quoteAmount float64) float64 {
	switch {
	case quoteAmount < tierOneLimit:
		return RateSmall
	case quoteAmount < tierTwoLimit:
		return RateMedium
	default:
		return RateLarge
	}
}

// AmountFor derives the commission amount at full float precision.
// Rounding is a display concern.
func AmountFor(quoteAmount float64) float64 {
	return quoteAmount * RateFor(quoteAmount) / 100
}
