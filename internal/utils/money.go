package utils

import "github.com/shopspring/decimal"

// CalculateTotal returns weight × price per kg rounded to two decimal places.
func CalculateTotal(weight, pricePerKg float64) float64 {
	total := decimal.NewFromFloat(weight).Mul(decimal.NewFromFloat(pricePerKg))
	return total.Round(2).InexactFloat64()
}
