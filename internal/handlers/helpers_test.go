package handlers

import "github.com/shopspring/decimal"

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
