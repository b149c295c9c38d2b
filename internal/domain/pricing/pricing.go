// Package pricing は注文金額（小計・送料・税・合計）を計算する。
// 副作用なし。チェックアウトで使う値がそのまま保存される。
package pricing

import "github.com/shopspring/decimal"

var (
	// この金額を超えたら送料無料（ちょうどは有料）
	FreeShippingThreshold = decimal.NewFromInt(100)
	FlatShippingPrice     = decimal.NewFromInt(10)
	TaxRate               = decimal.RequireFromString("0.08")
)

// Breakdown は注文1件分の金額内訳。
type Breakdown struct {
	ItemsPrice    decimal.Decimal
	ShippingPrice decimal.Decimal
	TaxPrice      decimal.Decimal
	TotalPrice    decimal.Decimal
}

// Quote は小計から送料・税・合計を出す。
func Quote(itemsPrice decimal.Decimal) Breakdown {
	shipping := Shipping(itemsPrice)
	tax := Tax(itemsPrice)
	return Breakdown{
		ItemsPrice:    itemsPrice,
		ShippingPrice: shipping,
		TaxPrice:      tax,
		TotalPrice:    itemsPrice.Add(shipping).Add(tax),
	}
}

func Shipping(itemsPrice decimal.Decimal) decimal.Decimal {
	if itemsPrice.GreaterThan(FreeShippingThreshold) {
		return decimal.Zero
	}
	return FlatShippingPrice
}

// Tax は小数第2位で四捨五入（0.5は0から遠い方へ）。
func Tax(itemsPrice decimal.Decimal) decimal.Decimal {
	return itemsPrice.Mul(TaxRate).Round(2)
}

// Line は小計計算用の明細。
type Line struct {
	Price    decimal.Decimal
	Quantity int64
}

// ItemsPrice は Σ price × quantity。
func ItemsPrice(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(l.Quantity)))
	}
	return total
}
