package services

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Geri alımda müşteriye alış fiyatının %70'i ödenir
var payoutRate = decimal.NewFromFloat(0.70)

// RoundMoney, tutarı kuruşa yuvarlar. decimal.Round yarımları sıfırdan uzağa
// yuvarlar; tutarlar negatif olamayacağı için bu "round half up" demektir.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ParsePriceOr, müşteriden gelen fiyat metnini çözer. Parse edilemeyen veya
// negatif değerlerde hata dönmez, ürünün kayıtlı fiyatına düşülür.
func ParsePriceOr(raw string, fallback decimal.Decimal) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return fallback
	}
	return d
}

// ComputePayout, alış fiyatından ödenecek tutarı hesaplar.
// purchase = kuruşa yuvarlanmış alış fiyatı, payout = purchase * 0.70 kuruşa yuvarlanmış.
func ComputePayout(price decimal.Decimal) (purchase, payout decimal.Decimal) {
	purchase = RoundMoney(price)
	payout = RoundMoney(purchase.Mul(payoutRate))
	return purchase, payout
}
