package cli

import (
	"math"
	"strconv"
	"strings"

	"github.com/Veraticus/dompetku/internal/model"
)

// FormatRupiah renders an amount the Indonesian way: "Rp 1.234.567".
// Fractions are rounded to whole rupiah.
func FormatRupiah(amount float64) string {
	negative := amount < 0
	digits := strconv.FormatFloat(math.Round(math.Abs(amount)), 'f', 0, 64)

	var b strings.Builder
	if negative {
		b.WriteString("-")
	}
	b.WriteString("Rp ")
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatSigned renders a transaction amount with a sign and its type color.
func FormatSigned(amount float64, t model.TransactionType) string {
	if t == model.TransactionTypeIncome {
		return IncomeStyle.Render("+" + FormatRupiah(amount))
	}
	return ExpenseStyle.Render("-" + FormatRupiah(amount))
}
