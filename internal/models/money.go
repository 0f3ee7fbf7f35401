package models

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Money is an amount in whole LKR units. The storefront carries a single
// currency and never deals in fractional units.
type Money int64

const Currency = "LKR"

var moneyPrinter = message.NewPrinter(language.English)

func (m Money) Format() string {
	return moneyPrinter.Sprintf("%s %d", Currency, int64(m))
}
