// Package currency renders prices for display.
package currency

import (
	"fmt"
	"math"
	"strings"
)

type style struct {
	decimals     int
	thousandsSep string
	decimalSep   string
}

var defaultStyle = style{decimals: 2, thousandsSep: ",", decimalSep: "."}

var styles = map[string]style{
	"IDR": {decimals: 0, thousandsSep: "."},
	"JPY": {decimals: 0, thousandsSep: ","},
	"KRW": {decimals: 0, thousandsSep: ","},
	"VND": {decimals: 0, thousandsSep: "."},
	"CLP": {decimals: 0, thousandsSep: "."},
	"EUR": {decimals: 2, thousandsSep: ".", decimalSep: ","},
}

// Format renders amount with the ISO code prefix, e.g. "GBP 1,234.50" or "IDR 1.500.000".
func Format(amount float64, code string) string {
	code = strings.ToUpper(code)
	st, ok := styles[code]
	if !ok {
		st = defaultStyle
	}

	scale := math.Pow10(st.decimals)
	rounded := math.Round(amount*scale) / scale

	negative := rounded < 0
	if negative {
		rounded = -rounded
	}

	str := fmt.Sprintf("%.*f", st.decimals, rounded)
	intPart, fracPart, _ := strings.Cut(str, ".")

	formatted := addThousandsSeparator(intPart, st.thousandsSep)
	if st.decimals > 0 {
		formatted += st.decimalSep + fracPart
	}

	result := code + " " + formatted
	if negative {
		result = "-" + result
	}

	return result
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	numSeps := (n - 1) / 3
	result := make([]byte, n+numSeps)

	j := len(result) - 1
	for i := n - 1; i >= 0; i-- {
		result[j] = s[i]
		j--

		pos := n - i
		if pos%3 == 0 && i > 0 {
			result[j] = sep[0]
			j--
		}
	}

	return string(result)
}
