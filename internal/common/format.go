package common

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Report widths
const (
	DefaultWidth = 80
	WideWidth    = 100
)

// Detail is one labelled row of a console report.
type Detail struct {
	Label string
	Value string
}

func separator(char string, width int) string {
	return strings.Repeat(char, width)
}

// PrintHeader prints a report title between two rules
func PrintHeader(title string, width int) {
	fmt.Println("\n" + separator("=", width))
	fmt.Println(title)
	fmt.Println(separator("=", width))
}

// PrintFooter prints a closing message between two rules
func PrintFooter(message string, width int) {
	fmt.Println("\n" + separator("=", width))
	if message != "" {
		fmt.Println(message)
	}
	fmt.Println(separator("=", width) + "\n")
}

// PrintBoxSeparator prints a box-drawing separator line (for sub-sections)
func PrintBoxSeparator(width int) {
	fmt.Println("├" + separator("─", width))
}

// BoxPrefix returns the box-drawing prefix for a list item
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}

// PrintDetails prints aligned label/value rows, closing the box on the last one.
func PrintDetails(details []Detail) {
	labelWidth := 0
	for _, d := range details {
		if len(d.Label) > labelWidth {
			labelWidth = len(d.Label)
		}
	}
	for i, d := range details {
		fmt.Printf("%s%-*s  %s\n", BoxPrefix(i == len(details)-1), labelWidth+1, d.Label+":", d.Value)
	}
}

// FormatAmount renders an amount with its asset, e.g. "12.5 USDT".
func FormatAmount(amount decimal.Decimal, asset string) string {
	if asset == "" {
		return amount.String()
	}
	return amount.String() + " " + asset
}
