// Package render turns quotes and news items into chat message text.
//
// Messages use Discord markdown. Prices are formatted with English digit
// grouping ("$1,234.50"); changes always carry an explicit sign.
package render
