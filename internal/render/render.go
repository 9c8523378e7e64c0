package render

import (
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rickgao/tickerwatch/internal/model"
)

const (
	emojiChart = "📊"
	emojiNews  = "📰"
	emojiUp    = "⬆️"
	emojiDown  = "⬇️"
	emojiFlat  = "↔️"
)

const noSummary = "No summary available."

// MaxMessageRunes is the longest message Discord accepts.
const MaxMessageRunes = 2000

var tag = language.English

// Price renders a scheduled price update.
func Price(q model.Quote) string {
	return priceLine(q, "")
}

// Quote renders the reply to an on-demand quote command.
func Quote(q model.Quote) string {
	return priceLine(q, " (latest)")
}

func priceLine(q model.Quote, label string) string {
	p := message.NewPrinter(tag)
	return p.Sprintf("%s **%s**%s Current price: **$%.2f** %s (%s, %s%%)",
		emojiChart,
		q.Symbol,
		label,
		q.CurrentPrice,
		directionEmoji(q.Direction()),
		signed(p, q.Change),
		signed(p, q.PercentChange),
	)
}

// News renders a news item for its symbol. The summary is truncated so the
// whole message fits in MaxMessageRunes.
func News(item model.NewsItem) string {
	summary := strings.TrimSpace(item.Summary)
	if summary == "" {
		summary = noSummary
	}

	head := emojiNews + " **Latest News for " + item.Symbol + "**\n" +
		"> **" + item.Headline + "**\n" +
		"> Summary: "
	tail := "\n> Source: " + item.Source + "\n" +
		"> Read more: <" + item.URL + ">"

	budget := MaxMessageRunes - utf8.RuneCountInString(head) - utf8.RuneCountInString(tail)
	return truncate(head+truncate(summary, budget)+tail, MaxMessageRunes)
}

// truncate shortens s to at most n runes, ending in an ellipsis when cut.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

func directionEmoji(direction int) string {
	switch {
	case direction > 0:
		return emojiUp
	case direction < 0:
		return emojiDown
	default:
		return emojiFlat
	}
}

// signed formats v with two decimals and an explicit sign.
func signed(p *message.Printer, v float64) string {
	sign := "+"
	if v < 0 && math.Round(v*100) != 0 {
		sign = "-"
	}
	return sign + p.Sprintf("%.2f", math.Abs(v))
}
