package oracle

import (
	"fmt"
	"strings"

	"QEngine/internal/model"

	"github.com/dustin/go-humanize"
)

// BuildPrompt renders every snapshot field as labelled facts followed by
// the strict output-format instructions the parser depends on.
func BuildPrompt(snap *model.MarketSnapshot) string {
	var b strings.Builder

	b.WriteString("Q-Engine — zero-hallucination crypto oracle\n")
	fmt.Fprintf(&b, "Analyze %s/USDT last 24h using real data below.\n\n", snap.Symbol)

	b.WriteString("LIVE DATA:\n")
	fmt.Fprintf(&b, "- Price: $%s (%+.1f%%)\n", humanize.CommafWithDigits(snap.Price, 2), snap.Change24h)
	fmt.Fprintf(&b, "- RSI-14: %.1f\n", snap.RSI)
	fmt.Fprintf(&b, "- EMA20/EMA50: %.2f / %.2f (%s cross)\n", snap.EMA20, snap.EMA50, snap.Trend)
	fmt.Fprintf(&b, "- MACD: %+.2f (histogram %+.2f)\n", snap.MACD, snap.MACDHistogram)
	fmt.Fprintf(&b, "- Volume spike: x%.1f vs prior average\n", snap.VolumeSpike)
	fmt.Fprintf(&b, "- Funding rate: %+.3f%%\n", snap.FundingRate)
	fmt.Fprintf(&b, "- Long/Short ratio: %.2f\n", snap.LongShort)
	fmt.Fprintf(&b, "- Volume POC: $%s\n", humanize.CommafWithDigits(snap.POC, 2))

	b.WriteString(`
TASK:
Return ONLY a valid JSON object with EXACTLY these keys:
- "signal": "LONG" | "SHORT" | "HOLD"
- "target_pct": number 3.0 to 14.0
- "stop_pct": number -1.0 to -3.5
- "confidence": integer 80-99
- "reason": 4-9 words, pipe-separated facts

NO examples. NO markdown. NO extra text. NO code blocks.`)

	return b.String()
}
