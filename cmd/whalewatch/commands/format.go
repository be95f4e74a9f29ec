package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/wonny/whalewatch/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(message string) {
	fmt.Printf("❌ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	fmt.Printf("ℹ️  %s\n", message)
}

// PrintJSON writes v as indented JSON
func PrintJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintTableHeader prints a table header
func PrintTableHeader(columns []string, widths []int) {
	PrintTableRow(columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	for i := 0; i < totalWidth; i++ {
		fmt.Print("─")
	}
	fmt.Println()
}

// PrintTableRow prints a table row
func PrintTableRow(values []string, widths []int) {
	for i, val := range values {
		fmt.Printf("%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Print("  ")
		}
	}
	fmt.Println()
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(key string, value string, keyWidth int) {
	fmt.Printf("   %-*s : %s\n", keyWidth, key, value)
}

// PrintAnalysis prints a full ticker analysis
func PrintAnalysis(a *contracts.Analysis) {
	PrintSignal(a.Snapshot, a.Signal)
	fmt.Println()
	PrintPattern(a.Pattern)
	fmt.Println()
	PrintAlerts(a.Alerts)
}

// PrintSignal prints the classification block
func PrintSignal(snap contracts.StockSnapshot, sig contracts.VolumeSignal) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s  %s %s  (%d%% confidence)\n", snap.Ticker, statusIcon(sig.Status), sig.Label(), sig.Confidence)
	PrintSeparator()

	PrintKeyValue("Volume", fmt.Sprintf("%s (avg %s, %s)",
		groupDigits(snap.CurrentVolume), groupDigits(snap.AverageVolume), sig.RatioText()), 14)
	if snap.CurrentPrice > 0 {
		PrintKeyValue("Price", fmt.Sprintf("%.2f (%+.2f, %+.2f%%)",
			snap.CurrentPrice, snap.PriceChange, snap.PriceChangePercent), 14)
	} else {
		PrintKeyValue("Price change", fmt.Sprintf("%+.2f", snap.PriceChange), 14)
	}
	PrintKeyValue("Confirmed", yesNo(sig.PriceConfirmed), 14)
	PrintKeyValue("Trend", yesNo(sig.TrendAlignment), 14)
	PrintKeyValue("Whale", yesNo(sig.IsWhale), 14)
	PrintKeyValue("Rule", sig.Rule, 14)
	PrintSeparator()
	fmt.Printf("  %s\n", sig.Message)
}

// PrintPattern prints the historical stats table and summary
func PrintPattern(p contracts.HistoricalPattern) {
	widths := []int{10, 9, 9, 8}
	PrintTableHeader([]string{"Period", "Win rate", "Avg move", "Samples"}, widths)
	for _, tf := range p.Timeframes {
		PrintTableRow([]string{
			tf.Period,
			fmt.Sprintf("%d%%", tf.WinRate),
			tf.AvgMoveLabel,
			strconv.Itoa(tf.Samples),
		}, widths)
	}
	fmt.Println()
	fmt.Printf("  %s\n", p.Summary)
}

// PrintAlerts prints pattern alerts, one per line
func PrintAlerts(alerts []contracts.PatternAlert) {
	for _, a := range alerts {
		fmt.Printf("   %s %s [%s]\n", a.Icon, a.Title, a.Ticker)
		fmt.Printf("      %s\n", a.Description)
	}
}

func statusIcon(s contracts.SignalStatus) string {
	switch s {
	case contracts.StatusGreen:
		return "🟢"
	case contracts.StatusYellow:
		return "🟡"
	case contracts.StatusRed:
		return "🔴"
	default:
		return "⚪"
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// groupDigits renders 31000000 as 31,000,000
func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}

	out := make([]byte, 0, len(s)+len(s)/3)
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	return sign + string(out)
}
