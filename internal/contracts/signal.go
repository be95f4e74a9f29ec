package contracts

import (
	"errors"
	"fmt"
)

// ErrUnknownStatus is returned for a status outside green/yellow/red
var ErrUnknownStatus = errors.New("unknown signal status")

// SignalStatus is the three-way classification of a volume signal
type SignalStatus string

const (
	StatusGreen  SignalStatus = "green"  // buy signal
	StatusYellow SignalStatus = "yellow" // caution
	StatusRed    SignalStatus = "red"    // sell signal
)

// AllStatuses returns every status in display order
func AllStatuses() []SignalStatus {
	return []SignalStatus{StatusGreen, StatusYellow, StatusRed}
}

// ParseStatus converts a raw string into a SignalStatus
func ParseStatus(s string) (SignalStatus, error) {
	status := SignalStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return status, nil
}

// IsValid reports whether the status is one of the three known values
func (s SignalStatus) IsValid() bool {
	switch s {
	case StatusGreen, StatusYellow, StatusRed:
		return true
	}
	return false
}

// Label returns the user-facing badge text
func (s SignalStatus) Label() string {
	switch s {
	case StatusGreen:
		return "BUY SIGNAL"
	case StatusYellow:
		return "CAUTION"
	case StatusRed:
		return "SELL SIGNAL"
	default:
		return "UNKNOWN"
	}
}

// Color returns the presentation color tag tied to the status
func (s SignalStatus) Color() string {
	switch s {
	case StatusGreen:
		return "text-emerald-400"
	case StatusYellow:
		return "text-amber-400"
	case StatusRed:
		return "text-rose-400"
	default:
		return ""
	}
}

// VolumeSignal is the classifier output
// ⭐ SSOT: classifier → pattern/alert 계층
type VolumeSignal struct {
	Status         SignalStatus `json:"status"`
	Confidence     int          `json:"confidence"` // 0~100
	VolumeRatio    float64      `json:"volume_ratio"`
	PriceConfirmed bool         `json:"price_confirmed"`
	TrendAlignment bool         `json:"trend_alignment"`
	IsWhale        bool         `json:"is_whale"`
	Message        string       `json:"message"`
	Rule           string       `json:"rule"` // matched classifier rule
}

// Label returns the status badge text
func (v *VolumeSignal) Label() string {
	return v.Status.Label()
}

// RatioText formats the ratio the way messages show it (e.g. "3.1x")
func (v *VolumeSignal) RatioText() string {
	return FormatRatio(v.VolumeRatio)
}

// FormatRatio formats a volume ratio with one decimal and an "x" suffix
func FormatRatio(ratio float64) string {
	return fmt.Sprintf("%.1fx", ratio)
}
