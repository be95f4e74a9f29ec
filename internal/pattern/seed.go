package pattern

import (
	"math"
	"unicode/utf16"
)

// SeedFromTicker folds the ticker into a non-negative seed with a
// multiply-by-31 rolling hash over UTF-16 code units (int32 wraparound).
func SeedFromTicker(ticker string) int64 {
	var hash int32
	for _, unit := range utf16.Encode([]rune(ticker)) {
		hash = hash*31 + int32(unit)
	}

	seed := int64(hash)
	if seed < 0 {
		seed = -seed
	}
	return seed
}

// SeededRandom returns a value in [0, 1) fully determined by seed and index
func SeededRandom(seed int64, index int) float64 {
	x := math.Sin(float64(seed)+float64(index)*9301+49297) * 49979
	return x - math.Floor(x)
}
