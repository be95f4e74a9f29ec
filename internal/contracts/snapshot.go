package contracts

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidSnapshot is returned when a snapshot cannot be classified
var ErrInvalidSnapshot = errors.New("invalid stock snapshot")

// StockSnapshot is the normalized market-data input to the classifier
// ⭐ SSOT: fetch 계층 → classifier 입력 계약
type StockSnapshot struct {
	Ticker        string  `json:"ticker" yaml:"ticker" validate:"required,max=10"`
	CurrentVolume int64   `json:"current_volume" yaml:"current_volume" validate:"gte=0"`
	AverageVolume int64   `json:"average_volume" yaml:"average_volume" validate:"gt=0"`
	PriceChange   float64 `json:"price_change" yaml:"price_change"` // current - previous close

	// Presentation-only fields carried from the fetch layer
	CurrentPrice       float64  `json:"current_price,omitempty" yaml:"current_price" validate:"gte=0"`
	PriceChangePercent float64  `json:"price_change_percent,omitempty" yaml:"price_change_percent"`
	History            []DayBar `json:"history,omitempty" yaml:"history" validate:"dive"`
}

// DayBar is one daily OHLCV session
type DayBar struct {
	Date   string  `json:"date" yaml:"date" validate:"required,datetime=2006-01-02"`
	Open   float64 `json:"open" yaml:"open"`
	High   float64 `json:"high" yaml:"high"`
	Low    float64 `json:"low" yaml:"low"`
	Close  float64 `json:"close" yaml:"close"`
	Volume int64   `json:"volume" yaml:"volume" validate:"gte=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate rejects snapshots that would produce NaN or Inf ratios.
// Errors wrap ErrInvalidSnapshot.
func (s StockSnapshot) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidSnapshot, describe(err))
	}

	if math.IsNaN(s.PriceChange) || math.IsInf(s.PriceChange, 0) {
		return fmt.Errorf("%w: price_change must be finite", ErrInvalidSnapshot)
	}

	return nil
}

// VolumeRatio returns CurrentVolume / AverageVolume. Call Validate first.
func (s StockSnapshot) VolumeRatio() float64 {
	return float64(s.CurrentVolume) / float64(s.AverageVolume)
}

// describe flattens validator errors into one readable line
func describe(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		msgs = append(msgs, fieldMessage(fe))
	}
	return strings.Join(msgs, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must be a %s date", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
