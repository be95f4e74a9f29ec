package httputil_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/wonny/whalewatch/pkg/config"
	"github.com/wonny/whalewatch/pkg/httputil"
	"github.com/wonny/whalewatch/pkg/logger"
)

// Example_getJSON demonstrates decoding a JSON response
func Example_getJSON() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"symbol":"NVDA","volume":31000000}`)
	}))
	defer server.Close()

	client := httputil.New(logger.Nop(), 5*time.Second)

	var quote struct {
		Symbol string `json:"symbol"`
		Volume int64  `json:"volume"`
	}
	if err := client.GetJSON(context.Background(), server.URL+"/query?apikey=secret", &quote); err != nil {
		fmt.Printf("Request failed: %v\n", err)
		return
	}

	fmt.Printf("%s traded %d shares\n", quote.Symbol, quote.Volume)
	// Output:
	// NVDA traded 31000000 shares
}

// Example_statusError demonstrates non-2xx handling without retry
func Example_statusError() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	// Create client without retry
	client := httputil.New(logger.Nop(), 5*time.Second).DisableRetry()

	var body map[string]interface{}
	err := client.GetJSON(context.Background(), server.URL, &body)

	fmt.Println(err != nil)
	// Output:
	// true
}

// Example_rateLimited demonstrates the free-tier Alpha Vantage setup
func Example_rateLimited() {
	cfg := &config.Config{
		Env:       "production",
		LogLevel:  "info",
		LogFormat: "json",
		AlphaVantage: config.AlphaVantageConfig{
			BaseURL:           "https://www.alphavantage.co/query",
			RequestsPerMinute: 5,
			Timeout:           15 * time.Second,
		},
	}
	log := logger.New(cfg)

	// 5 requests per minute in-process, 3 retries starting at 2s
	client := httputil.New(log, cfg.AlphaVantage.Timeout).
		WithLocalRateLimit(cfg.AlphaVantage.RequestsPerMinute).
		WithRetry(3, 2*time.Second)

	var quote map[string]interface{}
	url := cfg.AlphaVantage.BaseURL + "?function=GLOBAL_QUOTE&symbol=NVDA&apikey=demo"
	if err := client.GetJSON(context.Background(), url, &quote); err != nil {
		fmt.Printf("Request failed after retries: %v\n", err)
		return
	}

	fmt.Println("Quote received")
}
