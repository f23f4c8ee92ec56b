package ingest

import (
	"strings"
	"testing"

	"github.com/BullionBear/lobkeeper/internal/symbol"
)

func TestRESTDepthURL(t *testing.T) {
	tests := []struct {
		name   string
		family symbol.AssetFamily
		want   string
	}{
		{"spot", symbol.Spot, "https://api.binance.com/api/v3/depth?limit=1000&symbol=BTCUSDT"},
		{"usd futures", symbol.USDFutures, "https://fapi.binance.com/fapi/v1/depth?limit=1000&symbol=BTCUSDT"},
		{"coin futures", symbol.COINFutures, "https://dapi.binance.com/dapi/v1/depth?limit=1000&symbol=BTCUSDT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RESTDepthURL(tt.family, "BTCUSDT", 1000)
			if got != tt.want {
				t.Errorf("RESTDepthURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWSDepthURL(t *testing.T) {
	tests := []struct {
		name         string
		family       symbol.AssetFamily
		streamMs     int
		wantContains []string
	}{
		{"spot 100ms lowercases symbol", symbol.Spot, 100, []string{"wss://stream.binance.com:9443/ws/", "btcusdt@depth@100ms"}},
		{"spot 1000ms has no ms suffix", symbol.Spot, 1000, []string{"btcusdt@depth"}},
		{"usd futures host", symbol.USDFutures, 100, []string{"wss://fstream.binance.com"}},
		{"coin futures host", symbol.COINFutures, 100, []string{"wss://dstream.binance.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WSDepthURL(tt.family, "BTCUSDT", tt.streamMs)
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("WSDepthURL() = %q, want substring %q", got, want)
				}
			}
		})
	}
	// 1000ms must not also match the @100ms suffix.
	got := WSDepthURL(symbol.Spot, "BTCUSDT", 1000)
	if strings.Contains(got, "@depth@100ms") {
		t.Errorf("WSDepthURL(1000ms) = %q, unexpectedly carries @100ms suffix", got)
	}
}
