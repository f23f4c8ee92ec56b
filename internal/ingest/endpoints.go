// Package ingest implements the snapshot fetcher (C4), the stream
// session (C5) and its reconnect state machine, and the supervisor
// (C6), grounded on pkg/exchange/binancefuture's REST client shape and
// pkg/exchange/binance/ws.go's WebSocket connection lifecycle.
package ingest

import (
	"fmt"
	"net/url"

	"github.com/BullionBear/lobkeeper/internal/symbol"
)

// RESTDepthURL builds the asset-family-specific REST depth endpoint.
func RESTDepthURL(family symbol.AssetFamily, upstreamSymbol string, limit int) string {
	base, path := restBase(family)
	q := url.Values{}
	q.Set("symbol", upstreamSymbol)
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}
	return fmt.Sprintf("%s%s?%s", base, path, q.Encode())
}

func restBase(family symbol.AssetFamily) (base, path string) {
	switch family {
	case symbol.USDFutures:
		return "https://fapi.binance.com", "/fapi/v1/depth"
	case symbol.COINFutures:
		return "https://dapi.binance.com", "/dapi/v1/depth"
	default:
		return "https://api.binance.com", "/api/v3/depth"
	}
}

// WSDepthURL builds the asset-family-specific diff-depth stream URL.
// streamIntervalMs must be 100 or 1000; any other value is a
// configuration error the caller should have rejected at startup.
func WSDepthURL(family symbol.AssetFamily, upstreamSymbol string, streamIntervalMs int) string {
	base := wsBase(family)
	lower := lowerASCII(upstreamSymbol)
	suffix := "@depth"
	if streamIntervalMs == 100 {
		suffix = "@depth@100ms"
	}
	return fmt.Sprintf("%s/ws/%s%s", base, lower, suffix)
}

func wsBase(family symbol.AssetFamily) string {
	switch family {
	case symbol.USDFutures:
		return "wss://fstream.binance.com"
	case symbol.COINFutures:
		return "wss://dstream.binance.com"
	default:
		return "wss://stream.binance.com:9443"
	}
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
