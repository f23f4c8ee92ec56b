// Package symbol resolves a configured symbol into its asset family and
// canonical persisted form (asset_prefix + upstream_symbol).
package symbol

import "strings"

// AssetFamily distinguishes the three supported Binance-style market
// families, each with its own REST/WS endpoints and canonical prefix.
type AssetFamily int

const (
	Spot AssetFamily = iota
	USDFutures
	COINFutures
)

func (f AssetFamily) String() string {
	switch f {
	case USDFutures:
		return "USD_F_"
	case COINFutures:
		return "COIN_F_"
	default:
		return ""
	}
}

// Resolved is the outcome of classifying a configured symbol.
type Resolved struct {
	Family         AssetFamily
	UpstreamSymbol string // the symbol as the venue expects it, e.g. "BTCUSDT"
	Canonical      string // asset_prefix + upstream_symbol, e.g. "USD_F_BTCUSDT"
}

// Resolve classifies a configured symbol such as "USD_BTCUSDT",
// "COIN_BTCUSD_PERP", or plain "BTCUSDT" into its asset family and
// canonical persisted symbol.
func Resolve(configured string) Resolved {
	switch {
	case strings.HasPrefix(configured, "USD_"):
		upstream := strings.TrimPrefix(configured, "USD_")
		return Resolved{Family: USDFutures, UpstreamSymbol: upstream, Canonical: USDFutures.String() + upstream}
	case strings.HasPrefix(configured, "COIN_"):
		upstream := strings.TrimPrefix(configured, "COIN_")
		return Resolved{Family: COINFutures, UpstreamSymbol: upstream, Canonical: COINFutures.String() + upstream}
	default:
		return Resolved{Family: Spot, UpstreamSymbol: configured, Canonical: configured}
	}
}
