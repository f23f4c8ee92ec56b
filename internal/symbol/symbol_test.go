package symbol

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		name          string
		configured    string
		wantFamily    AssetFamily
		wantUpstream  string
		wantCanonical string
	}{
		{
			name:          "spot has no prefix",
			configured:    "BTCUSDT",
			wantFamily:    Spot,
			wantUpstream:  "BTCUSDT",
			wantCanonical: "BTCUSDT",
		},
		{
			name:          "USD prefix resolves to USD-margined futures",
			configured:    "USD_BTCUSDT",
			wantFamily:    USDFutures,
			wantUpstream:  "BTCUSDT",
			wantCanonical: "USD_F_BTCUSDT",
		},
		{
			name:          "COIN prefix resolves to coin-margined futures",
			configured:    "COIN_BTCUSD_PERP",
			wantFamily:    COINFutures,
			wantUpstream:  "BTCUSD_PERP",
			wantCanonical: "COIN_F_BTCUSD_PERP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.configured)
			if got.Family != tt.wantFamily {
				t.Errorf("Family = %v, want %v", got.Family, tt.wantFamily)
			}
			if got.UpstreamSymbol != tt.wantUpstream {
				t.Errorf("UpstreamSymbol = %q, want %q", got.UpstreamSymbol, tt.wantUpstream)
			}
			if got.Canonical != tt.wantCanonical {
				t.Errorf("Canonical = %q, want %q", got.Canonical, tt.wantCanonical)
			}
		})
	}
}

func TestAssetFamilyString(t *testing.T) {
	tests := []struct {
		family AssetFamily
		want   string
	}{
		{Spot, ""},
		{USDFutures, "USD_F_"},
		{COINFutures, "COIN_F_"},
	}
	for _, tt := range tests {
		if got := tt.family.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
