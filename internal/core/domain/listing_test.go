package domain_test

import (
	"testing"

	"github.com/nc80sp/marketd/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestAssetRefRoundTrip(t *testing.T) {
	ref := domain.AssetRef{Collection: "punks", Serial: 42}
	require.Equal(t, "punks:42", ref.String())

	var parsed domain.AssetRef
	require.NoError(t, parsed.FromString("punks:42"))
	require.Equal(t, ref, parsed)
}

func TestAssetRefFromStringErrors(t *testing.T) {
	tests := []string{"", "punks", "punks:", "punks:abc", ":42", "punks:42:0"}

	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			var ref domain.AssetRef
			require.Error(t, ref.FromString(s))
		})
	}
}

func TestListingActive(t *testing.T) {
	listing := domain.Listing{
		Asset:  domain.AssetRef{Collection: "punks", Serial: 0},
		Seller: "alice",
		Price:  100,
	}
	require.True(t, listing.Active())

	require.False(t, domain.Listing{}.Active())
}
