package main

import (
	"testing"

	"github.com/nc80sp/marketd/internal/core/domain"
	"github.com/nc80sp/marketd/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAssetRef(t *testing.T) {
	asset, err := parseAssetRef("punks:42")
	require.NoError(t, err)
	assert.Equal(t, domain.AssetRef{Collection: "punks", Serial: 42}, asset)

	fixtures := []string{"", "punks", ":42", "punks:fortytwo", "punks:42:extra"}
	for _, ref := range fixtures {
		_, err := parseAssetRef(ref)
		require.Error(t, err)
		assert.True(t, errors.INVALID_ASSET_REF.Is(err), "ref %q", ref)
	}
}
