package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// AssetRef uniquely identifies one non-fungible asset as the pair of its
// collection identifier and serial number within the collection.
type AssetRef struct {
	Collection string
	Serial     uint64
}

func (r *AssetRef) FromString(s string) error {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || parts[0] == "" {
		return fmt.Errorf("invalid asset ref string: %s", s)
	}
	serial, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid serial string: %s", parts[1])
	}
	r.Collection = parts[0]
	r.Serial = serial
	return nil
}

func (r AssetRef) String() string {
	return fmt.Sprintf("%s:%d", r.Collection, r.Serial)
}

// Listing is an offer to sell one asset at a fixed price. The repository
// stores a record only while the listing is active, so a stored listing
// always has a nonzero price and a nonempty seller.
type Listing struct {
	Asset     AssetRef
	Seller    string
	Price     uint64
	CreatedAt int64
}

func (l Listing) Active() bool {
	return l.Price > 0
}

func (l Listing) String() string {
	// nolint
	b, _ := json.MarshalIndent(l, "", "  ")
	return string(b)
}
