package model

import (
	"fmt"
	"math/big"
	"strings"
)

// Custom token ids minted by the asset contracts pack the internal catalogue
// token id above a 128-bit mint serial:
//
//	[ ...unused | internal token id (32 bits) | serial (128 bits) ]
//
// The contract exposes a getter for the internal id, but a contract call per
// token is far too slow on large wallets, so we decode the bitfield locally.
const (
	customTokenSerialBits     = 128
	customTokenInternalIDMask = 0xffffffff
)

var internalIDMask = big.NewInt(customTokenInternalIDMask)

// InternalTokenID extracts the internal catalogue token id from a custom
// token id. The mask is applied before narrowing so an oversized id cannot
// overflow the conversion.
func InternalTokenID(customTokenID *big.Int) int64 {
	id := new(big.Int).Rsh(customTokenID, customTokenSerialBits)
	id.And(id, internalIDMask)
	return id.Int64()
}

// ParseCustomTokenID parses a provider-supplied token id, which may be
// decimal or 0x-prefixed hex.
func ParseCustomTokenID(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	id, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, fmt.Errorf("invalid token id %q", s)
	}
	return id, nil
}

// HexTokenID renders a custom token id as 0x-prefixed hex, the canonical
// form used in analytic ids.
func HexTokenID(customTokenID *big.Int) string {
	return "0x" + customTokenID.Text(16)
}
