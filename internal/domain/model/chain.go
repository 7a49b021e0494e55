package model

import (
	"fmt"
	"strings"
)

type Chain string

const (
	ChainEthereum Chain = "ethereum"
	ChainPolygon  Chain = "polygon"
)

func (c Chain) String() string {
	return string(c)
}

type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkSepolia Network = "sepolia"
	NetworkMumbai  Network = "mumbai"
	NetworkTestnet Network = "testnet"
)

func (n Network) String() string {
	return string(n)
}

// ChainID identifies a supported chain/network pair, e.g. "ethereum:mainnet"
// or "polygon:mumbai". Each configured ChainID maps by position to one
// provider endpoint URL and one API credential slot.
type ChainID string

func (c ChainID) String() string {
	return string(c)
}

// Chain returns the chain part of the identifier.
func (c ChainID) Chain() Chain {
	chain, _, _ := strings.Cut(string(c), ":")
	return Chain(chain)
}

// Network returns the network part of the identifier.
func (c ChainID) Network() Network {
	_, network, _ := strings.Cut(string(c), ":")
	return Network(network)
}

// ParseChainID validates and lowercases a "chain:network" string.
func ParseChainID(s string) (ChainID, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	chain, network, ok := strings.Cut(s, ":")
	if !ok || chain == "" || network == "" {
		return "", fmt.Errorf("invalid chain identifier %q: want chain:network", s)
	}
	return ChainID(s), nil
}

type TokenType string

const (
	TokenTypeERC721  TokenType = "erc721"
	TokenTypeERC1155 TokenType = "erc1155"
	TokenTypeERC20   TokenType = "erc20"
)

func (t TokenType) String() string {
	return string(t)
}
