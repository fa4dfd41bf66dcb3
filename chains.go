package x402

import "fmt"

// NetworkType identifies the virtual machine family of a registered chain.
type NetworkType int

const (
	NetworkTypeUnknown NetworkType = iota
	NetworkTypeEVM
)

// Network describes one supported settlement chain: its CAIP-2 identifier,
// numeric chain id, and the stablecoin contract deployed on it. Stablecoin
// decimals are fixed at 6 across the registry.
type Network struct {
	Key            string
	ChainId        int64
	CAIP2          string
	StablecoinAddr string
	EIP3009Name    string
	EIP3009Version string
}

// Decimals is fixed for every registered network: the protocol supports a
// single USDC-like stablecoin per chain.
const Decimals = 6

// registry is the authoritative chain list from the external-interfaces
// configuration table, keyed by the short registry key used in
// X-402-Network. byCAIP2 indexes the same entries by CAIP-2 identifier.
var registry = map[string]Network{
	"base-mainnet": {
		Key:            "base-mainnet",
		ChainId:        8453,
		CAIP2:          "eip155:8453",
		StablecoinAddr: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		EIP3009Name:    "USD Coin",
		EIP3009Version: "2",
	},
	"base-sepolia": {
		Key:            "base-sepolia",
		ChainId:        84532,
		CAIP2:          "eip155:84532",
		StablecoinAddr: "0x036CbD53842c5426634e7929541eC2318f3dCF7e",
		EIP3009Name:    "USDC",
		EIP3009Version: "2",
	},
}

// byCAIP2 indexes the same entries by their CAIP-2 string, since the wire
// payload identifies the network that way while the registry key and
// X-402-Network header use the short form.
var byCAIP2 = func() map[string]Network {
	m := make(map[string]Network, len(registry))
	for _, n := range registry {
		m[n.CAIP2] = n
	}
	return m
}()

// LookupByKey resolves a registry key (e.g. "base-mainnet") to its Network.
func LookupByKey(key string) (Network, error) {
	n, ok := registry[key]
	if !ok {
		return Network{}, fmt.Errorf("unsupported network: %s", key)
	}
	return n, nil
}

// LookupByCAIP2 resolves a CAIP-2 identifier (e.g. "eip155:8453") to its
// Network.
func LookupByCAIP2(caip2 string) (Network, error) {
	n, ok := byCAIP2[caip2]
	if !ok {
		return Network{}, fmt.Errorf("unsupported network: %s", caip2)
	}
	return n, nil
}

// ValidateNetwork reports the NetworkType of a CAIP-2 identifier, or an
// error if the network is not registered. Every entry in this registry is
// EVM; the type is still threaded through so the rest of the codebase
// reads the way a registry spanning multiple VM families would.
func ValidateNetwork(caip2 string) (NetworkType, error) {
	if caip2 == "" {
		return NetworkTypeUnknown, fmt.Errorf("network: cannot be empty")
	}
	if _, ok := byCAIP2[caip2]; !ok {
		return NetworkTypeUnknown, fmt.Errorf("unsupported network: %s", caip2)
	}
	return NetworkTypeEVM, nil
}
