package chain

import "github.com/suifx/faucet/internal/config"

// defaultRPCEndpoints and defaultSDKEndpoints provide a fallback when
// RPC_URL is left unset, keyed by the configured network.
var defaultRPCEndpoints = map[config.Network]string{
	config.NetworkMainnet: "https://fullnode.mainnet.sui.io:443",
	config.NetworkTestnet: "https://fullnode.testnet.sui.io:443",
	config.NetworkDevnet:  "https://fullnode.devnet.sui.io:443",
}

var defaultSDKEndpoints = map[config.Network]string{
	config.NetworkTestnet: "https://faucet.testnet.sui.io/v2/gas",
	config.NetworkDevnet:  "https://faucet.devnet.sui.io/v2/gas",
}

// DefaultRPCEndpoint returns the well-known fullnode RPC URL for
// network, falling back to testnet's when network is unrecognized.
func DefaultRPCEndpoint(network config.Network) string {
	if v, ok := defaultRPCEndpoints[network]; ok {
		return v
	}
	return defaultRPCEndpoints[config.NetworkTestnet]
}

// DefaultSDKEndpoint returns the upstream public faucet URL for
// network; mainnet has none (the upstream faucet only serves test
// networks), so SDK mode there requires an explicit operator override.
func DefaultSDKEndpoint(network config.Network) string {
	return defaultSDKEndpoints[network]
}
