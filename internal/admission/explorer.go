package admission

import "github.com/suifx/faucet/internal/config"

// explorerPrefixes maps each supported network to its block-explorer
// transaction URL prefix.
var explorerPrefixes = map[config.Network]string{
	config.NetworkMainnet: "https://suivision.xyz/txblock/",
	config.NetworkTestnet: "https://testnet.suivision.xyz/txblock/",
	config.NetworkDevnet:  "https://devnet.suivision.xyz/txblock/",
}

func explorerURL(network config.Network, txHash string) string {
	prefix, ok := explorerPrefixes[network]
	if !ok {
		prefix = explorerPrefixes[config.NetworkTestnet]
	}
	return prefix + txHash
}
