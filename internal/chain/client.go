package chain

import "context"

// SystemState is the minimal subset of an RPC node's latest-state
// response the dispatcher needs to confirm connectivity.
type SystemState struct {
	Epoch           uint64
	ProtocolVersion uint64
}

// TxEffects is the result of submitting and awaiting a signed
// transaction.
type TxEffects struct {
	Digest       string
	Status       string // "success" or "failure"
	GasUsed      int64
	ErrorMessage string
}

// RPCClient is the subset of node RPC calls the dispatcher needs. The
// concrete implementation is a thin net/http + encoding/json client;
// the wire protocol and transaction-building internals of the chain SDK
// are treated as an external black box.
type RPCClient interface {
	GetLatestSystemState(ctx context.Context) (SystemState, error)
	GetBalance(ctx context.Context, address string) (int64, error)
	SignAndExecuteTransaction(ctx context.Context, signer Signer, recipient string, amountBaseUnits int64) (TxEffects, error)
}

// Signer holds the cached faucet wallet key material used to build and
// sign transfer transactions in wallet mode.
type Signer interface {
	Address() string
	PrivateKeyHex() string
}
