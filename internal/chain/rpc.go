package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// rpcRequest is a standard JSON-RPC 2.0 envelope.
type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// JSONRPCClient is a minimal net/http + encoding/json RPC client. It
// deliberately avoids a generated chain SDK: the wire protocol exposed
// here is the full extent of what the faucet needs.
type JSONRPCClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewJSONRPCClient builds a client against endpoint with a bounded
// per-call timeout.
func NewJSONRPCClient(endpoint string, timeout time.Duration) *JSONRPCClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &JSONRPCClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *JSONRPCClient) call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("decode rpc response: %w", err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(rpcResp.Result, out)
}

func (c *JSONRPCClient) GetLatestSystemState(ctx context.Context) (SystemState, error) {
	var state SystemState
	err := c.call(ctx, "suix_getLatestSuiSystemState", nil, &state)
	return state, err
}

func (c *JSONRPCClient) GetBalance(ctx context.Context, address string) (int64, error) {
	var result struct {
		TotalBalance string `json:"totalBalance"`
	}
	if err := c.call(ctx, "suix_getBalance", []interface{}{address}, &result); err != nil {
		return 0, err
	}
	var n int64
	if _, err := fmt.Sscanf(result.TotalBalance, "%d", &n); err != nil {
		return 0, fmt.Errorf("parse balance: %w", err)
	}
	return n, nil
}

func (c *JSONRPCClient) SignAndExecuteTransaction(ctx context.Context, signer Signer, recipient string, amountBaseUnits int64) (TxEffects, error) {
	var result struct {
		Digest string `json:"digest"`
		Effects struct {
			Status struct {
				Status string `json:"status"`
				Error  string `json:"error"`
			} `json:"status"`
			GasUsed struct {
				ComputationCost string `json:"computationCost"`
			} `json:"gasUsed"`
		} `json:"effects"`
	}

	params := []interface{}{signer.Address(), recipient, amountBaseUnits}
	if err := c.call(ctx, "unsafe_payAllSui", params, &result); err != nil {
		return TxEffects{}, err
	}

	var gasUsed int64
	_, _ = fmt.Sscanf(result.Effects.GasUsed.ComputationCost, "%d", &gasUsed)

	return TxEffects{
		Digest:       result.Digest,
		Status:       result.Effects.Status.Status,
		GasUsed:      gasUsed,
		ErrorMessage: result.Effects.Status.Error,
	}, nil
}
