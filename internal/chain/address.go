// Package chain encapsulates all interaction with the blockchain: RPC
// connectivity, address validation, wallet-mode transfers, SDK-mode
// upstream delegation, and a background wallet-balance prober.
package chain

import (
	"encoding/hex"
	"strings"
)

// addressLength is the byte length of a normalized address (32 bytes,
// 64 hex digits), twice the teacher's 20-byte Address.
const addressLength = 32

// ValidateAddress strips an optional "0x" prefix, verifies the
// remainder decodes to exactly 64 lowercase-normalized hex digits, and
// returns the canonical "0x"-prefixed, lowercase form. It returns
// ("", false) for anything else, grounded on the teacher's
// StringToAddress (hex decode + fixed-length check) widened from 20 to
// 32 bytes.
func ValidateAddress(input string) (string, bool) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(input, "0x"), "0X")
	lower := strings.ToLower(trimmed)

	data, err := hex.DecodeString(lower)
	if err != nil {
		return "", false
	}
	if len(data) != addressLength {
		return "", false
	}
	return "0x" + lower, true
}
