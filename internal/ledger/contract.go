package ledger

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// contract entrypoints
const (
	entrypointSendTip       = "sendTip"
	entrypointWithdrawTips  = "withdrawTips"
	entrypointGetTipBalance = "getTipBalance"
)

const tipjarABIJSON = `[
	{
		"name": "sendTip",
		"type": "function",
		"stateMutability": "payable",
		"inputs": [
			{"name": "to", "type": "address"},
			{"name": "name", "type": "string"},
			{"name": "message", "type": "string"}
		],
		"outputs": []
	},
	{
		"name": "withdrawTips",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [],
		"outputs": []
	},
	{
		"name": "getTipBalance",
		"type": "function",
		"stateMutability": "view",
		"inputs": [{"name": "addr", "type": "address"}],
		"outputs": [{"name": "", "type": "uint256"}]
	}
]`

var tipjarABI = mustABI(tipjarABIJSON)

func mustABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}
