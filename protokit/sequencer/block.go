package sequencer

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/protokit-stack/protokit-go/protokit/runtime"
)

type TxStatus = byte

const (
	TxAccepted TxStatus = iota
	TxSoftRejected
	TxMalformed
)

type TxRecord = struct {
	Tx     *runtime.Transaction
	Status TxStatus
	// Malformed reason; empty unless Status == TxMalformed.
	Error string
	// Assertion messages that failed; empty unless Status == TxSoftRejected.
	FailedMessages []string
}

// Block is the immutable record of one produced batch.
type Block = struct {
	Number    uint64
	StateRoot common.Hash
	Records   []TxRecord
}

type tx_record_json = struct {
	Module         string         `json:"module"`
	Method         string         `json:"method"`
	Sender         common.Address `json:"sender"`
	Nonce          hexutil.Uint64 `json:"nonce"`
	Status         TxStatus       `json:"status"`
	Error          string         `json:"error,omitempty"`
	FailedMessages []string       `json:"failedMessages,omitempty"`
}

type block_json = struct {
	Number    hexutil.Uint64   `json:"number"`
	StateRoot common.Hash      `json:"stateRoot"`
	Records   []tx_record_json `json:"transactions"`
}

// BlockJSON is the externally queryable view of a block record.
func BlockJSON(b *Block) ([]byte, error) {
	out := block_json{
		Number:    hexutil.Uint64(b.Number),
		StateRoot: b.StateRoot,
		Records:   make([]tx_record_json, len(b.Records)),
	}
	for i := range b.Records {
		r := &b.Records[i]
		out.Records[i] = tx_record_json{
			Module:         r.Tx.Module,
			Method:         r.Tx.Method,
			Sender:         r.Tx.Sender,
			Nonce:          hexutil.Uint64(r.Tx.Nonce),
			Status:         r.Status,
			Error:          r.Error,
			FailedMessages: r.FailedMessages,
		}
	}
	return json.Marshal(&out)
}
