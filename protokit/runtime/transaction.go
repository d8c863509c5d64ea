package runtime

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/protokit-stack/protokit-go/protokit/proof"
	"github.com/protokit-stack/protokit-go/protokit/util"
	"github.com/protokit-stack/protokit-go/protokit/util/keccak256"
)

// Transaction is immutable once signed and consumed exactly once by the
// executor. The nonce is a replay salt folded into the signing hash; the
// core does not track per-sender sequence numbers.
type Transaction = struct {
	ChainID   uint64
	Module    string
	Method    string
	Args      [][]byte
	Proofs    []proof.Proof
	Nonce     uint64
	Sender    common.Address
	Signature []byte // 65-byte secp256k1 signature over SigningHash
}

func SigningHash(tx *Transaction) *common.Hash {
	enc, err := rlp.EncodeToBytes([]interface{}{
		tx.ChainID, tx.Module, tx.Method, tx.Args, tx.Proofs, tx.Nonce,
	})
	util.PanicIfNotNil(err)
	return keccak256.Hash(enc)
}

// SignTransaction fills in Sender and Signature.
func SignTransaction(tx *Transaction, key *ecdsa.PrivateKey) {
	sig, err := crypto.Sign(SigningHash(tx).Bytes(), key)
	util.PanicIfNotNil(err)
	tx.Signature = sig
	tx.Sender = crypto.PubkeyToAddress(key.PublicKey)
}

func RecoverSender(tx *Transaction) (ret common.Address, err error) {
	pubkey, err := crypto.SigToPub(SigningHash(tx).Bytes(), tx.Signature)
	if err != nil {
		return
	}
	ret = crypto.PubkeyToAddress(*pubkey)
	return
}
