package tests

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ethereum/go-ethereum/common"
	"github.com/protokit-stack/protokit-go/protokit/util/asserts"
)

type TestCtx struct {
	*testing.T
	Assert assert.Assertions
}

func NewTestCtx(t *testing.T) (ret TestCtx) {
	ret.T = t
	ret.Assert = *assert.New(t)
	return
}

func Addr(i uint64) (ret common.Address) {
	asserts.Holds(i > 0)
	binary.BigEndian.PutUint64(ret[common.AddressLength-8:], i)
	return
}
