package smt

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/protokit-stack/protokit-go/protokit/util"
)

const ldb_node_prefix = byte('n')
const ldb_value_prefix = byte('v')

// LevelDBStore persists nodes and value preimages in a leveldb database.
// Both keyspaces are content addressed, so entries are immutable once
// written and the atomicity of PutBatch comes straight from leveldb's
// batch write.
type LevelDBStore struct {
	db *leveldb.DB
}

func (self *LevelDBStore) Init(path string) *LevelDBStore {
	db, err := leveldb.OpenFile(path, nil)
	util.PanicIfNotNil(err)
	self.db = db
	return self
}

// InitInMemory opens the store over leveldb's memory-backed storage.
// Mostly for tests.
func (self *LevelDBStore) InitInMemory() *LevelDBStore {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	util.PanicIfNotNil(err)
	self.db = db
	return self
}

func (self *LevelDBStore) Close() error {
	return self.db.Close()
}

func (self *LevelDBStore) GetNode(hash *common.Hash) (ret Node, ok bool) {
	enc, err := self.db.Get(ldb_key(ldb_node_prefix, hash), nil)
	if err == leveldb.ErrNotFound {
		return
	}
	util.PanicIfNotNil(err)
	copy(ret.Left[:], enc[:common.HashLength])
	copy(ret.Right[:], enc[common.HashLength:])
	return ret, true
}

func (self *LevelDBStore) GetValue(value_hash *common.Hash) ([]byte, bool) {
	ret, err := self.db.Get(ldb_key(ldb_value_prefix, value_hash), nil)
	if err == leveldb.ErrNotFound {
		return nil, false
	}
	util.PanicIfNotNil(err)
	return ret, true
}

func (self *LevelDBStore) PutBatch(nodes map[common.Hash]Node, values map[common.Hash][]byte) error {
	batch := new(leveldb.Batch)
	for h, n := range nodes {
		enc := make([]byte, 0, 2*common.HashLength)
		enc = append(enc, n.Left[:]...)
		enc = append(enc, n.Right[:]...)
		batch.Put(ldb_key(ldb_node_prefix, &h), enc)
	}
	for h, v := range values {
		batch.Put(ldb_key(ldb_value_prefix, &h), v)
	}
	return self.db.Write(batch, nil)
}

func ldb_key(prefix byte, hash *common.Hash) []byte {
	ret := make([]byte, 0, 1+common.HashLength)
	ret = append(ret, prefix)
	return append(ret, hash[:]...)
}
