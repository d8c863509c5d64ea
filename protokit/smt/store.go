package smt

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/protokit-stack/protokit-go/protokit/util"
)

// Store persists interior nodes by their hash and leaf value preimages by
// the value hash. PutBatch must be atomic: either the whole batch becomes
// visible or none of it does.
type Store interface {
	GetNode(hash *common.Hash) (Node, bool)
	GetValue(value_hash *common.Hash) ([]byte, bool)
	PutBatch(nodes map[common.Hash]Node, values map[common.Hash][]byte) error
}

type InMemoryStore struct {
	mu     sync.RWMutex
	nodes  map[common.Hash]Node
	values map[common.Hash][]byte
}

func (self *InMemoryStore) Init() *InMemoryStore {
	self.nodes = make(map[common.Hash]Node)
	self.values = make(map[common.Hash][]byte)
	return self
}

func (self *InMemoryStore) GetNode(hash *common.Hash) (ret Node, ok bool) {
	defer util.LockUnlock(self.mu.RLocker())()
	ret, ok = self.nodes[*hash]
	return
}

func (self *InMemoryStore) GetValue(value_hash *common.Hash) (ret []byte, ok bool) {
	defer util.LockUnlock(self.mu.RLocker())()
	ret, ok = self.values[*value_hash]
	return
}

func (self *InMemoryStore) PutBatch(nodes map[common.Hash]Node, values map[common.Hash][]byte) error {
	defer util.LockUnlock(&self.mu)()
	for h, n := range nodes {
		self.nodes[h] = n
	}
	for h, v := range values {
		self.values[h] = common.CopyBytes(v)
	}
	return nil
}

// CachingStore keeps recently touched nodes in an lru cache in front of a
// backing store. Content addressing makes the cache trivially coherent:
// a node hash never maps to different contents.
type CachingStore struct {
	backend Store
	nodes   *lru.Cache[common.Hash, Node]
}

func (self *CachingStore) Init(backend Store, node_cache_size int) *CachingStore {
	self.backend = backend
	cache, err := lru.New[common.Hash, Node](node_cache_size)
	util.PanicIfNotNil(err)
	self.nodes = cache
	return self
}

func (self *CachingStore) GetNode(hash *common.Hash) (ret Node, ok bool) {
	if ret, ok = self.nodes.Get(*hash); ok {
		return
	}
	if ret, ok = self.backend.GetNode(hash); ok {
		self.nodes.Add(*hash, ret)
	}
	return
}

func (self *CachingStore) GetValue(value_hash *common.Hash) ([]byte, bool) {
	return self.backend.GetValue(value_hash)
}

func (self *CachingStore) PutBatch(nodes map[common.Hash]Node, values map[common.Hash][]byte) error {
	if err := self.backend.PutBatch(nodes, values); err != nil {
		return err
	}
	for h, n := range nodes {
		self.nodes.Add(h, n)
	}
	return nil
}
