// Package smt implements the committed state tree: a fixed-depth (256)
// sparse binary merkle tree over the full address space produced by
// state_path derivation.
//
// Interior nodes are content-addressed (hash -> children) which makes every
// committed root a self-contained immutable snapshot: commits add nodes and
// swap the root pointer, they never mutate or remove what an older root
// reaches. Empty subtrees are represented by per-height precomputed default
// hashes and cost no storage.
package smt

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/protokit-stack/protokit-go/protokit/util"
	"github.com/protokit-stack/protokit-go/protokit/util/keccak256"
)

const Depth = common.HashLength * 8

type Node = struct {
	Left  common.Hash
	Right common.Hash
}

type Write = struct {
	Addr  common.Hash
	Value []byte
}

var ErrMissingNode = util.ErrorString("smt: node missing in the backing store")
var ErrMissingValue = util.ErrorString("smt: leaf value preimage missing in the backing store")

// default_hashes[h] is the hash of an empty subtree of height h.
// Height 0 is the leaf level, so default_hashes[Depth] is the empty root.
var default_hashes = func() (ret [Depth + 1]common.Hash) {
	for h := 1; h <= Depth; h++ {
		ret[h] = keccak256.HashAndReturnByValue(ret[h-1][:], ret[h-1][:])
	}
	return
}()

func DefaultRoot() common.Hash {
	return default_hashes[Depth]
}

func leaf_hash(value []byte) (ret common.Hash) {
	if len(value) != 0 {
		ret = keccak256.HashAndReturnByValue(value)
	}
	return
}

// address_bit returns the pos-th bit of addr counting from the most
// significant one. Bit 0 decides the child of the root.
func address_bit(addr *common.Hash, pos int) byte {
	return (addr[pos/8] >> (7 - pos%8)) & 1
}

type Tree struct {
	store Store
	root  common.Hash
	mu    sync.RWMutex
}

func (self *Tree) Init(store Store) *Tree {
	return self.InitAt(store, DefaultRoot())
}

// InitAt opens the tree at a previously committed root.
func (self *Tree) InitAt(store Store, root common.Hash) *Tree {
	self.store = store
	self.root = root
	return self
}

func (self *Tree) Root() common.Hash {
	defer util.LockUnlock(self.mu.RLocker())()
	return self.root
}

// ResetTo points the tree back at an earlier committed root. Nodes are
// content-addressed and never deleted, so any root this tree has ever
// committed (or was opened at) stays resolvable. Used to abort a batch.
func (self *Tree) ResetTo(root common.Hash) {
	defer util.LockUnlock(&self.mu)()
	self.root = root
}

// Snapshot pins the current root. The returned view stays valid and
// unchanged across any number of later commits.
func (self *Tree) Snapshot() Snapshot {
	return Snapshot{self.Root(), self.store}
}

// Commit applies the writes in order (last write per address wins), flushes
// all new nodes to the store as one batch and swaps the root. On any failure
// nothing is flushed and the root is left untouched.
func (self *Tree) Commit(writes []Write) (new_root common.Hash, err error) {
	defer util.LockUnlock(&self.mu)()
	new_root = self.root
	if len(writes) == 0 {
		return
	}
	ctx := commit_context{
		store:  self.store,
		nodes:  make(map[common.Hash]Node, len(writes)*Depth/4),
		values: make(map[common.Hash][]byte, len(writes)),
	}
	cur_root := self.root
	if caught := util.Try(func() {
		for i := range writes {
			w := &writes[i]
			leaf := leaf_hash(w.Value)
			if len(w.Value) != 0 {
				ctx.values[leaf] = w.Value
			}
			cur_root = ctx.put(cur_root, Depth, &w.Addr, leaf)
		}
	}); caught != nil {
		if caught_err, is_err := caught.(error); is_err {
			err = caught_err
			return
		}
		panic(caught)
	}
	if err = self.store.PutBatch(ctx.nodes, ctx.values); err != nil {
		return
	}
	self.root = cur_root
	new_root = cur_root
	return
}

type commit_context struct {
	store  Store
	nodes  map[common.Hash]Node
	values map[common.Hash][]byte
}

func (self *commit_context) put(node common.Hash, height int, addr *common.Hash, leaf common.Hash) common.Hash {
	if height == 0 {
		return leaf
	}
	left, right := self.children(node, height)
	if address_bit(addr, Depth-height) == 0 {
		left = self.put(left, height-1, addr, leaf)
	} else {
		right = self.put(right, height-1, addr, leaf)
	}
	h := keccak256.HashAndReturnByValue(left[:], right[:])
	self.nodes[h] = Node{left, right}
	return h
}

func (self *commit_context) children(node common.Hash, height int) (common.Hash, common.Hash) {
	if node == default_hashes[height] {
		child_default := default_hashes[height-1]
		return child_default, child_default
	}
	if n, ok := self.nodes[node]; ok {
		return n.Left, n.Right
	}
	n, ok := self.store.GetNode(&node)
	if !ok {
		panic(ErrMissingNode)
	}
	return n.Left, n.Right
}

// Snapshot is an immutable read view of the tree at one committed root.
type Snapshot struct {
	root  common.Hash
	store Store
}

func (self Snapshot) Root() common.Hash {
	return self.root
}

// Get returns the committed value at addr, nil if the slot is empty.
func (self Snapshot) Get(addr *common.Hash) []byte {
	leaf := self.leaf(addr, nil)
	if leaf == (common.Hash{}) {
		return nil
	}
	value, ok := self.store.GetValue(&leaf)
	if !ok {
		panic(ErrMissingValue)
	}
	return value
}

// leaf walks down to the leaf hash at addr. If siblings is non-nil it is
// filled with the sibling hash passed at each height, top-down.
func (self Snapshot) leaf(addr *common.Hash, siblings []common.Hash) common.Hash {
	node := self.root
	for height := Depth; height > 0; height-- {
		if node == default_hashes[height] {
			// Empty subtree, the remaining path is all defaults.
			for ; height > 0; height-- {
				if siblings != nil {
					siblings[Depth-height] = default_hashes[height-1]
				}
			}
			return common.Hash{}
		}
		n, ok := self.store.GetNode(&node)
		if !ok {
			panic(ErrMissingNode)
		}
		next, sibling := n.Left, n.Right
		if address_bit(addr, Depth-height) == 1 {
			next, sibling = n.Right, n.Left
		}
		if siblings != nil {
			siblings[Depth-height] = sibling
		}
		node = next
	}
	return node
}
