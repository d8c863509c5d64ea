package smt

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/protokit-stack/protokit-go/protokit/util"
	"github.com/protokit-stack/protokit-go/protokit/util/tests"
)

func addr(b ...byte) (ret common.Hash) {
	copy(ret[:], b)
	return
}

func new_tree() *Tree {
	return new(Tree).Init(new(CachingStore).Init(new(InMemoryStore).Init(), 1<<12))
}

func TestEmptyTree(t *testing.T) {
	tc := tests.NewTestCtx(t)
	tree := new_tree()
	tc.Assert.Equal(DefaultRoot(), tree.Root())
	tc.Assert.Nil(tree.Snapshot().Get(&common.Hash{}))
	a := addr(0xff, 1)
	tc.Assert.Nil(tree.Snapshot().Get(&a))
}

func TestRoundTrip(t *testing.T) {
	tc := tests.NewTestCtx(t)
	tree := new_tree()
	a, b := addr(1), addr(2, 0xf0)
	_, err := tree.Commit([]Write{{a, []byte("va")}, {b, []byte("vb")}})
	tc.Assert.NoError(err)
	snap := tree.Snapshot()
	tc.Assert.Equal([]byte("va"), snap.Get(&a))
	tc.Assert.Equal([]byte("vb"), snap.Get(&b))
	missing := addr(3)
	tc.Assert.Nil(snap.Get(&missing))
}

func TestLastWriteWins(t *testing.T) {
	tc := tests.NewTestCtx(t)
	tree := new_tree()
	a := addr(7)
	_, err := tree.Commit([]Write{{a, []byte("first")}, {a, []byte("second")}})
	tc.Assert.NoError(err)
	tc.Assert.Equal([]byte("second"), tree.Snapshot().Get(&a))
}

func TestCommitIdempotence(t *testing.T) {
	tc := tests.NewTestCtx(t)
	writes := []Write{{addr(1), []byte("x")}, {addr(2), []byte("y")}}
	tree_a, tree_b := new_tree(), new_tree()
	root_a, err_a := tree_a.Commit(writes)
	root_b, err_b := tree_b.Commit(writes)
	tc.Assert.NoError(err_a)
	tc.Assert.NoError(err_b)
	tc.Assert.Equal(root_a, root_b)
	// committing the identical write set again lands on the same root
	root_a2, err := tree_a.Commit(writes)
	tc.Assert.NoError(err)
	tc.Assert.Equal(root_a, root_a2)
}

func TestOrderIndependencePerDistinctAddrs(t *testing.T) {
	tc := tests.NewTestCtx(t)
	w1, w2 := Write{addr(1), []byte("x")}, Write{addr(0x80), []byte("y")}
	tree_a, tree_b := new_tree(), new_tree()
	root_a, _ := tree_a.Commit([]Write{w1, w2})
	root_b, _ := tree_b.Commit([]Write{w2, w1})
	tc.Assert.Equal(root_a, root_b)
}

func TestSnapshotIsolation(t *testing.T) {
	tc := tests.NewTestCtx(t)
	tree := new_tree()
	a := addr(9)
	tree.Commit([]Write{{a, []byte("old")}})
	snap := tree.Snapshot()
	tree.Commit([]Write{{a, []byte("new")}})
	tc.Assert.Equal([]byte("old"), snap.Get(&a))
	tc.Assert.Equal([]byte("new"), tree.Snapshot().Get(&a))
}

func TestDelete(t *testing.T) {
	tc := tests.NewTestCtx(t)
	tree := new_tree()
	a := addr(4)
	tree.Commit([]Write{{a, []byte("v")}})
	tree.Commit([]Write{{a, nil}})
	tc.Assert.Nil(tree.Snapshot().Get(&a))
}

func TestProofMembership(t *testing.T) {
	tc := tests.NewTestCtx(t)
	tree := new_tree()
	a, b := addr(1), addr(2)
	tree.Commit([]Write{{a, []byte("va")}, {b, []byte("vb")}})
	root := tree.Root()
	snap := tree.Snapshot()

	p := snap.Prove(&a)
	tc.Assert.True(VerifyProof(&root, &a, []byte("va"), &p))
	tc.Assert.False(VerifyProof(&root, &a, []byte("vb"), &p))
	tc.Assert.False(VerifyProof(&root, &a, nil, &p))
	other_root := DefaultRoot()
	tc.Assert.False(VerifyProof(&other_root, &a, []byte("va"), &p))
}

func TestProofNonMembership(t *testing.T) {
	tc := tests.NewTestCtx(t)
	tree := new_tree()
	a := addr(1)
	tree.Commit([]Write{{a, []byte("va")}})
	root := tree.Root()
	absent := addr(0xaa)
	p := tree.Snapshot().Prove(&absent)
	tc.Assert.True(VerifyProof(&root, &absent, nil, &p))
	tc.Assert.False(VerifyProof(&root, &absent, []byte("anything"), &p))
}

type failing_store struct {
	*InMemoryStore
	fail_puts bool
}

var err_store_down = util.ErrorString("store down")

func (self *failing_store) PutBatch(nodes map[common.Hash]Node, values map[common.Hash][]byte) error {
	if self.fail_puts {
		return err_store_down
	}
	return self.InMemoryStore.PutBatch(nodes, values)
}

func TestCommitAbortLeavesRootUntouched(t *testing.T) {
	tc := tests.NewTestCtx(t)
	store := &failing_store{InMemoryStore: new(InMemoryStore).Init()}
	tree := new(Tree).Init(store)
	a := addr(1)
	tree.Commit([]Write{{a, []byte("v")}})
	root_before := tree.Root()

	store.fail_puts = true
	_, err := tree.Commit([]Write{{addr(2), []byte("w")}})
	tc.Assert.Equal(err_store_down, err)
	tc.Assert.Equal(root_before, tree.Root())
	tc.Assert.Equal([]byte("v"), tree.Snapshot().Get(&a))

	store.fail_puts = false
	_, err = tree.Commit([]Write{{addr(2), []byte("w")}})
	tc.Assert.NoError(err)
}
