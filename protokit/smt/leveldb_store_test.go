package smt

import (
	"testing"

	"github.com/protokit-stack/protokit-go/protokit/util/tests"
)

func TestLevelDBStoreRoundTrip(t *testing.T) {
	tc := tests.NewTestCtx(t)
	store := new(LevelDBStore).InitInMemory()
	defer store.Close()
	tree := new(Tree).Init(store)

	a, b := addr(1), addr(2, 0xf0)
	_, err := tree.Commit([]Write{{a, []byte("va")}, {b, []byte("vb")}})
	tc.Assert.NoError(err)
	snap := tree.Snapshot()
	tc.Assert.Equal([]byte("va"), snap.Get(&a))
	tc.Assert.Equal([]byte("vb"), snap.Get(&b))
	missing := addr(3)
	tc.Assert.Nil(snap.Get(&missing))
}

// The leveldb store must land on the same roots as the in-memory one.
func TestLevelDBStoreRootAgreement(t *testing.T) {
	tc := tests.NewTestCtx(t)
	ldb := new(LevelDBStore).InitInMemory()
	defer ldb.Close()
	tree_ldb := new(Tree).Init(ldb)
	tree_mem := new_tree()

	writes := []Write{{addr(1), []byte("x")}, {addr(0x80), []byte("y")}, {addr(1), nil}}
	root_ldb, err_ldb := tree_ldb.Commit(writes)
	root_mem, err_mem := tree_mem.Commit(writes)
	tc.Assert.NoError(err_ldb)
	tc.Assert.NoError(err_mem)
	tc.Assert.Equal(root_mem, root_ldb)
}
