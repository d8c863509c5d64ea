package smt

import (
	"testing"

	"github.com/protokit-stack/protokit-go/protokit/util/tests"
)

func TestDumpDotNamesCommittedLeaves(t *testing.T) {
	tc := tests.NewTestCtx(t)
	tree := new_tree()
	_, err := tree.Commit([]Write{{addr(1), []byte("va")}, {addr(2), []byte("vb")}})
	tc.Assert.NoError(err)

	rendered := DumpDot(tree.Snapshot()).String()
	tc.Assert.Contains(rendered, leaf_hash([]byte("va")).Hex()[:10])
	tc.Assert.Contains(rendered, leaf_hash([]byte("vb")).Hex()[:10])

	tc.Assert.NotContains(DumpDot(new_tree().Snapshot()).String(), "leaf")
}
