package runtime

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/protokit-stack/protokit-go/protokit/util"
	"github.com/protokit-stack/protokit-go/protokit/util/tests"
)

func noop_method(ctx *CallCtx) {}

func valid_module(name string) ModuleDescriptor {
	return ModuleDescriptor{
		Name: name,
		Properties: []PropertyDescriptor{
			{Name: "single", Value: Uint64Codec().Info()},
			{Name: "keyed", IsMap: true, Key: AddressCodec().Info(), Value: Uint64Codec().Info()},
		},
		Methods: []MethodDescriptor{
			{Name: "do", Provable: true, Args: []ArgSpec{Uint64Codec().ArgSpec()}, Call: noop_method},
			{Name: "helper", Call: noop_method},
		},
	}
}

func TestRegistryResolve(t *testing.T) {
	tc := tests.NewTestCtx(t)
	reg := new(Registry).Init(valid_module("A"), valid_module("B"))

	_, method, err := reg.Resolve("A", "do")
	tc.Assert.NoError(err)
	tc.Assert.True(method.Provable)

	_, _, err = reg.Resolve("C", "do")
	tc.Assert.Equal(ErrUnknownModule, err)
	_, _, err = reg.Resolve("A", "nope")
	tc.Assert.Equal(ErrUnknownMethod, err)

	prop, err := reg.Property("A", "keyed")
	tc.Assert.NoError(err)
	tc.Assert.True(prop.IsMap)
	_, err = reg.Property("A", "nope")
	tc.Assert.Equal(ErrUnknownProperty, err)
}

func TestRegistryRejectsBadRegistrations(t *testing.T) {
	tc := tests.NewTestCtx(t)
	expect_panic := func(label string, descriptors ...ModuleDescriptor) {
		tc.Assert.NotNil(util.Try(func() {
			new(Registry).Init(descriptors...)
		}), label)
	}
	expect_panic("duplicate module", valid_module("A"), valid_module("A"))
	expect_panic("empty module name", valid_module(""))

	m := valid_module("A")
	m.Properties = append(m.Properties, m.Properties[0])
	expect_panic("duplicate property", m)

	m = valid_module("A")
	m.Properties[0].Value = CodecInfo{}
	expect_panic("missing value codec", m)

	m = valid_module("A")
	m.Properties[1].Key = CodecInfo{}
	expect_panic("map without key codec", m)

	m = valid_module("A")
	m.Properties[0].Key = AddressCodec().Info()
	expect_panic("key codec on single-value property", m)

	m = valid_module("A")
	m.Methods[0].Call = nil
	expect_panic("method without body", m)

	m = valid_module("A")
	m.Methods[0].ProofPrograms = make([]common.Hash, 3)
	expect_panic("too many proof args", m)
}

func TestMergeDescriptors(t *testing.T) {
	tc := tests.NewTestCtx(t)
	base := valid_module("Base")
	override := ModuleDescriptor{
		Name: "Derived",
		Properties: []PropertyDescriptor{
			{Name: "single", Value: Uint64Codec().Info()}, // replaces
			{Name: "extra", Value: HashCodec().Info()},    // appended
		},
		Methods: []MethodDescriptor{
			{Name: "do", Provable: false, Call: noop_method}, // replaces
		},
	}
	merged := MergeDescriptors(base, override)
	tc.Assert.Equal("Derived", merged.Name)
	tc.Assert.Len(merged.Properties, 3)
	tc.Assert.Equal("extra", merged.Properties[2].Name)
	tc.Assert.Len(merged.Methods, 2)
	tc.Assert.False(merged.Methods[0].Provable)

	// merging preserves a registrable schema
	new(Registry).Init(merged)
}

func TestRecordCodecRejectsUnsupportedKinds(t *testing.T) {
	tc := tests.NewTestCtx(t)
	type good_record struct {
		N  uint64
		ID [32]byte
	}
	type bad_float struct{ X float64 }
	type bad_string struct{ S string }
	type bad_nested struct {
		Inner bad_float
	}
	RecordCodec[good_record]("good_record")
	tc.Assert.NotNil(util.Try(func() { RecordCodec[bad_float]("bad_float") }))
	tc.Assert.NotNil(util.Try(func() { RecordCodec[bad_string]("bad_string") }))
	tc.Assert.NotNil(util.Try(func() { RecordCodec[bad_nested]("bad_nested") }))
	tc.Assert.NotNil(util.Try(func() { RecordCodec[good_record]("") }))
}

func TestRecordCodecTaggedEncodingDisambiguatesTypes(t *testing.T) {
	tc := tests.NewTestCtx(t)
	type point_a struct{ X, Y uint64 }
	type point_b struct{ X, Y uint64 }
	a := RecordCodec[point_a]("point_a")
	b := RecordCodec[point_b]("point_b")
	// same field layout, same payload, still distinct key encodings
	tc.Assert.Equal(a.Encode(point_a{1, 2}), b.Encode(point_b{1, 2}))
	tc.Assert.NotEqual(a.EncodeTagged(point_a{1, 2}), b.EncodeTagged(point_b{1, 2}))
}
