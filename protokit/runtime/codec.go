package runtime

import (
	"reflect"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/protokit-stack/protokit-go/protokit/util"
	"github.com/protokit-stack/protokit-go/protokit/util/asserts"
	"github.com/protokit-stack/protokit-go/protokit/util/bin"
)

// Codecs define the canonical byte encoding of every state value and map
// key. Only codec-encodable categories may be declared for module state:
// unsigned numerics, addresses, hashes and records composed of those.
// Floats, free-form strings and arbitrary objects have no canonical
// encoding and are rejected when the codec is constructed, which happens at
// module declaration time, never during transaction execution.

type CodecTag = byte

const (
	TagInvalid CodecTag = iota
	TagUint64
	TagUint256
	TagAddress
	TagHash
	TagRecord
)

type CodecInfo = struct {
	Name string
	Tag  CodecTag
}

type Codec[V any] struct {
	info  CodecInfo
	enc   func(V) []byte
	dec   func([]byte) V
	valid func([]byte) bool
	dummy func() V
}

func (self Codec[V]) Info() CodecInfo {
	return self.info
}

// Encode returns the canonical payload stored in the tree.
func (self Codec[V]) Encode(v V) []byte {
	return self.enc(v)
}

// Decode is the inverse of Encode. The input must have passed Valid first;
// malformed bytes are a caller contract violation and panic.
func (self Codec[V]) Decode(b []byte) V {
	asserts.Holds(self.valid(b), "codec", self.info.Name, ": malformed payload")
	return self.dec(b)
}

func (self Codec[V]) Valid(b []byte) bool {
	return self.valid(b)
}

// Dummy is the well-formed placeholder carried by absent Options.
func (self Codec[V]) Dummy() V {
	return self.dummy()
}

// EncodeTagged is the address-derivation encoding of a map key:
// tag byte, codec name, canonical payload. The tag and name keep
// differently-typed keys with equal payload bytes on distinct addresses.
func (self Codec[V]) EncodeTagged(v V) []byte {
	payload := self.enc(v)
	ret := make([]byte, 0, 2+len(self.info.Name)+len(payload))
	ret = append(ret, self.info.Tag, byte(len(self.info.Name)))
	ret = append(ret, self.info.Name...)
	return append(ret, payload...)
}

// ArgSpec is the type-erased view of a codec that method descriptors carry
// so the executor can validate argument payloads without knowing V.
type ArgSpec = struct {
	Info  CodecInfo
	Valid func([]byte) bool
}

func (self Codec[V]) ArgSpec() ArgSpec {
	return ArgSpec{self.info, self.valid}
}

func Uint64Codec() Codec[uint64] {
	return Codec[uint64]{
		info:  CodecInfo{"uint64", TagUint64},
		enc:   bin.ENC_b_endian_64,
		dec:   bin.DEC_b_endian_64,
		valid: func(b []byte) bool { return len(b) == 8 },
		dummy: func() uint64 { return 0 },
	}
}

func Uint256Codec() Codec[*uint256.Int] {
	return Codec[*uint256.Int]{
		info: CodecInfo{"uint256", TagUint256},
		enc: func(v *uint256.Int) []byte {
			b := v.Bytes32()
			return b[:]
		},
		dec:   func(b []byte) *uint256.Int { return new(uint256.Int).SetBytes(b) },
		valid: func(b []byte) bool { return len(b) == 32 },
		dummy: func() *uint256.Int { return uint256.NewInt(0) },
	}
}

func AddressCodec() Codec[common.Address] {
	return Codec[common.Address]{
		info:  CodecInfo{"address", TagAddress},
		enc:   func(v common.Address) []byte { return v.Bytes() },
		dec:   common.BytesToAddress,
		valid: func(b []byte) bool { return len(b) == common.AddressLength },
		dummy: func() common.Address { return common.Address{} },
	}
}

func HashCodec() Codec[common.Hash] {
	return Codec[common.Hash]{
		info:  CodecInfo{"hash", TagHash},
		enc:   func(v common.Hash) []byte { return v.Bytes() },
		dec:   common.BytesToHash,
		valid: func(b []byte) bool { return len(b) == common.HashLength },
		dummy: func() common.Hash { return common.Hash{} },
	}
}

// RecordCodec builds an rlp codec for a record (struct) type. The name
// becomes part of the key's tagged encoding, so two records that happen to
// share a field layout still derive distinct addresses. The field inventory
// of V is checked here, at declaration time.
func RecordCodec[V any](name string) Codec[V] {
	asserts.Holds(len(name) != 0 && len(name) <= 255, "record codec needs a short non-empty name")
	var probe V
	check_record_type(reflect.TypeOf(&probe).Elem(), name)
	return Codec[V]{
		info: CodecInfo{name, TagRecord},
		enc: func(v V) []byte {
			enc, err := rlp.EncodeToBytes(&v)
			util.PanicIfNotNil(err)
			return enc
		},
		dec: func(b []byte) (ret V) {
			util.PanicIfNotNil(rlp.DecodeBytes(b, &ret))
			return
		},
		valid: func(b []byte) bool {
			var probe V
			return rlp.DecodeBytes(b, &probe) == nil
		},
		dummy: func() (ret V) { return },
	}
}

func check_record_type(t reflect.Type, name string) {
	switch t.Kind() {
	case reflect.Bool, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
	case reflect.Array, reflect.Slice:
		check_record_type(t.Elem(), name)
	case reflect.Ptr:
		check_record_type(t.Elem(), name)
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			check_record_type(t.Field(i).Type, name)
		}
	default:
		// floats, strings, interfaces, maps and the like have no canonical
		// encoding in the provable substrate
		asserts.Holds(false, "record codec", name, ": unsupported field kind", t.Kind().String())
	}
}
