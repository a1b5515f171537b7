package abi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hsiuhsiu/cfgcore-go/internal/abi"
	"github.com/hsiuhsiu/cfgcore-go/internal/abi/abitest"
)

func TestBuiltinDescription(t *testing.T) {
	d, err := abi.Builtin()
	require.NoError(t, err)

	assert.Equal(t, "cfgcore", d.Library)
	assert.Equal(t, "1.0", d.ABIVersion)
	assert.Equal(t, uint32(1), d.Contract)
	assert.Equal(t, abi.Serialized, d.ThreadSafety)
	assert.Equal(t, 255, d.Limits.MaxKeyLen)
	assert.Equal(t, 1<<20, d.Limits.MaxValueLen)
	assert.Len(t, d.Functions, 18)
}

func TestCanonicalSignatures(t *testing.T) {
	d := abi.MustBuiltin()
	cases := map[string]string{
		"store_new":    "store_new()->store:returned-owned",
		"store_merge":  "store_merge(store:borrowed,store:consumed)->void",
		"store_len":    "store_len(store:borrowed)->u32",
		"add_i64":      "add_i64(i64,i64)->i64",
		"digest_async": "digest_async(bytes:borrowed,callback)->void",
	}
	for name, want := range cases {
		f, ok := d.Function(name)
		require.True(t, ok, name)
		assert.Equal(t, want, f.Signature())
		assert.Equal(t, abi.Checksum(want), f.Checksum())
	}
	_, ok := d.Function("nope")
	assert.False(t, ok)
}

func TestChecksumIsFNV1a32(t *testing.T) {
	// Reference values for FNV-1a 32.
	assert.Equal(t, uint32(0x811c9dc5), abi.Checksum(""))
	assert.Equal(t, uint32(0xe40c292c), abi.Checksum("a"))
}

func TestParseRejectsInvalidDescriptions(t *testing.T) {
	cases := map[string]string{
		"no library": `abi_version: "1"
thread_safety: serialized
limits: {max_key_len: 1, max_value_len: 1}`,
		"bad class": `library: x
abi_version: "1"
thread_safety: sometimes
limits: {max_key_len: 1, max_value_len: 1}`,
		"bad limits": `library: x
abi_version: "1"
thread_safety: serialized
limits: {max_key_len: 0, max_value_len: 1}`,
		"duplicate": `library: x
abi_version: "1"
thread_safety: serialized
limits: {max_key_len: 1, max_value_len: 1}
functions:
  - name: f
  - name: f`,
		"returned-owned param": `library: x
abi_version: "1"
thread_safety: serialized
limits: {max_key_len: 1, max_value_len: 1}
functions:
  - name: f
    params: [{type: bytes, ownership: returned-owned}]`,
		"consumed result": `library: x
abi_version: "1"
thread_safety: serialized
limits: {max_key_len: 1, max_value_len: 1}
functions:
  - name: f
    returns: {type: bytes, ownership: consumed}`,
		"unknown error": `library: x
abi_version: "1"
thread_safety: serialized
limits: {max_key_len: 1, max_value_len: 1}
functions:
  - name: f
    errors: [exploded]`,
		"not yaml": "library: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := abi.Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestRawIsACopy(t *testing.T) {
	a := abi.Raw()
	require.NotEmpty(t, a)
	a[0] = 0
	assert.NotEqual(t, a[0], abi.Raw()[0])
}

func TestVerify(t *testing.T) {
	d := abi.MustBuiltin()
	assert.Empty(t, abi.Verify(d, abitest.New(), ""))

	bad := &abitest.Fake{
		Version:      "0.9",
		Contract:     7,
		BadChecksums: map[string]bool{"touch": true, "echo_i64": true},
	}
	mm := abi.Verify(d, bad, "")
	require.Len(t, mm, 4)
	assert.Equal(t, "contract", mm[0].Field)
	assert.Equal(t, "abi_version", mm[1].Field)
	assert.Equal(t, "checksum echo_i64", mm[2].Field)
	assert.Equal(t, "checksum touch", mm[3].Field)
	assert.Contains(t, mm[1].String(), "want 1.0, got 0.9")
}

func TestCodeNames(t *testing.T) {
	for c := abi.CodeOK; c <= abi.CodeTooLarge; c++ {
		back, ok := abi.ParseCode(c.String())
		require.True(t, ok, c.String())
		assert.Equal(t, c, back)
	}
	assert.Equal(t, "code(42)", abi.Code(42).String())
	assert.True(t, abi.Status{}.OK())
	assert.False(t, abi.Status{Code: abi.CodeUnknown}.OK())
}
