package vm

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/maxc-lang/maxc/internal/config"
)

// bundleMagic and bundleVersion tag a serialized bytecode bundle so a
// mismatched-version loader fails loudly instead of misreading bytes
// (SPEC_FULL.md's supplemental compile/run-bytecode split).
const bundleMagic = "MXCB"

var bundleVersion = config.Version

// Bundle is the on-disk unit produced by `maxc -c` and consumed by
// `maxc -r`: code, the literal pool, line table, and global count needed
// to rebuild a VM without re-running the parser/analyzer/emitter.
type Bundle struct {
	Magic    string
	Version  string
	Code     []byte
	Pool     []interface{}
	Lines    []int
	NGlobals int
}

func NewBundle(code []byte, pool []interface{}, lines []int, nglobals int) *Bundle {
	return &Bundle{Magic: bundleMagic, Version: bundleVersion, Code: code, Pool: pool, Lines: lines, NGlobals: nglobals}
}

func init() {
	gob.Register([]interface{}{})
}

// Encode serializes the bundle with gob.
func (b *Bundle) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(b); err != nil {
		return nil, fmt.Errorf("encode bundle: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeBundle reads back a Bundle, rejecting a magic or version mismatch.
func DecodeBundle(data []byte) (*Bundle, error) {
	var b Bundle
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	if b.Magic != bundleMagic {
		return nil, fmt.Errorf("not a maxc bytecode bundle (bad magic %q)", b.Magic)
	}
	if b.Version != bundleVersion {
		return nil, fmt.Errorf("bundle version %q incompatible with toolchain version %q", b.Version, bundleVersion)
	}
	return &b, nil
}
