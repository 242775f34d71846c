//go:build !cgo

package lang

// Available reports whether tree-sitter grammars were compiled in. Without
// cgo every source file is recorded as an opaque failed parse.
func Available() bool { return false }
