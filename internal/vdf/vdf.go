// Package vdf parses Valve's nested key/value text format (KeyValues),
// as used by appmanifest_*.acf files and libraryfolders.vdf.
//
// The parser is deliberately forgiving about content (UTF-8, escaped
// quotes, // comments, missing trailing newline) but strict about
// structure: any document with unbalanced braces, a key without a value,
// or an unterminated string parses to nil. Callers must treat a nil tree
// as "unparsable": Parse never returns an error and never panics.
package vdf

import (
	"strconv"
	"strings"
)

// Node is one node in a parsed KeyValues tree. A node is either a string
// value or a block containing child nodes; key lookup is case-insensitive.
type Node struct {
	value    string
	isValue  bool
	children map[string]*Node
	order    []string
}

// Parse parses a KeyValues document and returns the document node, whose
// children are the document's top-level objects (manifests and library
// configs have exactly one). Returns nil if the input is not well-formed.
func Parse(data []byte) *Node {
	t := &tokenizer{input: string(data)}
	doc := newBlock()

	for {
		tok, kind := t.next()
		switch kind {
		case tokenEOF:
			return doc
		case tokenString:
			if !parsePair(t, doc, tok) {
				return nil
			}
		default:
			// A document cannot open with a brace.
			return nil
		}
	}
}

// parsePair consumes the value or block following key and attaches it to
// parent. Returns false on malformed input.
func parsePair(t *tokenizer, parent *Node, key string) bool {
	tok, kind := t.next()
	switch kind {
	case tokenString:
		parent.set(key, &Node{value: tok, isValue: true})
		return true
	case tokenOpen:
		block := newBlock()
		if !parseBlock(t, block) {
			return false
		}
		parent.set(key, block)
		return true
	default:
		return false
	}
}

// parseBlock consumes pairs until the matching close brace.
func parseBlock(t *tokenizer, block *Node) bool {
	for {
		tok, kind := t.next()
		switch kind {
		case tokenClose:
			return true
		case tokenString:
			if !parsePair(t, block, tok) {
				return false
			}
		default:
			// EOF or a stray open brace inside a block.
			return false
		}
	}
}

func newBlock() *Node {
	return &Node{children: make(map[string]*Node)}
}

func (n *Node) set(key string, child *Node) {
	k := strings.ToLower(key)
	if _, exists := n.children[k]; !exists {
		n.order = append(n.order, k)
	}
	n.children[k] = child
}

// First returns the first child block regardless of its key. Useful for
// documents with a single top-level object whose name varies.
func (n *Node) First() *Node {
	if n == nil || len(n.order) == 0 {
		return nil
	}
	return n.children[n.order[0]]
}

// Child returns the named child block, or nil if absent or a plain value.
// Key matching is case-insensitive.
func (n *Node) Child(key string) *Node {
	if n == nil {
		return nil
	}
	c := n.children[strings.ToLower(key)]
	if c == nil || c.isValue {
		return nil
	}
	return c
}

// String returns the named child's string value, or "" if the key is
// absent or names a block.
func (n *Node) String(key string) string {
	if n == nil {
		return ""
	}
	c := n.children[strings.ToLower(key)]
	if c == nil || !c.isValue {
		return ""
	}
	return c.value
}

// Int returns the named child's value parsed as a base-10 integer.
// The second return is false if the key is absent, names a block, or
// does not parse as an integer.
func (n *Node) Int(key string) (int, bool) {
	if n == nil {
		return 0, false
	}
	c := n.children[strings.ToLower(key)]
	if c == nil || !c.isValue {
		return 0, false
	}
	v, err := strconv.Atoi(c.value)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Has reports whether the named key exists, as either a value or a block.
func (n *Node) Has(key string) bool {
	if n == nil {
		return false
	}
	_, ok := n.children[strings.ToLower(key)]
	return ok
}

// Keys returns the node's child keys (lowercased) in document order.
func (n *Node) Keys() []string {
	if n == nil {
		return nil
	}
	return append([]string(nil), n.order...)
}

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenString
	tokenOpen
	tokenClose
	tokenErr
)

type tokenizer struct {
	input string
	pos   int
}

// next returns the next token. Quoted and bare strings both tokenize as
// tokenString; bare strings cover the conditional tags ("[$WINDOWS]") and
// unquoted keys Valve's own parser accepts.
func (t *tokenizer) next() (string, tokenKind) {
	t.skipSpaceAndComments()
	if t.pos >= len(t.input) {
		return "", tokenEOF
	}

	switch t.input[t.pos] {
	case '{':
		t.pos++
		return "", tokenOpen
	case '}':
		t.pos++
		return "", tokenClose
	case '"':
		return t.quotedString()
	default:
		return t.bareString()
	}
}

func (t *tokenizer) skipSpaceAndComments() {
	for t.pos < len(t.input) {
		c := t.input[t.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			t.pos++
		case c == '/' && t.pos+1 < len(t.input) && t.input[t.pos+1] == '/':
			for t.pos < len(t.input) && t.input[t.pos] != '\n' {
				t.pos++
			}
		default:
			return
		}
	}
}

func (t *tokenizer) quotedString() (string, tokenKind) {
	t.pos++ // consume opening quote
	var sb strings.Builder
	for t.pos < len(t.input) {
		c := t.input[t.pos]
		switch c {
		case '"':
			t.pos++
			return sb.String(), tokenString
		case '\\':
			if t.pos+1 >= len(t.input) {
				return "", tokenErr
			}
			t.pos++
			switch t.input[t.pos] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			default:
				// Unknown escape: keep the character as-is.
				sb.WriteByte(t.input[t.pos])
			}
			t.pos++
		default:
			sb.WriteByte(c)
			t.pos++
		}
	}
	// Unterminated string.
	return "", tokenErr
}

func (t *tokenizer) bareString() (string, tokenKind) {
	start := t.pos
	for t.pos < len(t.input) {
		c := t.input[t.pos]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '{' || c == '}' || c == '"' {
			break
		}
		t.pos++
	}
	return t.input[start:t.pos], tokenString
}
