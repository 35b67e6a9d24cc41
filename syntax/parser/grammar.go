// Copyright 2024 The Tombi Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package parser

import "github.com/tombi-toml/tombi/syntax/token"

// parseRoot implements:
//
//	Root ::= (KeyValueGroup | TableOrArrayOfTable)* (DanglingCommentGroup)*
func (p *parser) parseRoot() {
	p.consumeLeadingTrivia()
	for !p.atEOF() {
		switch k := p.peekKind(); {
		case k == token.DOUBLE_L_BRACKET:
			p.parseArrayOfTable()
		case k == token.L_BRACKET:
			p.parseTable()
		case isKeyStart(k):
			p.parseKeyValueGroup()
		default:
			p.recoverUnexpected()
		}
	}
	p.consumeTrailingTrivia()
}

// parseTable implements: Table ::= '[' Keys ']' trailing-comment? (KeyValueGroup)*
func (p *parser) parseTable() {
	m := p.b.Open()
	p.bumpSignificant() // '['
	p.parseKeys()
	p.expect(token.R_BRACKET)
	p.b.Close(m, token.TABLE)
	p.consumeTrailingTrivia()
	for isKeyStart(p.peekKind()) {
		p.parseKeyValueGroup()
	}
}

// parseArrayOfTable implements: ArrayOfTable ::= '[[' Keys ']]' trailing-comment? (KeyValueGroup)*
func (p *parser) parseArrayOfTable() {
	m := p.b.Open()
	p.bumpSignificant() // '[['
	p.parseKeys()
	p.expect(token.DOUBLE_R_BRACKET)
	p.b.Close(m, token.ARRAY_OF_TABLE)
	p.consumeTrailingTrivia()
	for isKeyStart(p.peekKind()) {
		p.parseKeyValueGroup()
	}
}

// parseKeyValueGroup wraps a maximal run of consecutive key-value lines
// (with no intervening table header) into a single KEY_VALUE_GROUP node.
func (p *parser) parseKeyValueGroup() {
	m := p.b.Open()
	for isKeyStart(p.peekKind()) {
		p.parseKeyValue()
		p.consumeTrailingTrivia()
		if !isKeyStart(p.peekKind()) {
			break
		}
	}
	p.b.Close(m, token.KEY_VALUE_GROUP)
}

// parseKeyValue implements: KeyValue ::= Keys '=' Value
func (p *parser) parseKeyValue() {
	m := p.b.Open()
	p.parseKeys()
	p.expect(token.EQUAL)
	p.parseValue()
	p.b.Close(m, token.KEY_VALUE)
}

// parseKeys implements: Keys ::= Key ('.' Key)*
func (p *parser) parseKeys() {
	m := p.b.Open()
	p.parseKey()
	for p.peekKind() == token.DOT {
		p.bumpSignificant()
		p.parseKey()
	}
	p.b.Close(m, token.KEYS)
}

func (p *parser) parseKey() {
	m := p.b.Open()
	if isKeyStart(p.peekKind()) {
		p.bumpSignificant()
	} else {
		p.addErrf(p.cur().Span, "expected-key", "expected a key, found %s", p.cur().Kind)
	}
	p.b.Close(m, token.KEY)
}

// parseValue implements: Value ::= literal | Array | InlineTable
func (p *parser) parseValue() {
	m := p.b.Open()
	switch k := p.peekKind(); {
	case k == token.L_BRACKET:
		p.parseArray()
	case k == token.L_BRACE:
		p.parseInlineTable()
	case isKeyStart(k):
		p.bumpSignificant()
	default:
		p.addErrf(p.cur().Span, "expected-value", "expected a value, found %s", p.cur().Kind)
	}
	p.b.Close(m, token.VALUE)
}

// parseArray implements:
//
//	Array ::= '[' (Value (',' Value)* ','?)? ']'
//
// with arbitrary line-breaks and comments between elements, which fall out
// automatically: peekKind always flushes trivia before a decision.
func (p *parser) parseArray() {
	m := p.b.Open()
	p.bumpSignificant() // '['
	for {
		k := p.peekKind()
		if k == token.R_BRACKET || k == token.EOF {
			break
		}
		if !isValueStart(k) {
			p.recoverUnexpectedInBracket(token.R_BRACKET)
			continue
		}
		vm := p.b.Open()
		p.parseValue()
		if p.peekKind() == token.COMMA {
			p.bumpSignificant()
			p.b.Close(vm, token.VALUE_WITH_COMMA_GROUP)
		} else {
			p.b.Abandon(vm)
		}
	}
	p.expect(token.R_BRACKET)
	p.b.Close(m, token.ARRAY)
}

// parseInlineTable implements:
//
//	InlineTable ::= '{' (KeyValue (',' KeyValue)* ','?)? '}'
//
// TOML 1.0's ban on trailing commas and multi-line inline tables is a
// linter concern (spec.md §4.2), not enforced here.
func (p *parser) parseInlineTable() {
	m := p.b.Open()
	p.bumpSignificant() // '{'
	for {
		k := p.peekKind()
		if k == token.R_BRACE || k == token.EOF {
			break
		}
		if !isKeyStart(k) {
			p.recoverUnexpectedInBracket(token.R_BRACE)
			continue
		}
		kvm := p.b.Open()
		p.parseKeyValue()
		if p.peekKind() == token.COMMA {
			p.bumpSignificant()
			p.b.Close(kvm, token.KEY_VALUE_WITH_COMMA_GROUP)
		} else {
			p.b.Abandon(kvm)
		}
	}
	p.expect(token.R_BRACE)
	p.b.Close(m, token.INLINE_TABLE)
}

// recoverUnexpectedInBracket consumes one bad token into an ERROR node
// while inside an array/inline-table, re-syncing at the closer, a comma,
// or EOF.
func (p *parser) recoverUnexpectedInBracket(closer token.Kind) {
	m := p.b.Open()
	p.addErrf(p.cur().Span, "unexpected-token", "unexpected token %s", p.cur().Kind)
	p.bumpSignificant()
	for {
		k := p.peekKind()
		if k == closer || k == token.COMMA || k == token.EOF {
			break
		}
		p.bumpSignificant()
	}
	p.b.Close(m, token.ERROR)
}

// recoverUnexpected is the top-level error recovery: it emits an error,
// consumes one token into an ERROR node, and keeps consuming until the next
// '[', '[[', key-start token, or EOF. Line breaks are trivia here and do not
// end the ERROR node; a key-start token later on the same line does.
func (p *parser) recoverUnexpected() {
	m := p.b.Open()
	p.addErrf(p.cur().Span, "unexpected-token", "unexpected token %s", p.cur().Kind)
	p.bumpSignificant()
	for {
		k := p.peekKind()
		if k == token.EOF || k == token.L_BRACKET || k == token.DOUBLE_L_BRACKET || isKeyStart(k) {
			break
		}
		p.bumpSignificant()
	}
	p.b.Close(m, token.ERROR)
}

// consumeLeadingTrivia wraps the trivia run at the very start of the
// document into a DANGLING_COMMENT_GROUP if it contains a comment, the
// counterpart to consumeTrailingTrivia for a directive written as the
// first lines of a file (spec.md §4.7's `#:schema`/`#:tombi` directives,
// normally found before any declaration rather than after one).
func (p *parser) consumeLeadingTrivia() {
	start := p.pos
	sawComment := false
	for p.cur().Kind.IsTrivia() {
		if p.cur().Kind == token.COMMENT {
			sawComment = true
		}
		if p.pos == len(p.toks)-1 {
			break
		}
		p.pos++
	}
	end := p.pos
	p.pos = start

	if !sawComment {
		for p.pos < end {
			p.bump()
		}
		return
	}
	m := p.b.Open()
	for p.pos < end {
		p.bump()
	}
	p.b.Close(m, token.DANGLING_COMMENT_GROUP)
}

// consumeTrailingTrivia flushes the trivia run immediately following a
// declaration. A single same-line comment is left as a plain sibling (the
// AST façade classifies it as a trailing comment of the preceding node); the
// rest of the trivia run, if it contains any comment, is wrapped into a
// DANGLING_COMMENT_GROUP node. No blank line is required for this: comments
// directly above the next declaration land in the group too.
func (p *parser) consumeTrailingTrivia() {
	if p.cur().Kind == token.WHITESPACE {
		p.bump()
	}
	if p.cur().Kind == token.COMMENT {
		p.bump()
	}
	if p.cur().Kind == token.LINE_BREAK {
		p.bump()
	}

	start := p.pos
	sawComment := false
	for p.cur().Kind.IsTrivia() {
		if p.cur().Kind == token.COMMENT {
			sawComment = true
		}
		if p.pos == len(p.toks)-1 {
			break
		}
		p.pos++
	}
	end := p.pos
	p.pos = start

	if !sawComment {
		for p.pos < end {
			p.bump()
		}
		return
	}
	m := p.b.Open()
	for p.pos < end {
		p.bump()
	}
	p.b.Close(m, token.DANGLING_COMMENT_GROUP)
}
