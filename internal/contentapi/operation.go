package contentapi

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Operation is a syntactically validated GraphQL document ready to be sent
// to the content API. Parsing up front catches malformed documents before
// they cost a network round-trip and gives us the operation name for logs.
type Operation struct {
	Name   string
	Source string
	kind   ast.Operation
}

// NewOperation parses a GraphQL document and returns its first operation.
func NewOperation(src string) (*Operation, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: src})
	if err != nil {
		return nil, fmt.Errorf("contentapi: parse operation: %w", err)
	}
	if len(doc.Operations) == 0 {
		return nil, fmt.Errorf("contentapi: document contains no operations")
	}

	op := doc.Operations[0]
	return &Operation{
		Name:   op.Name,
		Source: src,
		kind:   op.Operation,
	}, nil
}

// MustOperation is NewOperation for package-level operation constants.
// It panics on malformed documents.
func MustOperation(src string) *Operation {
	op, err := NewOperation(src)
	if err != nil {
		panic(err)
	}
	return op
}

// IsMutation reports whether the operation mutates upstream state.
func (o *Operation) IsMutation() bool { return o.kind == ast.Mutation }
