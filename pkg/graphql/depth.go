package graphql

import (
	"fmt"
	"strings"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
)

// DefaultMaxDepth bounds the nesting of object selections. The deepest
// useful query is search → jobs or mapData → center, so anything past a
// handful of levels is malformed or hostile.
const DefaultMaxDepth = 5

// calculateQueryDepth returns the deepest object selection across the
// operations of a document, resolving fragment spreads.
func calculateQueryDepth(document *ast.Document) int {
	fragments := make(map[string]*ast.FragmentDefinition)
	for _, definition := range document.Definitions {
		if f, ok := definition.(*ast.FragmentDefinition); ok {
			fragments[f.Name.Value] = f
		}
	}

	maxDepth := 0
	for _, definition := range document.Definitions {
		if op, ok := definition.(*ast.OperationDefinition); ok {
			maxDepth = max(maxDepth, selectionDepth(op.SelectionSet, 0, fragments, map[string]bool{}))
		}
	}
	return maxDepth
}

// selectionDepth counts fields that carry their own selection set; scalar
// leaves and introspection fields add nothing. visiting guards against
// fragment cycles, which validation rejects later anyway.
func selectionDepth(set *ast.SelectionSet, depth int, fragments map[string]*ast.FragmentDefinition, visiting map[string]bool) int {
	if set == nil {
		return depth
	}
	deepest := depth
	for _, selection := range set.Selections {
		switch sel := selection.(type) {
		case *ast.Field:
			if strings.HasPrefix(sel.Name.Value, "__") || sel.SelectionSet == nil {
				continue
			}
			deepest = max(deepest, selectionDepth(sel.SelectionSet, depth+1, fragments, visiting))
		case *ast.InlineFragment:
			deepest = max(deepest, selectionDepth(sel.SelectionSet, depth, fragments, visiting))
		case *ast.FragmentSpread:
			name := sel.Name.Value
			f, ok := fragments[name]
			if !ok || visiting[name] {
				continue
			}
			visiting[name] = true
			deepest = max(deepest, selectionDepth(f.SelectionSet, depth, fragments, visiting))
			delete(visiting, name)
		}
	}
	return deepest
}

// ValidateQueryDepth validates a query against the depth limit
func ValidateQueryDepth(query string, maxDepth int) error {
	document, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return fmt.Errorf("failed to parse query: %w", err)
	}
	if depth := calculateQueryDepth(document); depth > maxDepth {
		return fmt.Errorf("query depth %d exceeds maximum allowed depth %d", depth, maxDepth)
	}
	return nil
}
