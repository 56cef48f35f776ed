// Package script defines the immutable AST for the archetype DSL (spec
// §3): Script, Block, Input, Preset, Output nodes, Model trees, and
// Invoke/Method. Grounded on
// github.com/funvibe/funxy/internal/ast/ast_core.go's tagged-sum-plus-
// Visitor shape, per spec §9 "Deep inheritance" design note: model as
// tagged sum types with a shared position+guard envelope, and make the
// visitor a match over the enum rather than virtual dispatch.
package script

import "github.com/funvibe/archctl/internal/exprast"

// Position locates a node in its source script, for diagnostics (spec
// §3 "Every node carries a Position(script, line, col)").
type Position struct {
	Script string
	Line   int
	Col    int
}

// Envelope is embedded in every concrete node: shared position and an
// optional guard expression, per spec §9.
type Envelope struct {
	Pos   Position
	Guard exprast.Node // nil means unconditional
}

func (e Envelope) Position() Position    { return e.Pos }
func (e Envelope) GuardExpr() exprast.Node { return e.Guard }
