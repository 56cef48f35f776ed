package exprparser

import (
	"strconv"
	"strings"

	"github.com/funvibe/archctl/internal/exprast"
)

// Print renders node back to guard-expression source, respecting
// Binary.Isolated so parenthesized groups round-trip (spec §8: "parse
// ∘ render round-trips up to parentheses placement, respecting
// isolated").
func Print(n exprast.Node) string {
	var sb strings.Builder
	printNode(&sb, n)
	return sb.String()
}

func printNode(sb *strings.Builder, n exprast.Node) {
	switch node := n.(type) {
	case *exprast.Literal:
		printLiteral(sb, node)
	case *exprast.Variable:
		sb.WriteString("${")
		sb.WriteString(node.Name)
		sb.WriteString("}")
	case *exprast.Unary:
		sb.WriteString("!")
		printNode(sb, node.Child)
	case *exprast.Binary:
		if node.Isolated {
			sb.WriteString("(")
		}
		printNode(sb, node.Left)
		sb.WriteString(" ")
		sb.WriteString(node.Op.String())
		sb.WriteString(" ")
		printNode(sb, node.Right)
		if node.Isolated {
			sb.WriteString(")")
		}
	}
}

func printLiteral(sb *strings.Builder, lit *exprast.Literal) {
	switch lit.Kind {
	case exprast.LitString:
		if lit.Raw != "" {
			sb.WriteString(lit.Raw)
			return
		}
		sb.WriteString(strconv.Quote(lit.Str))
	case exprast.LitBool:
		sb.WriteString(strconv.FormatBool(lit.Bool))
	case exprast.LitInt:
		sb.WriteString(strconv.FormatInt(lit.Int, 10))
	case exprast.LitList:
		sb.WriteString("[")
		for i, item := range lit.List {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString("'")
			sb.WriteString(item)
			sb.WriteString("'")
		}
		sb.WriteString("]")
	}
}
