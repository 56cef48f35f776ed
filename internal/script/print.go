package script

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/funvibe/archctl/internal/exprparser"
)

// Printer renders a Script as an indented XML-like debug dump, one
// element per node. The output is not in the loader's input format and
// does not reload: optional/global values are written unquoted, an
// input's kind is written as an attribute rather than a nested element,
// options sit directly under their input, includes are not wrapped and
// a directory is written as an attribute, and model value sources are
// omitted.
//
// Grounded on github.com/funvibe/funxy/internal/prettyprinter/code_printer.go's
// CodePrinter: a bytes.Buffer plus an indent counter, with one render
// method per node kind instead of a generic tree-dumper.
type Printer struct {
	buf    bytes.Buffer
	indent int
}

// NewPrinter returns an empty Printer.
func NewPrinter() *Printer { return &Printer{} }

// Print renders s and returns the dump described on Printer.
func Print(s *Script) string {
	p := NewPrinter()
	p.writeLine("<archetype-script>")
	p.indent++
	for _, c := range s.Children {
		p.printNode(c)
	}
	p.indent--
	p.writeLine("</archetype-script>")
	return p.buf.String()
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("  ")
	}
	fmt.Fprintf(&p.buf, format, args...)
	p.buf.WriteString("\n")
}

func guardAttr(n Node) string {
	if n.GuardExpr() == nil {
		return ""
	}
	return fmt.Sprintf(" if=%s", strconv.Quote(exprparser.Print(n.GuardExpr())))
}

func (p *Printer) printNode(n Node) {
	switch node := n.(type) {
	case *Step:
		p.writeLine("<step%s>", guardAttr(node))
		p.indent++
		for _, c := range node.Children {
			p.printNode(c)
		}
		p.indent--
		p.writeLine("</step>")
	case *Inputs:
		p.writeLine("<inputs%s>", guardAttr(node))
		p.indent++
		for _, c := range node.Children {
			p.printNode(c)
		}
		p.indent--
		p.writeLine("</inputs>")
	case *Input:
		p.printInput(node)
	case *Option:
		p.writeLine("<option value=%s%s>", strconv.Quote(node.Value), guardAttr(node))
		p.indent++
		for _, c := range node.Children {
			p.printNode(c)
		}
		p.indent--
		p.writeLine("</option>")
	case *ContextBlock:
		p.writeLine("<context%s>", guardAttr(node))
		p.indent++
		for _, c := range node.Children {
			p.printNode(c)
		}
		p.indent--
		p.writeLine("</context>")
	case *Preset:
		if node.Value.IsLiteral {
			p.writeLine("<preset path=%s value=%s%s/>", strconv.Quote(node.Path), strconv.Quote(node.Value.Literal), guardAttr(node))
		} else {
			p.writeLine("<preset path=%s value=%s%s/>", strconv.Quote(node.Path), strconv.Quote(exprparser.Print(node.Value.Expr)), guardAttr(node))
		}
	case *Output:
		p.writeLine("<output%s>", guardAttr(node))
		p.indent++
		for _, c := range node.Children {
			p.printNode(c)
		}
		p.indent--
		p.writeLine("</output>")
	case *File:
		p.writeLine("<file source=%s target=%s%s/>", strconv.Quote(node.Source), strconv.Quote(node.Target), guardAttr(node))
	case *Files:
		p.printFiles(node)
	case *Template:
		p.printTemplate(node)
	case *Templates:
		p.printTemplates(node)
	case *Transformation:
		p.printTransformation(node)
	case *ModelValue:
		p.printModelValue(node)
	case *ModelList:
		p.printModelList(node)
	case *ModelMap:
		p.printModelMap(node)
	case *Invoke:
		p.printInvoke(node)
	case *Method:
		p.writeLine("<method name=%s%s>", strconv.Quote(node.Name), guardAttr(node))
		p.indent++
		for _, c := range node.Children {
			p.printNode(c)
		}
		p.indent--
		p.writeLine("</method>")
	}
}

func (p *Printer) printInput(node *Input) {
	p.writeLine("<input name=%s kind=%s optional=%t global=%t%s>",
		strconv.Quote(node.Name), strconv.Quote(node.Kind.String()), node.Optional, node.Global, guardAttr(node))
	p.indent++
	for _, o := range node.Options {
		p.printNode(o)
	}
	for _, c := range node.Children {
		p.printNode(c)
	}
	p.indent--
	p.writeLine("</input>")
}

func (p *Printer) printFiles(node *Files) {
	p.writeLine("<files directory=%s%s>", strconv.Quote(node.Directory), guardAttr(node))
	p.indent++
	for _, inc := range node.Includes {
		p.writeLine("<include>%s</include>", inc)
	}
	for _, exc := range node.Excludes {
		p.writeLine("<exclude>%s</exclude>", exc)
	}
	p.indent--
	p.writeLine("</files>")
}

func (p *Printer) printTemplate(node *Template) {
	p.writeLine("<template engine=%s source=%s target=%s%s>",
		strconv.Quote(node.Engine), strconv.Quote(node.Source), strconv.Quote(node.Target), guardAttr(node))
	if node.Model != nil {
		p.indent++
		p.printNode(node.Model)
		p.indent--
	}
	p.writeLine("</template>")
}

func (p *Printer) printTemplates(node *Templates) {
	p.writeLine("<templates engine=%s directory=%s%s>",
		strconv.Quote(node.Engine), strconv.Quote(node.Directory), guardAttr(node))
	p.indent++
	for _, inc := range node.Includes {
		p.writeLine("<include>%s</include>", inc)
	}
	for _, exc := range node.Excludes {
		p.writeLine("<exclude>%s</exclude>", exc)
	}
	if node.Model != nil {
		p.printNode(node.Model)
	}
	p.indent--
	p.writeLine("</templates>")
}

func (p *Printer) printTransformation(node *Transformation) {
	p.writeLine("<transformation id=%s%s>", strconv.Quote(node.ID), guardAttr(node))
	p.indent++
	for _, r := range node.Replaces {
		p.writeLine("<replace regex=%s replacement=%s/>", strconv.Quote(r.Regex), strconv.Quote(r.Replacement))
	}
	p.indent--
	p.writeLine("</transformation>")
}

func (p *Printer) printModelValue(node *ModelValue) {
	p.writeLine("<value key=%s order=%d%s/>", strconv.Quote(node.Key), node.Order, guardAttr(node))
}

func (p *Printer) printModelList(node *ModelList) {
	p.writeLine("<list key=%s order=%d%s>", strconv.Quote(node.Key), node.Order, guardAttr(node))
	p.indent++
	for _, c := range node.Children {
		p.printNode(c)
	}
	p.indent--
	p.writeLine("</list>")
}

func (p *Printer) printModelMap(node *ModelMap) {
	p.writeLine("<map key=%s order=%d%s>", strconv.Quote(node.Key), node.Order, guardAttr(node))
	p.indent++
	for _, c := range node.Children {
		p.printNode(c)
	}
	p.indent--
	p.writeLine("</map>")
}

func (p *Printer) printInvoke(node *Invoke) {
	tag := "invoke"
	switch node.Kind {
	case InvokeDir:
		tag = "invoke-dir"
	case InvokeExec:
		tag = "exec"
	case InvokeSource:
		tag = "source"
	}
	if node.Method != "" {
		p.writeLine("<%s src=%s method=%s%s/>", tag, strconv.Quote(node.Src), strconv.Quote(node.Method), guardAttr(node))
	} else {
		p.writeLine("<%s src=%s%s/>", tag, strconv.Quote(node.Src), guardAttr(node))
	}
}
