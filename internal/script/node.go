package script

import "github.com/funvibe/archctl/internal/exprast"

// Node is the base interface implemented by every AST node kind. Every
// concrete type embeds Envelope, which supplies Position and GuardExpr.
type Node interface {
	Position() Position
	GuardExpr() exprast.Node
	Accept(v Visitor) error
}

// Visitor receives one callback per concrete node kind, matching spec
// §9's "one visitor per traversal purpose" design note. internal/walker
// composes this with pre/post dispatch and VisitResult semantics.
type Visitor interface {
	VisitScript(n *Script) error
	VisitStep(n *Step) error
	VisitInputs(n *Inputs) error
	VisitInput(n *Input) error
	VisitOption(n *Option) error
	VisitContext(n *ContextBlock) error
	VisitPreset(n *Preset) error
	VisitOutput(n *Output) error
	VisitFile(n *File) error
	VisitFiles(n *Files) error
	VisitTemplate(n *Template) error
	VisitTemplates(n *Templates) error
	VisitTransformation(n *Transformation) error
	VisitModelValue(n *ModelValue) error
	VisitModelList(n *ModelList) error
	VisitModelMap(n *ModelMap) error
	VisitInvoke(n *Invoke) error
	VisitMethod(n *Method) error
}
