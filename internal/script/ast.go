package script

import "github.com/funvibe/archctl/internal/exprast"

// Script is the root of every loaded document, bound to its source
// path (spec §3 "The root is a Script bound to a source path").
type Script struct {
	Envelope
	Path     string
	Children []Node
}

func (n *Script) Accept(v Visitor) error { return v.VisitScript(n) }

// Step groups a sequence of children under an optional guard (spec §3
// Block{kind=Step}).
type Step struct {
	Envelope
	Children []Node
}

func (n *Step) Accept(v Visitor) error { return v.VisitStep(n) }

// Inputs groups a set of sibling Input declarations (Block{kind=Inputs}).
type Inputs struct {
	Envelope
	Children []Node
}

func (n *Inputs) Accept(v Visitor) error { return v.VisitInputs(n) }

// InputKind distinguishes the five input shapes of spec §3.
type InputKind int

const (
	KindBoolean InputKind = iota
	KindText
	KindEnum
	KindList
	KindOption
)

func (k InputKind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindText:
		return "text"
	case KindEnum:
		return "enum"
	case KindList:
		return "list"
	case KindOption:
		return "option"
	default:
		return "unknown"
	}
}

// Input is a user-supplied value declaration (spec §3).
//
// Default, when non-nil, is evaluated as an expression against the
// current context to produce the input's default value (spec §4.6).
// Children holds nested step/input/context/output/exec/source blocks
// admitted under <input> per the §6 element table; Options holds
// <option> children for Enum/List inputs.
type Input struct {
	Envelope
	Name        string
	Label       string
	Help        string
	Default     exprast.Node
	Optional    bool
	Global      bool
	Prompt      string
	Normalize   string // exact-match unless a normalize rule is declared (spec §9)
	Kind        InputKind
	Placeholder string // Text only
	Min, Max    int    // List only
	Options     []*Option
	Children    []Node
}

func (n *Input) Accept(v Visitor) error { return v.VisitInput(n) }

// Option is a single selectable value under an Enum or List input
// (spec §3 invariant (ii): Option may only appear under Enum/List).
type Option struct {
	Envelope
	Value    string
	Children []Node
}

func (n *Option) Accept(v Visitor) error { return v.VisitOption(n) }

// ContextBlock corresponds to the <context> element (§6 element
// table): it pre-seeds context values for its boolean/list/enum/text
// children without driving the interactive/batch resolver branch the
// way a plain <input> would. See DESIGN.md "context element semantics"
// for the Open-Question decision this resolves.
type ContextBlock struct {
	Envelope
	Children []Node
}

func (n *ContextBlock) Accept(v Visitor) error { return v.VisitContext(n) }

// PresetValue is either a literal string or an expression whose
// evaluation yields the preset's dynamic value (spec §3 "Preset{path,
// value} (literal or expression-dynamic)").
type PresetValue struct {
	Literal   string
	IsLiteral bool
	Expr      exprast.Node
}

// Preset fixes an input's value at a scope (spec §3/§4.7). Path must
// name a reachable input path at the point of declaration (invariant
// (iii)); the Walker reports a missing-target error if not.
type Preset struct {
	Envelope
	Path  string
	Value PresetValue
}

func (n *Preset) Accept(v Visitor) error { return v.VisitPreset(n) }

// Output groups file/files/template/templates/transformation/model
// children (spec §3 Block{kind=Output}).
type Output struct {
	Envelope
	Children []Node
}

func (n *Output) Accept(v Visitor) error { return v.VisitOutput(n) }

// File copies a single source to target (spec §3 Output.File).
type File struct {
	Envelope
	Source string
	Target string
}

func (n *File) Accept(v Visitor) error { return v.VisitFile(n) }

// Files expands include/exclude globs against Directory and copies the
// matches, applying Transformations by id (spec §3 Output.Files).
type Files struct {
	Envelope
	Transformations []string
	Directory       string
	Includes        []string
	Excludes        []string
}

func (n *Files) Accept(v Visitor) error { return v.VisitFiles(n) }

// Template renders Source through the named Engine and writes Target,
// merging Model into the accumulated TemplateModel (spec §3/§4.8).
type Template struct {
	Envelope
	Engine string
	Source string
	Target string
	Model  *ModelValue // root of this template's <model> subtree, may be nil
}

func (n *Template) Accept(v Visitor) error { return v.VisitTemplate(n) }

// Templates is the glob-expanding form of Template (spec §3/§4.8).
type Templates struct {
	Envelope
	Engine          string
	Transformations []string
	Directory       string
	Includes        []string
	Excludes        []string
	Model           *ModelValue
}

func (n *Templates) Accept(v Visitor) error { return v.VisitTemplates(n) }

// Replace is one regex/replacement pair within a Transformation.
type Replace struct {
	Regex       string
	Replacement string
}

// TransformTarget selects whether a Transformation's replacements apply
// to the output path, the file content, or both (spec §4.8
// "transformation is a sequence of replace{regex,replacement} pairs
// applied to path and/or content per the transformation's declaration").
type TransformTarget int

const (
	TransformPath TransformTarget = iota
	TransformContent
	TransformBoth
)

// Transformation is a named sequence of regex replacements (spec §3/§8
// glossary "Transformation").
type Transformation struct {
	Envelope
	ID       string
	Target   TransformTarget
	Replaces []Replace
}

func (n *Transformation) Accept(v Visitor) error { return v.VisitTransformation(n) }

// Invoke references another script or a named Method within it (spec
// §3 "Invoke{src|url, method?}").
type InvokeKind int

const (
	InvokeScript InvokeKind = iota
	InvokeDir
	InvokeExec
	InvokeSource
)

type Invoke struct {
	Envelope
	Kind   InvokeKind
	Src    string
	URL    string
	Method string
}

func (n *Invoke) Accept(v Visitor) error { return v.VisitInvoke(n) }

// Method is a reusable named script fragment (spec §3 "Method{name,
// children} for reusable script fragments").
type Method struct {
	Envelope
	Name     string
	Children []Node
}

func (n *Method) Accept(v Visitor) error { return v.VisitMethod(n) }
