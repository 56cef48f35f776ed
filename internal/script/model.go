package script

// ModelNode is implemented by ModelValue/ModelList/ModelMap so the
// Output generator's merge driver (spec §4.8) can walk a uniform tree
// regardless of which shape a particular node is.
type ModelNode interface {
	Node
	ModelKey() string
	ModelOrder() int
}

// ModelValue is a leaf model node: exactly one of URL/File/Template/
// Inline supplies its rendered value (spec §3 "ModelValue(key?, url?,
// file?, template?, inline?, order, guard?)").
type ModelValue struct {
	Envelope
	Key      string
	URL      string
	File     string
	Template string
	Inline   string
	Order    int
	Children []ModelNode // nested value/list/map, for <template><model> roots
}

func (n *ModelValue) Accept(v Visitor) error { return v.VisitModelValue(n) }
func (n *ModelValue) ModelKey() string       { return n.Key }
func (n *ModelValue) ModelOrder() int        { return n.Order }

// ModelList is an ordered model node holding value/list/map children,
// merged in declaration order and re-sorted stably by Order (spec §3/§4.8).
type ModelList struct {
	Envelope
	Key      string
	Order    int
	Children []ModelNode
}

func (n *ModelList) Accept(v Visitor) error { return v.VisitModelList(n) }
func (n *ModelList) ModelKey() string       { return n.Key }
func (n *ModelList) ModelOrder() int        { return n.Order }

// ModelMap is a keyed model node holding value/list/map children.
type ModelMap struct {
	Envelope
	Key      string
	Order    int
	Children []ModelNode
}

func (n *ModelMap) Accept(v Visitor) error { return v.VisitModelMap(n) }
func (n *ModelMap) ModelKey() string       { return n.Key }
func (n *ModelMap) ModelOrder() int        { return n.Order }

// DefaultOrder is applied when a model node omits `order` (spec §3
// invariant (iv): "order on model nodes defaults to 100").
const DefaultOrder = 100
