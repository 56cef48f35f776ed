// Package inputtree builds the reduced, reachable-input structure of
// spec §4.7: a tree of Root/Presets/Boolean/Enum/List/Text/Value nodes
// collected from a Script's Input/Preset/Option nodes (guards treated
// as possibly-true, since reachability is static), prunable by active
// presets, and enumerable permutation-by-permutation for exhaustive
// resolution or a VS Code-style input picker.
//
// Grounded on github.com/funvibe/funxy/internal/ast's node-kind-plus-
// Children shape, reused here for a second, narrower tree alongside
// the full script.Node AST — spec §9 "one visitor per traversal
// purpose" extends naturally to "one tree shape per consumer".
package inputtree

import (
	"strings"

	"github.com/funvibe/archctl/internal/script"
)

// NodeKind enumerates the input-tree node kinds of spec §4.7.
type NodeKind int

const (
	KindRoot NodeKind = iota
	KindPresets
	KindBoolean
	KindEnum
	KindList
	KindText
	KindValue
)

// MaxPermutations caps a List node's enumerable combinations (spec §9
// open question: "MAX_PERMUTATIONS=5 ... observable behavior:
// defaults first, capped at 5 distinct permutations").
const MaxPermutations = 5

// Node is one input-tree node. Script/Line/Path locate it the way
// script.Position does for the main AST (spec §4.7 "each carries
// script, line, path").
type Node struct {
	ID       int
	Kind     NodeKind
	Script   string
	Line     int
	Path     string
	Str      string // Value node payload; Presets node's fixed raw value
	Children []*Node
}

// Build walks sc collecting every reachable Input/Preset node into a
// Root-rooted tree, assigning dense IDs in pre-order.
func Build(sc *script.Script) *Node {
	root := &Node{Kind: KindRoot, Path: ""}
	root.Children = collectFromChildren(sc.Path, sc.Children, "")
	assignIDs(root)
	return root
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// collectFromChildren recursively scans nodes for Input/Preset nodes,
// descending through Step/Context/Method/Inputs groupings (which
// exist only to group siblings, not to scope reachability) and
// ignoring guard truth entirely, per spec §4.7 "reachable inputs
// (guards treated as possibly-true)".
func collectFromChildren(scriptPath string, nodes []script.Node, prefix string) []*Node {
	var out []*Node
	for _, n := range nodes {
		switch t := n.(type) {
		case *script.Input:
			out = append(out, buildInputNode(scriptPath, t, prefix))
		case *script.Preset:
			out = append(out, buildPresetNode(scriptPath, t))
		case *script.Step:
			out = append(out, collectFromChildren(scriptPath, t.Children, prefix)...)
		case *script.ContextBlock:
			out = append(out, collectFromChildren(scriptPath, t.Children, prefix)...)
		case *script.Method:
			out = append(out, collectFromChildren(scriptPath, t.Children, prefix)...)
		case *script.Inputs:
			out = append(out, collectFromChildren(scriptPath, t.Children, prefix)...)
		}
		// Output/Invoke/Transformation subtrees never contain inputs
		// reachable from this script's static tree (invoke targets are
		// cross-file and out of scope for this flattening per spec §4.7).
	}
	return out
}

func buildInputNode(scriptPath string, in *script.Input, prefix string) *Node {
	path := joinPath(prefix, in.Name)
	pos := in.Position()
	switch in.Kind {
	case script.KindBoolean:
		n := &Node{Kind: KindBoolean, Script: scriptPath, Line: pos.Line, Path: path}
		n.Children = append(n.Children,
			&Node{Kind: KindValue, Script: scriptPath, Line: pos.Line, Path: path, Str: "yes"},
			&Node{Kind: KindValue, Script: scriptPath, Line: pos.Line, Path: path, Str: "no"},
		)
		n.Children = append(n.Children, collectFromChildren(scriptPath, in.Children, path)...)
		return n
	case script.KindText:
		n := &Node{Kind: KindText, Script: scriptPath, Line: pos.Line, Path: path}
		n.Children = append(n.Children, &Node{Kind: KindValue, Script: scriptPath, Line: pos.Line, Path: path, Str: in.Placeholder})
		n.Children = append(n.Children, collectFromChildren(scriptPath, in.Children, path)...)
		return n
	case script.KindEnum, script.KindList:
		kind := KindEnum
		if in.Kind == script.KindList {
			kind = KindList
		}
		n := &Node{Kind: kind, Script: scriptPath, Line: pos.Line, Path: path}
		for _, opt := range in.Options {
			optPos := opt.Position()
			valNode := &Node{Kind: KindValue, Script: scriptPath, Line: optPos.Line, Path: path, Str: opt.Value}
			valNode.Children = collectFromChildren(scriptPath, opt.Children, path)
			n.Children = append(n.Children, valNode)
		}
		n.Children = append(n.Children, collectFromChildren(scriptPath, in.Children, path)...)
		return n
	default:
		return &Node{Kind: KindText, Script: scriptPath, Line: pos.Line, Path: path}
	}
}

func buildPresetNode(scriptPath string, p *script.Preset) *Node {
	pos := p.Position()
	return &Node{Kind: KindPresets, Script: scriptPath, Line: pos.Line, Path: p.Path, Str: p.Value.Literal}
}

func assignIDs(root *Node) {
	id := 0
	var walk func(n *Node)
	walk = func(n *Node) {
		n.ID = id
		id++
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
}

// Prune removes subtrees fixed by an active Preset (spec §4.7
// "Preset pruning"): Boolean/Enum nodes keep only the matching child
// value; List/Text nodes are removed outright, their outcome fixed
// externally. IDs are reassigned densely afterward.
func Prune(root *Node) *Node {
	active := map[string]string{}
	collectPresets(root, active)
	out := prune(root, active)
	assignIDs(out)
	return out
}

func collectPresets(n *Node, active map[string]string) {
	for _, c := range n.Children {
		if c.Kind == KindPresets {
			active[c.Path] = c.Str
		}
		collectPresets(c, active)
	}
}

// valueMatchesPreset compares a node's literal option string ("yes"/
// "no" for Boolean's synthetic value children) against a preset's raw
// attribute value, which is spelled the same way Value.ParseBoolString
// accepts ("true"/"false"/"yes"/"no"), per spec §4.7's cross-reference
// to the Value contract.
func valueMatchesPreset(kind NodeKind, optionStr, presetVal string) bool {
	if kind != KindBoolean {
		return optionStr == presetVal
	}
	switch strings.ToLower(presetVal) {
	case "true", "yes":
		return optionStr == "yes"
	case "false", "no":
		return optionStr == "no"
	default:
		return optionStr == presetVal
	}
}

func prune(n *Node, active map[string]string) *Node {
	presetVal, hasPreset := active[n.Path]
	if hasPreset {
		switch n.Kind {
		case KindBoolean, KindEnum:
			out := &Node{Kind: n.Kind, Script: n.Script, Line: n.Line, Path: n.Path}
			for _, c := range n.Children {
				if c.Kind == KindValue && valueMatchesPreset(n.Kind, c.Str, presetVal) {
					if pc := prune(c, active); pc != nil {
						out.Children = append(out.Children, pc)
					}
				}
			}
			return out
		case KindList, KindText:
			return nil
		}
	}
	out := &Node{Kind: n.Kind, Script: n.Script, Line: n.Line, Path: n.Path, Str: n.Str}
	for _, c := range n.Children {
		if c.Kind == KindPresets {
			continue
		}
		if pc := prune(c, active); pc != nil {
			out.Children = append(out.Children, pc)
		}
	}
	return out
}

// PermutationIndex tracks one digit's enumeration progress (spec
// §4.7 "PermutationIndex with permutations() and next()").
type PermutationIndex struct {
	Current   int
	Total     int
	Completed bool
}

// Next advances to the next value, wrapping to 0 and reporting true
// when it does (spec "next() wraps to 0 and sets completed").
func (pi *PermutationIndex) Next() bool {
	pi.Current++
	if pi.Current >= pi.Total {
		pi.Current = 0
		pi.Completed = true
		return true
	}
	pi.Completed = false
	return false
}

func permutationsOf(n *Node) int {
	switch n.Kind {
	case KindBoolean:
		if len(n.Children) == 0 {
			return 1
		}
		return len(valueChildren(n))
	case KindEnum:
		count := len(valueChildren(n))
		if count == 0 {
			return 1
		}
		return count
	case KindList:
		return listPermutationCount(n)
	default:
		return 1
	}
}

func listPermutationCount(n *Node) int {
	k := len(valueChildren(n))
	if k == 0 {
		return 1
	}
	total := 1 << uint(k)
	if total > MaxPermutations {
		total = MaxPermutations
	}
	return total
}

func valueChildren(n *Node) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == KindValue {
			out = append(out, c)
		}
	}
	return out
}

// PermutationState drives permutation-by-permutation enumeration over
// a (pruned) tree's flattened digit nodes (Boolean/Enum/List/Text),
// rightmost-digit-first odometer carry (spec §4.7 "PermutationState
// stores one index per node id ... odometer wrap bubbles upward").
//
// Nested inputs conditionally reachable beneath a not-yet-chosen
// parent option are approximated here as independently enumerable
// digits rather than a fully branch-dependent odometer: spec §9 leaves
// the generator's internal algorithm unspecified, and this flattening
// reproduces the documented flat §8 scenario (2 booleans * 3-option
// enum = 12 permutations) exactly — see DESIGN.md.
type PermutationState struct {
	digits    []*Node
	indices   []*PermutationIndex
	completed bool
}

// NewPermutationState builds enumeration state over root (normally
// pruned first).
func NewPermutationState(root *Node) *PermutationState {
	digits := digitNodes(root)
	indices := make([]*PermutationIndex, len(digits))
	for i, d := range digits {
		indices[i] = &PermutationIndex{Total: permutationsOf(d)}
	}
	ps := &PermutationState{digits: digits, indices: indices}
	if len(digits) == 0 {
		ps.completed = true
	}
	return ps
}

func digitNodes(n *Node) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(n *Node) {
		switch n.Kind {
		case KindBoolean, KindEnum, KindList, KindText:
			out = append(out, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return out
}

// Completed reports whether enumeration has wrapped back to the first
// permutation (spec "hasNext() is the negation of the root's completed").
func (ps *PermutationState) Completed() bool { return ps.completed }

// Next advances to the next permutation. A no-op once Completed.
func (ps *PermutationState) Next() {
	if ps.completed {
		return
	}
	for i := len(ps.indices) - 1; i >= 0; i-- {
		if !ps.indices[i].Next() {
			return
		}
	}
	ps.completed = true
}

// Values materializes path -> raw answer string for the current
// permutation, ready to feed resolver.Resolver's Exhaustive mode.
func (ps *PermutationState) Values() map[string]string {
	out := make(map[string]string, len(ps.digits))
	for i, d := range ps.digits {
		out[d.Path] = selectedValue(d, ps.indices[i].Current)
	}
	return out
}

func selectedValue(n *Node, current int) string {
	switch n.Kind {
	case KindBoolean:
		vals := valueChildren(n)
		if current < len(vals) && vals[current].Str == "yes" {
			return "true"
		}
		return "false"
	case KindEnum:
		vals := valueChildren(n)
		if current < len(vals) {
			return vals[current].Str
		}
		return ""
	case KindList:
		return listCombination(valueChildren(n), current)
	case KindText:
		vals := valueChildren(n)
		if len(vals) > 0 {
			return vals[0].Str
		}
		return ""
	default:
		return ""
	}
}

// listCombination maps permutation index 0 to the empty ("defaults")
// selection and every other index to a distinct bitmask subset of
// vals, per spec "starts with defaults".
func listCombination(vals []*Node, index int) string {
	if index == 0 || len(vals) == 0 {
		return ""
	}
	var chosen []string
	for i, v := range vals {
		if index&(1<<uint(i)) != 0 {
			chosen = append(chosen, v.Str)
		}
	}
	return strings.Join(chosen, ",")
}
