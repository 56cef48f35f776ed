// Package resolver implements the §4.6 Input resolver: binds every
// Input node the Walker reaches to a Value, in one of three modes
// (batch answers, an interactive Prompter, or a precomputed
// permutation), validates it against the input's kind/options/min/max,
// and writes it into the Context.
//
// Grounded on the same funxy/internal/evaluator environment-binding
// shape used elsewhere in this module, composed here with
// pkg/prompter.Prompter for the interactive branch, matching spec §6's
// prompt(question) -> answer contract.
package resolver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/funvibe/archctl/internal/context"
	"github.com/funvibe/archctl/internal/diag"
	"github.com/funvibe/archctl/internal/exprparser"
	"github.com/funvibe/archctl/internal/script"
	"github.com/funvibe/archctl/internal/value"
	"github.com/funvibe/archctl/internal/walker"
	"github.com/funvibe/archctl/pkg/prompter"
)

// Mode selects how Resolver obtains an answer for an Input it has not
// already been told to skip.
type Mode int

const (
	ModeBatch Mode = iota
	ModeInteractive
	ModeExhaustive
)

// Resolver implements walker.Hooks for a resolve-only pass: it never
// generates output, only binds inputs (spec §4.6).
type Resolver struct {
	Mode Mode

	// Batch holds path (or bare input name) -> raw answer, used when
	// Mode is ModeBatch.
	Batch map[string]string

	// Prompter is consulted when Mode is ModeInteractive.
	Prompter prompter.Prompter

	// Permutation holds path -> raw answer for the single permutation
	// currently being realized, used when Mode is ModeExhaustive. The
	// caller (internal/inputtree's enumerator) is responsible for
	// repopulating this map between successive walks.
	Permutation map[string]string
}

// VisitOutput makes Resolver a no-op over Output subtrees: resolving
// inputs never emits files (spec §4.2 data flow: resolver and output
// generator are separate walks).
func (r *Resolver) VisitOutput(ctx *context.Context, out *script.Output) error {
	return walker.ErrSkipSubtree
}

// VisitInput implements walker.Hooks.
func (r *Resolver) VisitInput(ctx *context.Context, in *script.Input) error {
	path := ctx.Path(in.Name)

	raw, has, err := r.answer(in, path)
	if err != nil {
		return err
	}

	var v value.Value
	var src context.Source
	if has {
		v, err = typedValue(in, raw)
		if err != nil {
			return diag.New(diag.KindResolutionError, err.Error(), "", 0, path)
		}
		src = context.SourceExplicit
	} else {
		v, err = evaluateDefault(in, ctx)
		if err != nil {
			return err
		}
		if v.IsEmpty() && !in.Optional {
			return diag.New(diag.KindResolutionError, fmt.Sprintf("required input %q has no value", path), "", 0, path)
		}
		src = context.SourceDefault
	}

	if !v.IsEmpty() {
		if err := validateValue(in, v); err != nil {
			return diag.New(diag.KindResolutionError, err.Error(), "", 0, path)
		}
	}

	ctx.Put(path, v, src)
	ctx.RegisterAlias(in.Name, path)
	return nil
}

func (r *Resolver) answer(in *script.Input, path string) (string, bool, error) {
	switch r.Mode {
	case ModeBatch:
		if raw, ok := r.Batch[path]; ok {
			return raw, true, nil
		}
		raw, ok := r.Batch[in.Name]
		return raw, ok, nil
	case ModeExhaustive:
		raw, ok := r.Permutation[path]
		return raw, ok, nil
	case ModeInteractive:
		return r.prompt(in, path)
	default:
		return "", false, fmt.Errorf("resolver: unknown mode %d", r.Mode)
	}
}

// prompt asks the Prompter for an answer, validating/normalizing it
// per spec §4.6 until a well-formed one arrives or the user cancels.
// An empty line defers to the declared default.
func (r *Resolver) prompt(in *script.Input, path string) (string, bool, error) {
	if r.Prompter == nil {
		return "", false, fmt.Errorf("resolver: interactive mode requires a Prompter")
	}
	q := prompter.Question{Kind: promptKind(in.Kind), Path: path, Label: in.Label, Help: in.Help}
	for _, opt := range in.Options {
		q.Options = append(q.Options, opt.Value)
	}
	if in.Placeholder != "" {
		q.Default = in.Placeholder
	}

	for {
		ans, err := r.Prompter.Prompt(q)
		if err != nil {
			if _, ok := err.(*prompter.CancelledError); ok {
				return "", false, diag.Cancelled()
			}
			return "", false, err
		}
		if strings.TrimSpace(ans) == "" {
			return "", false, nil
		}
		norm, ok := normalizeAnswer(in, ans)
		if !ok {
			continue // re-prompt; the label/options are already on screen
		}
		return norm, true, nil
	}
}

func promptKind(k script.InputKind) prompter.Kind {
	switch k {
	case script.KindBoolean:
		return prompter.KindBoolean
	case script.KindEnum:
		return prompter.KindEnum
	case script.KindList:
		return prompter.KindList
	default:
		return prompter.KindText
	}
}

// normalizeAnswer resolves ordinals to option values for enum/list and
// canonicalizes boolean spellings, per spec §4.6's validation loop.
func normalizeAnswer(in *script.Input, ans string) (string, bool) {
	switch in.Kind {
	case script.KindBoolean:
		switch strings.ToLower(strings.TrimSpace(ans)) {
		case "y", "yes", "true":
			return "true", true
		case "n", "no", "false":
			return "false", true
		default:
			return "", false
		}
	case script.KindEnum:
		if idx, err := strconv.Atoi(strings.TrimSpace(ans)); err == nil {
			if idx < 1 || idx > len(in.Options) {
				return "", false
			}
			return in.Options[idx-1].Value, true
		}
		if _, ok := matchOption(in, ans); ok {
			return ans, true
		}
		return "", false
	case script.KindList:
		parts := strings.Split(ans, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if idx, err := strconv.Atoi(p); err == nil {
				if idx < 1 || idx > len(in.Options) {
					return "", false
				}
				out = append(out, in.Options[idx-1].Value)
				continue
			}
			if _, ok := matchOption(in, p); !ok {
				return "", false
			}
			out = append(out, p)
		}
		return strings.Join(out, ","), true
	default:
		return ans, true
	}
}

// matchOption is exact-match unless the input declares normalize, per
// spec §9's open-question resolution (see DESIGN.md).
func matchOption(in *script.Input, s string) (string, bool) {
	for _, o := range in.Options {
		if o.Value == s {
			return o.Value, true
		}
		if in.Normalize == "lowercase" && strings.EqualFold(o.Value, s) {
			return o.Value, true
		}
	}
	return "", false
}

func typedValue(in *script.Input, raw string) (value.Value, error) {
	switch in.Kind {
	case script.KindBoolean:
		b, err := value.ParseBoolString(raw)
		if err != nil {
			return value.Value{}, err
		}
		return value.OfBool(b), nil
	case script.KindList:
		return value.ParseList(raw, false), nil
	default:
		return value.OfString(raw), nil
	}
}

func validateValue(in *script.Input, v value.Value) error {
	switch in.Kind {
	case script.KindEnum:
		s, err := v.AsString()
		if err != nil {
			return err
		}
		if len(in.Options) > 0 {
			if _, ok := matchOption(in, s); !ok {
				return fmt.Errorf("%q is not a valid option", s)
			}
		}
	case script.KindList:
		items, err := v.AsList()
		if err != nil {
			return err
		}
		if len(in.Options) > 0 {
			for _, it := range items {
				if _, ok := matchOption(in, it); !ok {
					return fmt.Errorf("%q is not a valid option", it)
				}
			}
		}
		if in.Min > 0 && len(items) < in.Min {
			return fmt.Errorf("selection of size %d is below min=%d", len(items), in.Min)
		}
		if in.Max > 0 && len(items) > in.Max {
			return fmt.Errorf("selection of size %d exceeds max=%d", len(items), in.Max)
		}
	}
	return nil
}

// evaluateDefault evaluates in.Default against ctx's snapshot, or
// returns an Empty value when no default was declared.
func evaluateDefault(in *script.Input, ctx *context.Context) (value.Value, error) {
	if in.Default == nil {
		return value.Empty("no default declared"), nil
	}
	v, err := exprparser.Evaluate(in.Default, ctx.Snapshot())
	if err != nil {
		pos := in.Position()
		return value.Value{}, diag.New(diag.KindUnsetVariable, err.Error(), pos.Script, pos.Line, in.Name)
	}
	return v, nil
}
