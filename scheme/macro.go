// Copyright © 2025 The Wisp authors

package scheme

// Syntax-rules macros.  Matching supports the _ wildcard, literal
// identifiers, pattern variables, and one trailing ellipsis per list
// pattern which greedily captures the remaining elements.  Expansion is
// non-hygienic: captured forms and template identifiers are substituted
// directly with no renaming, so a macro can intentionally or
// accidentally capture bindings at its use site.

// macroBinding is the match result for one pattern variable: a single
// form, or the sequence captured by an ellipsis.
type macroBinding struct {
	one *Object
	seq []*Object
	rep bool
}

// parseSyntaxRules validates a (syntax-rules (literals...) (pattern
// template)...) form and compiles it to MacroData.
func (rt *Runtime) parseSyntaxRules(name string, form *Object) (*MacroData, error) {
	if !form.IsPair() || form.Car != rt.symRules {
		return nil, rt.ErrorfAt(TypeError, objectLoc(form), "define-syntax: expected a syntax-rules form")
	}
	rest := form.Cdr
	if !rest.IsPair() {
		return nil, rt.Errorf(TypeError, "syntax-rules: missing literals list")
	}
	literals := make(map[string]bool)
	for l := rest.Car; l != Nil; l = l.Cdr {
		if !l.IsPair() || !l.Car.IsSymbol() {
			return nil, rt.Errorf(TypeError, "syntax-rules: malformed literals list")
		}
		literals[l.Car.Str] = true
	}
	data := &MacroData{Name: name, Literals: literals}
	for r := rest.Cdr; r != Nil; r = r.Cdr {
		if !r.IsPair() {
			return nil, rt.Errorf(TypeError, "syntax-rules: improper rule list")
		}
		rule := r.Car
		if !rule.IsPair() || !rule.Car.IsPair() || !rule.Cdr.IsPair() || rule.Cdr.Cdr != Nil {
			return nil, rt.ErrorfAt(TypeError, objectLoc(rule), "syntax-rules: each rule must be (pattern template)")
		}
		data.Rules = append(data.Rules, MacroRule{Pattern: rule.Car, Template: rule.Cdr.Car})
	}
	if len(data.Rules) == 0 {
		return nil, rt.Errorf(TypeError, "syntax-rules: at least one rule required")
	}
	return data, nil
}

// expandMacro matches form against the macro's rules in order and
// instantiates the first matching template.  The result carries a
// reference owned by the caller.
func (rt *Runtime) expandMacro(mac, form *Object) (*Object, error) {
	md := mac.Macro
	for _, rule := range md.Rules {
		binds := make(map[string]*macroBinding)
		// The keyword position of the pattern is ignored, matching only
		// the argument forms.
		if rt.matchPattern(rule.Pattern.Cdr, form.Cdr, md.Literals, binds) {
			return rt.expandTemplate(rule.Template, binds)
		}
	}
	return nil, rt.ErrorfAt(ExpansionError, objectLoc(form), "%s: no syntax rule matches %s", md.Name, form)
}

func (rt *Runtime) matchPattern(pat, form *Object, literals map[string]bool, binds map[string]*macroBinding) bool {
	switch {
	case pat.IsSymbol():
		if pat == rt.symWild {
			return true
		}
		if literals[pat.Str] {
			return form.IsSymbol() && form.Str == pat.Str
		}
		binds[pat.Str] = &macroBinding{one: form}
		return true
	case pat == Nil:
		return form == Nil
	case pat.IsPair():
		if pat.Cdr.IsPair() && pat.Cdr.Car == rt.symEllipsis {
			if pat.Cdr.Cdr != Nil {
				// Only a trailing ellipsis is supported; anything after
				// it cannot match.
				return false
			}
			return rt.matchEllipsis(pat.Car, form, literals, binds)
		}
		if !form.IsPair() {
			return false
		}
		return rt.matchPattern(pat.Car, form.Car, literals, binds) &&
			rt.matchPattern(pat.Cdr, form.Cdr, literals, binds)
	default:
		return literalEqual(pat, form)
	}
}

// matchEllipsis matches (sub ...) against the whole remaining form
// list, binding every variable of sub to the sequence of its captures.
func (rt *Runtime) matchEllipsis(sub, form *Object, literals map[string]bool, binds map[string]*macroBinding) bool {
	vars := patternVars(rt, sub, literals, nil)
	seqs := make(map[string]*macroBinding, len(vars))
	for _, v := range vars {
		seqs[v] = &macroBinding{rep: true}
	}
	for rest := form; rest != Nil; rest = rest.Cdr {
		if !rest.IsPair() {
			return false
		}
		element := make(map[string]*macroBinding)
		if !rt.matchPattern(sub, rest.Car, literals, element) {
			return false
		}
		for _, v := range vars {
			b := element[v]
			if b == nil {
				return false
			}
			seqs[v].seq = append(seqs[v].seq, b.one)
		}
	}
	for _, v := range vars {
		binds[v] = seqs[v]
	}
	return true
}

// patternVars collects the variables bound by pat.  A variable that
// occurs more than once is reported once; matchEllipsis and
// expandEllipsis index their bindings by name and must not process a
// name twice.
func patternVars(rt *Runtime, pat *Object, literals map[string]bool, acc []string) []string {
	switch {
	case pat.IsSymbol():
		if pat == rt.symWild || pat == rt.symEllipsis || literals[pat.Str] {
			return acc
		}
		for _, name := range acc {
			if name == pat.Str {
				return acc
			}
		}
		return append(acc, pat.Str)
	case pat.IsPair():
		acc = patternVars(rt, pat.Car, literals, acc)
		return patternVars(rt, pat.Cdr, literals, acc)
	default:
		return acc
	}
}

// literalEqual compares datum patterns (ints, chars, strings, booleans)
// against input forms.
func literalEqual(pat, form *Object) bool {
	if pat == form {
		return true
	}
	if pat.desc != form.desc {
		return false
	}
	switch pat.desc {
	case typeInt:
		return pat.Int == form.Int
	case typeChar:
		return pat.Char == form.Char
	case typeString:
		return pat.Str == form.Str
	}
	return false
}

// expandTemplate instantiates tmpl with binds.  Captured forms and
// template atoms are shared, not copied; only the list spine is fresh.
func (rt *Runtime) expandTemplate(tmpl *Object, binds map[string]*macroBinding) (*Object, error) {
	pin := rt.Heap.NewPin()
	defer pin.Drop()
	out, err := rt.expandForm(pin, tmpl, binds)
	if err != nil {
		return nil, err
	}
	return pin.Escape(out), nil
}

// expandForm returns an object rooted either by pin or by the macro and
// input forms the caller keeps alive.
func (rt *Runtime) expandForm(pin *Pin, tmpl *Object, binds map[string]*macroBinding) (*Object, error) {
	switch {
	case tmpl.IsSymbol():
		if b, ok := binds[tmpl.Str]; ok {
			if b.rep {
				return nil, rt.Errorf(ExpansionError, "pattern variable %s captured by ellipsis used without ellipsis", tmpl.Str)
			}
			return b.one, nil
		}
		return tmpl, nil
	case tmpl.IsPair():
		return rt.expandList(pin, tmpl, binds)
	default:
		return tmpl, nil
	}
}

func (rt *Runtime) expandList(pin *Pin, tmpl *Object, binds map[string]*macroBinding) (*Object, error) {
	var elems []*Object
	rest := tmpl
	for rest.IsPair() {
		if rest.Cdr.IsPair() && rest.Cdr.Car == rt.symEllipsis {
			expanded, err := rt.expandEllipsis(pin, rest.Car, binds)
			if err != nil {
				return nil, err
			}
			elems = append(elems, expanded...)
			rest = rest.Cdr.Cdr
			continue
		}
		v, err := rt.expandForm(pin, rest.Car, binds)
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
		rest = rest.Cdr
	}
	tail := rest
	if rest != Nil {
		v, err := rt.expandForm(pin, rest, binds)
		if err != nil {
			return nil, err
		}
		tail = v
	}
	out := tail
	for i := len(elems) - 1; i >= 0; i-- {
		out = pin.Give(rt.NewPair(elems[i], out))
	}
	return out, nil
}

// expandEllipsis instantiates sub once per captured element of its
// ellipsis variables.
func (rt *Runtime) expandEllipsis(pin *Pin, sub *Object, binds map[string]*macroBinding) ([]*Object, error) {
	vars := patternVars(rt, sub, nil, nil)
	n := -1
	var reps []string
	for _, v := range vars {
		b, ok := binds[v]
		if !ok || !b.rep {
			continue
		}
		reps = append(reps, v)
		if n < 0 {
			n = len(b.seq)
		} else if n != len(b.seq) {
			return nil, rt.Errorf(ExpansionError, "mismatched ellipsis capture lengths for %s", v)
		}
	}
	if len(reps) == 0 {
		return nil, rt.Errorf(ExpansionError, "ellipsis template %s has no ellipsis variables", sub)
	}
	var out []*Object
	for i := 0; i < n; i++ {
		saved := make(map[string]*macroBinding, len(reps))
		for _, v := range reps {
			saved[v] = binds[v]
			binds[v] = &macroBinding{one: binds[v].seq[i]}
		}
		expanded, err := rt.expandForm(pin, sub, binds)
		for _, v := range reps {
			binds[v] = saved[v]
		}
		if err != nil {
			return nil, err
		}
		out = append(out, expanded)
	}
	return out, nil
}
