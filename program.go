// Hypertext template engine that knows which context its holes are in!
// Copyright (C) 2017-2018 Marcus Perlick
package hyxic

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
)

// Program is the compiled form of a template: an ordered list of emit
// actions, literal fragments merged and immediate scalar holes already
// folded in. A Program is immutable once Classify returns it and may
// be shared freely; per-render state lives in Binding, EscWriter and
// Guard instances.
type Program struct {
	Name     string
	acts     []action
	holeAt   map[string][]int
	holeCnt  int
}

func newProgram(name string) *Program {
	return &Program{Name: name, holeAt: make(map[string][]int)}
}

// addLit appends literal bytes, merging with a preceding literal
// fragment the same way goxic merges fix content.
func (p *Program) addLit(b []byte) {
	if len(b) == 0 {
		return
	}
	if n := len(p.acts); n > 0 {
		if prev, ok := p.acts[n-1].(litAct); ok {
			merged := make(litAct, len(prev)+len(b))
			copy(merged, prev)
			copy(merged[len(prev):], b)
			p.acts[n-1] = merged
			return
		}
	}
	cp := make(litAct, len(b))
	copy(cp, b)
	p.acts = append(p.acts, cp)
}

func (p *Program) addHole(a *holeAct) {
	a.idx = len(p.acts)
	p.acts = append(p.acts, a)
	p.holeCnt++
	if len(a.name) > 0 {
		p.holeAt[a.name] = append(p.holeAt[a.name], a.idx)
	}
}

// HoleNum returns the number of hole actions left in the program after
// folding.
func (p *Program) HoleNum() int { return p.holeCnt }

// Holes returns the names of all named holes.
func (p *Program) Holes() []string {
	res := make([]string, 0, len(p.holeAt))
	for nm := range p.holeAt {
		res = append(res, nm)
	}
	return res
}

// HoleIdxs returns the action indices a named hole will be emitted at.
func (p *Program) HoleIdxs(name string) []int {
	res, ok := p.holeAt[name]
	if !ok {
		return nil
	}
	return res
}

// HoleContext reports the escaping context of the hole at action index
// idx.
func (p *Program) HoleContext(idx int) (Context, bool) {
	if idx < 0 || idx >= len(p.acts) {
		return 0, false
	}
	a, ok := p.acts[idx].(*holeAct)
	if !ok {
		return 0, false
	}
	return a.ctx, true
}

// Static returns the whole output if the program has no holes at all.
func (p *Program) Static() ([]byte, bool) {
	if p.holeCnt > 0 {
		return nil, false
	}
	switch len(p.acts) {
	case 0:
		return []byte{}, true
	case 1:
		return []byte(p.acts[0].(litAct)), true
	}
	panic("program " + p.Name + " without holes has many literal fragments")
}

// EmitError carries the byte count written before an emit failed. Emit
// methods panic with it; CatchEmit and Binding.Render recover it into
// a normal error return.
type EmitError struct {
	Count int
	Err   error
}

func (ee EmitError) Error() string { return ee.Err.Error() }

func (ee EmitError) Unwrap() error { return ee.Err }

// CatchEmit emits cnt to wr and turns an EmitError panic back into an
// (n, err) result.
func CatchEmit(cnt Content, wr io.Writer) (n int, err error) {
	defer func() {
		if rek := recover(); rek != nil {
			if ee, ok := rek.(EmitError); ok {
				n = ee.Count
				err = ee.Err
			} else {
				panic(rek)
			}
		}
	}()
	n = cnt.Emit(wr)
	return n, nil
}

// Binding keeps the hole values for one render of a specific Program.
// Use Program.NewBinding to create one. A Binding is itself Content,
// so a fully bound template can fill a content hole of another
// template without being escaped twice.
type Binding struct {
	prog  *Program
	fill  []interface{}
	bound []bool
}

func (p *Program) NewBinding(reuse *Binding) *Binding {
	if reuse == nil {
		reuse = new(Binding)
	}
	reuse.prog = p
	reuse.fill = make([]interface{}, len(p.acts))
	reuse.bound = make([]bool, len(p.acts))
	return reuse
}

func (bt *Binding) Program() *Program { return bt.prog }

// Bind sets the value for the holes at the given action indices.
func (bt *Binding) Bind(idxs []int, v interface{}) {
	for _, i := range idxs {
		bt.fill[i] = v
		bt.bound[i] = true
	}
}

func (bt *Binding) BindName(name string, v interface{}) error {
	idxs := bt.prog.HoleIdxs(name)
	if idxs == nil {
		return fmt.Errorf("no hole: '%s'", name)
	}
	bt.Bind(idxs, v)
	return nil
}

func (bt *Binding) BindIfName(name string, v interface{}) {
	if idxs := bt.prog.HoleIdxs(name); idxs != nil {
		bt.Bind(idxs, v)
	}
}

func (bt *Binding) BindMatch(pattern *regexp.Regexp, v interface{}) {
	for _, nm := range bt.prog.Holes() {
		if pattern.MatchString(nm) {
			bt.BindName(nm, v)
		}
	}
}

type render struct {
	tmpl string
	esc  *EscWriter
	bt   *Binding
}

func (rd *render) value(a *holeAct) (interface{}, bool) {
	if rd.bt != nil && rd.bt.bound[a.idx] {
		return rd.bt.fill[a.idx], true
	}
	if a.immediate {
		return a.val, true
	}
	return nil, false
}

type action interface {
	emit(rd *render) int
}

type litAct []byte

func (a litAct) emit(rd *render) int {
	n, err := rd.esc.Bypass(a)
	if err != nil {
		panic(EmitError{n, err})
	}
	return n
}

type holeAct struct {
	idx       int
	ctx       Context
	name      string
	attr      string
	val       interface{}
	immediate bool
}

func isScriptAttr(name string) bool {
	return len(name) >= 2 &&
		(name[0] == 'o' || name[0] == 'O') &&
		(name[1] == 'n' || name[1] == 'N')
}

func (a *holeAct) emit(rd *render) int {
	v, ok := rd.value(a)
	if !ok {
		panic(EmitError{0, fmt.Errorf("unbound hole '%s' in template '%s'",
			a.name, rd.tmpl)})
	}
	switch a.ctx {
	case CtxContent:
		return emitContent(rd.esc, v)
	case CtxComment:
		guarded := &EscWriter{Escape: CommentGuard(rd.esc.Escape)}
		return emitContent(guarded, v)
	case CtxAttrDouble, CtxAttrSingle:
		if isScriptAttr(a.attr) {
			var buf bytes.Buffer
			emitScript(&buf, v)
			n, err := rd.esc.Write(buf.Bytes())
			if err != nil {
				panic(EmitError{n, err})
			}
			return n
		}
		return emitAttrValue(rd.esc, v)
	case CtxAttrUnquoted:
		return emitUnquotedAttr(rd.esc, a.attr, v)
	case CtxInsideTag:
		return emitTagExpansion(rd.esc, v)
	case CtxScript:
		return emitScript(ScriptGuard(rd.esc.Escape), v)
	case CtxStyle:
		return emitStyle(StyleGuard(rd.esc.Escape), v)
	}
	panic(EmitError{0, fmt.Errorf("invalid context %d", a.ctx)})
}

// Emit renders the program with the bound values to out. It panics
// with an EmitError on unbound named holes and on sink errors; use
// Render for an error return.
func (bt *Binding) Emit(out io.Writer) int {
	rd := render{
		tmpl: bt.prog.Name,
		esc:  &EscWriter{Escape: out},
		bt:   bt,
	}
	n := 0
	for _, act := range bt.prog.acts {
		n += act.emit(&rd)
	}
	return n
}

// Render is the error-returning form of Emit.
func (bt *Binding) Render(out io.Writer) (int, error) {
	return CatchEmit(bt, out)
}
