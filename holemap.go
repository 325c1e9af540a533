// Hypertext template engine that knows which context its holes are in!
// Copyright (C) 2017-2018 Marcus Perlick
package hyxic

import (
	"fmt"
	"reflect"
	"strings"
)

// Unmapped lists the named holes of a program that InitHoleMap could
// not assign to any struct field.
type Unmapped struct {
	P     *Program
	Holes []string
}

func (u *Unmapped) Error() string {
	return fmt.Sprintf("unmapped holes in template '%s': %s",
		u.P.Name,
		strings.Join(u.Holes, ", "))
}

type tagMode int

const (
	tagNone tagMode = iota
	tagMand
	tagOpt
	tagIgnore
)

func parseTag(tag string) (mode tagMode, hole string, err error) {
	mode = tagMand
	if len(tag) == 0 {
		return tagNone, "", nil
	}
	sep := strings.IndexRune(tag, ' ')
	if sep < 0 {
		return mode, tag, nil
	}
	if sep == 0 {
		return mode, "", fmt.Errorf("hyxic hole map: tag format '%s'", tag)
	}
	hole = tag[:sep]
	if hole == "-" {
		return tagIgnore, hole, nil
	}
	switch tag[sep+1:] {
	case "opt":
		mode = tagOpt
	default:
		return mode, "", fmt.Errorf("hyxic hole map: illegal tag option '%s'",
			tag[sep+1:])
	}
	return mode, hole, nil
}

// IdName is the identity name mapping for InitHoleMap.
func IdName(nm string) string { return nm }

var emptyIndices = []int{}

func isHoleIdxs(f *reflect.StructField,
	mapNames func(string) string) (hole string, opt bool, err error) {
	mode, hole, err := parseTag(f.Tag.Get("hyxic"))
	if err != nil {
		return "", false, err
	}
	if mode == tagIgnore {
		return "", false, nil
	}
	opt = mode == tagOpt
	if len(hole) == 0 && mapNames != nil {
		hole = mapNames(f.Name)
	}
	return hole, opt, nil
}

// InitHoleMap fills the []int fields of *hmap with the action indices
// of the program's named holes, so binding does not look names up at
// render time. The hole name comes from the field's `hyxic` tag or,
// when the tag is absent, from mapNames applied to the field name. A
// tag option "opt" makes a hole optional; optional holes missing from
// the program get an empty index list. An anonymous *Program field is
// set to the program itself. Program holes not mapped by any field are
// returned as *Unmapped, or nil if the map is complete.
func InitHoleMap(hmap interface{}, p *Program, mapNames func(string) string) *Unmapped {
	hmTy := reflect.TypeOf(hmap).Elem()
	hm := reflect.ValueOf(hmap).Elem()
	if hmTy.Kind() != reflect.Struct {
		panic("cannot make hole map in " + hmTy.Kind().String())
	}
	mapped := make(map[string]bool)
	for fidx := 0; fidx < hmTy.NumField(); fidx++ {
		sfTy := hmTy.Field(fidx)
		if sfTy.Anonymous && sfTy.Type == reflect.TypeOf(p) {
			hm.Field(fidx).Set(reflect.ValueOf(p))
			continue
		}
		hole, opt, err := isHoleIdxs(&sfTy, mapNames)
		if err != nil {
			panic("failed to index field: " + err.Error())
		}
		if len(hole) == 0 {
			continue
		}
		if idxs := p.HoleIdxs(hole); idxs != nil {
			mapped[hole] = true
			hm.Field(fidx).Set(reflect.ValueOf(idxs))
		} else if opt {
			hm.Field(fidx).Set(reflect.ValueOf(emptyIndices))
		}
	}
	if len(mapped) == len(p.holeAt) {
		return nil
	}
	um := &Unmapped{P: p}
	for _, nm := range p.Holes() {
		if !mapped[nm] {
			um.Holes = append(um.Holes, nm)
		}
	}
	return um
}

// MustHoleMap panics when InitHoleMap leaves holes unmapped.
func MustHoleMap(hmap interface{}, p *Program, mapNames func(string) string) {
	if missing := InitHoleMap(hmap, p, mapNames); missing != nil {
		panic(missing)
	}
}

// MapAll turns an Unmapped result into a panic.
func MapAll(unmapped *Unmapped) {
	if unmapped != nil {
		panic(unmapped)
	}
}
