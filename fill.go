// Hypertext template engine that knows which context its holes are in!
// Copyright (C) 2017-2018 Marcus Perlick
package hyxic

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Holes whose name starts with FillMarker can be bound from a data
// structure with Binding.Fill. The rest of the name is an optional
// format verb followed by a FillPathSep separated path into the data.
const (
	FillMarker  = "$"
	FillPathSep = "."
)

var noValue = reflect.Value{}

func fillResolve(path string, data interface{}) (bindThis interface{}, err error) {
	psegs := strings.Split(path, FillPathSep)
	for si, seg := range psegs {
		rval := reflect.ValueOf(data)
		for rval.Kind() == reflect.Ptr || rval.Kind() == reflect.Interface {
			if rval.IsNil() {
				return nil, nil
			}
			rval = rval.Elem()
		}
		if idx, err := strconv.Atoi(seg); err == nil {
			switch rval.Kind() {
			case reflect.Array, reflect.Slice:
				if idx < 0 {
					idx = rval.Len() + idx
				}
				if idx < 0 || idx >= rval.Len() {
					return nil, nil
				}
				data = rval.Index(idx).Interface()
			default:
				return nil, fmt.Errorf(
					"segment %d in path '%s' requires slice or array, got %s",
					si, path, rval.Kind())
			}
		} else {
			switch rval.Kind() {
			case reflect.Map:
				tmp := rval.MapIndex(reflect.ValueOf(seg))
				if tmp == noValue {
					return nil, nil
				}
				data = tmp.Interface()
			case reflect.Struct:
				tmp := rval.FieldByName(seg)
				if tmp == noValue {
					return nil, nil
				}
				data = tmp.Interface()
			default:
				return nil, fmt.Errorf(
					"segment %d in path '%s' requires map or struct, got %s",
					si, path, rval.Kind())
			}
		}
	}
	return data, nil
}

func fillSplitSpec(spec string) (format string, path string) {
	sep := strings.Index(spec, " ")
	if sep > 0 {
		return spec[:sep], spec[sep+1:]
	}
	return "", spec
}

// Fill binds all marker holes of the template from data. A hole named
// "$a.b.0" resolves the path a → b → index 0 through maps, structs and
// slices; negative indices count from the end. With a format verb, as
// in "$%04d count", the resolved value is bound as the formatted
// string. Paths that resolve to nothing are counted in missed. Holes
// that already have a value are skipped unless overwrite is set.
func (bt *Binding) Fill(data interface{}, overwrite bool) (missed int, err error) {
	for _, nm := range bt.prog.Holes() {
		if !strings.HasPrefix(nm, FillMarker) {
			continue
		}
		idxs := bt.prog.HoleIdxs(nm)
		if !overwrite && bt.bound[idxs[0]] {
			continue
		}
		format, path := fillSplitSpec(nm[len(FillMarker):])
		bv, err := fillResolve(path, data)
		if err != nil {
			return -1, err
		}
		if bv == nil {
			missed++
		} else if format == "" {
			bt.Bind(idxs, bv)
		} else {
			bt.Bind(idxs, fmt.Sprintf(format, bv))
		}
	}
	return missed, nil
}
