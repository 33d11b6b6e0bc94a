package cachepolicy

import (
	"fmt"
	"reflect"
	"strings"
)

// maxKeyDepth bounds the walk over composite key arguments.
const maxKeyDepth = 16

// KeySpec declares, at the call site, which cache an entry lives in and which values
// identify it.
type KeySpec struct {
	Cache  string
	Target string
	Method string
	Args   []any
}

// Key renders the entry key for the spec. It panics with *KeyError when an argument
// cannot be rendered deterministically.
func (k KeySpec) Key() string {
	return GenerateKey(k.Target, k.Method, k.Args...)
}

// GenerateKey builds "target:method:arg1,arg2," from its inputs. Equal inputs always
// produce equal keys, across processes too. Top-level pointers are dereferenced.
//
// Arguments are rendered with %v and joined without quoting or type tags, so some
// distinct inputs share a key: ("a,b") and ("a", "b"), 1 and "1", nil and "<nil>". Call
// sites whose arguments can collide this way should pass a single composite value or
// distinct Method names instead.
//
// Arguments holding funcs, channels, unsafe pointers or nested non-nil pointers render
// differently from run to run; they are programming errors and cause a panic with *KeyError.
func GenerateKey(target, method string, args ...any) string {
	var b strings.Builder
	b.WriteString(target)
	b.WriteByte(':')
	b.WriteString(method)
	b.WriteByte(':')
	for i, arg := range args {
		v := reflect.ValueOf(arg)
		for v.Kind() == reflect.Pointer && !v.IsNil() {
			v = v.Elem()
		}
		if err := checkKeyable(v, 0); err != nil {
			err.Index = i
			panic(err)
		}
		if v.IsValid() && v.Kind() != reflect.Pointer {
			fmt.Fprintf(&b, "%v", v.Interface())
		} else {
			b.WriteString("<nil>")
		}
		b.WriteByte(',')
	}
	return b.String()
}

func checkKeyable(v reflect.Value, depth int) *KeyError {
	if !v.IsValid() {
		return nil
	}
	if depth > maxKeyDepth {
		return &KeyError{Kind: v.Kind(), Reason: "argument nested too deeply"}
	}
	switch v.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Uintptr:
		return &KeyError{Kind: v.Kind(), Reason: "value has no stable string form"}
	case reflect.Pointer:
		if depth > 0 && !v.IsNil() {
			return &KeyError{Kind: v.Kind(), Reason: "nested pointer renders as an address"}
		}
	case reflect.Interface:
		if !v.IsNil() {
			return checkKeyable(v.Elem(), depth+1)
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := checkKeyable(v.Index(i), depth+1); err != nil {
				return err
			}
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if err := checkKeyable(iter.Key(), depth+1); err != nil {
				return err
			}
			if err := checkKeyable(iter.Value(), depth+1); err != nil {
				return err
			}
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if err := checkKeyable(v.Field(i), depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
