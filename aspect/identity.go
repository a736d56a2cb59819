package aspect

import (
	"reflect"
	"runtime"
	"strings"
	"sync"

	"github.com/jonwraymond/logaspect/observe"
)

var identities sync.Map // uintptr -> observe.MethodMeta

// Identify returns the method identity of fn, a function or method value.
// Assembly is the package path, Class the receiver type name (empty for plain
// functions and closures) and Method the function name. Results are cached
// per code pointer.
func Identify(fn any) (observe.MethodMeta, error) {
	if fn == nil {
		return observe.MethodMeta{}, ErrNilMethod
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return observe.MethodMeta{}, ErrNotFunc
	}
	if v.IsNil() {
		return observe.MethodMeta{}, ErrNilMethod
	}

	pc := v.Pointer()
	if m, ok := identities.Load(pc); ok {
		return m.(observe.MethodMeta), nil
	}

	var meta observe.MethodMeta
	if f := runtime.FuncForPC(pc); f != nil {
		meta = parseFuncName(f.Name())
	}
	if meta.Method == "" {
		meta.Method = "func"
	}
	m, _ := identities.LoadOrStore(pc, meta)
	return m.(observe.MethodMeta), nil
}

// parseFuncName splits a runtime function name such as
// "example.com/shop.(*Cart).Checkout-fm" into its identity triple.
func parseFuncName(name string) observe.MethodMeta {
	name = strings.TrimSuffix(name, "-fm")
	name = stripTypeArgs(name)

	// the package path ends at the first dot after the last slash
	pkgEnd := strings.LastIndexByte(name, '/') + 1
	dot := strings.IndexByte(name[pkgEnd:], '.')
	if dot < 0 {
		return observe.MethodMeta{Method: name}
	}
	meta := observe.MethodMeta{Assembly: name[:pkgEnd+dot]}
	rest := name[pkgEnd+dot+1:]

	head, tail, found := strings.Cut(rest, ".")
	switch {
	case !found:
		meta.Method = rest
	case strings.HasPrefix(head, "(*"):
		meta.Class = strings.TrimSuffix(strings.TrimPrefix(head, "(*"), ")")
		meta.Method = tail
	case isClosureSuffix(tail):
		// closure inside a plain function: "Outer.func1"
		meta.Method = rest
	default:
		meta.Class = head
		meta.Method = tail
	}
	return meta
}

// isClosureSuffix reports whether s names a closure segment such as "func1"
// or "func1.2".
func isClosureSuffix(s string) bool {
	seg, _, _ := strings.Cut(s, ".")
	if num, ok := strings.CutPrefix(seg, "func"); ok {
		seg = num
	}
	if seg == "" {
		return false
	}
	for _, r := range seg {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// stripTypeArgs removes generic instantiation markers like "[...]".
func stripTypeArgs(name string) string {
	for {
		open := strings.IndexByte(name, '[')
		if open < 0 {
			return name
		}
		depth, end := 0, -1
		for i := open; i < len(name); i++ {
			switch name[i] {
			case '[':
				depth++
			case ']':
				depth--
			}
			if depth == 0 {
				end = i
				break
			}
		}
		if end < 0 {
			return name[:open]
		}
		name = name[:open] + name[end+1:]
	}
}
