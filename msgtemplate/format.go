package msgtemplate

import (
	"fmt"
	"strings"
	"sync"
)

// segment is either literal text or a named hole.
type segment struct {
	text string // literal text, or the raw "{...}" of a hole
	name string // hole name; empty for literals
}

type parsed struct {
	segments []segment
	names    []string
}

var parsedCache sync.Map // string -> *parsed

func parse(template string) *parsed {
	if p, ok := parsedCache.Load(template); ok {
		return p.(*parsed)
	}

	p := &parsed{}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			p.segments = append(p.segments, segment{text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(template); i++ {
		ch := template[i]
		switch {
		case ch == '{' && i+1 < len(template) && template[i+1] == '{':
			lit.WriteByte('{')
			i++
		case ch == '}' && i+1 < len(template) && template[i+1] == '}':
			lit.WriteByte('}')
			i++
		case ch == '{':
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				lit.WriteString(template[i:])
				i = len(template)
				continue
			}
			raw := template[i : i+end+1]
			i += end
			name := holeName(raw)
			if name == "" {
				lit.WriteString(raw)
				continue
			}
			flush()
			p.segments = append(p.segments, segment{text: raw, name: name})
			p.names = append(p.names, name)
		default:
			lit.WriteByte(ch)
		}
	}
	flush()

	actual, _ := parsedCache.LoadOrStore(template, p)
	return actual.(*parsed)
}

// holeName strips braces, capture prefixes and format suffixes:
// "{@Order:j}" -> "Order".
func holeName(raw string) string {
	name := raw[1 : len(raw)-1]
	name = strings.TrimLeft(name, "@$")
	if i := strings.IndexAny(name, ":,"); i >= 0 {
		name = name[:i]
	}
	return strings.TrimSpace(name)
}

// Names returns the hole names of template in the order they appear,
// including repeats.
func Names(template string) []string {
	return parse(template).names
}

// Format substitutes args into the holes of template positionally: the i-th
// hole receives args[i] regardless of its name. Holes without a matching
// argument are left as written. "{{" and "}}" render as literal braces.
func Format(template string, args ...any) string {
	p := parse(template)
	if len(p.names) == 0 && len(p.segments) <= 1 {
		if len(p.segments) == 0 {
			return ""
		}
		return p.segments[0].text
	}

	var b strings.Builder
	b.Grow(len(template) + 16*len(args))
	hole := 0
	for _, s := range p.segments {
		if s.name == "" {
			b.WriteString(s.text)
			continue
		}
		if hole < len(args) {
			fmt.Fprint(&b, args[hole])
		} else {
			b.WriteString(s.text)
		}
		hole++
	}
	return b.String()
}
