package runtime

import (
	"regexp"
	"strings"
)

// RegExpObject wraps the host regular expression engine. The matching
// semantics are treated as a black box; source and flags round-trip
// faithfully.
type RegExpObject struct {
	*BaseObject
	Source string
	Flags  string
	Re     *regexp.Regexp

	// LastIndex backs the `g`/`y` stateful matching protocol.
	LastIndex int
}

// NewRegExp compiles a script regular expression literal.
func NewRegExp(cx *Context, proto Scriptable, source, flags string) (*RegExpObject, error) {
	goPattern := translateRegexp(source)
	var prefix string
	if strings.ContainsRune(flags, 'i') {
		prefix += "i"
	}
	if strings.ContainsRune(flags, 'm') {
		prefix += "m"
	}
	if strings.ContainsRune(flags, 's') {
		prefix += "s"
	}
	if prefix != "" {
		goPattern = "(?" + prefix + ")" + goPattern
	}
	re, err := regexp.Compile(goPattern)
	if err != nil {
		return nil, NewSyntaxError(cx, "invalid regular expression /%s/%s: %v", source, flags, err)
	}
	obj := &RegExpObject{
		BaseObject: NewObject("RegExp", proto),
		Source:     source,
		Flags:      flags,
		Re:         re,
	}
	obj.SetOwn(cx, "source", String(source))
	obj.SetOwn(cx, "flags", String(flags))
	obj.SetOwn(cx, "global", Bool(strings.ContainsRune(flags, 'g')))
	obj.SetOwn(cx, "ignoreCase", Bool(strings.ContainsRune(flags, 'i')))
	obj.SetOwn(cx, "multiline", Bool(strings.ContainsRune(flags, 'm')))
	return obj, nil
}

func (r *RegExpObject) ToDisplay() string { return "/" + r.Source + "/" + r.Flags }

// Global reports the `g` flag.
func (r *RegExpObject) Global() bool { return strings.ContainsRune(r.Flags, 'g') }

// translateRegexp rewrites the script escapes the host engine spells
// differently. The common constructs map one-to-one.
func translateRegexp(src string) string {
	var sb strings.Builder
	for i := 0; i < len(src); i++ {
		c := src[i]
		if c == '\\' && i+1 < len(src) {
			next := src[i+1]
			switch next {
			case 'd', 'D', 'w', 'W', 's', 'S', 'b', 'B', 'n', 'r', 't', 'f', 'v', '0':
				sb.WriteByte(c)
				sb.WriteByte(next)
				i++
				continue
			case 'u':
				// \uHHHH → \x{HHHH}
				if i+5 < len(src) {
					sb.WriteString(`\x{` + src[i+2:i+6] + `}`)
					i += 5
					continue
				}
			}
			sb.WriteByte(c)
			sb.WriteByte(next)
			i++
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}
