package builtins

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/gigaherz/rhinogo/internal/runtime"
)

// JSON is implemented directly over the value tree: stringify walks
// script objects preserving insertion order, parse builds realm objects.
func initJSON(cx *runtime.Context, realm *runtime.Realm, global runtime.Scriptable) {
	j := runtime.NewObject("JSON", realm.ObjectProto)
	global.SetOwn(cx, "JSON", j)

	fn(cx, realm, j, "stringify", 3, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		indent := ""
		if len(args) > 2 {
			switch n := args[2].(type) {
			case *runtime.NumberValue:
				indent = strings.Repeat(" ", int(n.Value))
			case *runtime.StringValue:
				indent = n.Value
			}
		}
		var sb strings.Builder
		ok, err := jsonStringify(cx, &sb, runtime.Arg(args, 0), indent, "")
		if err != nil {
			return nil, err
		}
		if !ok {
			return runtime.Undefined, nil
		}
		return runtime.String(sb.String()), nil
	})

	fn(cx, realm, j, "parse", 2, func(cx *runtime.Context, this runtime.Value, args []runtime.Value) (runtime.Value, error) {
		text, err := runtime.ToString(cx, runtime.Arg(args, 0))
		if err != nil {
			return nil, err
		}
		p := &jsonParser{cx: cx, realm: realm, src: text}
		p.skipSpace()
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.pos != len(p.src) {
			return nil, runtime.NewSyntaxError(cx, "unexpected trailing characters in JSON at position %d", p.pos)
		}
		return v, nil
	})
}

// jsonStringify writes v's JSON; ok is false for values JSON skips
// (undefined, functions, symbols).
func jsonStringify(cx *runtime.Context, sb *strings.Builder, v runtime.Value, indent, prefix string) (bool, error) {
	// toJSON hook first (Date uses it).
	if obj, ok := v.(runtime.Scriptable); ok {
		if m, err := runtime.GetProperty(cx, obj, "toJSON"); err == nil {
			if callable, ok := m.(runtime.Callable); ok {
				res, err := callable.Call(cx, obj, nil)
				if err != nil {
					return false, err
				}
				v = res
			}
		}
	}

	switch n := v.(type) {
	case *runtime.NullValue:
		sb.WriteString("null")
		return true, nil
	case *runtime.BooleanValue:
		sb.WriteString(n.ToDisplay())
		return true, nil
	case *runtime.NumberValue:
		if math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
			sb.WriteString("null")
			return true, nil
		}
		sb.WriteString(runtime.FormatNumber(n.Value))
		return true, nil
	case *runtime.StringValue:
		sb.WriteString(quoteJSON(n.Value))
		return true, nil
	case *runtime.BigIntValue:
		return false, runtime.NewTypeError(cx, "cannot serialize a BigInt to JSON")
	case *runtime.ArrayObject:
		sb.WriteByte('[')
		inner := prefix + indent
		for i := 0; i < n.Len(); i++ {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeIndent(sb, indent, inner)
			ok, err := jsonStringify(cx, sb, n.At(i), indent, inner)
			if err != nil {
				return false, err
			}
			if !ok {
				sb.WriteString("null")
			}
		}
		if n.Len() > 0 {
			writeIndent(sb, indent, prefix)
		}
		sb.WriteByte(']')
		return true, nil
	case runtime.Scriptable:
		if _, callable := v.(runtime.Callable); callable {
			return false, nil
		}
		sb.WriteByte('{')
		inner := prefix + indent
		first := true
		for _, key := range n.OwnKeys(cx, true) {
			pv, err := runtime.GetProperty(cx, n, key)
			if err != nil {
				return false, err
			}
			var field strings.Builder
			ok, err := jsonStringify(cx, &field, pv, indent, inner)
			if err != nil {
				return false, err
			}
			if !ok {
				continue
			}
			if !first {
				sb.WriteByte(',')
			}
			first = false
			writeIndent(sb, indent, inner)
			sb.WriteString(quoteJSON(key))
			sb.WriteByte(':')
			if indent != "" {
				sb.WriteByte(' ')
			}
			sb.WriteString(field.String())
		}
		if !first {
			writeIndent(sb, indent, prefix)
		}
		sb.WriteByte('}')
		return true, nil
	}
	// undefined, symbols, functions.
	return false, nil
}

func writeIndent(sb *strings.Builder, indent, prefix string) {
	if indent != "" {
		sb.WriteByte('\n')
		sb.WriteString(prefix)
	}
}

func quoteJSON(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&sb, `\u%04x`, r)
			} else if r > utf8.MaxRune || (r >= 0xD800 && r <= 0xDFFF) {
				for _, u := range utf16.Encode([]rune{r}) {
					fmt.Fprintf(&sb, `\u%04x`, u)
				}
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

type jsonParser struct {
	cx    *runtime.Context
	realm *runtime.Realm
	src   string
	pos   int
}

func (p *jsonParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *jsonParser) fail(msg string) error {
	return runtime.NewSyntaxError(p.cx, "invalid JSON: %s at position %d", msg, p.pos)
}

func (p *jsonParser) parseValue() (runtime.Value, error) {
	if p.pos >= len(p.src) {
		return nil, p.fail("unexpected end of input")
	}
	switch c := p.src[p.pos]; {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '"':
		s, err := p.parseString()
		if err != nil {
			return nil, err
		}
		return runtime.String(s), nil
	case c == 't':
		return p.parseLiteral("true", runtime.True)
	case c == 'f':
		return p.parseLiteral("false", runtime.False)
	case c == 'n':
		return p.parseLiteral("null", runtime.Null)
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	}
	return nil, p.fail("unexpected character")
}

func (p *jsonParser) parseLiteral(lit string, v runtime.Value) (runtime.Value, error) {
	if strings.HasPrefix(p.src[p.pos:], lit) {
		p.pos += len(lit)
		return v, nil
	}
	return nil, p.fail("invalid literal")
}

func (p *jsonParser) parseNumber() (runtime.Value, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E' {
			p.pos++
		} else {
			break
		}
	}
	f, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return nil, p.fail("invalid number")
	}
	return runtime.Number(f), nil
}

func (p *jsonParser) parseString() (string, error) {
	p.pos++ // opening quote
	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '"':
			p.pos++
			return sb.String(), nil
		case c == '\\':
			p.pos++
			if p.pos >= len(p.src) {
				return "", p.fail("unterminated escape")
			}
			switch p.src[p.pos] {
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			case '/':
				sb.WriteByte('/')
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			case 'u':
				if p.pos+4 >= len(p.src) {
					return "", p.fail("invalid unicode escape")
				}
				n, err := strconv.ParseUint(p.src[p.pos+1:p.pos+5], 16, 32)
				if err != nil {
					return "", p.fail("invalid unicode escape")
				}
				sb.WriteRune(rune(n))
				p.pos += 4
			default:
				return "", p.fail("invalid escape")
			}
			p.pos++
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return "", p.fail("unterminated string")
}

func (p *jsonParser) parseArray() (runtime.Value, error) {
	p.pos++ // [
	var els []runtime.Value
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == ']' {
		p.pos++
		return p.realm.NewRealmArray(els), nil
	}
	for {
		p.skipSpace()
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		els = append(els, v)
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, p.fail("unterminated array")
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return p.realm.NewRealmArray(els), nil
		default:
			return nil, p.fail("expected ',' or ']'")
		}
	}
}

func (p *jsonParser) parseObject() (runtime.Value, error) {
	p.pos++ // {
	obj := p.realm.NewPlainObject()
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == '}' {
		p.pos++
		return obj, nil
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != '"' {
			return nil, p.fail("expected a property name")
		}
		key, err := p.parseString()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.pos >= len(p.src) || p.src[p.pos] != ':' {
			return nil, p.fail("expected ':'")
		}
		p.pos++
		p.skipSpace()
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		obj.SetOwn(p.cx, key, v)
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, p.fail("unterminated object")
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return obj, nil
		default:
			return nil, p.fail("expected ',' or '}'")
		}
	}
}
