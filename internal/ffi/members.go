// Package ffi is the host bridge: it reflects over Go types to expose host
// objects as live script proxies, resolves overloads with LiveConnect-style
// conversion weights, and coerces values in both directions.
package ffi

import (
	"reflect"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/gigaherz/rhinogo/internal/runtime"
)

// NameMapper rewrites member names before they enter the binding tables.
// Embedders supply one to apply annotation-driven remapping; the zero value
// keeps names unchanged apart from the standard lower-first rule.
type NameMapper interface {
	// MapMember maps an exported Go member name to its script name.
	MapMember(name string) string
	// BeanPrefixes returns the accessor prefixes recognized in addition
	// to the standard Get/Is/Set set.
	BeanPrefixes() []string
}

// defaultMapper lower-firsts exported names.
type defaultMapper struct{}

func (defaultMapper) MapMember(name string) string { return lowerFirst(name) }
func (defaultMapper) BeanPrefixes() []string       { return nil }

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// fieldMember is a public field exposed as a data property.
type fieldMember struct {
	name  string
	index []int
}

// methodMember is an overload set collapsed under one script name. Go has
// no overloading within a type, but a name-mapped set (or a bean accessor
// pair sharing a name with a method) can still hold several candidates.
type methodMember struct {
	name    string
	methods []reflect.Method
}

// beanMember is a getX/isX (+ optional setX) pair collapsed into a single
// property.
type beanMember struct {
	name   string
	getter *reflect.Method
	setter *reflect.Method
}

// Members is the reflection cache for one host type: a mapping from script
// member name to field, overload set, or bean property. Instance and
// static members are kept separate; in Go the static side holds the
// functions an embedder registers against the type descriptor.
type Members struct {
	typ     reflect.Type
	fields  map[string]*fieldMember
	methods map[string]*methodMember
	beans   map[string]*beanMember
	statics map[string]runtime.Value
}

// membersCache shares the per-type member tables across contexts. Reads
// are lock-free; two contexts racing on the same uncached type may both
// build a table, but LoadOrStore keeps the first one stored so every
// caller ends up sharing it.
var membersCache sync.Map // cacheKey → *Members

type cacheKey struct {
	typ    reflect.Type
	mapper NameMapper
}

// membersOf returns the member table for t, building and caching it on
// first use.
func membersOf(t reflect.Type, mapper NameMapper) *Members {
	if mapper == nil {
		mapper = defaultMapper{}
	}
	key := cacheKey{typ: t, mapper: mapper}
	if m, ok := membersCache.Load(key); ok {
		return m.(*Members)
	}
	m := buildMembers(t, mapper)
	actual, _ := membersCache.LoadOrStore(key, m)
	return actual.(*Members)
}

func buildMembers(t reflect.Type, mapper NameMapper) *Members {
	m := &Members{
		typ:     t,
		fields:  make(map[string]*fieldMember),
		methods: make(map[string]*methodMember),
		beans:   make(map[string]*beanMember),
		statics: make(map[string]runtime.Value),
	}

	structType := t
	for structType.Kind() == reflect.Ptr {
		structType = structType.Elem()
	}
	if structType.Kind() == reflect.Struct {
		collectFields(m, structType, mapper, nil)
	}

	// Methods come from the original type so pointer-receiver methods are
	// visible when the wrapper holds a pointer.
	type accessor struct {
		getter *reflect.Method
		setter *reflect.Method
	}
	beans := make(map[string]*accessor)
	for i := 0; i < t.NumMethod(); i++ {
		method := t.Method(i)
		if method.PkgPath != "" {
			continue // unexported
		}
		if prop, isGetter, ok := beanProperty(method, mapper); ok {
			acc := beans[prop]
			if acc == nil {
				acc = &accessor{}
				beans[prop] = acc
			}
			mcopy := method
			if isGetter {
				acc.getter = &mcopy
			} else {
				acc.setter = &mcopy
			}
		}
		name := mapper.MapMember(method.Name)
		set := m.methods[name]
		if set == nil {
			set = &methodMember{name: name}
			m.methods[name] = set
		}
		set.methods = append(set.methods, method)
	}
	for prop, acc := range beans {
		if acc.getter == nil {
			continue // a lone setter does not make a property
		}
		m.beans[prop] = &beanMember{name: prop, getter: acc.getter, setter: acc.setter}
	}
	return m
}

func collectFields(m *Members, t reflect.Type, mapper NameMapper, index []int) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		idx := append(append([]int{}, index...), i)
		if f.Anonymous {
			ft := f.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				collectFields(m, ft, mapper, idx)
				continue
			}
		}
		name := mapper.MapMember(f.Name)
		if _, exists := m.fields[name]; !exists {
			m.fields[name] = &fieldMember{name: name, index: idx}
		}
	}
}

// beanProperty recognizes getX/isX/setX accessors (plus embedder-supplied
// prefixes) and returns the collapsed property name.
func beanProperty(method reflect.Method, mapper NameMapper) (prop string, isGetter bool, ok bool) {
	name := method.Name
	// numIn counts the receiver.
	numIn := method.Type.NumIn() - 1
	numOut := method.Type.NumOut()

	prefixes := append([]string{"Get", "Is", "Set"}, mapper.BeanPrefixes()...)
	for _, prefix := range prefixes {
		if !strings.HasPrefix(name, prefix) || len(name) == len(prefix) {
			continue
		}
		rest := name[len(prefix):]
		if !unicode.IsUpper(rune(rest[0])) {
			continue
		}
		switch prefix {
		case "Set":
			if numIn == 1 && numOut <= 1 {
				return lowerFirst(rest), false, true
			}
		default:
			if numIn == 0 && numOut >= 1 && numOut <= 2 {
				return lowerFirst(rest), true, true
			}
		}
	}
	return "", false, false
}

// Has reports whether name resolves to any member kind.
func (m *Members) Has(name string) bool {
	if _, ok := m.beans[name]; ok {
		return true
	}
	if _, ok := m.fields[name]; ok {
		return true
	}
	if _, ok := m.methods[name]; ok {
		return true
	}
	_, ok := m.statics[name]
	return ok
}

// Names returns every member name; bean properties first, then fields,
// then methods, each group sorted for deterministic enumeration.
func (m *Members) Names() []string {
	seen := make(map[string]bool)
	var names []string
	addGroup := func(group map[string]bool) {
		var g []string
		for n := range group {
			if !seen[n] {
				seen[n] = true
				g = append(g, n)
			}
		}
		sort.Strings(g)
		names = append(names, g...)
	}
	beans := make(map[string]bool, len(m.beans))
	for n := range m.beans {
		beans[n] = true
	}
	fields := make(map[string]bool, len(m.fields))
	for n := range m.fields {
		fields[n] = true
	}
	methods := make(map[string]bool, len(m.methods))
	for n := range m.methods {
		methods[n] = true
	}
	addGroup(beans)
	addGroup(fields)
	addGroup(methods)
	return names
}
