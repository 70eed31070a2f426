package interp_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/gigaherz/rhinogo/internal/runtime"
	"github.com/gigaherz/rhinogo/pkg/rhino"
)

// fixtureScripts are small end-to-end programs whose console output is
// snapshot-tested. Each exercises a cluster of language features through
// the full pipeline.
var fixtureScripts = []struct {
	name   string
	source string
}{
	{
		name: "fibonacci_closures",
		source: `
function memoize(f) {
  let cache = new Map();
  return function(n) {
    if (cache.has(n)) return cache.get(n);
    let v = f(n);
    cache.set(n, v);
    return v;
  };
}
let fib = memoize(function(n) { return n < 2 ? n : fib(n - 1) + fib(n - 2); });
for (let i = 0; i < 10; i++) console.log(fib(i));
`,
	},
	{
		name: "object_model",
		source: `
let base = { describe() { return this.kind + ':' + this.id; } };
let child = Object.create(base);
child.kind = 'child';
child.id = 7;
console.log(child.describe());
console.log('describe' in child, child.hasOwnProperty('describe'));
console.log(Object.keys(child).join(','));
`,
	},
	{
		name: "string_processing",
		source: `
let words = 'the quick brown fox'.split(' ');
console.log(words.map(w => w[0].toUpperCase() + w.slice(1)).join(' '));
console.log('abc'.padStart(5, '-'), 'x'.repeat(3), '  y  '.trim());
console.log('a1b22c333'.replace(/[0-9]+/g, '#'));
`,
	},
	{
		name: "exceptions_and_stack",
		source: `
function validate(n) {
  if (typeof n !== 'number') throw new TypeError('wanted a number, got ' + typeof n);
  if (n < 0) throw new RangeError('negative: ' + n);
  return n;
}
for (let input of [1, 'x', -5]) {
  try {
    console.log('ok', validate(input));
  } catch (e) {
    console.log(e.name + ': ' + e.message);
  }
}
`,
	},
	{
		name: "iterators_and_sets",
		source: `
let seen = new Set();
for (let ch of 'mississippi') seen.add(ch);
let letters = [];
seen.forEach(function(v) { letters.push(v); });
console.log(letters.join(''));
let m = new Map([['one', 1], ['two', 2]]);
for (let pair of m) console.log(pair[0], '=>', pair[1]);
`,
	},
	{
		name: "template_and_json",
		source: `
let user = { name: 'ada', tags: ['math', 'logic'] };
console.log(` + "`${user.name} has ${user.tags.length} tags`" + `);
console.log(JSON.stringify(user, null, 2));
`,
	},
}

func TestFixtureScripts(t *testing.T) {
	for _, fixture := range fixtureScripts {
		fixture := fixture
		t.Run(fixture.name, func(t *testing.T) {
			var buf bytes.Buffer
			ctx := rhino.Enter(rhino.WithOutput(&buf))
			defer ctx.Exit()
			scope := ctx.InitStandardObjects()

			_, err := ctx.EvaluateString(scope, fixture.source, fixture.name, 1)
			actual := buf.String()
			if err != nil {
				var se *runtime.ScriptError
				if errors.As(err, &se) {
					actual += fmt.Sprintf("ERROR: %s\n", se.Error())
				} else {
					t.Fatalf("unexpected host error: %v", err)
				}
			}
			snaps.MatchSnapshot(t, fmt.Sprintf("%s_output", fixture.name), actual)
		})
	}
}
