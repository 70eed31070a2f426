package interp_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/gigaherz/rhinogo/internal/runtime"
	"github.com/gigaherz/rhinogo/pkg/rhino"
)

// runScript executes src in a fresh context and returns the completion
// value and captured console output.
func runScript(t *testing.T, src string) (rhino.Value, string) {
	t.Helper()
	var buf bytes.Buffer
	ctx := rhino.Enter(rhino.WithOutput(&buf))
	defer ctx.Exit()
	scope := ctx.InitStandardObjects()
	v, err := ctx.EvaluateString(scope, src, "test", 1)
	if err != nil {
		t.Fatalf("script failed: %v", err)
	}
	return v, buf.String()
}

// runError executes src and requires a ScriptError.
func runError(t *testing.T, src string) *runtime.ScriptError {
	t.Helper()
	ctx := rhino.Enter(rhino.WithOutput(&bytes.Buffer{}))
	defer ctx.Exit()
	scope := ctx.InitStandardObjects()
	_, err := ctx.EvaluateString(scope, src, "src", 1)
	if err == nil {
		t.Fatalf("expected an error for %q", src)
	}
	var se *runtime.ScriptError
	if !errors.As(err, &se) {
		t.Fatalf("error is %T, want *ScriptError", err)
	}
	return se
}

func display(v rhino.Value) string { return v.ToDisplay() }

func TestArithmeticAndCompletionValue(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "7"},
		{"'a' + 1", "a1"},
		{"10 % 3", "1"},
		{"2 ** 10", "1024"},
		{"7 / 2", "3.5"},
		{"1 < 2", "true"},
		{"'b' < 'a'", "false"},
		{"1 == '1'", "true"},
		{"1 === '1'", "false"},
		{"NaN === NaN", "false"},
		{"typeof 1", "number"},
		{"typeof 'x'", "string"},
		{"typeof undefined", "undefined"},
		{"typeof null", "object"},
		{"typeof (() => 1)", "function"},
		{"typeof missingName", "undefined"},
		{"5 & 3", "1"},
		{"5 | 3", "7"},
		{"-9 >>> 28", "15"},
		{"1 << 10", "1024"},
		{"~0", "-1"},
		{"void 42", "undefined"},
		{"null ?? 'fallback'", "fallback"},
		{"0 ?? 'fallback'", "0"},
		{"0 || 'x'", "x"},
		{"1 && 'x'", "x"},
		{"`t${1 + 1}s`", "t2s"},
	}
	for _, tt := range tests {
		v, _ := runScript(t, tt.src)
		if display(v) != tt.want {
			t.Errorf("%q: got %s, want %s", tt.src, display(v), tt.want)
		}
	}
}

// S1 — optional chaining short-circuit.
func TestOptionalChaining(t *testing.T) {
	_, out := runScript(t, `
let a = { b: { c: 'd' } }; let e = { f: {} }; let h = null;
console.info(a?.b?.c);
console.info(e?.f?.g);
console.info(h?.i?.j);
`)
	if out != "d\nundefined\nundefined\n" {
		t.Errorf("got %q", out)
	}
}

func TestOptionalChainThrowsWithoutGuard(t *testing.T) {
	se := runError(t, "let a = 1;\nlet b = 2;\nlet h = null;\nh.i.j;")
	if se.Kind != runtime.TypeErr {
		t.Fatalf("kind %s", se.Kind)
	}
	want := `TypeError: Cannot read property "i" from null (src#4)`
	if se.Error() != want {
		t.Errorf("got %q, want %q", se.Error(), want)
	}
}

func TestOptionalChainEvaluatesTargetOnce(t *testing.T) {
	_, out := runScript(t, `
let count = 0;
function target() { count++; return null; }
let r = target()?.x.y;
console.info(count, r);
`)
	if out != "1 undefined\n" {
		t.Errorf("got %q", out)
	}
}

// S2 — insertion-ordered Map with concurrent iteration.
func TestMapIterationSurvivesDelete(t *testing.T) {
	_, out := runScript(t, `
let m = new Map(); m.set('a',1); m.set('b',2); m.set('c',3);
let it = m.keys(); m.delete('b');
console.info(it.next().value, it.next().value, it.next().done);
`)
	if out != "a c true\n" {
		t.Errorf("got %q", out)
	}
}

func TestMapIterationSurvivesClear(t *testing.T) {
	_, out := runScript(t, `
let m = new Map(); m.set('a',1); m.set('b',2);
let it = m.keys();
it.next();
m.clear();
m.set('z',26);
console.info(it.next().done, m.size);
`)
	if out != "true 1\n" {
		t.Errorf("got %q", out)
	}
}

// S6 — try/finally completion override.
func TestFinallyOverridesReturn(t *testing.T) {
	_, out := runScript(t, `
function f(){ try { return 1; } finally { return 2; } }
console.info(f());
`)
	if out != "2\n" {
		t.Errorf("got %q", out)
	}
}

func TestFinallyRunsOnEveryPath(t *testing.T) {
	_, out := runScript(t, `
let log = [];
function f(mode) {
  try {
    if (mode === 'throw') throw new Error('x');
    if (mode === 'return') return 'r';
  } catch (e) {
    log.push('catch');
  } finally {
    log.push('finally:' + mode);
  }
  return 'end';
}
f('throw'); f('return'); f('normal');
console.info(log.join(','));
`)
	if out != "catch,finally:throw,finally:return,finally:normal\n" {
		t.Errorf("got %q", out)
	}
}

func TestTryCatchBindsError(t *testing.T) {
	_, out := runScript(t, `
try {
  null.x;
} catch (e) {
  console.info(e instanceof TypeError, e instanceof Error);
}
`)
	if out != "true true\n" {
		t.Errorf("got %q", out)
	}
}

func TestThrowArbitraryValue(t *testing.T) {
	_, out := runScript(t, `
try { throw {code: 42}; } catch (e) { console.info(e.code); }
`)
	if out != "42\n" {
		t.Errorf("got %q", out)
	}
}

func TestClosuresCaptureByReference(t *testing.T) {
	_, out := runScript(t, `
function counter() {
  let n = 0;
  return { inc: function() { n++; return n; }, get: () => n };
}
let c = counter();
c.inc(); c.inc();
console.info(c.get());
`)
	if out != "2\n" {
		t.Errorf("got %q", out)
	}
}

func TestLetIsBlockScoped(t *testing.T) {
	_, out := runScript(t, `
let x = 'outer';
{ let x = 'inner'; console.info(x); }
console.info(x);
`)
	if out != "inner\nouter\n" {
		t.Errorf("got %q", out)
	}
}

func TestTemporalDeadZone(t *testing.T) {
	se := runError(t, "{ console.info(tdz); let tdz = 1; }")
	if se.Kind != runtime.ReferenceErr {
		t.Errorf("kind %s, want ReferenceError", se.Kind)
	}
}

func TestVarHoisting(t *testing.T) {
	_, out := runScript(t, `
function f() { console.info(typeof v); var v = 1; return v; }
console.info(f());
`)
	if out != "undefined\n1\n" {
		t.Errorf("got %q", out)
	}
}

func TestFunctionHoisting(t *testing.T) {
	_, out := runScript(t, `
console.info(hoisted());
function hoisted() { return 'up'; }
`)
	if out != "up\n" {
		t.Errorf("got %q", out)
	}
}

func TestConstReassignmentFails(t *testing.T) {
	se := runError(t, "const c = 1; c = 2;")
	if se.Kind != runtime.TypeErr {
		t.Errorf("kind %s", se.Kind)
	}
}

func TestThisBinding(t *testing.T) {
	_, out := runScript(t, `
let obj = {
  name: 'obj',
  plain: function() { return this.name; },
  arrow: null,
};
obj.arrow = (function() { return () => this.name; }).call(obj);
console.info(obj.plain(), obj.arrow());
`)
	if out != "obj obj\n" {
		t.Errorf("got %q", out)
	}
}

func TestNewAllocatesAndLinksPrototype(t *testing.T) {
	_, out := runScript(t, `
function Point(x, y) { this.x = x; this.y = y; }
Point.prototype.norm = function() { return this.x * this.x + this.y * this.y; };
let p = new Point(3, 4);
console.info(p.norm(), p instanceof Point);
`)
	if out != "25 true\n" {
		t.Errorf("got %q", out)
	}
}

func TestConstructorReturningObject(t *testing.T) {
	_, out := runScript(t, `
function F() { return {custom: true}; }
console.info(new F().custom);
`)
	if out != "true\n" {
		t.Errorf("got %q", out)
	}
}

func TestForOfWithBreakAndLabels(t *testing.T) {
	_, out := runScript(t, `
let s = '';
outer: for (let i of [1, 2, 3]) {
  for (let j of [1, 2, 3]) {
    if (j > i) continue outer;
    if (i === 3) break outer;
    s += '' + i + j;
  }
}
console.info(s);
`)
	if out != "112122\n" {
		t.Errorf("got %q", out)
	}
}

func TestForInInsertionOrder(t *testing.T) {
	_, out := runScript(t, `
let o = {z: 1, a: 2};
o[1] = 'x'; o[0] = 'y';
let keys = [];
for (let k in o) keys.push(k);
console.info(keys.join(','));
`)
	if out != "0,1,z,a\n" {
		t.Errorf("got %q", out)
	}
}

func TestForOfIteratorReturnCalledOnBreak(t *testing.T) {
	_, out := runScript(t, `
let closed = false;
let iterable = {};
iterable[Symbol.iterator] = function() {
  let i = 0;
  return {
    next: function() { i++; return {value: i, done: i > 5}; },
    return: function() { closed = true; return {done: true}; },
  };
};
for (let v of iterable) { if (v === 2) break; }
console.info(closed);
`)
	if out != "true\n" {
		t.Errorf("got %q", out)
	}
}

func TestDestructuring(t *testing.T) {
	_, out := runScript(t, `
let {a, b: {c}, d = 4} = {a: 1, b: {c: 3}};
let [x, , y, ...rest] = [10, 20, 30, 40, 50];
function swap([p, q]) { return [q, p]; }
console.info(a, c, d, x, y, rest.join('+'), swap([1, 2]).join(''));
`)
	if out != "1 3 4 10 30 40+50 21\n" {
		t.Errorf("got %q", out)
	}
}

func TestSpread(t *testing.T) {
	_, out := runScript(t, `
function sum(...xs) { return xs.reduce((a, b) => a + b, 0); }
let parts = [1, 2, 3];
console.info(sum(...parts, 4), [...parts, 9].join(','));
`)
	if out != "10 1,2,3,9\n" {
		t.Errorf("got %q", out)
	}
}

func TestSwitchFallthrough(t *testing.T) {
	_, out := runScript(t, `
function f(x) {
  let out = '';
  switch (x) {
    case 1: out += 'one ';
    case 2: out += 'two '; break;
    default: out += 'other';
  }
  return out;
}
console.info(f(1), '|', f(2), '|', f(9));
`)
	if out != "one two  | two  | other\n" {
		t.Errorf("got %q", out)
	}
}

func TestWithStatementDynamicScope(t *testing.T) {
	_, out := runScript(t, `
let x = 'outer';
let o = {x: 'from-with'};
with (o) { console.info(x); x = 'written'; }
console.info(x, o.x);
`)
	if out != "from-with\nouter written\n" {
		t.Errorf("got %q", out)
	}
}

func TestPrototypeCycleRejectedByScript(t *testing.T) {
	se := runError(t, `
let a = {}; let b = Object.create(a);
Object.setPrototypeOf(a, b);
`)
	if se.Kind != runtime.TypeErr {
		t.Errorf("kind %s", se.Kind)
	}
}

func TestGettersAndSetters(t *testing.T) {
	_, out := runScript(t, `
let store = 0;
let o = { get v() { return store; }, set v(x) { store = x * 2; } };
o.v = 21;
console.info(o.v);
`)
	if out != "42\n" {
		t.Errorf("got %q", out)
	}
}

func TestFrozenObjectWrite(t *testing.T) {
	_, out := runScript(t, `
let o = Object.freeze({a: 1});
o.a = 99;
console.info(o.a, Object.isFrozen(o));
`)
	if out != "1 true\n" {
		t.Errorf("got %q", out)
	}
}

func TestDeleteRespectsConfigurable(t *testing.T) {
	_, out := runScript(t, `
let o = {a: 1};
Object.defineProperty(o, 'pinned', {value: 2, enumerable: true});
console.info(delete o.a, delete o.pinned, o.pinned);
`)
	if out != "true false 2\n" {
		t.Errorf("got %q", out)
	}
}

func TestStringCodeUnits(t *testing.T) {
	// '𝄞' is outside the BMP: two UTF-16 code units.
	_, out := runScript(t, "let s = '𝄞x'; console.info(s.length, s.charCodeAt(0) === 0xD834, s[2]);")
	if out != "3 true x\n" {
		t.Errorf("got %q", out)
	}
}

func TestBigIntExactness(t *testing.T) {
	_, out := runScript(t, `
let big = 9007199254740993n;
console.info(big + 1n);
`)
	if out != "9007199254740994\n" {
		t.Errorf("got %q", out)
	}
	se := runError(t, "1n + 1;")
	if se.Kind != runtime.TypeErr {
		t.Errorf("mixing BigInt and Number: kind %s", se.Kind)
	}
}

func TestSymbolKeys(t *testing.T) {
	_, out := runScript(t, `
let s1 = Symbol('k');
let s2 = Symbol('k');
let o = {};
o[s1] = 'one';
console.info(o[s1], o[s2] === undefined, Symbol.for('reg') === Symbol.for('reg'));
`)
	if out != "one true true\n" {
		t.Errorf("got %q", out)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	_, out := runScript(t, `
let o = JSON.parse('{"b": [1, 2, {"c": null}], "a": "x"}');
console.info(JSON.stringify(o));
console.info(JSON.stringify({u: undefined, f: function(){}, n: 1}));
`)
	if out != `{"b":[1,2,{"c":null}],"a":"x"}`+"\n"+`{"n":1}`+"\n" {
		t.Errorf("got %q", out)
	}
}

func TestInterruptHook(t *testing.T) {
	var buf bytes.Buffer
	calls := 0
	ctx := rhino.Enter(rhino.WithOutput(&buf), rhino.WithInterruptCheck(func() bool {
		calls++
		return calls > 50
	}))
	defer ctx.Exit()
	scope := ctx.InitStandardObjects()
	_, err := ctx.EvaluateString(scope, `
let caught = false;
try { while (true) {} } catch (e) { caught = true; console.info('caught'); }
`, "loop", 1)
	if err == nil {
		t.Fatal("expected termination")
	}
	var se *runtime.ScriptError
	if !errors.As(err, &se) || se.Kind != runtime.TerminatedErr {
		t.Fatalf("got %v, want Terminated", err)
	}
	// The catch block must not have observed the termination.
	if strings.Contains(buf.String(), "caught") {
		t.Error("Terminated must not be script-catchable")
	}
}

func TestScriptStackCapture(t *testing.T) {
	se := runError(t, `function inner() { null.x; }
function outer() { inner(); }
outer();`)
	stack := se.RenderStack(0, "")
	if !strings.Contains(stack, "\tat inner (src:1)") || !strings.Contains(stack, "\tat outer (src:2)") {
		t.Errorf("stack missing frames:\n%s", stack)
	}
}

func TestRecursionLimit(t *testing.T) {
	se := runError(t, "function f() { return f(); } f();")
	if se.Kind != runtime.RangeErr {
		t.Errorf("kind %s, want RangeError", se.Kind)
	}
}

func TestUpdateExpressions(t *testing.T) {
	_, out := runScript(t, `
let i = 5;
console.info(i++, i, ++i, i--, --i);
`)
	if out != "5 6 7 7 5\n" {
		t.Errorf("got %q", out)
	}
}

func TestDoWhileAndComma(t *testing.T) {
	_, out := runScript(t, `
let n = 0, total = 0;
do { total += n; n++; } while (n < 4)
console.info(total);
`)
	if out != "6\n" {
		t.Errorf("got %q", out)
	}
}

func TestArrayMethods(t *testing.T) {
	_, out := runScript(t, `
let xs = [5, 1, 4, 2, 3];
console.info(xs.filter(x => x % 2 === 1).map(x => x * 10).join(','));
console.info(xs.slice(1, 3).join(','), xs.indexOf(4), xs.includes(9));
xs.sort((a, b) => a - b);
console.info(xs.join(','));
console.info([1, [2, 3]].flat().join(','), [].concat([1], 2, [3]).join(','));
`)
	want := "50,10,30\n1,4 2 false\n1,2,3,4,5\n1,2,3\n1,2,3\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}
