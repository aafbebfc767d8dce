package driver

import (
	"bytes"
	"strings"
	"testing"

	"objcore/pkg/builtins"
	"objcore/pkg/vm"
)

func TestLoadScenarioFile(t *testing.T) {
	s, err := LoadScenario("testdata/object_prototype.yaml")
	if err != nil {
		t.Fatalf("LoadScenario failed: %v", err)
	}
	if s.Name != "Object.prototype core methods" {
		t.Errorf("unexpected name %q", s.Name)
	}
	rep, err := Run(s)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(rep.Results) != len(s.Calls) {
		t.Fatalf("expected %d results, got %d", len(s.Calls), len(rep.Results))
	}
	for _, res := range rep.Results {
		if !res.Passed {
			t.Errorf("%s: %s (got %s)", res.Name, res.Detail, res.Got)
		}
	}
}

func runScenario(t *testing.T, src string) *Report {
	t.Helper()
	s, err := ParseScenario(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseScenario failed: %v", err)
	}
	rep, err := Run(s)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return rep
}

func TestScenarioValueNotation(t *testing.T) {
	rep := runScenario(t, `
name: notation
objects:
  - name: box
    kind: string
    primitive: "hi"
  - name: holder
    properties:
      - key: "$literal"
        value: "undefined"
      - key: Symbol.iterator
        value: .nan
calls:
  - name: quoted dollar is a plain key
    method: hasOwnProperty
    this: $holder
    args: ["$literal"]
    expect: true
  - name: well-known symbol key
    method: hasOwnProperty
    this: $holder
    args: [Symbol.iterator]
    expect: true
  - name: string named like a symbol
    method: hasOwnProperty
    this: $holder
    args: ["Symbol.iterator"]
    expect: false
  - name: global path
    method: isPrototypeOf
    this: $String.prototype
    args: [$box]
    expect: true
  - name: nested path value
    method: valueOf
    on: $Number.prototype
    this: $box.length
    expect: 2
  - name: sequences build arrays
    method: valueOf
    this: [1, "two", null]
    expect: [1, "two", null]
  - name: mappings build objects
    method: propertyIsEnumerable
    this: {a: 1}
    args: [a]
    expect: true
`)
	for _, res := range rep.Results {
		if !res.Passed {
			t.Errorf("%s: %s (got %s)", res.Name, res.Detail, res.Got)
		}
	}
}

func TestScenarioReportsFailures(t *testing.T) {
	rep := runScenario(t, `
name: failures
calls:
  - name: wrong value
    method: toString
    this: 1
    expect: "[object String]"
  - name: expected error but normal
    method: toString
    this: undefined
    expectError: Coercion
  - name: wrong error kind
    method: hasOwnProperty
    this: null
    expectError: Call
  - name: unexpected throw
    method: valueOf
    this: undefined
  - method: valueOf
    this: 1
`)
	if rep.Failed() != 4 {
		t.Fatalf("expected 4 failures, got %d", rep.Failed())
	}
	if rep.Results[4].Name != "#5 valueOf" || !rep.Results[4].Passed {
		t.Errorf("unnamed call should be labelled by position and pass: %+v", rep.Results[4])
	}
	if got := rep.Results[2].Detail; got != "expected a Call error, got Coercion" {
		t.Errorf("unexpected detail %q", got)
	}
	if got := rep.Results[3].Got; !strings.HasPrefix(got, "Uncaught TypeError:") {
		t.Errorf("thrown results should render as uncaught, got %q", got)
	}

	var buf bytes.Buffer
	rep.Write(&buf, false)
	out := buf.String()
	if strings.Count(out, "FAIL ") != 4 || strings.Contains(out, "ok   ") {
		t.Errorf("non-verbose output should list only failures:\n%s", out)
	}
	if strings.Count(out, "Coercion Error: Cannot convert") != 2 {
		t.Errorf("thrown failures should list their core errors:\n%s", out)
	}
	if !strings.HasSuffix(out, "failures: 1/5 passed\n") {
		t.Errorf("missing summary line:\n%s", out)
	}
	buf.Reset()
	rep.Write(&buf, true)
	if !strings.Contains(buf.String(), "ok   #5 valueOf: 1") {
		t.Errorf("verbose output should list passing calls:\n%s", buf.String())
	}
}

func TestScenarioGetterAndFrozenObjects(t *testing.T) {
	rep := runScenario(t, `
name: accessors
objects:
  - name: computed
    properties:
      - key: Symbol.toStringTag
        getter: Computed
  - name: frozen
    extensible: false
  - name: ctor
    kind: function
    primitive: 42
  - name: pattern
    kind: regexp
    primitive: "a+"
    flags: g
  - name: when
    kind: date
    primitive: 0
  - name: sym
    kind: symbol
    primitive: s
calls:
  - method: toString
    this: $computed
    expect: "[object Computed]"
  - method: toString
    this: $ctor
    expect: "[object Function]"
  - method: toString
    this: $pattern
    expect: "[object RegExp]"
  - method: toString
    this: $when
    expect: "[object Date]"
  - method: toString
    this: $sym
    expect: "[object Symbol]"
  - method: call
    on: $Function.prototype
    this: $ctor
    expect: 42
  - method: isExtensible
    on: $Object
    args: [$frozen]
    expect: false
`)
	for _, res := range rep.Results {
		if !res.Passed {
			t.Errorf("%s: %s (got %s)", res.Name, res.Detail, res.Got)
		}
	}
}

func TestParseScenarioErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"empty", "", "empty scenario"},
		{"unknown field", "name: x\nbogus: 1\n", "field bogus not found"},
		{"missing object name", "objects:\n  - kind: array\n", "objects[0]: name must be provided"},
		{"duplicate object", "objects:\n  - name: a\n  - name: a\n", `duplicate name "a"`},
		{"missing method", "calls:\n  - this: 1\n", "calls[0]: method must be provided"},
		{"exclusive expectations", "calls:\n  - method: valueOf\n    expect: 1\n    expectError: Call\n", "exclusive"},
		{"exclusive property values", "objects:\n  - name: a\n    properties:\n      - key: k\n        value: 1\n        getter: 2\n", "exclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario(strings.NewReader(tt.src))
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestRunScenarioSetupErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown kind", "objects:\n  - name: a\n    kind: widget\n", `unknown kind "widget"`},
		{"wrong primitive", "objects:\n  - name: a\n    kind: number\n    primitive: x\n", "needs a number primitive"},
		{"unknown reference", "objects:\n  - name: a\n    prototype: $nope\n", `unknown object "nope"`},
		{"prototype cycle", "objects:\n  - name: a\n    prototype: $b\n  - name: b\n    prototype: $a\n", "cyclic"},
		{"bad attribute", "objects:\n  - name: a\n    properties:\n      - key: k\n        value: 1\n        attributes: [sticky]\n", `unknown attribute "sticky"`},
		{"bad regexp", "objects:\n  - name: a\n    kind: regexp\n    primitive: \"(\"\n", "invalid regular expression"},
		{"non-object holder", "calls:\n  - method: valueOf\n    on: 1\n", "on must be an object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseScenario(strings.NewReader(tt.src))
			if err != nil {
				t.Fatalf("ParseScenario failed: %v", err)
			}
			_, err = Run(s)
			if err == nil {
				t.Fatalf("expected Run to fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestRunInRealmUsesGivenRealm(t *testing.T) {
	r, err := builtins.NewRealm(9)
	if err != nil {
		t.Fatalf("NewRealm failed: %v", err)
	}
	r.DefineValue(r.GlobalObject, r.InternString("hostObject"), vm.ObjectValue(r.NewArray(nil)), vm.AttrBuiltin)

	s, err := ParseScenario(strings.NewReader("calls:\n  - method: toString\n    this: $hostObject\n    expect: \"[object Array]\"\n"))
	if err != nil {
		t.Fatalf("ParseScenario failed: %v", err)
	}
	rep, err := RunInRealm(r, s)
	if err != nil {
		t.Fatalf("RunInRealm failed: %v", err)
	}
	if rep.Failed() != 0 {
		t.Errorf("host global was not visible: %+v", rep.Results)
	}
}

func TestParseAttributes(t *testing.T) {
	tests := []struct {
		names []string
		want  vm.Attributes
	}{
		{nil, vm.AttrAll},
		{[]string{}, vm.AttrNone},
		{[]string{"none"}, vm.AttrNone},
		{[]string{"writable"}, vm.Writable},
		{[]string{"e", "c"}, vm.Enumerable | vm.Configurable},
		{[]string{"Writable", "all"}, vm.AttrAll},
	}
	for _, tt := range tests {
		got, err := parseAttributes(tt.names)
		if err != nil {
			t.Errorf("parseAttributes(%v) failed: %v", tt.names, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseAttributes(%v) = %s, want %s", tt.names, got, tt.want)
		}
	}
}
