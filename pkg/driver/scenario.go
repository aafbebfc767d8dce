package driver

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"objcore/pkg/builtins"
	"objcore/pkg/errors"
	"objcore/pkg/vm"
)

// Scenario is an object graph plus a list of built-in calls made against it,
// each with its expected outcome. Scenarios are written in YAML:
//
//	name: toString tags
//	objects:
//	  - name: arr
//	    kind: array
//	    properties:
//	      - key: Symbol.toStringTag
//	        value: Foo
//	calls:
//	  - method: toString
//	    this: $arr
//	    expect: "[object Foo]"
//
// Values use the notation described on env.
type Scenario struct {
	Name    string       `yaml:"name"`
	Objects []ObjectSpec `yaml:"objects"`
	Calls   []CallSpec   `yaml:"calls"`

	// Path is the file the scenario was loaded from, if any
	Path string `yaml:"-"`
}

// ObjectSpec describes one named object.
type ObjectSpec struct {
	Name string `yaml:"name"`
	// Kind is an exotic kind name: ordinary (default), array, function,
	// error, boolean, number, string, symbol, date or regexp.
	Kind      string    `yaml:"kind"`
	Primitive yaml.Node `yaml:"primitive"`
	Flags     string    `yaml:"flags"`
	// Prototype overrides the kind's default prototype; null detaches it.
	Prototype  yaml.Node      `yaml:"prototype"`
	Properties []PropertySpec `yaml:"properties"`
	Extensible *bool          `yaml:"extensible"`
}

// PropertySpec is an own property. Exactly one of value, getter or throws is
// used; attributes default to all three when omitted.
type PropertySpec struct {
	Key        yaml.Node `yaml:"key"`
	Value      yaml.Node `yaml:"value"`
	Getter     yaml.Node `yaml:"getter"`
	Throws     yaml.Node `yaml:"throws"`
	Attributes []string  `yaml:"attributes"`
}

// CallSpec calls method, found on On (Object.prototype by default), with the
// given this value and arguments. With no expectation the call only has to
// complete normally.
type CallSpec struct {
	Name   string      `yaml:"name"`
	Method string      `yaml:"method"`
	On     yaml.Node   `yaml:"on"`
	This   yaml.Node   `yaml:"this"`
	Args   []yaml.Node `yaml:"args"`

	// Expect is compared with SameValue, or by rendering for sequences and
	// mappings.
	Expect yaml.Node `yaml:"expect"`
	// ExpectError is the kind of the core error behind the throw:
	// Coercion, Call or Value.
	ExpectError string `yaml:"expectError"`
	// ExpectThrow is compared with SameValue against the thrown value.
	ExpectThrow yaml.Node `yaml:"expectThrow"`
}

func (c *CallSpec) label(i int) string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("#%d %s", i+1, c.Method)
}

// LoadScenario reads and parses a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %s: %w", path, err)
	}
	s, err := ParseScenario(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("scenario: %s: %w", path, err)
	}
	s.Path = path
	if s.Name == "" {
		s.Name = filepath.Base(path)
	}
	return s, nil
}

// ParseScenario decodes a scenario document. Unknown fields are errors.
func ParseScenario(r io.Reader) (*Scenario, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var s Scenario
	if err := decoder.Decode(&s); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty scenario")
		}
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	seen := make(map[string]bool, len(s.Objects))
	for i, obj := range s.Objects {
		if obj.Name == "" {
			return fmt.Errorf("objects[%d]: name must be provided", i)
		}
		if seen[obj.Name] {
			return fmt.Errorf("objects[%d]: duplicate name %q", i, obj.Name)
		}
		seen[obj.Name] = true
		for j, prop := range obj.Properties {
			set := 0
			for _, n := range []yaml.Node{prop.Value, prop.Getter, prop.Throws} {
				if n.Kind != 0 {
					set++
				}
			}
			if prop.Key.Kind == 0 {
				return fmt.Errorf("objects[%d].properties[%d]: key must be provided", i, j)
			}
			if set > 1 {
				return fmt.Errorf("objects[%d].properties[%d]: value, getter and throws are exclusive", i, j)
			}
		}
	}
	for i, call := range s.Calls {
		if call.Method == "" {
			return fmt.Errorf("calls[%d]: method must be provided", i)
		}
		expectations := 0
		if call.Expect.Kind != 0 {
			expectations++
		}
		if call.ExpectError != "" {
			expectations++
		}
		if call.ExpectThrow.Kind != 0 {
			expectations++
		}
		if expectations > 1 {
			return fmt.Errorf("calls[%d]: expect, expectError and expectThrow are exclusive", i)
		}
	}
	return nil
}

// CallResult is the outcome of one scenario call.
type CallResult struct {
	Name   string
	Passed bool
	Got    string
	Detail string
	// Cause is the core error behind a thrown result, if any
	Cause errors.CoreError
}

// Report collects the results of running a scenario.
type Report struct {
	Scenario string
	Results  []CallResult
}

// Failed returns the number of calls whose expectation did not hold.
func (rep *Report) Failed() int {
	n := 0
	for _, res := range rep.Results {
		if !res.Passed {
			n++
		}
	}
	return n
}

// Write prints failures with their core errors, and every call when verbose
// is set, followed by a summary line.
func (rep *Report) Write(w io.Writer, verbose bool) {
	for _, res := range rep.Results {
		switch {
		case !res.Passed:
			fmt.Fprintf(w, "FAIL %s: %s (got %s)\n", res.Name, res.Detail, res.Got)
			if res.Cause != nil {
				errors.DisplayErrors(w, []errors.CoreError{res.Cause})
			}
		case verbose:
			fmt.Fprintf(w, "ok   %s: %s\n", res.Name, res.Got)
		}
	}
	fmt.Fprintf(w, "%s: %d/%d passed\n", rep.Scenario, len(rep.Results)-rep.Failed(), len(rep.Results))
}

// Run builds the scenario's object graph in a fresh realm and performs its
// calls. Errors report a malformed scenario; failed expectations are
// recorded in the report instead.
func Run(s *Scenario) (*Report, error) {
	r, err := builtins.NewRealm(1)
	if err != nil {
		return nil, err
	}
	return RunInRealm(r, s)
}

// RunInRealm is Run against an existing, initialized realm.
func RunInRealm(r *vm.Realm, s *Scenario) (*Report, error) {
	e := newEnv(r)
	if err := e.build(s.Objects); err != nil {
		return nil, err
	}
	rep := &Report{Scenario: s.Name}
	for i := range s.Calls {
		res, err := e.runCall(&s.Calls[i], i)
		if err != nil {
			return nil, fmt.Errorf("calls[%d]: %w", i, err)
		}
		rep.Results = append(rep.Results, res)
	}
	return rep, nil
}

// build allocates every object before wiring prototypes and properties, so
// specs may refer to objects declared after them.
func (e *env) build(specs []ObjectSpec) error {
	for i := range specs {
		spec := &specs[i]
		ref, err := e.allocate(spec.Name, spec.Kind, &spec.Primitive, spec.Flags)
		if err != nil {
			return err
		}
		if err := e.bind(spec.Name, ref); err != nil {
			return err
		}
	}
	for i := range specs {
		spec := &specs[i]
		obj := e.names[spec.Name]
		if spec.Prototype.Kind != 0 {
			if err := e.setPrototype(obj, &spec.Prototype); err != nil {
				return fmt.Errorf("object %q: %w", spec.Name, err)
			}
		}
		for j := range spec.Properties {
			if err := e.defineProperty(obj, &spec.Properties[j]); err != nil {
				return fmt.Errorf("object %q: properties[%d]: %w", spec.Name, j, err)
			}
		}
		if spec.Extensible != nil && !*spec.Extensible {
			e.realm.Object(obj).PreventExtensions()
		}
	}
	return nil
}

func (e *env) defineProperty(obj vm.ObjectRef, prop *PropertySpec) error {
	key, err := e.resolveKey(&prop.Key)
	if err != nil {
		return err
	}
	attrs, err := parseAttributes(prop.Attributes)
	if err != nil {
		return err
	}
	switch {
	case prop.Getter.Kind != 0:
		v, err := e.resolve(&prop.Getter)
		if err != nil {
			return err
		}
		return e.defineGetter(obj, key, v, false, attrs)
	case prop.Throws.Kind != 0:
		v, err := e.resolve(&prop.Throws)
		if err != nil {
			return err
		}
		return e.defineGetter(obj, key, v, true, attrs)
	}
	v, err := e.resolve(&prop.Value)
	if err != nil {
		return err
	}
	return e.defineData(obj, key, v, attrs)
}

func (e *env) runCall(call *CallSpec, i int) (CallResult, error) {
	r := e.realm
	holder := r.ObjectPrototype
	if call.On.Kind != 0 {
		ref, err := e.resolveObject(&call.On, "on")
		if err != nil {
			return CallResult{}, err
		}
		holder = ref
	}
	this, err := e.resolve(&call.This)
	if err != nil {
		return CallResult{}, err
	}
	args := make([]vm.Value, len(call.Args))
	for j := range call.Args {
		if args[j], err = e.resolve(&call.Args[j]); err != nil {
			return CallResult{}, err
		}
	}

	c := e.call(holder, call.Method, this, args)
	res := CallResult{Name: call.label(i), Got: e.describe(c), Passed: true}
	var coreErr errors.CoreError
	if c.IsAbrupt() && stderrors.As(c.Err(), &coreErr) {
		res.Cause = coreErr
	}
	fail := func(format string, args ...any) {
		res.Passed = false
		res.Detail = fmt.Sprintf(format, args...)
	}

	switch {
	case call.ExpectError != "":
		if !c.IsAbrupt() {
			fail("expected a %s error", call.ExpectError)
			break
		}
		if res.Cause == nil {
			fail("expected a %s error, got a thrown value", call.ExpectError)
		} else if res.Cause.Kind() != call.ExpectError {
			fail("expected a %s error, got %s", call.ExpectError, res.Cause.Kind())
		}
	case call.ExpectThrow.Kind != 0:
		want, err := e.resolve(&call.ExpectThrow)
		if err != nil {
			return CallResult{}, err
		}
		if !c.IsAbrupt() || !vm.SameValue(c.Value(), want) {
			fail("expected to throw %s", r.Inspect(want))
		}
	case call.Expect.Kind != 0:
		want, err := e.resolve(&call.Expect)
		if err != nil {
			return CallResult{}, err
		}
		if c.IsAbrupt() {
			fail("expected %s", r.Inspect(want))
			break
		}
		structural := call.Expect.Kind == yaml.SequenceNode || call.Expect.Kind == yaml.MappingNode
		if structural && r.Inspect(c.Value()) != r.Inspect(want) || !structural && !vm.SameValue(c.Value(), want) {
			fail("expected %s", r.Inspect(want))
		}
	default:
		if c.IsAbrupt() {
			fail("expected normal completion")
		}
	}
	return res, nil
}
