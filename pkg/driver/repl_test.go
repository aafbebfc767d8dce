package driver

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func newTestSession(t *testing.T) (*Session, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	s, err := NewSession(&out)
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return s, &out
}

// run executes each line and returns the output of the last one.
func run(t *testing.T, s *Session, out *bytes.Buffer, lines ...string) string {
	t.Helper()
	for _, line := range lines {
		out.Reset()
		if err := s.Execute(line); err != nil {
			t.Fatalf("%q failed: %v", line, err)
		}
	}
	return strings.TrimRight(out.String(), "\n")
}

func TestSessionObjectPrototypeCalls(t *testing.T) {
	s, out := newTestSession(t)
	run(t, s, out,
		"new p2",
		"proto p2 null",
		"set p2 shared 1",
		"new p1",
		"proto p1 $p2",
		"new b",
		"proto b $p1",
		"set b own 2",
		"set b hidden 3 writable",
	)

	tests := []struct {
		line string
		want string
	}{
		{"call hasOwnProperty $b own", "true"},
		{"call hasOwnProperty $b shared", "false"},
		{"call propertyIsEnumerable $b hidden", "false"},
		{"call propertyIsEnumerable $b own", "true"},
		{"call isPrototypeOf $p2 $b", "true"},
		{"call isPrototypeOf $b $b", "false"},
		{"call isPrototypeOf $b 5", "false"},
		{"call toString null", "[object Null]"},
		{"call toString undefined", "[object Undefined]"},
		{"call toString [1,2]", "[object Array]"},
		{"call valueOf 'text'", "text"},
		{"get b shared", "1"},
		{"get b missing", "undefined"},
	}
	for _, tt := range tests {
		if got := run(t, s, out, tt.line); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestSessionThrowsArePrinted(t *testing.T) {
	s, out := newTestSession(t)
	got := run(t, s, out, "call hasOwnProperty undefined x")
	if got != "Uncaught TypeError: Cannot convert undefined to object" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestSessionTagAndKinds(t *testing.T) {
	s, out := newTestSession(t)
	if got := run(t, s, out, "new arr array"); got != "[]" {
		t.Errorf("new array printed %q", got)
	}
	if got := run(t, s, out, "call toString $arr"); got != "[object Array]" {
		t.Errorf("array tag = %q", got)
	}
	if got := run(t, s, out, "tag arr Foo", "call toString $arr"); got != "[object Foo]" {
		t.Errorf("overridden tag = %q", got)
	}
	if got := run(t, s, out, "new n number 5", "call valueOf $n"); got != "5" {
		t.Errorf("number wrapper valueOf = %q", got)
	}
	if got := run(t, s, out, "new d date 0", "call toString $d"); got != "[object Date]" {
		t.Errorf("date tag = %q", got)
	}
}

func TestSessionKeys(t *testing.T) {
	s, out := newTestSession(t)
	got := run(t, s, out,
		"new o",
		"set o b 1",
		"set o 2 1 enumerable",
		"set o a 1 none",
		"set o Symbol.iterator 1",
		"keys o",
	)
	lines := strings.Split(got, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 keys, got %q", got)
	}
	for i, prefix := range []string{"2\t", "b\t", "a\t", "[Symbol(Symbol.iterator)]\t"} {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Errorf("line %d = %q, want prefix %q", i, lines[i], prefix)
		}
	}
}

func TestSessionErrors(t *testing.T) {
	s, out := newTestSession(t)
	run(t, s, out, "new o", "new frozen")
	s.Realm().Object(s.env.names["frozen"]).PreventExtensions()

	tests := []struct {
		line string
		want string
	}{
		{"frobnicate", `unknown command "frobnicate"`},
		{"new", "usage: new <name> [kind] [primitive]"},
		{"get o", "usage: get <name> <key>"},
		{"new o", `object "o" already defined`},
		{"new x widget", `unknown kind "widget"`},
		{"set o k 1 sticky", `unknown attribute "sticky"`},
		{"set frozen k 1", "cannot define property k"},
		{"proto o 5", "prototype must be an object or null"},
		{"get nothing k", `unknown object "nothing"`},
		{"print 'open", "unterminated ' quote"},
		{"print [1, 2", "unbalanced brackets"},
	}
	for _, tt := range tests {
		err := s.Execute(tt.line)
		if err == nil {
			t.Errorf("%q: expected an error", tt.line)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%q: error %q does not mention %q", tt.line, err, tt.want)
		}
	}
}

func TestSessionHelp(t *testing.T) {
	s, out := newTestSession(t)
	got := run(t, s, out, "help")
	for _, name := range sessionCommandOrder {
		if !strings.Contains(got, sessionCommands[name].usage) {
			t.Errorf("help is missing %q", sessionCommands[name].usage)
		}
	}
	if run(t, s, out, "   ") != "" {
		t.Errorf("blank lines should print nothing")
	}
}

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"call toString $a", []string{"call", "toString", "$a"}},
		{"  set\to  k   1 ", []string{"set", "o", "k", "1"}},
		{`print "two words"`, []string{"print", `"two words"`}},
		{"print 'it''s'", []string{"print", "'it''s'"}},
		{"print [1, [2, 3]] {a: 1}", []string{"print", "[1, [2, 3]]", "{a: 1}"}},
		{"", nil},
	}
	for _, tt := range tests {
		got, err := splitCommand(tt.line)
		if err != nil {
			t.Errorf("splitCommand(%q) failed: %v", tt.line, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitCommand(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}
