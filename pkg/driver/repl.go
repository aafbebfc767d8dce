package driver

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"objcore/pkg/builtins"
	"objcore/pkg/vm"
)

type sessionCommand struct {
	usage string
	help  string
}

var sessionCommands = map[string]sessionCommand{
	"new":   {"new <name> [kind] [primitive]", "create an object of an exotic kind (default ordinary)"},
	"set":   {"set <name> <key> <value> [attr...]", "define an own data property (attrs default to all)"},
	"get":   {"get <name> <key>", "read a property through the prototype chain"},
	"tag":   {"tag <name> <value>", "set the object's Symbol.toStringTag"},
	"proto": {"proto <name> <value>", "set the prototype to an object or null"},
	"keys":  {"keys <name>", "list own keys in enumeration order"},
	"call":  {"call <method> <this> [arg...]", "call an Object.prototype method"},
	"print": {"print <value>", "inspect a value"},
	"help":  {"help", "show this message"},
}

var sessionCommandOrder = []string{"new", "set", "get", "tag", "proto", "keys", "call", "print", "help"}

const valueNotationHelp = `Values: 'quoted' strings, numbers, true/false, null, undefined, $name or
$Global.path, Symbol.<wellKnown>, [a, b] arrays. Kinds: ordinary, array, function,
error, boolean, number, string, symbol, date, regexp.`

// Session is an interactive object-model workspace: named objects live in a
// single realm across commands.
type Session struct {
	env *env
	out io.Writer
}

// NewSession creates a session over a freshly initialized realm.
func NewSession(out io.Writer) (*Session, error) {
	r, err := builtins.NewRealm(1)
	if err != nil {
		return nil, err
	}
	return &Session{env: newEnv(r), out: out}, nil
}

// Realm returns the realm the session operates on.
func (s *Session) Realm() *vm.Realm {
	return s.env.realm
}

// Execute runs one command line. Errors describe malformed commands; thrown
// exceptions are printed as results.
func (s *Session) Execute(line string) error {
	tokens, err := splitCommand(line)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}
	cmd, args := tokens[0], tokens[1:]
	debugPrintf("// [Driver] command %s %v\n", cmd, args)

	switch cmd {
	case "help":
		s.writeHelp()
		return nil
	case "new":
		return s.cmdNew(args)
	case "set":
		return s.cmdSet(args)
	case "get":
		return s.cmdGet(args)
	case "tag":
		return s.cmdTag(args)
	case "proto":
		return s.cmdProto(args)
	case "keys":
		return s.cmdKeys(args)
	case "call":
		return s.cmdCall(args)
	case "print":
		return s.cmdPrint(args)
	}
	return fmt.Errorf("unknown command %q (try help)", cmd)
}

func (s *Session) writeHelp() {
	fmt.Fprintln(s.out, "Commands:")
	for _, name := range sessionCommandOrder {
		cmd := sessionCommands[name]
		fmt.Fprintf(s.out, "  %-36s %s\n", cmd.usage, cmd.help)
	}
	fmt.Fprintln(s.out, valueNotationHelp)
}

func arity(cmd string, args []string, least, most int) error {
	if len(args) < least || (most >= 0 && len(args) > most) {
		return fmt.Errorf("usage: %s", sessionCommands[cmd].usage)
	}
	return nil
}

func (s *Session) cmdNew(args []string) error {
	if err := arity("new", args, 1, 3); err != nil {
		return err
	}
	kind := ""
	if len(args) > 1 {
		kind = args[1]
	}
	var primitive yaml.Node
	if len(args) > 2 {
		node, err := parseValueToken(args[2])
		if err != nil {
			return err
		}
		primitive = *node
	}
	ref, err := s.env.allocate(args[0], kind, &primitive, "")
	if err != nil {
		return err
	}
	if err := s.env.bind(args[0], ref); err != nil {
		return err
	}
	fmt.Fprintln(s.out, s.env.realm.Inspect(vm.ObjectValue(ref)))
	return nil
}

func (s *Session) object(name string) (vm.ObjectRef, error) {
	node, err := parseValueToken(name)
	if err != nil {
		return vm.NullRef, err
	}
	if node.Kind == yaml.ScalarNode && node.Style == 0 && !strings.HasPrefix(node.Value, "$") {
		// Bare names refer to session objects
		if ref, ok := s.env.names[node.Value]; ok {
			return ref, nil
		}
		if !strings.HasPrefix(node.Value, "Symbol.") {
			return vm.NullRef, fmt.Errorf("unknown object %q", node.Value)
		}
	}
	return s.env.resolveObject(node, name)
}

func (s *Session) cmdSet(args []string) error {
	if err := arity("set", args, 3, -1); err != nil {
		return err
	}
	obj, err := s.object(args[0])
	if err != nil {
		return err
	}
	key, err := s.key(args[1])
	if err != nil {
		return err
	}
	value, err := s.value(args[2])
	if err != nil {
		return err
	}
	var attrNames []string
	if len(args) > 3 {
		attrNames = args[3:]
	}
	attrs, err := parseAttributes(attrNames)
	if err != nil {
		return err
	}
	return s.env.defineData(obj, key, value, attrs)
}

func (s *Session) cmdGet(args []string) error {
	if err := arity("get", args, 2, 2); err != nil {
		return err
	}
	obj, err := s.object(args[0])
	if err != nil {
		return err
	}
	key, err := s.key(args[1])
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, s.env.describe(s.env.realm.GetProperty(obj, key)))
	return nil
}

func (s *Session) cmdTag(args []string) error {
	if err := arity("tag", args, 2, 2); err != nil {
		return err
	}
	obj, err := s.object(args[0])
	if err != nil {
		return err
	}
	value, err := s.value(args[1])
	if err != nil {
		return err
	}
	return s.env.defineData(obj, vm.SymbolKey(s.env.realm.SymbolToStringTag), value, vm.Configurable)
}

func (s *Session) cmdProto(args []string) error {
	if err := arity("proto", args, 2, 2); err != nil {
		return err
	}
	obj, err := s.object(args[0])
	if err != nil {
		return err
	}
	node, err := parseValueToken(args[1])
	if err != nil {
		return err
	}
	return s.env.setPrototype(obj, node)
}

func (s *Session) cmdKeys(args []string) error {
	if err := arity("keys", args, 1, 1); err != nil {
		return err
	}
	obj, err := s.object(args[0])
	if err != nil {
		return err
	}
	r := s.env.realm
	for _, key := range r.OrderedOwnKeys(obj) {
		desc, _ := r.GetOwnProperty(obj, key)
		fmt.Fprintf(s.out, "%s\t%s\n", key, desc.Attributes)
	}
	return nil
}

func (s *Session) cmdCall(args []string) error {
	if err := arity("call", args, 2, -1); err != nil {
		return err
	}
	this, err := s.value(args[1])
	if err != nil {
		return err
	}
	callArgs := make([]vm.Value, 0, len(args)-2)
	for _, tok := range args[2:] {
		v, err := s.value(tok)
		if err != nil {
			return err
		}
		callArgs = append(callArgs, v)
	}
	c := s.env.call(s.env.realm.ObjectPrototype, args[0], this, callArgs)
	fmt.Fprintln(s.out, s.env.describe(c))
	return nil
}

func (s *Session) cmdPrint(args []string) error {
	if err := arity("print", args, 1, 1); err != nil {
		return err
	}
	v, err := s.value(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, s.env.realm.Inspect(v))
	return nil
}

func (s *Session) value(tok string) (vm.Value, error) {
	node, err := parseValueToken(tok)
	if err != nil {
		return vm.Undefined, err
	}
	return s.env.resolve(node)
}

func (s *Session) key(tok string) (vm.PropertyKey, error) {
	node, err := parseValueToken(tok)
	if err != nil {
		return vm.PropertyKey{}, err
	}
	return s.env.resolveKey(node)
}

// parseValueToken reads one command argument with the YAML value notation.
func parseValueToken(tok string) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(tok), &doc); err != nil {
		return nil, fmt.Errorf("invalid value %s: %w", tok, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: tok}, nil
	}
	return doc.Content[0], nil
}

// splitCommand splits a line on whitespace, keeping quoted strings and
// bracketed flow values together. Tokens keep their quotes.
func splitCommand(line string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	var quote rune
	depth := 0
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}
	for _, ch := range line {
		switch {
		case quote != 0:
			current.WriteRune(ch)
			if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
			current.WriteRune(ch)
		case ch == '[' || ch == '{':
			depth++
			current.WriteRune(ch)
		case ch == ']' || ch == '}':
			depth--
			current.WriteRune(ch)
		case (ch == ' ' || ch == '\t') && depth == 0:
			flush()
		default:
			current.WriteRune(ch)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced brackets")
	}
	flush()
	return tokens, nil
}
