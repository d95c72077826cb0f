package pdgraph

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type (
	// Token is a single element of a Message: either a number or an atom
	// (symbol). The zero Token is the number 0.
	Token struct {
		atom   string
		number float64
		isAtom bool
	}

	// Message is the payload travelling over message connections: an ordered
	// sequence of tokens. A message consisting of the lone atom "bang" is the
	// trigger message and is distinct from the number 0. When the first token
	// is an atom, it usually selects an object-specific sub-protocol (e.g.
	// "set", "start", "stop") and the remaining tokens are its arguments.
	Message []Token
)

// BangAtom is the atom that triggers objects.
const BangAtom = "bang"

// Number returns a numeric token.
func Number(f float64) Token { return Token{number: f} }

// Atom returns a symbol token.
func Atom(s string) Token { return Token{atom: s, isAtom: true} }

// ParseToken converts a textual token into a number, if it parses as a finite
// float, or an atom otherwise.
func ParseToken(s string) Token {
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return Number(f)
	}
	return Atom(s)
}

// IsNumber tells if the token is numeric.
func (t Token) IsNumber() bool { return !t.isAtom }

// Float returns the numeric value of the token, or NaN if the token is an
// atom. Receivers must check for NaN before using the value.
func (t Token) Float() float64 {
	if t.isAtom {
		return math.NaN()
	}
	return t.number
}

// Atom returns the symbol of the token, or "" if the token is numeric.
func (t Token) Atom() string {
	if t.isAtom {
		return t.atom
	}
	return ""
}

func (t Token) String() string {
	if t.isAtom {
		return t.atom
	}
	return strconv.FormatFloat(t.number, 'g', -1, 64)
}

// Bang returns the trigger message.
func Bang() Message { return Message{Atom(BangAtom)} }

// Float returns a message with a single number.
func Float(f float64) Message { return Message{Number(f)} }

// Atoms builds a message out of Go values: numbers become numeric tokens,
// strings are parsed with ParseToken and Tokens are kept as is.
func Atoms(values ...any) Message {
	ret := make(Message, 0, len(values))
	for _, v := range values {
		switch x := v.(type) {
		case Token:
			ret = append(ret, x)
		case string:
			ret = append(ret, ParseToken(x))
		case float64:
			ret = append(ret, Number(x))
		case float32:
			ret = append(ret, Number(float64(x)))
		case int:
			ret = append(ret, Number(float64(x)))
		default:
			ret = append(ret, Atom(fmt.Sprint(x)))
		}
	}
	return ret
}

// ParseMessage splits a whitespace separated string into tokens.
func ParseMessage(s string) Message {
	fields := strings.Fields(s)
	ret := make(Message, len(fields))
	for i, f := range fields {
		ret[i] = ParseToken(f)
	}
	return ret
}

// IsBang tells if the message is the lone trigger atom.
func (m Message) IsBang() bool {
	return len(m) == 1 && m[0].isAtom && m[0].atom == BangAtom
}

// Float converts a single-number message into its value. Anything else
// (empty messages, atoms, lists) converts to NaN.
func (m Message) Float() float64 {
	if len(m) != 1 {
		return math.NaN()
	}
	return m[0].Float()
}

// Tokens returns the message as a flat token array. The returned slice is a
// copy and can be modified freely.
func (m Message) Tokens() []Token {
	ret := make([]Token, len(m))
	copy(ret, m)
	return ret
}

// Head returns the leading atom of the message, selecting the sub-protocol,
// or "" if the message is empty or starts with a number.
func (m Message) Head() string {
	if len(m) == 0 {
		return ""
	}
	return m[0].Atom()
}

// Args returns the tokens after the head.
func (m Message) Args() Message {
	if len(m) == 0 {
		return nil
	}
	return m[1:]
}

// Copy makes a deep copy of the message.
func (m Message) Copy() Message {
	if m == nil {
		return nil
	}
	return Message(m.Tokens())
}

// Substitute replaces the positional placeholders $1, $2, ... with the
// corresponding tokens of args. A token that is exactly a placeholder takes
// the type of the argument; placeholders embedded in longer atoms (e.g.
// "$1-left") are substituted textually. Placeholders without a matching
// argument become 0.
func (m Message) Substitute(args Message) Message {
	ret := make(Message, len(m))
	for i, t := range m {
		ret[i] = t.substitute(args)
	}
	return ret
}

func (t Token) substitute(args Message) Token {
	if !t.isAtom || !strings.Contains(t.atom, "$") {
		return t
	}
	if n, ok := placeholderIndex(t.atom); ok {
		if n >= 1 && n <= len(args) {
			return args[n-1]
		}
		return Number(0)
	}
	var b strings.Builder
	s := t.atom
	for len(s) > 0 {
		j := strings.IndexByte(s, '$')
		if j < 0 {
			b.WriteString(s)
			break
		}
		b.WriteString(s[:j])
		k := j + 1
		for k < len(s) && s[k] >= '0' && s[k] <= '9' {
			k++
		}
		if k == j+1 {
			b.WriteByte('$')
			s = s[k:]
			continue
		}
		n, _ := strconv.Atoi(s[j+1 : k])
		if n >= 1 && n <= len(args) {
			b.WriteString(args[n-1].String())
		} else {
			b.WriteString("0")
		}
		s = s[k:]
	}
	return ParseToken(b.String())
}

func placeholderIndex(s string) (int, bool) {
	if len(s) < 2 || s[0] != '$' {
		return 0, false
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (m Message) String() string {
	parts := make([]string, len(m))
	for i, t := range m {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// UnmarshalYAML accepts either a scalar ("osc~ 440", 440) or a sequence
// ([440, $1]).
func (m *Message) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*m = ParseMessage(value.Value)
		return nil
	case yaml.SequenceNode:
		ret := make(Message, 0, len(value.Content))
		for _, n := range value.Content {
			if n.Kind != yaml.ScalarNode {
				return fmt.Errorf("message token at line %v is not a scalar", n.Line)
			}
			ret = append(ret, ParseToken(n.Value))
		}
		*m = ret
		return nil
	}
	return fmt.Errorf("cannot decode a message from yaml node at line %v", value.Line)
}

// MarshalYAML encodes the message as a single space separated string.
func (m Message) MarshalYAML() (any, error) {
	return m.String(), nil
}

// UnmarshalJSON accepts either a string or an array of strings and numbers.
func (m *Message) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = ParseMessage(s)
		return nil
	}
	var list []any
	if err := json.Unmarshal(data, &list); err != nil {
		return errors.New("message must be a string or an array")
	}
	*m = Atoms(list...)
	return nil
}

// MarshalJSON encodes the message as a single space separated string.
func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}
