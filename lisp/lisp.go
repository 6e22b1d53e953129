// Package lisp is a minimal S-expression evaluator used to materialize
// dynamic dictionary surfaces, e.g. the date of the day:
//
//	(strftime (current-datetime) "%Y-%m-%d")
//
// The reader recognizes parentheses and double-quoted strings (no escapes);
// every other token is a symbol. A symbol evaluates to its built-in function;
// the built-in set is small and closed: current-datetime, strftime and "."
// (string concatenation).
package lisp

import (
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
	"github.com/pkg/errors"
)

type NodeType int

const (
	TypeList NodeType = iota
	TypeString
	TypeSymbol
	TypeFunction
	TypePointer
)

// Node is the tagged value variant of the interpreter.
type Node interface {
	Type() NodeType
}

type ListNode struct {
	Children []Node
}

func (*ListNode) Type() NodeType { return TypeList }

type StringNode struct {
	Value string
}

func (*StringNode) Type() NodeType { return TypeString }

type SymbolNode struct {
	Name string
}

func (*SymbolNode) Type() NodeType { return TypeSymbol }

type FunctionNode struct {
	Fn func(args []Node) (Node, error)
}

func (*FunctionNode) Type() NodeType { return TypeFunction }

// PointerNode carries the opaque "now" produced by current-datetime.
type PointerNode struct {
	Time time.Time
}

func (*PointerNode) Type() NodeType { return TypePointer }

// Evaluator is stateless apart from its clock, which tests may pin.
type Evaluator struct {
	now func() time.Time
}

func NewEvaluator() *Evaluator {
	return &Evaluator{now: time.Now}
}

// NewEvaluatorAt returns an evaluator whose current-datetime is fixed.
func NewEvaluatorAt(now func() time.Time) *Evaluator {
	return &Evaluator{now: now}
}

// Run parses and evaluates sexp and returns the resulting string.
func (e *Evaluator) Run(sexp string) (string, error) {
	node, err := e.RunNode(sexp)
	if err != nil {
		return "", err
	}
	s, ok := node.(*StringNode)
	if !ok {
		return "", errors.Errorf("expression did not produce a string: %s", sexp)
	}
	return s.Value, nil
}

// RunNode parses and evaluates sexp.
func (e *Evaluator) RunNode(sexp string) (Node, error) {
	node, err := Parse(sexp)
	if err != nil {
		return nil, err
	}
	return e.Eval(node)
}

// Eval applies the evaluation rules: lists are (proc arg*), symbols resolve
// to built-ins, everything else evaluates to itself.
func (e *Evaluator) Eval(x Node) (Node, error) {
	switch n := x.(type) {
	case *SymbolNode:
		fn, err := e.builtin(n.Name)
		if err != nil {
			return nil, err
		}
		return fn, nil
	case *ListNode:
		if len(n.Children) == 0 {
			return nil, errors.New("cannot evaluate empty list")
		}
		exps := make([]Node, 0, len(n.Children))
		for _, child := range n.Children {
			v, err := e.Eval(child)
			if err != nil {
				return nil, err
			}
			exps = append(exps, v)
		}
		proc, ok := exps[0].(*FunctionNode)
		if !ok {
			return nil, errors.New("head of list is not a function")
		}
		return proc.Fn(exps[1:])
	default:
		return x, nil
	}
}

func (e *Evaluator) builtin(symbol string) (*FunctionNode, error) {
	switch symbol {
	case "current-datetime":
		return &FunctionNode{Fn: func(args []Node) (Node, error) {
			return &PointerNode{Time: e.now()}, nil
		}}, nil
	case "strftime":
		return &FunctionNode{Fn: builtinStrftime}, nil
	case ".":
		return &FunctionNode{Fn: builtinConcat}, nil
	default:
		return nil, errors.Errorf("unknown function: %s", symbol)
	}
}

func builtinStrftime(args []Node) (Node, error) {
	if len(args) != 2 {
		return nil, errors.New("strftime requires (datetime, format)")
	}
	dt, ok := args[0].(*PointerNode)
	if !ok {
		return nil, errors.New("strftime: first argument is not a datetime")
	}
	format, ok := args[1].(*StringNode)
	if !ok {
		return nil, errors.New("strftime: second argument is not a string")
	}
	return &StringNode{Value: strftime.Format(format.Value, dt.Time)}, nil
}

func builtinConcat(args []Node) (Node, error) {
	if len(args) != 2 {
		return nil, errors.New(". requires two strings")
	}
	a, ok := args[0].(*StringNode)
	if !ok {
		return nil, errors.New(".: first argument is not a string")
	}
	b, ok := args[1].(*StringNode)
	if !ok {
		return nil, errors.New(".: second argument is not a string")
	}
	return &StringNode{Value: a.Value + b.Value}, nil
}

// Parse reads one expression from src.
func Parse(src string) (Node, error) {
	node, _, err := readFrom(tokenize(src), src)
	if err != nil {
		return nil, err
	}
	return node, nil
}

func tokenize(src string) []string {
	var tokens []string
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == '(' || c == ')':
			tokens = append(tokens, string(c))
			i++
		case c == '"':
			j := strings.IndexByte(src[i+1:], '"')
			if j < 0 {
				tokens = append(tokens, src[i:])
				i = len(src)
			} else {
				tokens = append(tokens, src[i:i+j+2])
				i += j + 2
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		default:
			j := i
			for j < len(src) && !strings.ContainsRune("() \t\n\r", rune(src[j])) {
				j++
			}
			tokens = append(tokens, src[i:j])
			i = j
		}
	}
	return tokens
}

func readFrom(tokens []string, src string) (Node, []string, error) {
	if len(tokens) == 0 {
		return nil, nil, errors.Errorf("unexpected EOF while reading: %s", src)
	}
	token := tokens[0]
	tokens = tokens[1:]
	switch token {
	case "(":
		var values []Node
		for {
			if len(tokens) == 0 {
				return nil, nil, errors.Errorf("unbalanced parentheses: %s", src)
			}
			if tokens[0] == ")" {
				tokens = tokens[1:]
				return &ListNode{Children: values}, tokens, nil
			}
			v, rest, err := readFrom(tokens, src)
			if err != nil {
				return nil, nil, err
			}
			values = append(values, v)
			tokens = rest
		}
	case ")":
		return nil, nil, errors.New("unexpected ')'")
	default:
		return atom(token), tokens, nil
	}
}

func atom(token string) Node {
	if len(token) >= 2 && token[0] == '"' && token[len(token)-1] == '"' {
		return &StringNode{Value: token[1 : len(token)-1]}
	}
	return &SymbolNode{Name: token}
}
