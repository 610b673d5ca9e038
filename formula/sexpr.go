package formula

import (
	"math"
	"strconv"
	"strings"

	"github.com/neurlang/logformula/logmath"
	"github.com/pkg/errors"
)

// ErrSyntax is returned for malformed expressions.
var ErrSyntax = errors.New("formula: syntax error")

// Resolver supplies the leaves for parameter references while parsing.
type Resolver interface {
	Resolve(name string) (Node, error)
	ResolveID(id int) (Node, error)
}

// Namer names parameters while formatting.
type Namer interface {
	Name(id int) (string, bool)
}

// Parse reads one expression in the s-expression syntax:
//
//	(+ a b ...)   sum
//	(* a b ...)   product
//	(/ a b)       quotient
//	(pow a b)     a to the power b
//	(exp a) (log a) (neg a)
//	0.25 -3       constants
//	#-700 -#2     constants given by log magnitude, optionally negative
//	$name $"a b"  parameter by feature name
//	@12           parameter by id
func Parse(src string, r Resolver) (Node, error) {
	p := parser{src: src, r: r}
	n, err := p.expr()
	if err != nil {
		return nil, err
	}
	p.space()
	if p.pos != len(p.src) {
		return nil, p.fail("trailing input")
	}
	return n, nil
}

type parser struct {
	src string
	pos int
	r   Resolver
}

func (p *parser) fail(msg string) error {
	return errors.Wrapf(ErrSyntax, "%s at offset %d", msg, p.pos)
}

func (p *parser) space() {
	for p.pos < len(p.src) && strings.IndexByte(" \t\r\n", p.src[p.pos]) >= 0 {
		p.pos++
	}
}

func (p *parser) atom() string {
	start := p.pos
	for p.pos < len(p.src) && strings.IndexByte(" \t\r\n()", p.src[p.pos]) < 0 {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) expr() (Node, error) {
	p.space()
	if p.pos >= len(p.src) {
		return nil, p.fail("unexpected end")
	}
	switch p.src[p.pos] {
	case '(':
		p.pos++
		p.space()
		op := p.atom()
		var args []Node
		for {
			p.space()
			if p.pos >= len(p.src) {
				return nil, p.fail("unclosed (")
			}
			if p.src[p.pos] == ')' {
				p.pos++
				break
			}
			n, err := p.expr()
			if err != nil {
				return nil, err
			}
			args = append(args, n)
		}
		return p.apply(op, args)
	case ')':
		return nil, p.fail("unexpected )")
	case '$':
		p.pos++
		var name string
		if p.pos < len(p.src) && p.src[p.pos] == '"' {
			quoted, err := strconv.QuotedPrefix(p.src[p.pos:])
			if err != nil {
				return nil, p.fail("bad quoted name")
			}
			p.pos += len(quoted)
			name, _ = strconv.Unquote(quoted)
		} else {
			name = p.atom()
		}
		return p.r.Resolve(name)
	case '@':
		p.pos++
		id, err := strconv.Atoi(p.atom())
		if err != nil {
			return nil, p.fail("bad parameter id")
		}
		return p.r.ResolveID(id)
	}
	tok := p.atom()
	neg := strings.HasPrefix(tok, "-#")
	if neg || strings.HasPrefix(tok, "#") {
		l, err := strconv.ParseFloat(strings.TrimPrefix(strings.TrimPrefix(tok, "-"), "#"), 64)
		if err != nil {
			return nil, p.fail("bad log constant " + strconv.Quote(tok))
		}
		return ConstScalar(logmath.Scalar{Log: l, Negative: neg}), nil
	}
	x, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return nil, p.fail("bad constant " + strconv.Quote(tok))
	}
	return Const(x), nil
}

func (p *parser) apply(op string, args []Node) (Node, error) {
	unary := func() error {
		if len(args) != 1 {
			return p.fail(op + " takes one argument")
		}
		return nil
	}
	switch op {
	case "+":
		return NewSum(args...), nil
	case "*":
		return NewProduct(args...), nil
	case "/":
		if len(args) != 2 {
			return nil, p.fail("/ takes two arguments")
		}
		return NewDivide(args[0], args[1]), nil
	case "pow":
		if len(args) != 2 {
			return nil, p.fail("pow takes two arguments")
		}
		return NewPower(args[0], args[1]), nil
	case "exp":
		if err := unary(); err != nil {
			return nil, err
		}
		return NewExp(args[0]), nil
	case "log":
		if err := unary(); err != nil {
			return nil, err
		}
		return NewLog(args[0]), nil
	case "neg":
		if err := unary(); err != nil {
			return nil, err
		}
		return NewNegate(args[0]), nil
	}
	return nil, p.fail("unknown operator " + strconv.Quote(op))
}

// Format prints n in the syntax read by Parse. Lookups print by name when
// namer knows it; namer may be nil. A Root prints as (root+) or (root*).
func Format(n Node, namer Namer) string {
	var sb strings.Builder
	format(&sb, n, namer)
	return sb.String()
}

func formatName(name string) string {
	if name == "" || strings.ContainsAny(name, " \t\r\n()\"") {
		return strconv.Quote(name)
	}
	return name
}

func format(sb *strings.Builder, n Node, namer Namer) {
	list := func(op string, cs ...Node) {
		sb.WriteString("(" + op)
		for _, c := range cs {
			sb.WriteByte(' ')
			format(sb, c, namer)
		}
		sb.WriteByte(')')
	}
	switch n := n.(type) {
	case *Constant:
		x := n.Value.Exp()
		if n.Value.IsZero() || (x != 0 && !math.IsInf(x, 0) && logmath.FromReal(x) == n.Value) {
			sb.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
			return
		}
		if n.Value.Negative {
			sb.WriteByte('-')
		}
		sb.WriteString("#" + strconv.FormatFloat(n.Value.Log, 'g', -1, 64))
	case *Lookup:
		if namer != nil {
			if name, ok := namer.Name(n.Index); ok {
				sb.WriteString("$" + formatName(name))
				return
			}
		}
		sb.WriteString("@" + strconv.Itoa(n.Index))
	case *Sum:
		list("+", n.Children...)
	case *Product:
		list("*", n.Children...)
	case *Exp:
		list("exp", n.X)
	case *Log:
		list("log", n.X)
	case *Negate:
		list("neg", n.X)
	case *Divide:
		list("/", n.A, n.B)
	case *Power:
		list("pow", n.X, n.Y)
	case *Root:
		if n.Op == AggregateProduct {
			sb.WriteString("(root*)")
		} else {
			sb.WriteString("(root+)")
		}
	default:
		sb.WriteString("(?)")
	}
}
