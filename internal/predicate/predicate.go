package predicate

import (
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/keith-mcqueen/Temples/internal/record"
	"github.com/keith-mcqueen/Temples/internal/shared/errors"
)

// DefaultTimeout bounds the evaluation of one row.
const DefaultTimeout = time.Second

// RowBinding is the global holding the whole row.
const RowBinding = "row"

// Predicate is a compiled boolean expression over a raw row. A nil
// *Predicate accepts every row.
type Predicate struct {
	source  string
	program *goja.Program
	timeout time.Duration
}

// Compile compiles a JavaScript expression. An empty expression yields a nil
// predicate. Syntax errors are configuration errors.
func Compile(expr string) (*Predicate, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	program, err := goja.Compile("condition", "("+expr+"\n)", false)
	if err != nil {
		return nil, errors.NewConfigError("condition", fmt.Sprintf("cannot compile %q", expr), err)
	}
	return &Predicate{source: expr, program: program, timeout: DefaultTimeout}, nil
}

// MustCompile is Compile that panics on error.
func MustCompile(expr string) *Predicate {
	p, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// WithTimeout returns a copy with a different per-row timeout.
func (p *Predicate) WithTimeout(d time.Duration) *Predicate {
	if p == nil {
		return nil
	}
	c := *p
	c.timeout = d
	return &c
}

// String returns the source expression.
func (p *Predicate) String() string {
	if p == nil {
		return ""
	}
	return p.source
}

// Eval reports whether raw satisfies the expression. Each call runs in a
// fresh runtime: every field is a global and the row is also reachable as
// row["Field Name"]. A column named row shadows that binding. The result is
// coerced with JavaScript truthiness.
func (p *Predicate) Eval(raw *record.Record) (bool, error) {
	if p == nil {
		return true, nil
	}

	vm := goja.New()

	row := make(map[string]interface{}, raw.Len())
	raw.Range(func(k string, v any) bool {
		row[k] = v
		return true
	})
	if err := vm.Set(RowBinding, row); err != nil {
		return false, err
	}

	var bindErr error
	raw.Range(func(k string, v any) bool {
		if err := vm.Set(k, v); err != nil {
			bindErr = err
			return false
		}
		return true
	})
	if bindErr != nil {
		return false, bindErr
	}

	if p.timeout > 0 {
		timer := time.AfterFunc(p.timeout, func() {
			vm.Interrupt("condition timeout exceeded")
		})
		defer timer.Stop()
	}

	val, err := vm.RunProgram(p.program)
	if err != nil {
		return false, fmt.Errorf("evaluate %q: %w", p.source, err)
	}
	return val.ToBoolean(), nil
}
