// Package cel selects the inspected root with a CEL expression. The input is
// bound to "_".
package cel

import (
	"fmt"
	"sort"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"

	"github.com/oakwood-commons/kvi/internal/value"
)

// RootVariable is the name the input is bound to.
const RootVariable = "_"

// Evaluator compiles and evaluates expressions against value trees.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator returns an evaluator with the strings, encoders, lists and math
// extensions loaded.
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable(RootVariable, cel.DynType),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// Evaluate runs expr with root bound to "_". Mappings in the result come back
// with sorted keys.
func (e *Evaluator) Evaluate(expr string, root value.Value) (value.Value, error) {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return value.Value{}, fmt.Errorf("compilation error: %w", issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return value.Value{}, fmt.Errorf("program error: %w", err)
	}
	out, _, err := prg.Eval(map[string]any{RootVariable: value.ToNative(root)})
	if err != nil {
		return value.Value{}, fmt.Errorf("eval error: %w", err)
	}
	return value.FromAny(ToGo(out)), nil
}

// Functions lists the non-operator functions and macros of the environment.
func (e *Evaluator) Functions() []string {
	seen := map[string]bool{}
	for _, fn := range e.env.Functions() {
		if !isOperator(fn.Name()) {
			seen[fn.Name()] = true
		}
	}
	for _, m := range e.env.Macros() {
		if !isOperator(m.Function()) {
			seen[m.Function()] = true
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func isOperator(name string) bool {
	if name == "" || name[0] == '@' {
		return true
	}
	if name[0] == '_' && name[len(name)-1] == '_' {
		return true
	}
	switch name {
	case "!_", "-_", "_[_]", "_?_:_":
		return true
	}
	return false
}

// ToGo converts a CEL result into plain Go values.
func ToGo(val ref.Val) any {
	if val == nil {
		return nil
	}
	switch v := val.(type) {
	case types.Null:
		return nil
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return string(v)
	}
	if valuer, ok := val.(interface{ Value() any }); ok {
		return nativeOf(valuer.Value())
	}
	return val
}

// nativeOf unwraps ref.Val elements nested inside a list or map payload.
func nativeOf(v any) any {
	switch t := v.(type) {
	case ref.Val:
		return ToGo(t)
	case []ref.Val:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = ToGo(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = nativeOf(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = nativeOf(e)
		}
		return out
	case map[ref.Val]ref.Val:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(ToGo(k))] = ToGo(e)
		}
		return out
	default:
		return v
	}
}
