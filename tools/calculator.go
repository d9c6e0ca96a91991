package tools

import (
	"fmt"
	"math"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/hupe1980/agentgraph/core"
	"github.com/hupe1980/agentgraph/tool"
)

// CalculatorArgs are the arguments of calculator.
type CalculatorArgs struct {
	Expression string `json:"expression" jsonschema_description:"Math expression using + - * / ** ^ and parentheses, plus functions such as sin, cos, tan, log, sqrt"`
}

var calcEnv = map[string]any{
	"pi": math.Pi,
	"e":  math.E,
}

var calcOptions = []expr.Option{
	expr.Env(calcEnv),
	expr.DisableAllBuiltins(),
	unary("abs", math.Abs),
	unary("sqrt", math.Sqrt),
	unary("sin", math.Sin),
	unary("cos", math.Cos),
	unary("tan", math.Tan),
	unary("log10", math.Log10),
	unary("exp", math.Exp),
	unary("floor", math.Floor),
	unary("ceil", math.Ceil),
	expr.Function("log", calcLog),
	expr.Function("round", calcRound),
	expr.Function("pow", calcPow),
	expr.Function("min", fold("min", math.Min)),
	expr.Function("max", fold("max", math.Max)),
	expr.Function("sum", fold("sum", func(a, b float64) float64 { return a + b })),
}

// NewCalculatorTool returns calculator. Evaluation is sandboxed: only the
// listed functions and constants are reachable.
func NewCalculatorTool() *tool.FunctionTool {
	return tool.NewTypedTool("calculator", "Evaluate a mathematical expression.",
		func(_ *core.ToolContext, args CalculatorArgs) (any, error) {
			return Calculate(args.Expression), nil
		})
}

// Calculate evaluates expression and renders the result line. "^" is
// treated as exponentiation.
func Calculate(expression string) string {
	// "//" starts a comment in expr and would silently drop the divisor.
	if strings.Contains(expression, "//") {
		return "Calculation error: floor division '//' is not supported, use floor(a / b)"
	}

	expression = strings.ReplaceAll(expression, "^", "**")

	program, err := expr.Compile(expression, calcOptions...)
	if err != nil {
		return fmt.Sprintf("Calculation error: %v", err)
	}

	out, err := expr.Run(program, calcEnv)
	if err != nil {
		return fmt.Sprintf("Calculation error: %v", err)
	}

	if f, ok := out.(float64); ok {
		switch {
		case math.IsInf(f, 0):
			return "Calculation error: division by zero"
		case math.IsNaN(f):
			return "Calculation error: math domain error"
		}
	}

	return fmt.Sprintf("Result: %s = %v", expression, out)
}

func number(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

func unary(name string, fn func(float64) float64) expr.Option {
	return expr.Function(name, func(params ...any) (any, error) {
		if len(params) != 1 {
			return nil, fmt.Errorf("%s() takes exactly one argument", name)
		}

		x, err := number(params[0])
		if err != nil {
			return nil, err
		}

		return fn(x), nil
	})
}

// calcLog is the natural logarithm, or log(x, base) with two arguments.
func calcLog(params ...any) (any, error) {
	if len(params) < 1 || len(params) > 2 {
		return nil, fmt.Errorf("log() takes one or two arguments")
	}

	x, err := number(params[0])
	if err != nil {
		return nil, err
	}

	if x <= 0 {
		return nil, fmt.Errorf("math domain error")
	}

	if len(params) == 1 {
		return math.Log(x), nil
	}

	base, err := number(params[1])
	if err != nil {
		return nil, err
	}

	return math.Log(x) / math.Log(base), nil
}

func calcRound(params ...any) (any, error) {
	if len(params) < 1 || len(params) > 2 {
		return nil, fmt.Errorf("round() takes one or two arguments")
	}

	x, err := number(params[0])
	if err != nil {
		return nil, err
	}

	if len(params) == 1 {
		return int(math.RoundToEven(x)), nil
	}

	digits, err := number(params[1])
	if err != nil {
		return nil, err
	}

	scale := math.Pow(10, digits)

	return math.RoundToEven(x*scale) / scale, nil
}

func calcPow(params ...any) (any, error) {
	if len(params) != 2 {
		return nil, fmt.Errorf("pow() takes exactly two arguments")
	}

	x, err := number(params[0])
	if err != nil {
		return nil, err
	}

	y, err := number(params[1])
	if err != nil {
		return nil, err
	}

	return math.Pow(x, y), nil
}

// fold applies fn across its arguments, which may be numbers or a single array.
func fold(name string, fn func(a, b float64) float64) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		if len(params) == 1 {
			if list, ok := params[0].([]any); ok {
				params = list
			}
		}

		if len(params) == 0 {
			if name == "sum" {
				return 0, nil
			}

			return nil, fmt.Errorf("%s() expects at least one argument", name)
		}

		acc, err := number(params[0])
		if err != nil {
			return nil, err
		}

		for _, p := range params[1:] {
			x, err := number(p)
			if err != nil {
				return nil, err
			}

			acc = fn(acc, x)
		}

		return acc, nil
	}
}
