// Package toolsets provides ready-made toolsets used by the examples and
// integration tests.
package toolsets

import (
	"context"
	"errors"

	"github.com/modelctx/mcp-go/pkg/schema"
	"github.com/modelctx/mcp-go/pkg/tool"
)

// ErrDivideByZero is the divide tool's declared failure for a zero divisor.
var ErrDivideByZero = errors.New("cannot divide by zero")

// Calculator returns a toolset exposing basic integer arithmetic under the
// "calculator" namespace: calculator_add, calculator_subtract,
// calculator_multiply and calculator_divide. Divide reports a domain
// failure when the divisor is zero.
func Calculator() tool.Toolset {
	binary := func(aDesc, bDesc string) *schema.InputSchema {
		return schema.MustNew(
			schema.Integer("a", aDesc),
			schema.Integer("b", bDesc),
		)
	}

	return tool.NewToolset("calculator",
		tool.Tool{
			Name:        "add",
			Description: "Add two numbers",
			Schema:      binary("First number to add", "Second number to add"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				return args["a"].(int64) + args["b"].(int64), nil
			},
		},
		tool.Tool{
			Name:        "subtract",
			Description: "Subtract two numbers",
			Schema:      binary("Number to subtract from", "Number to subtract"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				return args["a"].(int64) - args["b"].(int64), nil
			},
		},
		tool.Tool{
			Name:        "multiply",
			Description: "Multiply two numbers",
			Schema:      binary("First factor", "Second factor"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				return args["a"].(int64) * args["b"].(int64), nil
			},
		},
		tool.Tool{
			Name:        "divide",
			Description: "Divide two numbers",
			Schema:      binary("Dividend", "Divisor"),
			Handler: func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
				b := args["b"].(int64)
				if b == 0 {
					return nil, ErrDivideByZero
				}
				return float64(args["a"].(int64)) / float64(b), nil
			},
		},
	)
}
