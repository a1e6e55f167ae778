// internal/service/promotion/infrastructure/rule/cel_engine.go
package rule

import (
	"fmt"

	"fundgate/internal/service/promotion/domain"

	"github.com/google/cel-go/cel"
)

// DefaultExpression 折扣只对年付生效
const DefaultExpression = `billing_cycle == "annual"`

// CELRule 是 domain.EligibilityRule 的 cel-go 实现。
// 表达式在构造时编译一次，之后每次结账只做求值。
type CELRule struct {
	expr    string
	program cel.Program
}

// NewCELRule 编译表达式，可用变量为 plan_type、billing_cycle、price
func NewCELRule(expr string) (*CELRule, error) {
	if expr == "" {
		expr = DefaultExpression
	}
	env, err := cel.NewEnv(
		cel.Variable("plan_type", cel.StringType),
		cel.Variable("billing_cycle", cel.StringType),
		cel.Variable("price", cel.DoubleType),
	)
	if err != nil {
		return nil, err
	}

	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("compile eligibility rule %q: %w", expr, iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("eligibility rule %q must evaluate to bool, got %s", expr, ast.OutputType())
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, err
	}
	return &CELRule{expr: expr, program: program}, nil
}

// Applies 实现了 domain.EligibilityRule 接口
func (r *CELRule) Applies(c domain.Checkout) (bool, error) {
	out, _, err := r.program.Eval(map[string]interface{}{
		"plan_type":     c.PlanType,
		"billing_cycle": c.BillingCycle,
		"price":         c.Price.InexactFloat64(),
	})
	if err != nil {
		return false, fmt.Errorf("evaluate eligibility rule %q: %w", r.expr, err)
	}
	applies, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("eligibility rule %q returned %T", r.expr, out.Value())
	}
	return applies, nil
}
