package problems

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/PaesslerAG/gval"

	"github.com/san-kum/metaheur/internal/core"
	"github.com/san-kum/metaheur/internal/encoding/realvector"
	"github.com/san-kum/metaheur/internal/rng"
)

// exprLang is arithmetic plus the usual math functions. Coordinates are
// bound as x0, x1, ... and the dimension as n.
var exprLang = gval.NewLanguage(
	gval.Arithmetic(),
	gval.Function("sqrt", math.Sqrt),
	gval.Function("abs", math.Abs),
	gval.Function("sin", math.Sin),
	gval.Function("cos", math.Cos),
	gval.Function("exp", math.Exp),
	gval.Function("log", math.Log),
	gval.Function("pow", math.Pow),
	gval.Constant("pi", math.Pi),
)

// Expression is a problem whose goals are arithmetic expressions over the
// coordinates of a real vector.
type Expression struct {
	name      string
	bounds    realvector.Bounds
	objective core.Objective
	evals     []gval.Evaluable
}

// ExpressionGoal is one goal of an Expression problem.
type ExpressionGoal struct {
	Expr      string
	Direction core.Direction
}

func NewExpression(name string, bounds realvector.Bounds, goals []ExpressionGoal) (*Expression, error) {
	if len(goals) == 0 {
		return nil, fmt.Errorf("expression problem without goals: %w", core.ErrInvalidArgument)
	}
	p := &Expression{name: name, bounds: bounds}
	for i, g := range goals {
		ev, err := exprLang.NewEvaluable(g.Expr)
		if err != nil {
			return nil, fmt.Errorf("goal %d %q: %v: %w", i, g.Expr, err, core.ErrInvalidArgument)
		}
		p.evals = append(p.evals, ev)
		p.objective = append(p.objective, core.Goal{Name: g.Expr, Direction: g.Direction})
	}
	return p, nil
}

func (p *Expression) Name() string                   { return p.name }
func (p *Expression) SearchSpace() realvector.Bounds { return p.bounds }
func (p *Expression) Objective() core.Objective      { return p.objective }

func (p *Expression) Evaluate(g realvector.Genotype, _ *rng.Random) (core.ObjectiveVector, error) {
	if err := checkIn(p.bounds, g); err != nil {
		return nil, err
	}
	vars := make(map[string]interface{}, len(g)+1)
	for i, x := range g {
		vars["x"+strconv.Itoa(i)] = x
	}
	vars["n"] = float64(len(g))

	out := make(core.ObjectiveVector, len(p.evals))
	for i, ev := range p.evals {
		v, err := ev.EvalFloat64(context.Background(), vars)
		if err != nil {
			return nil, fmt.Errorf("%w: goal %q: %v", core.ErrComputation, p.objective[i].Name, err)
		}
		out[i] = v
	}
	return out, nil
}
