/*
Copyright © 2026 the RCM authors.
This file is part of RCM.

RCM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

RCM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with RCM.  If not, see <http://www.gnu.org/licenses/>.
*/
package rcmutil

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/sparse"
	"github.com/spf13/cast"
)

// outputFunctions are the functions that can be used in derived output
// variable expressions.
var outputFunctions = map[string]govaluate.ExpressionFunction{
	"exp": func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("rcm: got %d arguments for function 'exp', but needs 1", len(arg))
		}
		return math.Exp(arg[0].(float64)), nil
	},
	"log": func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("rcm: got %d arguments for function 'log', but needs 1", len(arg))
		}
		return math.Log(arg[0].(float64)), nil
	},
	"abs": func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("rcm: got %d arguments for function 'abs', but needs 1", len(arg))
		}
		return math.Abs(arg[0].(float64)), nil
	},
	"pow": func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 2 {
			return nil, fmt.Errorf("rcm: got %d arguments for function 'pow', but needs 2", len(arg))
		}
		return math.Pow(arg[0].(float64), arg[1].(float64)), nil
	},
}

// deriveVars calculates the derived variables defined by the expressions
// in exprs and adds them to vars. Expressions are evaluated element by
// element. The variables an expression refers to must either be scalars
// or share a single dimension. Derived variables may refer to each other.
func deriveVars(vars map[string]outputVar, exprs map[string]string) error {
	pending := make(map[string]*govaluate.EvaluableExpression)
	for name, e := range exprs {
		if _, ok := vars[name]; ok {
			return fmt.Errorf("rcm: derived variable %s has the same name as a model variable", name)
		}
		expr, err := govaluate.NewEvaluableExpressionWithFunctions(e, outputFunctions)
		if err != nil {
			return fmt.Errorf("rcm: derived variable %s: %v", name, err)
		}
		pending[name] = expr
	}
	for len(pending) > 0 {
		// Sort the names so variables are evaluated in the same order every time.
		names := make([]string, 0, len(pending))
		for n := range pending {
			names = append(names, n)
		}
		sort.Strings(names)

		var progress bool
		for _, name := range names {
			expr := pending[name]
			if !ready(expr, vars) {
				continue
			}
			v, err := evaluate(expr, vars)
			if err != nil {
				return fmt.Errorf("rcm: derived variable %s: %v", name, err)
			}
			v.description = exprs[name]
			vars[name] = v
			delete(pending, name)
			progress = true
		}
		if !progress {
			var missing []string
			for _, name := range names {
				for _, v := range pending[name].Vars() {
					if _, ok := vars[v]; !ok {
						if _, ok := pending[v]; !ok {
							missing = append(missing, v)
						}
					}
				}
			}
			if len(missing) == 0 {
				return fmt.Errorf("rcm: derived variables %s refer to each other", strings.Join(names, ", "))
			}
			sort.Strings(missing)
			return fmt.Errorf("rcm: undefined variable(s) %s in derived variables", strings.Join(missing, ", "))
		}
	}
	return nil
}

// ready returns whether all of the variables expr refers to are in vars.
func ready(expr *govaluate.EvaluableExpression, vars map[string]outputVar) bool {
	for _, v := range expr.Vars() {
		if _, ok := vars[v]; !ok {
			return false
		}
	}
	return true
}

func evaluate(expr *govaluate.EvaluableExpression, vars map[string]outputVar) (outputVar, error) {
	dim, n := "scalar", 1
	for _, v := range expr.Vars() {
		ov := vars[v]
		if ov.dim == "scalar" {
			continue
		}
		if dim != "scalar" && ov.dim != dim {
			return outputVar{}, fmt.Errorf("variables have different dimensions (%s and %s)", dim, ov.dim)
		}
		dim, n = ov.dim, len(ov.data.Elements)
	}
	o := outputVar{dim: dim, data: sparse.ZerosDense(n)}
	params := make(map[string]interface{})
	for i := 0; i < n; i++ {
		for _, v := range expr.Vars() {
			e := vars[v].data.Elements
			if len(e) == 1 {
				params[v] = e[0]
			} else {
				params[v] = e[i]
			}
		}
		r, err := expr.Evaluate(params)
		if err != nil {
			return outputVar{}, err
		}
		f, err := cast.ToFloat64E(r)
		if err != nil {
			return outputVar{}, fmt.Errorf("expression result %v is not a number", r)
		}
		o.data.Elements[i] = f
	}
	return o, nil
}
