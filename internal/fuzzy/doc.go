// Package fuzzy is a small Mamdani inference engine.
//
// A System is built once from linguistic variables and weighted rules and is
// read-only afterwards. Each evaluation binds crisp inputs in a fresh
// Simulation and runs:
//
//	fuzzify -> fire rules (min/max/1-x, weight, clamp) -> clip consequents (min)
//	-> aggregate (pointwise max) -> centroid over the output universe samples
//
// Usage:
//
//	sys, err := fuzzy.Build(fuzzy.Definition{
//	    Inputs: []fuzzy.Variable{grade},
//	    Output: performance,
//	    Rules: []fuzzy.Rule{
//	        fuzzy.NewRule(fuzzy.Is("grade", "high"), fuzzy.T("performance", "good")),
//	    },
//	})
//	res, err := fuzzy.Evaluate(sys, map[string]float64{"grade": 8.5})
//	if errors.Is(err, fuzzy.ErrNoRuleFired) {
//	    // centroid undefined for these inputs
//	}
//
// Construction problems (dangling terms, consequents off the output variable,
// malformed universes, empty rule sets, missing inputs) are reported as
// *ConstructionError; ErrNoRuleFired is an evaluation outcome, never replaced
// by a default value inside this package.
package fuzzy
