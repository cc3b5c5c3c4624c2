package policyopa

import "github.com/open-policy-agent/opa/ast"

// allowedBuiltins is the deterministic subset policy bundles may call.
// Anything touching wall clocks, randomness, the network, or the host
// environment is rejected at load time so repeated evaluations of the same
// record cannot diverge.
var allowedBuiltins = map[string]struct{}{
	"eq":              {},
	"equal":           {},
	"neq":             {},
	"lt":              {},
	"lte":             {},
	"gt":              {},
	"gte":             {},
	"plus":            {},
	"minus":           {},
	"mul":             {},
	"div":             {},
	"count":           {},
	"sum":             {},
	"max":             {},
	"min":             {},
	"abs":             {},
	"concat":          {},
	"contains":        {},
	"startswith":      {},
	"endswith":        {},
	"lower":           {},
	"upper":           {},
	"trim_space":      {},
	"split":           {},
	"replace":         {},
	"sprintf":         {},
	"format_int":      {},
	"to_number":       {},
	"is_string":       {},
	"is_number":       {},
	"is_boolean":      {},
	"is_null":         {},
	"is_array":        {},
	"is_object":       {},
	"object.get":      {},
	"object.keys":     {},
	"array.concat":    {},
	"array.slice":     {},
	"regex.match":     {},
	"regex.is_valid":  {},
	"json.marshal":    {},
	"json.unmarshal":  {},
	"base64.encode":   {},
	"base64.decode":   {},
	"internal.member_2": {},
	"internal.member_3": {},
}

func filterBuiltins(builtins []*ast.Builtin) []*ast.Builtin {
	out := make([]*ast.Builtin, 0, len(builtins))
	for _, builtin := range builtins {
		if builtin == nil {
			continue
		}
		if _, ok := allowedBuiltins[builtin.Name]; !ok {
			continue
		}
		out = append(out, builtin)
	}
	return out
}
