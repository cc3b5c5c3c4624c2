package domain

import "context"

type PolicyDenial struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type PolicyResult struct {
	Allow bool           `json:"allow"`
	Deny  []PolicyDenial `json:"deny,omitempty"`
}

type PolicyEvaluation struct {
	BundleID   string
	BundleHash string
	Result     PolicyResult
}

// PolicyInput is the document handed to the policy engine when deciding
// whether a wipe record qualifies for certification.
type PolicyInput struct {
	Record  WipeRecord `json:"record"`
	LogHash string     `json:"log_hash"`
}

type PolicyEngine interface {
	Evaluate(ctx context.Context, input PolicyInput) (PolicyEvaluation, error)
}
