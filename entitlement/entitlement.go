package entitlement

import (
	"log"
	"os"
	"strings"
)

// Plan is a subscription tier gating quantitative limits and optional features
type Plan string

const (
	PlanFree     Plan = "free"
	PlanPro      Plan = "pro"
	PlanBusiness Plan = "business"
)

// Feature is an optional capability gated by plan
type Feature string

const (
	// FeatureManualReorder allows shoppers to reorder elements in the configurator
	FeatureManualReorder Feature = "manual_reorder"
	// FeatureSVGUpload allows SVG element images in the catalog
	FeatureSVGUpload Feature = "svg_upload"
	// FeatureDriveImport allows bulk element import from Drive folders
	FeatureDriveImport Feature = "drive_import"
)

// Unlimited marks a limit with no cap
const Unlimited = -1

// Limits holds the quantitative caps for a plan
type Limits struct {
	MaxCollections           int `json:"maxCollections"`
	MaxElementsPerCollection int `json:"maxElementsPerCollection"`
}

// Allows reports whether a count of n existing entities permits creating one
// more under the given limit
func Allows(limit int, n int) bool {
	return limit == Unlimited || n < limit
}

// Policy is the capability-query interface injected into catalog mutation
// paths and the session's reorder-permission check
type Policy interface {
	CanUse(f Feature) bool
	Limits() Limits
}

// PlanPolicy is a static Policy derived from a configured plan
type PlanPolicy struct {
	plan Plan
}

// NewPlanPolicy creates a policy for the given plan.
// Unknown plan values resolve to free (deny-by-default).
func NewPlanPolicy(plan Plan) *PlanPolicy {
	switch plan {
	case PlanFree, PlanPro, PlanBusiness:
		return &PlanPolicy{plan: plan}
	}
	log.Printf("⚠️  Unknown plan %q, defaulting to free", plan)
	return &PlanPolicy{plan: PlanFree}
}

// FromEnv creates a policy from the PLAN environment variable
func FromEnv() *PlanPolicy {
	return NewPlanPolicy(Plan(strings.ToLower(strings.TrimSpace(os.Getenv("PLAN")))))
}

// Ensure PlanPolicy implements Policy
var _ Policy = (*PlanPolicy)(nil)

// Plan returns the resolved plan
func (p *PlanPolicy) Plan() Plan {
	return p.plan
}

// CanUse reports whether the plan includes the feature
func (p *PlanPolicy) CanUse(f Feature) bool {
	switch p.plan {
	case PlanBusiness:
		return true
	case PlanPro:
		return f == FeatureManualReorder || f == FeatureSVGUpload
	default:
		return false
	}
}

// Limits returns the quantitative caps for the plan
func (p *PlanPolicy) Limits() Limits {
	switch p.plan {
	case PlanBusiness:
		return Limits{MaxCollections: Unlimited, MaxElementsPerCollection: Unlimited}
	case PlanPro:
		return Limits{MaxCollections: 10, MaxElementsPerCollection: 100}
	default:
		return Limits{MaxCollections: 1, MaxElementsPerCollection: 20}
	}
}
