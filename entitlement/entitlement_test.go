package entitlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnknownPlanResolvesToFree(t *testing.T) {
	for _, raw := range []string{"", "enterprise", "FREE ", "premium"} {
		p := NewPlanPolicy(Plan(raw))
		assert.Equal(t, PlanFree, p.Plan(), "plan %q", raw)
		assert.False(t, p.CanUse(FeatureManualReorder))
	}
}

func TestFromEnvNormalizesPlan(t *testing.T) {
	t.Setenv("PLAN", "  Business ")
	assert.Equal(t, PlanBusiness, FromEnv().Plan())

	t.Setenv("PLAN", "pro")
	assert.Equal(t, PlanPro, FromEnv().Plan())
}

func TestFeatureMatrix(t *testing.T) {
	free := NewPlanPolicy(PlanFree)
	pro := NewPlanPolicy(PlanPro)
	business := NewPlanPolicy(PlanBusiness)

	assert.False(t, free.CanUse(FeatureManualReorder))
	assert.False(t, free.CanUse(FeatureSVGUpload))
	assert.False(t, free.CanUse(FeatureDriveImport))

	assert.True(t, pro.CanUse(FeatureManualReorder))
	assert.True(t, pro.CanUse(FeatureSVGUpload))
	assert.False(t, pro.CanUse(FeatureDriveImport))

	assert.True(t, business.CanUse(FeatureManualReorder))
	assert.True(t, business.CanUse(FeatureSVGUpload))
	assert.True(t, business.CanUse(FeatureDriveImport))
}

func TestLimitsPerPlan(t *testing.T) {
	assert.Equal(t, Limits{MaxCollections: 1, MaxElementsPerCollection: 20}, NewPlanPolicy(PlanFree).Limits())
	assert.Equal(t, Limits{MaxCollections: 10, MaxElementsPerCollection: 100}, NewPlanPolicy(PlanPro).Limits())
	assert.Equal(t, Limits{MaxCollections: Unlimited, MaxElementsPerCollection: Unlimited}, NewPlanPolicy(PlanBusiness).Limits())
}

func TestAllows(t *testing.T) {
	assert.True(t, Allows(1, 0))
	assert.False(t, Allows(1, 1))
	assert.False(t, Allows(20, 20))
	assert.True(t, Allows(Unlimited, 1000000))
}
