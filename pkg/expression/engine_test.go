package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngine_EvaluateBool(t *testing.T) {
	e := NewEngine()

	env := map[string]interface{}{
		"amount":        5000.0,
		"document_type": "job_order",
		"warehouse_id":  "WH-01",
	}

	tests := []struct {
		name      string
		condition string
		expected  bool
		shouldErr bool
	}{
		{"empty condition always matches", "", true, false},
		{"amount comparison true", "amount >= 1000", true, false},
		{"amount comparison false", "amount > 10000", false, false},
		{"compound condition", `amount >= 1000 && document_type == "job_order"`, true, false},
		{"warehouse filter", `warehouse_id == "WH-02"`, false, false},
		{"non-boolean result errors", "amount + 1", false, true},
		{"bad syntax errors", "amount >>> 1", false, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := e.EvaluateBool(tc.condition, env)
			if tc.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, result)
			}
		})
	}
}

func TestEngine_ProgramCacheReuse(t *testing.T) {
	e := NewEngine()

	env := map[string]interface{}{"amount": 10.0}

	// Same expression twice hits the cache; behavior must not change.
	first, err := e.EvaluateBool("amount < 100", env)
	assert.NoError(t, err)
	assert.True(t, first)

	env["amount"] = 500.0
	second, err := e.EvaluateBool("amount < 100", env)
	assert.NoError(t, err)
	assert.False(t, second)
}
