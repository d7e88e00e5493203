package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/phishguard/api/schemas"
)

func TestResponseSchema_Shape(t *testing.T) {
	s := ResponseSchema()
	require.Equal(t, schemas.SchemaObject, s.Type)
	assert.NotContains(t, s.Required, "suggestedLegitimateSite")
	assert.Contains(t, s.Properties, "suggestedLegitimateSite")

	details := s.Properties["analysisDetails"]
	require.Equal(t, schemas.SchemaArray, details.Type)
	require.NotNil(t, details.Items)
	assert.ElementsMatch(t, []string{"module", "reason", "triggeredRules"}, details.Items.Required)
	assert.Equal(t, schemas.SchemaString, details.Items.Properties["triggeredRules"].Items.Type)
	assert.Equal(t, schemas.SchemaBoolean, s.Properties["isPhishing"].Type)
	assert.Equal(t, schemas.SchemaNumber, s.Properties["confidenceScore"].Type)
}

func TestUserPrompt_NamesURL(t *testing.T) {
	assert.Contains(t, userPrompt("http://paypa1.com"), "http://paypa1.com")
}
