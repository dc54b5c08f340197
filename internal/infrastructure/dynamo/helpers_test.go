package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrKey(t *testing.T) {
	k := strKey("recipient", "a@b.com")
	require.Len(t, k, 1)
	s, ok := k["recipient"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "a@b.com", s.Value)
}

func TestSameRecordCondition(t *testing.T) {
	expr, names, values := sameRecordCondition("123456", 1709283600)

	assert.Equal(t, "#code = :code AND #exp = :exp", expr)
	assert.Equal(t, map[string]string{"#code": "code", "#exp": "expires_at"}, names)

	code, ok := values[":code"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "123456", code.Value)

	exp, ok := values[":exp"].(*types.AttributeValueMemberN)
	require.True(t, ok)
	assert.Equal(t, "1709283600", exp.Value)
}
