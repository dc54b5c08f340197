package dynamo

import (
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}

func numAttr(n int64) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(n, 10)}
}

// sameRecordCondition matches only the exact item previously read, so a conditional
// delete never removes a record that was re-issued in the meantime.
func sameRecordCondition(code string, expiresAt int64) (expr string, names map[string]string, values map[string]types.AttributeValue) {
	expr = "#code = :code AND #exp = :exp"
	names = map[string]string{"#code": attrCode, "#exp": attrExpiresAt}
	values = map[string]types.AttributeValue{
		":code": &types.AttributeValueMemberS{Value: code},
		":exp":  numAttr(expiresAt),
	}
	return expr, names, values
}
