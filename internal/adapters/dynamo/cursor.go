package dynamo

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// encodeCursor seals a LastEvaluatedKey into a URL-safe opaque token.
// Key attributes are string or number valued, which round-trip cleanly
// through JSON.
func encodeCursor(key map[string]ddbtypes.AttributeValue) (string, error) {
	var plain map[string]any
	if err := attributevalue.UnmarshalMap(key, &plain); err != nil {
		return "", fmt.Errorf("unmarshal key: %w", err)
	}
	data, err := json.Marshal(plain)
	if err != nil {
		return "", fmt.Errorf("marshal key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// decodeCursor reverses encodeCursor back into an ExclusiveStartKey.
func decodeCursor(cursor string) (map[string]ddbtypes.AttributeValue, error) {
	data, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	var plain map[string]any
	if err := json.Unmarshal(data, &plain); err != nil {
		return nil, fmt.Errorf("unmarshal cursor: %w", err)
	}
	key, err := attributevalue.MarshalMap(plain)
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}
	return key, nil
}
