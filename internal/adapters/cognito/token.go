package cognito

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// accessClaims is the subset of the Cognito access token payload we read.
type accessClaims struct {
	Username string   `json:"username"`
	Groups   []string `json:"cognito:groups"`
	Exp      int64    `json:"exp"`
}

// parseAccessClaims decodes the JWT payload segment without verifying the
// signature. The token arrives over the provider's own TLS channel and is
// only mined for display claims; authorization checks re-present it to the
// provider, which does verify.
func parseAccessClaims(token string) (accessClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return accessClaims{}, fmt.Errorf("malformed token: %d segments", len(parts))
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return accessClaims{}, fmt.Errorf("decode payload: %w", err)
	}
	var claims accessClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return accessClaims{}, fmt.Errorf("unmarshal claims: %w", err)
	}
	return claims, nil
}
