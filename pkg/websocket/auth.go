package websocket

import "github.com/golang-jwt/jwt/v5"

// jwtErrorHeader is a private carrier for a signing failure inside
// dialConfig.headers, so WithJWTBearerToken can stay a plain DialOpt (no
// error return) while Dial still surfaces the failure instead of silently
// sending an unauthenticated request.
const jwtErrorHeader = "X-Websocket-Jwt-Error"

// WithJWTBearerToken signs claims with the given key and attaches the
// result as an RFC 6750 bearer token on the handshake's Authorization
// header — for servers that gate the Upgrade request behind JWT auth
// rather than (or in addition to) cookies or a custom scheme.
func WithJWTBearerToken(claims jwt.Claims, method jwt.SigningMethod, key any) DialOpt {
	return func(c *dialConfig) {
		tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			c.headers.Set(jwtErrorHeader, err.Error())
			return
		}
		c.headers.Set("Authorization", "Bearer "+tok)
	}
}
