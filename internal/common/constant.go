package common

// AuthorizationHeaderName carries the bearer credential on inbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the Authorization scheme of access tokens. It is matched
// case-insensitively.
const BearerScheme = "Bearer"
