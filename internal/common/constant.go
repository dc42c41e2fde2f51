package common

// AuthorizationHeaderName carries the bearer token on outbound API requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token in the Authorization header.
const BearerPrefix = "Bearer "

// MaxPhotoSize is the largest photo payload the story API accepts.
const MaxPhotoSize = 1 << 20
