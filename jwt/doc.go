// Package jwt encodes and decodes the signed, time-bounded claims carried by
// access and refresh tokens, and issues fresh tokens for a principal subject.
//
// # Wire format
//
// Tokens are compact JWS strings (header.claims.signature, base64url) with the
// claims sub, exp, iat, jti and type ("access" or "refresh").
//
// # Failure classification
//
// [Codec.Decode] reports [ErrInvalidSignature], [ErrExpired] or [ErrMalformed].
// All three match [ErrInvalid] through errors.Is, so callers that do not care
// which check failed can test a single sentinel.
//
// # What this package must NOT do
//
//   - Consult the revocation store or the principal store.
//   - Mutate its configuration after construction.
package jwt
