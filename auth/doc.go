// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth verifies identity tokens issued by the upstream identity provider.

# Tokens

Tokens are HS256 JWTs. The subject claim is the user ID and an optional
role claim marks society admins:

	v := auth.NewVerifier(secret, issuer)
	id, err := v.Verify(token)
	if id.IsAdmin() { ... }

Expiry is required. Tokens signed with any other algorithm are rejected.

# Headers

BearerToken pulls the token out of an Authorization header:

	token, err := auth.BearerToken(r.Header.Get("Authorization"))

# Issuing

Issue signs tokens with the same secret. The server never hands these out;
it exists for tests and local tooling.
*/
package auth
