// Package auth verifies bearer tokens and propagates the authenticated
// identity through the request context.
//
// The transport fronting the dispatcher places the raw token in the context
// with ContextWithToken; the interceptor verifies it and rejects the request
// with a failed outcome before the handler runs. Handlers read the caller
// with IdentityFromContext.
package auth
