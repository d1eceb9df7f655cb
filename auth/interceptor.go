package auth

import (
	"context"

	"github.com/jonwraymond/relay/observe"
	"github.com/jonwraymond/relay/pipeline"
)

// DefaultInterceptorOrder places authentication outside caching and
// retries, so unauthenticated requests never touch the cache or spend
// retry budget. A cached success must never be served to a caller the
// verifier rejects.
const DefaultInterceptorOrder = -150

// InterceptorConfig configures the auth interceptor.
type InterceptorConfig struct {
	// AllowAnonymous lets requests without a token through with an
	// anonymous identity instead of rejecting them.
	AllowAnonymous bool

	// Logger records rejected requests. Nil disables logging.
	Logger observe.Logger
}

// Interceptor verifies the bearer token carried by the request context and
// attaches the resulting identity for downstream interceptors and the
// handler. Verification failures short-circuit with a failed outcome; the
// handler never runs.
type Interceptor struct {
	verifier       *Verifier
	allowAnonymous bool
	logger         observe.Logger
}

// NewInterceptor creates an auth interceptor around the verifier.
func NewInterceptor(verifier *Verifier, cfg InterceptorConfig) (*Interceptor, error) {
	if verifier == nil {
		return nil, ErrNilVerifier
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.NopLogger()
	}
	return &Interceptor{
		verifier:       verifier,
		allowAnonymous: cfg.AllowAnonymous,
		logger:         cfg.Logger,
	}, nil
}

// Name identifies the interceptor in logs and events.
func (i *Interceptor) Name() string { return "auth" }

// DefaultOrder returns DefaultInterceptorOrder.
func (i *Interceptor) DefaultOrder() int { return DefaultInterceptorOrder }

// Intercept verifies the context's token and runs next with the identity
// attached. A missing or invalid token yields a failed outcome and a nil
// error: rejection is an expected domain outcome, not a fault.
func (i *Interceptor) Intercept(ctx context.Context, env pipeline.Envelope, next pipeline.Next) (pipeline.Outcome, error) {
	token, ok := TokenFromContext(ctx)
	if !ok {
		if i.allowAnonymous {
			return next(WithIdentity(ctx, AnonymousIdentity()))
		}
		i.logger.Warn("request rejected: no bearer token",
			observe.String("request_type", env.TypeKey()),
			observe.String("correlation_id", env.CorrelationID()),
		)
		return pipeline.FailureWithDiagnostic(ErrMissingToken.Error(), "unauthorized"), nil
	}

	identity, err := i.verifier.Verify(ctx, token)
	if err != nil {
		i.logger.Warn("request rejected: token verification failed",
			observe.String("request_type", env.TypeKey()),
			observe.String("correlation_id", env.CorrelationID()),
			observe.Err(err),
		)
		return pipeline.FailureWithDiagnostic(err.Error(), "unauthorized"), nil
	}

	return next(WithIdentity(ctx, identity))
}

var (
	_ pipeline.Interceptor = (*Interceptor)(nil)
	_ pipeline.Ordered     = (*Interceptor)(nil)
)
