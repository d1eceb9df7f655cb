package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonwraymond/relay/pipeline"
)

func mintBenchToken(b *testing.B, claims jwt.MapClaims) string {
	b.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		b.Fatalf("SignedString() error = %v", err)
	}
	return token
}

func benchVerifier(b *testing.B) *Verifier {
	b.Helper()
	v, err := NewVerifier(VerifierConfig{}, NewStaticKeyProvider(testSecret))
	if err != nil {
		b.Fatalf("NewVerifier() error = %v", err)
	}
	return v
}

// BenchmarkVerifier_Verify measures HS256 verification and identity
// extraction.
func BenchmarkVerifier_Verify(b *testing.B) {
	v := benchVerifier(b)
	token := mintBenchToken(b, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := v.Verify(ctx, token); err != nil {
			b.Fatalf("Verify() error = %v", err)
		}
	}
}

// BenchmarkVerifier_Verify_Concurrent measures verification under parallel
// load sharing one Verifier.
func BenchmarkVerifier_Verify_Concurrent(b *testing.B) {
	v := benchVerifier(b)
	token := mintBenchToken(b, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		for pb.Next() {
			if _, err := v.Verify(ctx, token); err != nil {
				b.Fatalf("Verify() error = %v", err)
			}
		}
	})
}

// BenchmarkInterceptor_ValidToken measures a full authorized pass through
// the interceptor.
func BenchmarkInterceptor_ValidToken(b *testing.B) {
	interceptor, err := NewInterceptor(benchVerifier(b), InterceptorConfig{})
	if err != nil {
		b.Fatalf("NewInterceptor() error = %v", err)
	}
	handler := func(ctx context.Context, env pipeline.Envelope) (pipeline.Outcome, error) {
		return pipeline.Ok("handled"), nil
	}
	pipe, err := pipeline.Build(handler, pipeline.Bind(interceptor))
	if err != nil {
		b.Fatalf("Build() error = %v", err)
	}

	token := mintBenchToken(b, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	ctx := ContextWithToken(context.Background(), token)
	req := pipeline.NewRequest(struct{}{})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = pipe(ctx, req)
	}
}

// BenchmarkInterceptor_MissingToken measures the rejection short-circuit.
func BenchmarkInterceptor_MissingToken(b *testing.B) {
	interceptor, err := NewInterceptor(benchVerifier(b), InterceptorConfig{})
	if err != nil {
		b.Fatalf("NewInterceptor() error = %v", err)
	}
	handler := func(ctx context.Context, env pipeline.Envelope) (pipeline.Outcome, error) {
		return pipeline.Ok("handled"), nil
	}
	pipe, err := pipeline.Build(handler, pipeline.Bind(interceptor))
	if err != nil {
		b.Fatalf("Build() error = %v", err)
	}
	ctx := context.Background()
	req := pipeline.NewRequest(struct{}{})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = pipe(ctx, req)
	}
}
