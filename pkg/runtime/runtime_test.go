package runtime

import (
	"context"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/halvorsen/jmespath/pkg/parser"
	"github.com/halvorsen/jmespath/pkg/types"
)

func obj(pairs ...any) types.Value {
	b := types.NewObjectBuilder()
	for i := 0; i < len(pairs); i += 2 {
		b.Set(pairs[i].(string), pairs[i+1].(types.Value))
	}
	return b.Build()
}

func TestSearchBasic(t *testing.T) {
	r := New()
	data := obj("foo", types.NewString("bar"))
	got, err := r.Search(context.Background(), "foo", data)
	if err != nil {
		t.Fatal(err)
	}
	if got.String() != "bar" {
		t.Fatalf("got %v", got)
	}
}

func TestSearchSyntaxErrorAlwaysPropagates(t *testing.T) {
	r := New(WithDisableVisitErrors(true))
	_, err := r.Search(context.Background(), "foo[", types.Null)
	if err == nil {
		t.Fatal("expected syntax error")
	}
	terr, ok := err.(*types.Error)
	if !ok || terr.Code != types.SyntaxError {
		t.Fatalf("got %v", err)
	}
}

func TestSearchSuppressesEvalErrorsWhenConfigured(t *testing.T) {
	r := New(WithDisableVisitErrors(true))
	got, err := r.Search(context.Background(), "nope(`1`)", types.Null)
	if err != nil {
		t.Fatalf("expected suppressed error, got %v", err)
	}
	if !got.IsNull() {
		t.Fatalf("got %v", got)
	}
}

func TestSearchPropagatesEvalErrorsByDefault(t *testing.T) {
	r := New()
	_, err := r.Search(context.Background(), "nope(`1`)", types.Null)
	if err == nil {
		t.Fatal("expected error")
	}
	terr, ok := err.(*types.Error)
	if !ok || terr.Code != types.UnknownFunctionError {
		t.Fatalf("got %v", err)
	}
}

func TestSearchUsesParseCache(t *testing.T) {
	r := New(WithParseCacheSize(4))
	data := obj("foo", types.NewString("bar"))
	if _, err := r.Search(context.Background(), "foo", data); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Search(context.Background(), "foo", data); err != nil {
		t.Fatal(err)
	}
	if r.Cache().Len() != 1 {
		t.Fatalf("got cache len %d", r.Cache().Len())
	}
}

func TestSearchWithoutCacheConfiguredHasNilCache(t *testing.T) {
	r := New()
	if r.Cache() != nil {
		t.Fatal("expected nil cache when ParseCacheSize is unset")
	}
}

func TestEvalSkipsParseCacheButAppliesSamePolicy(t *testing.T) {
	r := New(WithDisableVisitErrors(true), WithParseCacheSize(4))
	expr, err := parser.Parse("nope(`1`)")
	if err != nil {
		t.Fatal(err)
	}
	got, err := r.Eval(context.Background(), expr, types.Null)
	if err != nil {
		t.Fatalf("expected suppressed error, got %v", err)
	}
	if !got.IsNull() {
		t.Fatalf("got %v", got)
	}
	if r.Cache().Len() != 0 {
		t.Fatalf("Eval should not populate the parse cache, got len %d", r.Cache().Len())
	}
}

func TestSearchRateLimited(t *testing.T) {
	r := New(WithRateLimit(rate.Limit(1000), 1))
	data := obj("foo", types.NewString("bar"))
	for i := 0; i < 3; i++ {
		if _, err := r.Search(context.Background(), "foo", data); err != nil {
			t.Fatal(err)
		}
	}
}

func TestSearchRateLimitContextCancelled(t *testing.T) {
	r := New(WithRateLimit(rate.Limit(0.001), 1))
	// consume the single burst token
	_, _ = r.Search(context.Background(), "foo", types.Null)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := r.Search(ctx, "foo", types.Null)
	if err == nil {
		t.Fatal("expected rate limit wait to fail on cancelled context")
	}
}

func TestLoadConfigYAML(t *testing.T) {
	yamlDoc := `
disable_visit_errors: true
parse_cache_size: 128
rate_limit: 50
rate_burst: 10
`
	opts, err := LoadConfig(strings.NewReader(yamlDoc))
	if err != nil {
		t.Fatal(err)
	}
	if !opts.DisableVisitErrors || opts.ParseCacheSize != 128 || opts.RateLimit != 50 || opts.RateBurst != 10 {
		t.Fatalf("got %+v", opts)
	}
}

func TestLoadConfigDefaultsToUnlimited(t *testing.T) {
	opts, err := LoadConfig(strings.NewReader(`parse_cache_size: 64`))
	if err != nil {
		t.Fatal(err)
	}
	if opts.RateLimit != 0 {
		t.Fatalf("expected zero rate limit, got %v", opts.RateLimit)
	}
}

func TestOptionsAsOptionsRoundTrip(t *testing.T) {
	opts := Options{DisableVisitErrors: true, ParseCacheSize: 32, RateLimit: rate.Limit(5), RateBurst: 2}
	r := New(opts.AsOptions()...)
	if r.Cache() == nil || r.Cache().Capacity() != 32 {
		t.Fatalf("expected parse cache size 32, got %v", r.Cache())
	}
	if r.limiter == nil {
		t.Fatal("expected rate limiter configured")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	_, err := LoadConfig(strings.NewReader("parse_cache_size: [1, 2"))
	if err == nil {
		t.Fatal("expected error")
	}
}
