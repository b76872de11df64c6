package commission

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scenenow/boost-metrics/internal/models"
)

type stubStrategy struct {
	name string
	pct  int
	ok   bool
}

func (s stubStrategy) Name() string { return s.name }

func (s stubStrategy) Resolve(context.Context, string) (int, bool) {
	return s.pct, s.ok
}

type stubPlanSource struct {
	slug string
	err  error
}

func (s stubPlanSource) ActivePlanSlug(context.Context, string) (string, error) {
	return s.slug, s.err
}

func TestChainFirstSuccessWins(t *testing.T) {
	chain := NewChain(zap.NewNop(),
		stubStrategy{name: "first", pct: 7, ok: true},
		stubStrategy{name: "second", pct: 3, ok: true},
	)
	require.Equal(t, 7, chain.Percent(context.Background(), "biz1"))
}

func TestChainSkipsUnresolved(t *testing.T) {
	chain := NewChain(zap.NewNop(),
		stubStrategy{name: "silent", ok: false},
		stubStrategy{name: "answer", pct: 9, ok: true},
	)
	require.Equal(t, 9, chain.Percent(context.Background(), "biz1"))
}

func TestChainEmptyFallsToFreeRate(t *testing.T) {
	chain := NewChain(zap.NewNop())
	require.Equal(t, models.CommissionPercentForPlan(models.PlanFree),
		chain.Percent(context.Background(), "biz1"))
}

func TestPlanTableStrategy(t *testing.T) {
	tests := []struct {
		slug string
		want int
	}{
		{models.PlanFree, 12},
		{models.PlanBasic, 10},
		{models.PlanPro, 8},
		{models.PlanElite, 6},
		{"legacy-unknown", 12},
	}
	for _, tt := range tests {
		s := NewPlanTableStrategy(stubPlanSource{slug: tt.slug}, zap.NewNop())
		pct, ok := s.Resolve(context.Background(), "biz1")
		require.True(t, ok, "slug=%s", tt.slug)
		require.Equal(t, tt.want, pct, "slug=%s", tt.slug)
	}
}

func TestPlanTableStrategyDefersOnError(t *testing.T) {
	s := NewPlanTableStrategy(stubPlanSource{err: errors.New("connection refused")}, zap.NewNop())
	_, ok := s.Resolve(context.Background(), "biz1")
	require.False(t, ok)
}

func TestStaticDefaultAlwaysResolves(t *testing.T) {
	pct, ok := StaticDefault{}.Resolve(context.Background(), "anything")
	require.True(t, ok)
	require.Equal(t, 12, pct)
}

func TestLiveSourceStrategySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rates/biz1", r.URL.Path)
		require.Equal(t, "secret", r.Header.Get("X-API-Key"))
		fmt.Fprint(w, `{"business_id":"biz1","percent":5}`)
	}))
	defer srv.Close()

	s := NewLiveSourceStrategy(srv.URL, "secret", time.Second, zap.NewNop(), nil)
	pct, ok := s.Resolve(context.Background(), "biz1")
	require.True(t, ok)
	require.Equal(t, 5, pct)
}

func TestLiveSourceStrategyDegrades(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"percent":`)
		}},
		{"out of range", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"business_id":"biz1","percent":250}`)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			s := NewLiveSourceStrategy(srv.URL, "", time.Second, zap.NewNop(), nil)
			_, ok := s.Resolve(context.Background(), "biz1")
			require.False(t, ok)
		})
	}
}

func TestLiveSourceStrategyUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	s := NewLiveSourceStrategy(srv.URL, "", 200*time.Millisecond, zap.NewNop(), nil)
	_, ok := s.Resolve(context.Background(), "biz1")
	require.False(t, ok)
}

func TestLiveSourceStrategyNoBaseURL(t *testing.T) {
	s := NewLiveSourceStrategy("", "", time.Second, zap.NewNop(), nil)
	_, ok := s.Resolve(context.Background(), "biz1")
	require.False(t, ok)
}

func TestLiveThenPlanTableChain(t *testing.T) {
	// The full production order: a dead live source degrades to the plan
	// table, which answers at the business's pro rate.
	chain := NewChain(zap.NewNop(),
		NewLiveSourceStrategy("", "", time.Second, zap.NewNop(), nil),
		NewPlanTableStrategy(stubPlanSource{slug: models.PlanPro}, zap.NewNop()),
		StaticDefault{},
	)
	require.Equal(t, 8, chain.Percent(context.Background(), "biz1"))
}

func TestOrderLookupPrecedence(t *testing.T) {
	lookup := OrderLookup(map[string]int{"o1": 12}, 6)
	require.Equal(t, 12, lookup("o1"))
	require.Equal(t, 6, lookup("o2"))
	require.Equal(t, 6, lookup(""))
}
