package ui

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/genesis-launchpad/internal/affiliate"
	"github.com/rovshanmuradov/genesis-launchpad/internal/api"
	"github.com/rovshanmuradov/genesis-launchpad/internal/exchange"
	"github.com/rovshanmuradov/genesis-launchpad/internal/launch"
	"github.com/rovshanmuradov/genesis-launchpad/internal/utils/amount"
)

type staticSource struct {
	snap *Snapshot
	err  error
}

func (s staticSource) Snapshot(context.Context) (*Snapshot, error) { return s.snap, s.err }

func testSnapshot(price uint64) *Snapshot {
	pool := &exchange.PoolStatus{Address: solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")}
	pool.OraclePrice = price
	return &Snapshot{
		Launches: []api.LaunchView{{
			LaunchRecord: &launch.LaunchRecord{Mint: solana.NewWallet().PublicKey(), PricingModel: launch.Fixed, PurchaseCount: 3},
			Price:        amount.Price(100_000_000),
			Sold:         amount.Tokens(10_000_000_000),
			Active:       true,
		}},
		Pools: []api.PoolView{{PoolStatus: pool, PriceDisplay: amount.Price(price)}},
		Affiliates: []api.AffiliateView{{
			AffiliateRecord: &affiliate.AffiliateRecord{Affiliate: solana.NewWallet().PublicKey(), Tier: affiliate.Gold},
			RatePercent:     amount.Percent(1_000),
		}},
		Store:     map[string]uint64{"commits": 7, "conflicts": 1},
		FetchedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func TestSnapshotPopulatesTables(t *testing.T) {
	m := New(staticSource{}, time.Second)
	m, cmd := update(t, m, snapshotMsg{testSnapshot(1_500_000_000)})
	assert.NotNil(t, cmd, "next poll is scheduled")
	assert.False(t, m.loading)

	assert.Len(t, m.tables[tabLaunches].Rows(), 1)
	assert.Len(t, m.tables[tabPools].Rows(), 1)
	assert.Len(t, m.tables[tabAffiliates].Rows(), 1)

	row := m.tables[tabLaunches].Rows()[0]
	assert.Equal(t, "fixed", row[1])
	assert.Equal(t, "0.1000", row[2])
	assert.Equal(t, "10", row[3])
	assert.Equal(t, "live", row[6])

	assert.Equal(t, "1.500000", m.tables[tabPools].Rows()[0][1])
	assert.Equal(t, "gold", m.tables[tabAffiliates].Rows()[0][1])
	assert.Contains(t, m.View(), "commits 7")
}

func TestTabNavigation(t *testing.T) {
	m := New(staticSource{}, time.Second)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, tabPools, m.active)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, tabLaunches, m.active)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, tabAffiliates, m.active)

	name, _ := m.Selected()
	assert.Equal(t, "Affiliates", name)
}

func TestQuitKey(t *testing.T) {
	m := New(staticSource{}, time.Second)
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestFetchErrorIsShown(t *testing.T) {
	m := New(staticSource{err: errors.New("connection refused")}, time.Second)
	msg := m.fetch()()
	m, cmd := update(t, m, msg)
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "connection refused")
}

func TestPoolTrendAccumulates(t *testing.T) {
	m := New(staticSource{}, time.Second)
	m, _ = update(t, m, snapshotMsg{testSnapshot(1_000_000_000)})
	m, _ = update(t, m, snapshotMsg{testSnapshot(1_200_000_000)})
	m, _ = update(t, m, snapshotMsg{testSnapshot(1_200_000_000)})

	require.Len(t, m.sparks, 1)
	for _, s := range m.sparks {
		assert.Equal(t, 2, s.Len())
		assert.Equal(t, "↗", s.Trend())
	}
}

func TestRefreshIgnoredWhileLoading(t *testing.T) {
	m := New(staticSource{}, time.Second)
	require.True(t, m.loading)
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.Nil(t, cmd)
}

func TestClientSnapshot(t *testing.T) {
	snap := testSnapshot(2_000_000_000)
	mux := http.NewServeMux()
	serve := func(path string, v any) {
		mux.HandleFunc(path, func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(v)
		})
	}
	serve("/api/v1/launches", snap.Launches)
	serve("/api/v1/pools", snap.Pools)
	serve("/api/v1/affiliates", snap.Affiliates)
	serve("/api/v1/stats", map[string]any{"store": snap.Store})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	got, err := NewClient(srv.URL+"/", time.Second).Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, got.Launches, 1)
	assert.Equal(t, snap.Launches[0].Mint, got.Launches[0].Mint)
	assert.Equal(t, launch.Fixed, got.Launches[0].PricingModel)
	assert.True(t, got.Pools[0].PriceDisplay.Equal(amount.Price(2_000_000_000)))
	assert.Equal(t, affiliate.Gold, got.Affiliates[0].Tier)
	assert.Equal(t, uint64(7), got.Store["commits"])
}

func TestClientReportsAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(api.ErrorResponse{Code: "internal", Error: "boom"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Snapshot(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
