package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"market-assistant/src/config"
	"market-assistant/src/helpers"
	"market-assistant/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetchCall struct {
	Symbol    string
	Timeframe string
}

type fakeSource struct {
	mu    sync.Mutex
	calls []fetchCall
	gates map[string]chan struct{}
	fail  map[string]error
}

func newFakeSource() *fakeSource {
	return &fakeSource{gates: map[string]chan struct{}{}, fail: map[string]error{}}
}

func (f *fakeSource) FetchSeries(ctx context.Context, symbol, timeframe string) (models.MSeries, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fetchCall{symbol, timeframe})
	gate := f.gates[symbol]
	failure := f.fail[symbol]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return models.MSeries{}, ctx.Err()
		}
	}
	if failure != nil {
		return models.MSeries{}, failure
	}
	return models.MSeries{
		Symbol:    symbol,
		Timeframe: timeframe,
		Points:    []models.MQuotePoint{{Timestamp: 1, Price: 100}, {Timestamp: 2, Price: 110}},
		Candles:   []models.MCandle{{Timestamp: 1, Open: 100, Close: 110, High: 112, Low: 99, IsIncreasing: true}},
	}, nil
}

func (f *fakeSource) Calls() []fetchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fetchCall(nil), f.calls...)
}

type recordingExchanger struct {
	mu    sync.Mutex
	snaps []models.MDashboardSnapshot
}

func (r *recordingExchanger) Broadcast(s models.MDashboardSnapshot) {
	r.mu.Lock()
	r.snaps = append(r.snaps, s)
	r.mu.Unlock()
}
func (r *recordingExchanger) Start() error { return nil }
func (r *recordingExchanger) Stop() error  { return nil }

type symbolRecorder struct{ symbols []string }

func (s *symbolRecorder) NotifySelectionChanged(symbol string) { s.symbols = append(s.symbols, symbol) }

func newTestDashboard(src *fakeSource) *Dashboard {
	cfg := config.Default()
	return NewDashboard(cfg.MConfig, src, nil)
}

func TestSelectRoundTripFetchesPerChange(t *testing.T) {
	src := newFakeSource()
	d := newTestDashboard(src)
	ctx := context.Background()

	snap, err := d.Select(ctx, models.MChartSelection{Symbol: "tcs.ns"})
	require.NoError(t, err)
	assert.Equal(t, "TCS.NS", snap.Series.Symbol)

	_, err = d.Select(ctx, models.MChartSelection{Timeframe: "1y"})
	require.NoError(t, err)
	snap, err = d.Select(ctx, models.MChartSelection{Timeframe: "1mo"})
	require.NoError(t, err)

	assert.Equal(t, []fetchCall{{"TCS.NS", "1mo"}, {"TCS.NS", "1y"}, {"TCS.NS", "1mo"}}, src.Calls())
	assert.Equal(t, "TCS.NS", snap.Series.Symbol)
	assert.Equal(t, "1mo", snap.Series.Timeframe)
	assert.False(t, snap.Loading)
	require.NotNil(t, snap.Stats)
	assert.Equal(t, 110.0, snap.Stats.Last)
}

func TestChartTypeChangeDoesNotRefetch(t *testing.T) {
	src := newFakeSource()
	d := newTestDashboard(src)
	ctx := context.Background()

	_, err := d.Select(ctx, models.MChartSelection{Symbol: "TCS.NS"})
	require.NoError(t, err)
	snap, err := d.Select(ctx, models.MChartSelection{ChartType: models.ChartTypeCandlestick})
	require.NoError(t, err)

	assert.Len(t, src.Calls(), 1)
	assert.Equal(t, models.ChartTypeCandlestick, snap.Selection.ChartType)
	require.NotNil(t, snap.Stats)
	assert.Equal(t, 110.0, snap.Stats.Last)
}

func TestSelectRejectsInvalid(t *testing.T) {
	d := newTestDashboard(newFakeSource())
	_, err := d.Select(context.Background(), models.MChartSelection{Timeframe: "2w"})
	assert.True(t, helpers.IsKind(err, helpers.KindValidation))
	_, err = d.Select(context.Background(), models.MChartSelection{ChartType: "bar"})
	assert.True(t, helpers.IsKind(err, helpers.KindValidation))
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	src := newFakeSource()
	src.gates["SLOW.NS"] = make(chan struct{})
	d := newTestDashboard(src)

	done := make(chan error, 1)
	go func() {
		_, err := d.Select(context.Background(), models.MChartSelection{Symbol: "SLOW.NS"})
		done <- err
	}()
	require.Eventually(t, func() bool { return len(src.Calls()) == 1 }, time.Second, 5*time.Millisecond)

	snap, err := d.Select(context.Background(), models.MChartSelection{Symbol: "FAST.NS"})
	require.NoError(t, err)
	assert.Equal(t, "FAST.NS", snap.Series.Symbol)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(time.Second):
		t.Fatal("superseded load was not cancelled")
	}

	final := d.Snapshot()
	assert.Equal(t, "FAST.NS", final.Selection.Symbol)
	assert.Equal(t, "FAST.NS", final.Series.Symbol)
	assert.Empty(t, final.Error)
}

func TestFailedLoadClearsSeries(t *testing.T) {
	src := newFakeSource()
	d := newTestDashboard(src)
	ctx := context.Background()

	_, err := d.Select(ctx, models.MChartSelection{Symbol: "TCS.NS"})
	require.NoError(t, err)

	src.fail["BAD.NS"] = helpers.NewError(helpers.KindNoData, helpers.MsgNoData, nil)
	snap, err := d.Select(ctx, models.MChartSelection{Symbol: "BAD.NS"})
	require.Error(t, err)
	assert.Empty(t, snap.Series.Points)
	assert.Empty(t, snap.Series.Candles)
	assert.Nil(t, snap.Stats)
	assert.Equal(t, "Failed to fetch data: No data available for this symbol", snap.Error)

	src.fail["BAD.NS"] = errors.New("boom")
	snap, _ = d.Refresh(ctx)
	assert.Equal(t, "Failed to fetch data: boom", snap.Error)
}

func TestCancelledLoadKeepsSeries(t *testing.T) {
	src := newFakeSource()
	d := newTestDashboard(src)

	_, err := d.Select(context.Background(), models.MChartSelection{Symbol: "TCS.NS"})
	require.NoError(t, err)

	src.mu.Lock()
	src.gates["TCS.NS"] = make(chan struct{})
	src.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := d.Refresh(ctx)
		done <- err
	}()
	require.Eventually(t, func() bool { return len(src.Calls()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled refresh did not return")
	}

	snap := d.Snapshot()
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Error)
	assert.Len(t, snap.Series.Points, 2)
	require.NotNil(t, snap.Stats)
	assert.Equal(t, 110.0, snap.Stats.Last)
}

func TestSelectNotifiesAndBroadcasts(t *testing.T) {
	d := newTestDashboard(newFakeSource())
	x := &recordingExchanger{}
	rec := &symbolRecorder{}
	d.SetExchanger(x)
	d.AddListener(rec)
	ctx := context.Background()

	_, err := d.Select(ctx, models.MChartSelection{Symbol: "INFY.NS"})
	require.NoError(t, err)
	_, err = d.Select(ctx, models.MChartSelection{Timeframe: "5d"})
	require.NoError(t, err)

	assert.Equal(t, []string{"INFY.NS"}, rec.symbols)
	require.Len(t, x.snaps, 4)
	assert.True(t, x.snaps[0].Loading)
	assert.False(t, x.snaps[1].Loading)
	assert.Less(t, x.snaps[1].Generation, x.snaps[3].Generation)
}
