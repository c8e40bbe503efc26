package grpc_control

import (
	"context"
	"net"
	"testing"

	"market-assistant/src/config"
	"market-assistant/src/dashboard"
	"market-assistant/src/helpers"
	"market-assistant/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type stubSource struct{ fail map[string]error }

func (s *stubSource) FetchSeries(ctx context.Context, symbol, timeframe string) (models.MSeries, error) {
	if err := s.fail[symbol]; err != nil {
		return models.MSeries{}, err
	}
	return models.MSeries{
		Symbol:    symbol,
		Timeframe: timeframe,
		Points:    []models.MQuotePoint{{Timestamp: 1, Price: 10}, {Timestamp: 2, Price: 11}},
		Candles:   []models.MCandle{{Timestamp: 1, Open: 10, Close: 11, High: 12, Low: 9}},
	}, nil
}

type memCreds struct{ key string }

func (c *memCreds) APIKey() string { return c.key }
func (c *memCreds) SetAPIKey(ctx context.Context, key string) error {
	if key == "" {
		return helpers.NewError(helpers.KindValidation, "Please provide a valid API key after the /apikey command.", nil)
	}
	c.key = key
	return nil
}

func newTestClient(t *testing.T) (*ControlClient, *stubSource, *memCreds) {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	src := &stubSource{fail: map[string]error{}}
	creds := &memCreds{}
	d := dashboard.NewDashboard(config.Default().MConfig, src, nil)

	srv := grpc.NewServer()
	RegisterControlServer(srv, NewControlService(d, creds, nil))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewControlClient(conn), src, creds
}

func TestControlRoundTrip(t *testing.T) {
	client, _, _ := newTestClient(t)
	ctx := context.Background()

	st, err := client.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ADANIENT.NS", st.Selection.Symbol)
	assert.Zero(t, st.LastUpdated)
	assert.False(t, st.HasCredential)

	resp, err := client.SetSelection(ctx, &SetSelectionRequest{Symbol: "TCS.NS", Timeframe: "1y"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Status)
	assert.Equal(t, "TCS.NS", resp.Status.Selection.Symbol)
	assert.Equal(t, "1y", resp.Status.Selection.Timeframe)
	assert.Equal(t, int32(2), resp.Status.PointCount)
	assert.NotZero(t, resp.Status.LastUpdated)

	resp, err = client.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Greater(t, resp.Status.Generation, uint64(1))
}

func TestControlSelectionErrors(t *testing.T) {
	client, src, _ := newTestClient(t)
	ctx := context.Background()

	_, err := client.SetSelection(ctx, &SetSelectionRequest{Timeframe: "2w"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	src.fail["BAD.NS"] = helpers.NewError(helpers.KindNoData, helpers.MsgNoData, nil)
	resp, err := client.SetSelection(ctx, &SetSelectionRequest{Symbol: "BAD.NS"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, "Failed to fetch data: No data available for this symbol", resp.Message)
	assert.Zero(t, resp.Status.PointCount)
}

func TestControlSetCredential(t *testing.T) {
	client, _, creds := newTestClient(t)
	ctx := context.Background()

	_, err := client.SetCredential(ctx, &SetCredentialRequest{APIKey: ""})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Empty(t, creds.key)

	resp, err := client.SetCredential(ctx, &SetCredentialRequest{APIKey: "abc"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "abc", creds.key)

	st, err := client.GetStatus(ctx)
	require.NoError(t, err)
	assert.True(t, st.HasCredential)
}
