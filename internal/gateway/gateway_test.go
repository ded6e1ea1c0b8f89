package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/polyserve/clob/types"
	"github.com/betbot/polyserve/internal/books"
	"github.com/betbot/polyserve/internal/groups"
	"github.com/betbot/polyserve/internal/registry"
)

type fakeFetcher struct {
	books map[string]*types.OrderBookSummary
	errs  map[string]error
}

func (f *fakeFetcher) GetOrderBook(ctx context.Context, tokenID string) (*types.OrderBookSummary, error) {
	if err, ok := f.errs[tokenID]; ok {
		return nil, err
	}
	if b, ok := f.books[tokenID]; ok {
		return b, nil
	}
	return nil, errors.New("unknown token")
}

type fakeTrader struct {
	lastTokenID string
	lastSide    types.Side
	lastPrice   float64
	lastSize    float64
	placeErr    error
	orders      types.OpenOrdersResponse
	ordersErr   error
}

func (f *fakeTrader) PlaceLimitOrder(ctx context.Context, tokenID string, side types.Side, price, size float64, options *types.CreateOrderOptions) (*types.OrderResponse, error) {
	f.lastTokenID = tokenID
	f.lastSide = side
	f.lastPrice = price
	f.lastSize = size
	if f.placeErr != nil {
		return nil, f.placeErr
	}
	return &types.OrderResponse{Success: true, OrderID: "order-1"}, nil
}

func (f *fakeTrader) GetOpenOrders(ctx context.Context, params *types.OpenOrderParams) (types.OpenOrdersResponse, error) {
	return f.orders, f.ordersErr
}

func newTestServer(t *testing.T, fetcher *fakeFetcher, trader *fakeTrader) (*Server, *registry.Registry) {
	t.Helper()
	if fetcher == nil {
		fetcher = &fakeFetcher{}
	}
	if trader == nil {
		trader = &fakeTrader{}
	}
	reg := registry.New()
	srv := New(reg, books.NewAggregator(fetcher), groups.NewStore(), trader)
	return srv, reg
}

func doRequest(t *testing.T, srv *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	rec := doRequest(t, srv, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSearchEndpoint(t *testing.T) {
	srv, reg := newTestServer(t, nil, nil)
	reg.Register("A1", "market-x/Yes", "Will X happen? yes")
	reg.Register("A2", "market-y/No", "Will Y happen? no")

	rec := doRequest(t, srv, http.MethodGet, "/search?query=X+happen&max_num_results=1")
	require.Equal(t, http.StatusOK, rec.Code)

	var ids []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ids))
	assert.Equal(t, []string{"A1"}, ids)
}

func TestSearchInvalidMaxResults(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	rec := doRequest(t, srv, http.MethodGet, "/search?query=x&max_num_results=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetNamesNullSlots(t *testing.T) {
	srv, reg := newTestServer(t, nil, nil)
	reg.Register("A1", "market-x/Yes", "text")

	rec := doRequest(t, srv, http.MethodGet, "/get_names?asset_ids=A1,missing")
	require.Equal(t, http.StatusOK, rec.Code)

	var names []*string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	require.Len(t, names, 2)
	require.NotNil(t, names[0])
	assert.Equal(t, "market-x/Yes", *names[0])
	assert.Nil(t, names[1])
}

func TestGetID(t *testing.T) {
	srv, reg := newTestServer(t, nil, nil)
	reg.Register("A1", "market-x/Yes", "text")

	rec := doRequest(t, srv, http.MethodGet, "/get_id?name=market-x%2FYes")
	require.Equal(t, http.StatusOK, rec.Code)

	var id string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &id))
	assert.Equal(t, "A1", id)
}

func TestGetIDNotFoundAndAmbiguous(t *testing.T) {
	srv, reg := newTestServer(t, nil, nil)
	reg.Register("A1", "dup", "text")
	reg.Register("A2", "dup", "text")

	rec := doRequest(t, srv, http.MethodGet, "/get_id?name=missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/get_id?name=dup")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetBooksWithFailedSlot(t *testing.T) {
	fetcher := &fakeFetcher{
		books: map[string]*types.OrderBookSummary{
			"ok": {
				Bids: []types.OrderSummary{{Price: "0.40", Size: "2"}},
				Asks: []types.OrderSummary{{Price: "0.60", Size: "3"}},
			},
		},
		errs: map[string]error{"bad": errors.New("venue down")},
	}
	srv, _ := newTestServer(t, fetcher, nil)

	rec := doRequest(t, srv, http.MethodGet, "/get_books?asset_ids=ok,bad&depth=0")
	require.Equal(t, http.StatusOK, rec.Code)

	var out []map[string]float64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, map[string]float64{"0.4": 2, "0.6": -3}, out[0])
	assert.Nil(t, out[1])
}

func TestGetBooksInvalidDepth(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	rec := doRequest(t, srv, http.MethodGet, "/get_books?asset_ids=a&depth=-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceOrderSideMapping(t *testing.T) {
	trader := &fakeTrader{}
	srv, _ := newTestServer(t, nil, trader)

	rec := doRequest(t, srv, http.MethodPost, "/place_order?asset_id=tok-1&size=5&price=0.45")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, types.SideBuy, trader.lastSide)
	assert.Equal(t, 5.0, trader.lastSize)
	assert.Equal(t, 0.45, trader.lastPrice)
	assert.Equal(t, "tok-1", trader.lastTokenID)

	rec = doRequest(t, srv, http.MethodPost, "/place_order?asset_id=tok-1&size=-3&price=0.55")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, types.SideSell, trader.lastSide)
	assert.Equal(t, 3.0, trader.lastSize)
}

func TestPlaceOrderVenueErrorIs502(t *testing.T) {
	trader := &fakeTrader{placeErr: errors.New("order rejected: insufficient balance")}
	srv, _ := newTestServer(t, nil, trader)

	rec := doRequest(t, srv, http.MethodPost, "/place_order?asset_id=tok-1&size=5&price=0.45")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient balance")
}

func TestPlaceOrderMalformedParams(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)

	rec := doRequest(t, srv, http.MethodPost, "/place_order?asset_id=tok-1&size=abc&price=0.45")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/place_order?size=1&price=0.45")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrders(t *testing.T) {
	trader := &fakeTrader{orders: types.OpenOrdersResponse{{ID: "o-1", AssetID: "tok-1"}}}
	srv, _ := newTestServer(t, nil, trader)

	rec := doRequest(t, srv, http.MethodGet, "/get_orders")
	require.Equal(t, http.StatusOK, rec.Code)

	var orders []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "o-1", orders[0]["id"])
}

func TestGroupLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)

	rec := doRequest(t, srv, http.MethodPost, "/set_group?name=watch&assets=a,b")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodPatch, "/extend_group?name=watch&assets=c")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/get_group?name=watch")
	require.Equal(t, http.StatusOK, rec.Code)
	var g struct {
		Name     string   `json:"name"`
		Assets   []string `json:"assets"`
		Selected string   `json:"selected"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
	assert.Equal(t, []string{"a", "b", "c"}, g.Assets)
	assert.Equal(t, "a", g.Selected)

	rec = doRequest(t, srv, http.MethodPatch, "/rename_group?old=watch&new=tracked")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/get_groups")
	require.Equal(t, http.StatusOK, rec.Code)
	var names []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	assert.Equal(t, []string{"tracked"}, names)

	rec = doRequest(t, srv, http.MethodDelete, "/remove_group?name=tracked")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/get_group?name=tracked")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGroupAutoName(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)

	rec := doRequest(t, srv, http.MethodPost, "/set_group?assets=a")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "0", resp["name"])
}

func TestGroupNotFound(t *testing.T) {
	srv, _ := newTestServer(t, nil, nil)
	rec := doRequest(t, srv, http.MethodPatch, "/extend_group?name=nope&assets=a")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
