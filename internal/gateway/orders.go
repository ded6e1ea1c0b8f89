package gateway

import (
	"context"
	"math"

	"github.com/betbot/polyserve/clob/types"
)

// VenueTrader is the order-management capability the gateway forwards to.
// Implemented by the clob client.
type VenueTrader interface {
	PlaceLimitOrder(ctx context.Context, tokenID string, side types.Side, price, size float64, options *types.CreateOrderOptions) (*types.OrderResponse, error)
	GetOpenOrders(ctx context.Context, params *types.OpenOrderParams) (types.OpenOrdersResponse, error)
}

// PlaceOrder forwards an order to the venue. The sign of size selects the
// side: positive buys, negative sells; the magnitude is the quantity.
// No local validation of price or size ranges, that is the venue's job.
func (s *Server) PlaceOrder(ctx context.Context, assetID string, size, price float64) (*types.OrderResponse, error) {
	side := types.SideBuy
	if size < 0 {
		side = types.SideSell
	}
	return s.trader.PlaceLimitOrder(ctx, assetID, side, price, math.Abs(size), nil)
}
