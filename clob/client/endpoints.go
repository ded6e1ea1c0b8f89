package client

// API 端点常量
const (
	// API Key endpoints
	EndpointCreateAPIKey = "/auth/api-key"
	EndpointDeriveAPIKey = "/auth/derive-api-key"

	// Markets
	EndpointGetMarkets   = "/markets"
	EndpointGetOrderBook = "/book"

	// Order endpoints
	EndpointPostOrder     = "/order"
	EndpointGetOpenOrders = "/data/orders"
)
