package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/betbot/polyserve/clob/types"
)

// CreateOrder 构建并签名订单（不提交）
func (c *Client) CreateOrder(userOrder *types.UserOrder, options *types.CreateOrderOptions) (*types.SignedOrder, error) {
	if err := c.CanL1Auth(); err != nil {
		return nil, err
	}

	if options == nil {
		options = &types.CreateOrderOptions{TickSize: types.TickSize001}
	}
	if options.TickSize == "" {
		options.TickSize = types.TickSize001
	}

	builder := NewOrderBuilder(c, c.signatureType, c.funderAddress)
	return builder.BuildOrder(userOrder, options)
}

// PostOrder 提交已签名的订单
func (c *Client) PostOrder(ctx context.Context, order *types.SignedOrder, orderType types.OrderType) (*types.OrderResponse, error) {
	if err := c.CanL2Auth(); err != nil {
		return nil, err
	}

	if err := c.rateLimiter.Wait(ctx, "clob:order:post"); err != nil {
		return nil, fmt.Errorf("速率限制等待失败: %w", err)
	}

	payload := &types.NewOrder{
		Order:     *order,
		Owner:     c.authConfig.Creds.Key,
		OrderType: orderType,
	}

	// HMAC 签名必须覆盖实际提交的请求体
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("序列化订单失败: %w", err)
	}
	bodyStr := string(bodyBytes)

	headers, err := c.l2HeaderMap(http.MethodPost, EndpointPostOrder, &bodyStr)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.post(EndpointPostOrder, headers, payload)
	if err != nil {
		return nil, fmt.Errorf("提交订单失败: %w", err)
	}

	var orderResp types.OrderResponse
	if err := parseResponse(resp, &orderResp); err != nil {
		return nil, err
	}

	if !orderResp.Success {
		return &orderResp, fmt.Errorf("订单被拒绝: %s", orderResp.ErrorMsg)
	}

	return &orderResp, nil
}

// PlaceLimitOrder 创建、签名并提交一个 GTC 限价单
func (c *Client) PlaceLimitOrder(ctx context.Context, tokenID string, side types.Side, price, size float64, options *types.CreateOrderOptions) (*types.OrderResponse, error) {
	userOrder := &types.UserOrder{
		TokenID: tokenID,
		Price:   price,
		Size:    size,
		Side:    side,
	}

	signedOrder, err := c.CreateOrder(userOrder, options)
	if err != nil {
		return nil, fmt.Errorf("创建订单失败: %w", err)
	}

	return c.PostOrder(ctx, signedOrder, types.OrderTypeGTC)
}

// GetOpenOrders 获取当前账户的开放订单
func (c *Client) GetOpenOrders(ctx context.Context, params *types.OpenOrderParams) (types.OpenOrdersResponse, error) {
	if err := c.CanL2Auth(); err != nil {
		return nil, err
	}

	if err := c.rateLimiter.Wait(ctx, "clob:orders:get"); err != nil {
		return nil, fmt.Errorf("速率限制等待失败: %w", err)
	}

	headers, err := c.l2HeaderMap(http.MethodGet, EndpointGetOpenOrders, nil)
	if err != nil {
		return nil, err
	}

	queryParams := map[string]string{}
	if params != nil {
		if params.ID != nil {
			queryParams["id"] = *params.ID
		}
		if params.Market != nil {
			queryParams["market"] = *params.Market
		}
		if params.AssetID != nil {
			queryParams["asset_id"] = *params.AssetID
		}
	}

	resp, err := c.httpClient.get(EndpointGetOpenOrders, headers, queryParams)
	if err != nil {
		return nil, fmt.Errorf("获取开放订单失败: %w", err)
	}

	var apiResp types.OpenOrdersAPIResponse
	if err := parseResponse(resp, &apiResp); err != nil {
		return nil, err
	}

	return types.OpenOrdersResponse(apiResp.Data), nil
}
