package client

import (
	"context"
	"fmt"

	"github.com/betbot/polyserve/clob/types"
)

// GetMarketsPage 获取市场列表的一页。
// cursor 为空表示从头开始；返回页的 NextCursor 等于 types.CursorEnd
// 时表示列表已扫描到末尾。
func (c *Client) GetMarketsPage(ctx context.Context, cursor string) (*types.MarketsPage, error) {
	if err := c.rateLimiter.Wait(ctx, "clob:markets:get"); err != nil {
		return nil, fmt.Errorf("速率限制等待失败: %w", err)
	}

	queryParams := map[string]string{
		"next_cursor": cursor,
	}

	resp, err := c.httpClient.get(EndpointGetMarkets, nil, queryParams)
	if err != nil {
		return nil, fmt.Errorf("获取市场列表失败: %w", err)
	}

	var page types.MarketsPage
	if err := parseResponse(resp, &page); err != nil {
		return nil, err
	}

	return &page, nil
}

// GetOrderBook 获取指定资产的订单簿
func (c *Client) GetOrderBook(ctx context.Context, tokenID string) (*types.OrderBookSummary, error) {
	if err := c.rateLimiter.Wait(ctx, "clob:book:get"); err != nil {
		return nil, fmt.Errorf("速率限制等待失败: %w", err)
	}

	queryParams := map[string]string{
		"token_id": tokenID,
	}

	resp, err := c.httpClient.get(EndpointGetOrderBook, nil, queryParams)
	if err != nil {
		return nil, fmt.Errorf("获取订单簿失败: %w", err)
	}

	var book types.OrderBookSummary
	if err := parseResponse(resp, &book); err != nil {
		return nil, err
	}

	return &book, nil
}
