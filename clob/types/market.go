package types

// CursorEnd 市场列表分页结束哨兵（base64 编码的 "-1"）
const CursorEnd = "LTE="

// Token 市场中的一个可交易结果代币
type Token struct {
	TokenID string `json:"token_id"`
	Outcome string `json:"outcome"`
	Price   string `json:"price,omitempty"`
	Winner  bool   `json:"winner,omitempty"`
}

// Market 市场条目（/markets 列表返回格式）
type Market struct {
	ConditionID     string   `json:"condition_id"`
	QuestionID      string   `json:"question_id"`
	MarketSlug      string   `json:"market_slug"`
	Question        string   `json:"question"`
	Description     string   `json:"description"`
	Tags            []string `json:"tags"` // 可能为 null
	EnableOrderBook bool     `json:"enable_order_book"`
	Active          bool     `json:"active"`
	Closed          bool     `json:"closed"`
	Tokens          []Token  `json:"tokens"`
}

// MarketsPage 市场列表分页响应
type MarketsPage struct {
	Limit      int      `json:"limit"`
	Count      int      `json:"count"`
	NextCursor string   `json:"next_cursor"`
	Data       []Market `json:"data"`
}

// OrderBookSummary 订单簿摘要
type OrderBookSummary struct {
	Market    string         `json:"market"`
	AssetID   string         `json:"asset_id"`
	Timestamp string         `json:"timestamp"`
	Bids      []OrderSummary `json:"bids"`
	Asks      []OrderSummary `json:"asks"`
	Hash      string         `json:"hash"`
}

// OrderSummary 订单簿单档（价格/数量均为十进制字符串）
type OrderSummary struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}
