package books

import (
	"context"
	"sort"
	"strconv"

	"github.com/betbot/polyserve/clob/types"
	"github.com/betbot/polyserve/pkg/logger"
	"github.com/betbot/polyserve/pkg/syncgroup"
)

// BookFetcher 订单簿数据源（由 clob 客户端实现）
type BookFetcher interface {
	GetOrderBook(ctx context.Context, tokenID string) (*types.OrderBookSummary, error)
}

// Level 一档价位
type Level struct {
	Price float64
	Size  float64
}

// BookView 一个资产的聚合订单簿视图。
// Levels 以价格为键，买单数量为正、卖单数量为负；
// 深度截断后同价位买卖冲突时，卖单覆盖买单（沿用既有合并顺序）。
// Err 非 nil 表示该资产的拉取失败，其他槽位不受影响。
type BookView struct {
	AssetID string
	Levels  map[float64]float64
	Err     error
}

// Aggregator 订单簿聚合器
type Aggregator struct {
	fetcher BookFetcher
}

// NewAggregator 创建聚合器
func NewAggregator(fetcher BookFetcher) *Aggregator {
	return &Aggregator{fetcher: fetcher}
}

// GetBooks 并发拉取多个资产的订单簿并聚合。
// 返回切片与输入 id 顺序一一对应；所有拉取并发进行，
// 全部结束后才返回。单个资产失败只标记该槽位的 Err。
// depth == 0 表示不截断（取两侧较长者的长度）。
func (a *Aggregator) GetBooks(ctx context.Context, assetIDs []string, depth int) []BookView {
	views := make([]BookView, len(assetIDs))

	group := syncgroup.New()
	for i, id := range assetIDs {
		i, id := i, id
		group.Go(func() {
			summary, err := a.fetcher.GetOrderBook(ctx, id)
			if err != nil {
				logger.Warnf("拉取订单簿失败 asset=%s: %v", id, err)
				views[i] = BookView{AssetID: id, Err: err}
				return
			}
			views[i] = BookView{AssetID: id, Levels: aggregate(id, summary, depth)}
		})
	}
	group.Wait()

	return views
}

// aggregate 把原始 bids/asks 折叠成带符号的价格映射
func aggregate(assetID string, summary *types.OrderBookSummary, depth int) map[float64]float64 {
	if summary.Bids == nil {
		logger.Warnf("订单簿缺少 bids asset=%s", assetID)
	}
	if summary.Asks == nil {
		logger.Warnf("订单簿缺少 asks asset=%s", assetID)
	}

	bids := parseLevels(assetID, "bid", summary.Bids)
	asks := parseLevels(assetID, "ask", summary.Asks)

	// 非正 depth 统一按"不截断"处理
	effective := depth
	if effective < 0 {
		effective = 0
	}
	if effective == 0 {
		effective = len(bids)
		if len(asks) > effective {
			effective = len(asks)
		}
	}

	// 买单取价格最高的 depth 档
	sort.Slice(bids, func(i, j int) bool { return bids[i].Price > bids[j].Price })
	if len(bids) > effective {
		bids = bids[:effective]
	}

	// 卖单取价格最低的 depth 档
	sort.Slice(asks, func(i, j int) bool { return asks[i].Price < asks[j].Price })
	if len(asks) > effective {
		asks = asks[:effective]
	}

	// 买单为正先写入，卖单为负后写入：同价位卖单覆盖买单
	levels := make(map[float64]float64, len(bids)+len(asks))
	for _, lv := range bids {
		levels[lv.Price] = lv.Size
	}
	for _, lv := range asks {
		levels[lv.Price] = -lv.Size
	}
	return levels
}

// parseLevels 把 venue 的字符串档位转换为数值，解析失败的档位丢弃并记日志
func parseLevels(assetID, side string, raw []types.OrderSummary) []Level {
	levels := make([]Level, 0, len(raw))
	for _, o := range raw {
		price, err := strconv.ParseFloat(o.Price, 64)
		if err != nil {
			logger.Warnf("无法解析 %s 价格 asset=%s price=%q: %v", side, assetID, o.Price, err)
			continue
		}
		size, err := strconv.ParseFloat(o.Size, 64)
		if err != nil {
			logger.Warnf("无法解析 %s 数量 asset=%s size=%q: %v", side, assetID, o.Size, err)
			continue
		}
		levels = append(levels, Level{Price: price, Size: size})
	}
	return levels
}
