package discovery

import (
	"context"
	"strings"
	"time"

	"github.com/betbot/polyserve/clob/types"
	"github.com/betbot/polyserve/internal/registry"
	"github.com/betbot/polyserve/pkg/logger"
)

// MarketLister 市场列表分页数据源（由 clob 客户端实现）
type MarketLister interface {
	GetMarketsPage(ctx context.Context, cursor string) (*types.MarketsPage, error)
}

// DefaultRefreshInterval 列表扫完后重新轮询的间隔
const DefaultRefreshInterval = 10 * time.Second

// DefaultInitialCursor 启动游标，跳过目录头部早已过期的市场
const DefaultInitialCursor = "MjIwMDA="

// Loop 市场发现循环。
// 持续翻页 venue 的市场列表，把每个启用订单簿的市场的 outcome token
// 注册进资产注册表。翻到末尾哨兵后退避 RefreshInterval，再从最后一个
// 非哨兵游标重新轮询，让旧"末尾"之后新上架的市场能被发现而无需全量重扫。
type Loop struct {
	lister          MarketLister
	reg             *registry.Registry
	cursor          string
	refreshInterval time.Duration
	errorBackoff    time.Duration
}

// Config 发现循环配置
type Config struct {
	// InitialCursor 起始游标，空则使用 DefaultInitialCursor
	InitialCursor string

	// RefreshInterval 哨兵退避间隔，零值使用 DefaultRefreshInterval
	RefreshInterval time.Duration

	// ErrorBackoff 传输错误后的重试间隔，零值与 RefreshInterval 相同
	ErrorBackoff time.Duration
}

// NewLoop 创建发现循环
func NewLoop(lister MarketLister, reg *registry.Registry, cfg Config) *Loop {
	cursor := cfg.InitialCursor
	if cursor == "" {
		cursor = DefaultInitialCursor
	}
	refresh := cfg.RefreshInterval
	if refresh <= 0 {
		refresh = DefaultRefreshInterval
	}
	backoff := cfg.ErrorBackoff
	if backoff <= 0 {
		backoff = refresh
	}
	return &Loop{
		lister:          lister,
		reg:             reg,
		cursor:          cursor,
		refreshInterval: refresh,
		errorBackoff:    backoff,
	}
}

// Run 运行发现循环直到 ctx 取消。
// 单页拉取失败只记日志并退避重试，绝不向上传播为致命错误。
func (l *Loop) Run(ctx context.Context) error {
	for {
		page, err := l.lister.GetMarketsPage(ctx, l.cursor)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warnf("拉取市场页失败 cursor=%s: %v", l.cursor, err)
			if err := sleepCtx(ctx, l.errorBackoff); err != nil {
				return err
			}
			continue
		}

		l.ingestPage(page)
		logger.Infof("市场页已处理 cursor=%s 注册资产数=%d", l.cursor, l.reg.Len())

		if page.NextCursor != types.CursorEnd && page.NextCursor != "" {
			// 还有下一页，立即翻页
			l.cursor = page.NextCursor
			continue
		}

		// 列表已扫到末尾：保持最后一个非哨兵游标，退避后重新轮询
		if err := sleepCtx(ctx, l.refreshInterval); err != nil {
			return err
		}
	}
}

// Cursor 当前游标（测试用）
func (l *Loop) Cursor() string {
	return l.cursor
}

// ingestPage 把一页市场里可交易的 outcome token 注册进注册表
func (l *Loop) ingestPage(page *types.MarketsPage) {
	for _, market := range page.Data {
		if !market.EnableOrderBook {
			continue
		}
		text := joinedText(&market)
		for _, token := range market.Tokens {
			if token.TokenID == "" {
				continue
			}
			name := market.MarketSlug + "/" + token.Outcome
			l.reg.Register(token.TokenID, name, text)
		}
	}
}

// joinedText 拼接关键词文本：tags（可为 nil）、描述、问题，单空格连接
func joinedText(m *types.Market) string {
	parts := make([]string, 0, len(m.Tags)+2)
	parts = append(parts, m.Tags...)
	parts = append(parts, m.Description, m.Question)
	return strings.Join(parts, " ")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
