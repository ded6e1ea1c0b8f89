package client

import (
	"crypto/ecdsa"
	"fmt"
	"net/url"
	"strings"

	"github.com/betbot/polyserve/clob/types"
	"github.com/betbot/polyserve/pkg/ratelimit"
)

// Client CLOB 客户端
type Client struct {
	host          string
	chainID       types.Chain
	authConfig    *AuthConfig
	httpClient    *httpClient
	signatureType types.SignatureType
	funderAddress string
	rateLimiter   *ratelimit.Manager
}

// Options 客户端可选配置
type Options struct {
	// Proxy 出口代理 URL（为空则直连）
	Proxy string

	// Transport 自定义 HTTP 传输；非 nil 时优先于 Proxy
	Transport HTTPDoer

	// SignatureType 订单签名类型（默认 EOA）
	SignatureType types.SignatureType

	// FunderAddress 代理钱包地址（maker 地址），为空则使用签名者地址
	FunderAddress string
}

// NewClient 创建新的 CLOB 客户端
func NewClient(
	host string,
	chainID types.Chain,
	privateKey *ecdsa.PrivateKey,
	creds *types.ApiKeyCreds,
	opts *Options,
) (*Client, error) {
	if opts == nil {
		opts = &Options{}
	}

	var proxyURL *url.URL
	if opts.Proxy != "" {
		parsed, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("解析代理 URL 失败: %w", err)
		}
		proxyURL = parsed
	}

	authConfig := &AuthConfig{
		PrivateKey: privateKey,
		ChainID:    chainID,
		Creds:      creds,
	}

	return &Client{
		host:          strings.TrimSuffix(host, "/"),
		chainID:       chainID,
		authConfig:    authConfig,
		httpClient:    newHTTPClient(host, opts.Transport, proxyURL),
		signatureType: opts.SignatureType,
		funderAddress: opts.FunderAddress,
		rateLimiter:   ratelimit.NewManager(),
	}, nil
}

// SetCreds 设置 API 凭证（推导完成后调用）
func (c *Client) SetCreds(creds *types.ApiKeyCreds) {
	c.authConfig.Creds = creds
}

// GetHost 获取主机地址
func (c *Client) GetHost() string {
	return c.host
}

// GetChainID 获取链 ID
func (c *Client) GetChainID() types.Chain {
	return c.chainID
}
