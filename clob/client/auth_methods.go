package client

import (
	"fmt"
	"net/http"

	"github.com/betbot/polyserve/clob/signing"
	"github.com/betbot/polyserve/clob/types"
)

// l1HeaderMap 构建 L1 认证头并转换为 map
func (c *Client) l1HeaderMap(nonce *int64) (map[string]string, error) {
	headers, err := signing.CreateL1Headers(
		c.authConfig.PrivateKey,
		c.authConfig.ChainID,
		nonce,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("创建 L1 认证头失败: %w", err)
	}
	return map[string]string{
		"POLY_ADDRESS":   headers.PolyAddress,
		"POLY_SIGNATURE": headers.PolySignature,
		"POLY_TIMESTAMP": headers.PolyTimestamp,
		"POLY_NONCE":     headers.PolyNonce,
	}, nil
}

// CreateAPIKey 创建新的 API 密钥（L1 认证）
func (c *Client) CreateAPIKey(nonce *int64) (*types.ApiKeyCreds, error) {
	if err := c.CanL1Auth(); err != nil {
		return nil, err
	}

	headers, err := c.l1HeaderMap(nonce)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.post(EndpointCreateAPIKey, headers, nil)
	if err != nil {
		return nil, fmt.Errorf("创建 API 密钥请求失败: %w", err)
	}

	var raw types.ApiKeyRaw
	if err := parseResponse(resp, &raw); err != nil {
		return nil, err
	}

	return &types.ApiKeyCreds{
		Key:        raw.ApiKey,
		Secret:     raw.Secret,
		Passphrase: raw.Passphrase,
	}, nil
}

// DeriveAPIKey 推导已存在的 API 密钥（L1 认证）
func (c *Client) DeriveAPIKey(nonce *int64) (*types.ApiKeyCreds, error) {
	if err := c.CanL1Auth(); err != nil {
		return nil, err
	}

	headers, err := c.l1HeaderMap(nonce)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.get(EndpointDeriveAPIKey, headers, nil)
	if err != nil {
		return nil, fmt.Errorf("推导 API 密钥请求失败: %w", err)
	}

	if resp.StatusCode == http.StatusBadRequest {
		resp.Body.Close()
		return nil, fmt.Errorf("API 密钥不存在")
	}

	var raw types.ApiKeyRaw
	if err := parseResponse(resp, &raw); err != nil {
		return nil, err
	}

	return &types.ApiKeyCreds{
		Key:        raw.ApiKey,
		Secret:     raw.Secret,
		Passphrase: raw.Passphrase,
	}, nil
}

// CreateOrDeriveAPIKey 优先推导已有密钥，不存在时创建新密钥。
// 推导成功后自动写入客户端凭证。
func (c *Client) CreateOrDeriveAPIKey(nonce *int64) (*types.ApiKeyCreds, error) {
	creds, err := c.DeriveAPIKey(nonce)
	if err == nil {
		c.SetCreds(creds)
		return creds, nil
	}

	creds, err = c.CreateAPIKey(nonce)
	if err != nil {
		return nil, fmt.Errorf("创建 API 密钥失败: %w", err)
	}

	c.SetCreds(creds)
	return creds, nil
}
