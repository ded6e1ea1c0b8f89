package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// BuildPolyHmacSignature 构建 Polymarket CLOB HMAC 签名
func BuildPolyHmacSignature(
	secret string,
	timestamp int64,
	method string,
	requestPath string,
	body *string,
) (string, error) {
	// 构建消息
	message := strconv.FormatInt(timestamp, 10) + method + requestPath
	if body != nil {
		message += *body
	}

	// secret 为 base64url 格式（将 - 替换为 +，_ 替换为 /）
	sanitizedSecret := strings.ReplaceAll(secret, "-", "+")
	sanitizedSecret = strings.ReplaceAll(sanitizedSecret, "_", "/")

	keyData, err := base64.StdEncoding.DecodeString(sanitizedSecret)
	if err != nil {
		return "", fmt.Errorf("解码 secret 失败: %w", err)
	}

	// 计算 HMAC-SHA256
	mac := hmac.New(sha256.New, keyData)
	mac.Write([]byte(message))
	signature := mac.Sum(nil)

	// 返回 base64url 编码的签名
	sig := base64.StdEncoding.EncodeToString(signature)
	sig = strings.ReplaceAll(sig, "+", "-")
	sig = strings.ReplaceAll(sig, "/", "_")
	return sig, nil
}
