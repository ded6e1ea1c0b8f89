package client

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"

	"github.com/betbot/polyserve/clob/signing"
	"github.com/betbot/polyserve/clob/types"
)

// zeroAddress 公开订单的 taker 地址
const zeroAddress = "0x0000000000000000000000000000000000000000"

// RoundConfig 各字段的小数位数
type RoundConfig struct {
	Price  int32 // 价格小数位数
	Size   int32 // 数量小数位数
	Amount int32 // 金额小数位数
}

// RoundingConfig 根据 tick size 返回舍入配置
var RoundingConfig = map[types.TickSize]RoundConfig{
	types.TickSize01:    {Price: 1, Size: 2, Amount: 3},
	types.TickSize001:   {Price: 2, Size: 2, Amount: 4},
	types.TickSize0001:  {Price: 3, Size: 2, Amount: 5},
	types.TickSize00001: {Price: 4, Size: 2, Amount: 6},
}

// OrderBuilder 订单构建器
type OrderBuilder struct {
	client        *Client
	signatureType types.SignatureType
	funderAddress string
}

// NewOrderBuilder 创建新的订单构建器
func NewOrderBuilder(client *Client, signatureType types.SignatureType, funderAddress string) *OrderBuilder {
	return &OrderBuilder{
		client:        client,
		signatureType: signatureType,
		funderAddress: funderAddress,
	}
}

// BuildOrder 构建并签名订单
func (ob *OrderBuilder) BuildOrder(userOrder *types.UserOrder, options *types.CreateOrderOptions) (*types.SignedOrder, error) {
	contractConfig, err := GetContractConfig(ob.client.GetChainID())
	if err != nil {
		return nil, fmt.Errorf("获取合约配置失败: %w", err)
	}

	roundConfig, ok := RoundingConfig[options.TickSize]
	if !ok {
		return nil, fmt.Errorf("不支持的 tick size: %s", options.TickSize)
	}

	signerAddress := crypto.PubkeyToAddress(ob.client.authConfig.PrivateKey.PublicKey)

	// maker 地址：代理钱包优先，否则使用签名者地址
	maker := signerAddress.Hex()
	if ob.funderAddress != "" {
		maker = ob.funderAddress
	}

	makerAmount, takerAmount := orderAmounts(userOrder.Side, userOrder.Size, userOrder.Price, roundConfig)

	taker := zeroAddress
	if userOrder.Taker != nil && *userOrder.Taker != "" {
		taker = *userOrder.Taker
	}

	feeRateBps := big.NewInt(0)
	if userOrder.FeeRateBps != nil {
		feeRateBps = big.NewInt(int64(*userOrder.FeeRateBps))
	}

	nonce := big.NewInt(0)
	if userOrder.Nonce != nil {
		nonce = big.NewInt(int64(*userOrder.Nonce))
	}

	expiration := big.NewInt(0)
	if userOrder.Expiration != nil {
		expiration = big.NewInt(*userOrder.Expiration)
	}

	// salt 使用当前时间戳纳秒
	salt := time.Now().UnixNano()

	tokenID := new(big.Int)
	if _, ok := tokenID.SetString(userOrder.TokenID, 10); !ok {
		return nil, fmt.Errorf("无效的 tokenID: %s", userOrder.TokenID)
	}

	exchangeAddress := contractConfig.Exchange
	if options.NegRisk != nil && *options.NegRisk {
		exchangeAddress = contractConfig.NegRiskExchange
	}

	orderData := &signing.OrderData{
		Salt:          salt,
		Maker:         maker,
		Signer:        signerAddress.Hex(),
		Taker:         taker,
		TokenID:       tokenID,
		MakerAmount:   makerAmount,
		TakerAmount:   takerAmount,
		Expiration:    expiration,
		Nonce:         nonce,
		FeeRateBps:    feeRateBps,
		Side:          userOrder.Side,
		SignatureType: ob.signatureType,
	}

	signature, err := signing.BuildOrderSignature(
		ob.client.authConfig.PrivateKey,
		ob.client.GetChainID(),
		exchangeAddress,
		orderData,
	)
	if err != nil {
		return nil, fmt.Errorf("签名订单失败: %w", err)
	}

	return &types.SignedOrder{
		Salt:          salt,
		Maker:         maker,
		Signer:        signerAddress.Hex(),
		Taker:         taker,
		TokenID:       userOrder.TokenID,
		MakerAmount:   makerAmount.String(),
		TakerAmount:   takerAmount.String(),
		Expiration:    expiration.String(),
		Nonce:         nonce.String(),
		FeeRateBps:    feeRateBps.String(),
		Side:          userOrder.Side,
		SignatureType: int(ob.signatureType),
		Signature:     signature,
	}, nil
}

// orderAmounts 计算订单的 maker/taker 金额（wei，USDC 精度 6）。
// 买入：taker 获得 tokens，maker 支付 USDC；卖出相反。
// 卖出订单的精度要求与买入不同：token 数量最多 2 位小数，USDC 金额最多 4 位。
func orderAmounts(side types.Side, size, price float64, rc RoundConfig) (*big.Int, *big.Int) {
	rawPrice := decimal.NewFromFloat(price).Round(rc.Price)
	rawSize := decimal.NewFromFloat(size).Truncate(rc.Size)

	var rawMakerAmt, rawTakerAmt decimal.Decimal
	if side == types.SideBuy {
		rawTakerAmt = rawSize
		rawMakerAmt = rawTakerAmt.Mul(rawPrice)
		if -rawMakerAmt.Exponent() > rc.Amount {
			rawMakerAmt = rawMakerAmt.RoundUp(rc.Amount + 4)
			if -rawMakerAmt.Exponent() > rc.Amount {
				rawMakerAmt = rawMakerAmt.Truncate(rc.Amount)
			}
		}
	} else {
		rawMakerAmt = rawSize
		rawTakerAmt = rawMakerAmt.Mul(rawPrice).Truncate(4)
	}

	return toWei(rawMakerAmt), toWei(rawTakerAmt)
}

// toWei 转换为最小单位整数（向下取整）
func toWei(d decimal.Decimal) *big.Int {
	return d.Shift(CollateralTokenDecimals).Truncate(0).BigInt()
}
