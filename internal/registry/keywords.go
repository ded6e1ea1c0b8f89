package registry

import (
	"math"
	"strings"
	"unicode"
)

// Keywords 稀疏词频向量，不可变值。
// norm 在 Tokenize 时计算一次并随值保存：搜索对每个已注册资产
// 都要算一次余弦相似度，norm 不能在查询路径上重复计算。
type Keywords struct {
	Terms map[string]int
	norm  float64
}

// Tokenize 把自由文本转换为词频向量。
// 规则：全部小写，标点替换为空格，按空白切分并计数，丢弃空 token。
// 纯函数，结果确定。
func Tokenize(text string) Keywords {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}

	terms := make(map[string]int)
	for _, tok := range strings.Fields(b.String()) {
		terms[tok]++
	}

	return Keywords{Terms: terms, norm: euclideanNorm(terms)}
}

// Norm 向量的欧几里得范数（构造时已算好）
func (k Keywords) Norm() float64 {
	return k.norm
}

// Len 向量的词项数
func (k Keywords) Len() int {
	return len(k.Terms)
}

func euclideanNorm(terms map[string]int) float64 {
	var sum float64
	for _, c := range terms {
		sum += float64(c) * float64(c)
	}
	return math.Sqrt(sum)
}

// Cosine 计算两个词频向量的余弦相似度。
// 只遍历较小向量的词项集合，使复杂度为 O(min(|a|,|b|))；
// 两者等长时遍历接收方 a，保证同一输入的计算路径稳定。
// 任一范数为 0 时结果为 NaN，调用方把非正值和 NaN 都视为"不匹配"。
func Cosine(a, b Keywords) float64 {
	small, large := a, b
	if b.Len() < a.Len() {
		small, large = b, a
	}

	var dot float64
	for term, c := range small.Terms {
		if oc, ok := large.Terms[term]; ok {
			dot += float64(c) * float64(oc)
		}
	}

	return dot / (a.norm * b.norm)
}
