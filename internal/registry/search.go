package registry

import (
	"math"
	"sort"
)

// Search 关键词搜索。
// maxResults <= 0 表示不限数量。空查询进入浏览模式：按插入顺序
// 返回前 maxResults 个 id，不做排名。其余情况按余弦相似度降序，
// 过滤掉相似度 <= 0 或 NaN 的资产；同分时按插入顺序稳定排序。
func (r *Registry) Search(query string, maxResults int) []string {
	recs := r.snapshot()

	if maxResults <= 0 {
		maxResults = len(recs)
	}

	if query == "" {
		n := maxResults
		if n > len(recs) {
			n = len(recs)
		}
		ids := make([]string, n)
		for i := 0; i < n; i++ {
			ids[i] = recs[i].ID
		}
		return ids
	}

	queryVec := Tokenize(query)

	type scored struct {
		id    string
		score float64
		index int // 插入序，用于稳定的同分排序
	}

	matches := make([]scored, 0, len(recs))
	for i, rec := range recs {
		score := Cosine(queryVec, rec.Keywords)
		if math.IsNaN(score) || score <= 0 {
			continue
		}
		matches = append(matches, scored{id: rec.ID, score: score, index: i})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].index < matches[j].index
	})

	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}

	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.id
	}
	return ids
}
