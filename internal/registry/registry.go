package registry

import (
	"sync"

	"github.com/pkg/errors"
)

var (
	// ErrNameNotFound 反查时没有任何资产匹配该名称
	ErrNameNotFound = errors.New("registry: name not found")

	// ErrNameAmbiguous 反查时多个资产共享同一名称
	ErrNameAmbiguous = errors.New("registry: name is ambiguous")
)

// Record 一条已注册资产，发布后不可变
type Record struct {
	ID       string
	Name     string
	Keywords Keywords
}

// Registry 内存资产注册表。
// 写入方只有市场发现循环，读取方是并发的请求处理器；
// 记录整体覆盖发布，读方不会看到撕裂的字段组合。
// 插入顺序保留，供空查询的浏览模式使用。
type Registry struct {
	mu      sync.RWMutex
	records map[string]*Record
	order   []string // 首次注册顺序
}

// New 创建空注册表
func New() *Registry {
	return &Registry{
		records: make(map[string]*Record),
	}
}

// Register 注册或覆盖一条资产。
// descriptionText 在这里做一次分词，记录发布后立即对读方可见。
func (r *Registry) Register(id, displayName, descriptionText string) {
	rec := &Record{
		ID:       id,
		Name:     displayName,
		Keywords: Tokenize(descriptionText),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[id]; !exists {
		r.order = append(r.order, id)
	}
	r.records[id] = rec
}

// LookupNames 批量按 id 查名称，保持输入顺序。
// 未知 id 对应 nil 槽位而不是错误，调用方依赖输入输出等长对齐。
func (r *Registry) LookupNames(ids []string) []*string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]*string, len(ids))
	for i, id := range ids {
		if rec, ok := r.records[id]; ok {
			name := rec.Name
			names[i] = &name
		}
	}
	return names
}

// LookupID 按名称反查资产 id。
// 零个匹配返回 ErrNameNotFound；多个资产共享同一名称时返回
// ErrNameAmbiguous，不做"取第一个"的猜测。
func (r *Registry) LookupID(name string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := ""
	count := 0
	for _, id := range r.order {
		if r.records[id].Name == name {
			found = id
			count++
		}
	}

	switch count {
	case 0:
		return "", errors.Wrap(ErrNameNotFound, name)
	case 1:
		return found, nil
	default:
		return "", errors.Wrap(ErrNameAmbiguous, name)
	}
}

// Len 已注册资产数量
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// snapshot 按插入顺序取当前所有记录的一致快照。
// 记录本身不可变，拷贝指针切片即可。
func (r *Registry) snapshot() []*Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recs := make([]*Record, 0, len(r.order))
	for _, id := range r.order {
		recs = append(recs, r.records[id])
	}
	return recs
}

// IDs 按插入顺序返回所有资产 id
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
