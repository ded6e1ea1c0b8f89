package groups

import (
	"sort"
	"strconv"
	"sync"

	"github.com/pkg/errors"
)

// ErrGroupNotFound 操作的分组不存在
var ErrGroupNotFound = errors.New("groups: group not found")

// Group 一个资产分组的快照。
// Selected 是组内当前选中的资产，组为空时为空串。
type Group struct {
	Name     string
	Assets   []string
	Selected string
}

// Store 资产分组存储，纯内存。
// 分组是 UI 便利功能：同名覆盖，空名用自增计数器命名。
type Store struct {
	mu        sync.RWMutex
	assets    map[string]map[string]struct{}
	selection map[string]string
	counter   int
}

// NewStore 创建空分组存储
func NewStore() *Store {
	return &Store{
		assets:    make(map[string]map[string]struct{}),
		selection: make(map[string]string),
	}
}

// Set 创建或覆盖分组。
// name 为空时自动分配计数器名称；选中项取第一个资产（无资产则为空）。
// 返回实际使用的分组名。
func (s *Store) Set(name string, assetIDs []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if name == "" {
		name = strconv.Itoa(s.counter)
		s.counter++
	}

	set := make(map[string]struct{}, len(assetIDs))
	for _, id := range assetIDs {
		set[id] = struct{}{}
	}
	s.assets[name] = set

	s.selection[name] = ""
	if len(assetIDs) > 0 {
		s.selection[name] = assetIDs[0]
	}
	return name
}

// Extend 向分组添加资产。选中项不在组内时修复为新增的第一个资产。
func (s *Store) Extend(name string, assetIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.assets[name]
	if !ok {
		return errors.Wrap(ErrGroupNotFound, name)
	}
	for _, id := range assetIDs {
		set[id] = struct{}{}
	}
	s.repairSelection(name, assetIDs)
	return nil
}

// Reduce 从分组移除资产。选中项被移除时修复为组内剩余的某个资产。
func (s *Store) Reduce(name string, assetIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.assets[name]
	if !ok {
		return errors.Wrap(ErrGroupNotFound, name)
	}
	for _, id := range assetIDs {
		delete(set, id)
	}
	s.repairSelection(name, nil)
	return nil
}

// repairSelection 当前选中项不在组内时重新选择。
// preferred 非空时优先从中选，否则从组内任取。
func (s *Store) repairSelection(name string, preferred []string) {
	set := s.assets[name]
	if _, ok := set[s.selection[name]]; ok {
		return
	}

	s.selection[name] = ""
	for _, id := range preferred {
		if _, ok := set[id]; ok {
			s.selection[name] = id
			return
		}
	}
	for id := range set {
		s.selection[name] = id
		return
	}
}

// Rename 重命名分组，选中项一并迁移
func (s *Store) Rename(oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.assets[oldName]
	if !ok {
		return errors.Wrap(ErrGroupNotFound, oldName)
	}
	s.assets[newName] = set
	s.selection[newName] = s.selection[oldName]
	delete(s.assets, oldName)
	delete(s.selection, oldName)
	return nil
}

// Get 返回分组快照，资产列表排序保证输出稳定
func (s *Store) Get(name string) (*Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.assets[name]
	if !ok {
		return nil, errors.Wrap(ErrGroupNotFound, name)
	}

	assets := make([]string, 0, len(set))
	for id := range set {
		assets = append(assets, id)
	}
	sort.Strings(assets)

	return &Group{Name: name, Assets: assets, Selected: s.selection[name]}, nil
}

// List 返回所有分组名，排序输出
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.assets))
	for name := range s.assets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Remove 删除分组
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.assets[name]; !ok {
		return errors.Wrap(ErrGroupNotFound, name)
	}
	delete(s.assets, name)
	delete(s.selection, name)
	return nil
}
