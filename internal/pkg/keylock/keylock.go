// internal/pkg/keylock/keylock.go
package keylock

import "sync"

// KeyLock 提供进程内的按 key 互斥。
// 同一个 key 上的临界区串行执行，不同 key 之间完全并行；
// 条目按引用计数回收，长时间运行不会泄漏已释放的 key。
type KeyLock struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func New() *KeyLock {
	return &KeyLock{entries: make(map[string]*entry)}
}

// Lock 获取 key 对应的锁，获取不到则阻塞等待。
func (l *KeyLock) Lock(key string) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
}

// Unlock 释放 key 对应的锁。对未持有的 key 调用 Unlock 是调用方的错误。
func (l *KeyLock) Unlock(key string) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		l.mu.Unlock()
		panic("keylock: unlock of unlocked key " + key)
	}
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
	l.mu.Unlock()

	e.mu.Unlock()
}
