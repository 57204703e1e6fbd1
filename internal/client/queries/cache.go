package queries

import (
	"context"
	"strings"
	"sync"
)

// FetchFunc busca o valor autoritativo no serviço remoto
type FetchFunc func(ctx context.Context) (any, error)

// Cache guarda resultados de leituras remotas com marcação de staleness.
// Mutações nunca corrigem o valor localmente: invalidam a chave e a próxima
// leitura refaz a busca (invalidate-and-refetch).
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	val   any
	stale bool
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]*entry)}
}

// Get retorna o valor cacheado se ainda fresco; caso contrário refaz a busca
func (c *Cache) Get(ctx context.Context, key string, fetch FetchFunc) (any, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && !e.stale {
		v := e.val
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	v, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = &entry{val: v}
	c.mu.Unlock()
	return v, nil
}

// Invalidate marca como stale a chave exata e toda a hierarquia abaixo dela
// ("walletBalance" invalida "walletBalance" e "walletBalance:user@x")
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if k == key || strings.HasPrefix(k, key+":") {
			e.stale = true
		}
	}
}

// IsStale informa se a chave está marcada para refetch
// Chave desconhecida conta como stale (nunca buscada)
func (c *Cache) IsStale(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return !ok || e.stale
}
