package scheduler

import (
	"sync"

	"github.com/yashkumarverma/cronx/src/cron"
)

// Parser handles cron expression parsing. Parsed schedules are immutable,
// so they are cached by expression and shared.
type Parser struct {
	mu    sync.RWMutex
	cache map[string]cron.Schedule
}

// NewParser creates a new cron parser
func NewParser() *Parser {
	return &Parser{
		cache: make(map[string]cron.Schedule),
	}
}

// Parse parses a cron expression
func (p *Parser) Parse(spec string) (cron.Schedule, error) {
	p.mu.RLock()
	schedule, ok := p.cache[spec]
	p.mu.RUnlock()
	if ok {
		return schedule, nil
	}

	schedule, err := cron.Parse(spec)
	if err != nil {
		return cron.Schedule{}, err
	}

	p.mu.Lock()
	p.cache[spec] = schedule
	p.mu.Unlock()
	return schedule, nil
}

// Len returns the number of cached schedules.
func (p *Parser) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.cache)
}
