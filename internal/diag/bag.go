package diag

import (
	"fmt"
)

// Bag collects findings for one file up to a fixed cap. Emission order is
// preserved: renderers and the position translator rely on it.
type Bag struct {
	items []Finding
	max   uint16
}

func NewBag(max int) *Bag {
	return &Bag{
		items: make([]Finding, 0, min(max, 32)),
		max:   uint16(max),
	}
}

// Add добавляет финдинг, учитывая лимит.
// Возвращает false, если финдинг не добавлен (достигнут лимит).
func (b *Bag) Add(f Finding) bool {
	if len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, f)
	return true
}

func (b *Bag) Cap() uint16 {
	return b.max
}

// HasErrors возвращает true, если есть хотя бы один финдинг с Severity >= Error
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasWarnings возвращает true, если есть хотя бы один финдинг с Severity >= Warning
func (b *Bag) HasWarnings() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevWarning {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice финдингов.
// ВАЖНО: не модифицируйте возвращаемый срез! (он указывает на внутренний массив Bag)
func (b *Bag) Items() []Finding {
	return b.items
}

// Merge объединяет финдинги из другого Bag.
// Увеличивает max, если нужно вместить все элементы.
func (b *Bag) Merge(other *Bag) {
	newTotal := len(b.items) + len(other.items)
	if uint16(newTotal) > b.max {
		b.max = uint16(newTotal)
	}
	b.items = append(b.items, other.items...)
}

// Dedup drops repeated findings with the same code, rule and anchoring span.
// Nested parse-error nodes produce such repeats.
func (b *Bag) Dedup() {
	seen := make(map[string]bool, len(b.items))
	newitems := make([]Finding, 0, len(b.items))
	for _, f := range b.items {
		key := fmt.Sprintf("%d:%s:%s", f.Code, f.Rule, f.Primary().String())
		if seen[key] {
			continue
		}
		seen[key] = true
		newitems = append(newitems, f)
	}
	b.items = newitems
}
