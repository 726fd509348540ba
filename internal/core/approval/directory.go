package approval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/docstore"
	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/core/notification"
)

// Directory is the set of privileged approvers (sellers), name→number.
// Names are matched case-insensitively.
type Directory struct {
	mu     sync.RWMutex
	byName map[string]string
}

func NewDirectory(entries map[string]string) *Directory {
	d := &Directory{byName: make(map[string]string, len(entries))}
	for name, number := range entries {
		d.byName[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(number)
	}
	return d
}

// LoadDirectory reads the approver document, creating an empty one when
// it does not exist yet.
func LoadDirectory(ctx context.Context, docs docstore.Store) (*Directory, error) {
	entries := map[string]string{}
	found, err := docs.Load(ctx, docstore.Approvers, &entries)
	if err != nil {
		return nil, fmt.Errorf("load approvers: %w", err)
	}
	if !found {
		if err := docs.Save(ctx, docstore.Approvers, entries); err != nil {
			return nil, fmt.Errorf("create approvers document: %w", err)
		}
	}
	return NewDirectory(entries), nil
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byName)
}

// IsApprover reports whether number belongs to a configured approver.
func (d *Directory) IsApprover(number string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, n := range d.byName {
		if n == number {
			return true
		}
	}
	return false
}

// Lookup finds an approver's number by name.
func (d *Directory) Lookup(name string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, ok := d.byName[strings.ToLower(strings.TrimSpace(name))]
	return n, ok
}

// Names returns the lower-cased approver names, sorted.
func (d *Directory) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.byName))
	for name := range d.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Recipients lists every approver in name order.
func (d *Directory) Recipients() []notification.Recipient {
	names := d.Names()

	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]notification.Recipient, 0, len(names))
	for _, name := range names {
		out = append(out, notification.Recipient{Name: name, Phone: d.byName[name]})
	}
	return out
}
