package manager

import (
	"sync"

	"github.com/maxking/archive-reader/internal/hyperkitty"
	"github.com/maxking/archive-reader/internal/model"
	"github.com/maxking/archive-reader/internal/store"
)

// Registry hands out thread managers, at most one per mailing list
// for the lifetime of the process. Screens and the background
// refresher share the same manager for a given list.
type Registry struct {
	client *hyperkitty.Client
	store  store.Store

	threadPageSize int
	emailPageSize  int

	mu       sync.Mutex
	managers map[string]*ThreadManager
}

// NewRegistry creates an empty Registry over the given client and store.
func NewRegistry(client *hyperkitty.Client, s store.Store, threadPageSize, emailPageSize int) *Registry {
	return &Registry{
		client:         client,
		store:          s,
		threadPageSize: threadPageSize,
		emailPageSize:  emailPageSize,
		managers:       make(map[string]*ThreadManager),
	}
}

// For returns the thread manager for the given mailing list, creating
// it on first use. Managers are cached by list name.
func (r *Registry) For(ml model.MailingList) *ThreadManager {
	r.mu.Lock()
	defer r.mu.Unlock()

	if mgr, ok := r.managers[ml.Name]; ok {
		return mgr
	}

	mgr := NewThreadManager(ml, r.client, r.store, r.threadPageSize, r.emailPageSize)
	r.managers[ml.Name] = mgr
	return mgr
}
