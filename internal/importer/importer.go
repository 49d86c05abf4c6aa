// Package importer translates legacy storefront rows into canonical
// entities, exactly once per run. Imports are best-effort bulk: a bad row
// is logged with its natural key and skipped, never aborting the batch.
// Every written row carries the run's generation id; once a group has
// fully landed, rows from older generations are diff-deleted, so a
// crashed partial run leaves the previous generation intact.
package importer

import (
	"sync"

	"github.com/google/uuid"

	"vinsync/internal/legacy"
	"vinsync/internal/logger"
	"vinsync/internal/store"
)

// Source is the read-only view of the legacy storefront database.
type Source interface {
	Products() ([]legacy.ProductRow, error)
	Customers() ([]legacy.CustomerRow, error)
	Orders() ([]legacy.OrderRow, error)
	OrderTotals(orderID int) ([]legacy.OrderTotalRow, error)
	LineItems() ([]legacy.LineItemRow, error)
	PurchaseOrders() ([]legacy.PurchaseOrderRow, error)
}

type Importer struct {
	source  Source
	store   *store.Store
	lookups *store.LookupCache
	logger  *logger.Logger
	workers int
	runID   string
}

func New(source Source, st *store.Store, log *logger.Logger, workers int) *Importer {
	return &Importer{
		source:  source,
		store:   st,
		lookups: st.NewLookupCache(),
		logger:  log,
		workers: workers,
		runID:   uuid.New().String(),
	}
}

// RunID is the generation marker stamped on every row this importer
// writes.
func (i *Importer) RunID() string {
	return i.runID
}

// ImportAll runs every import group in dependency order: orders need
// customers and products, purchase orders need products.
func (i *Importer) ImportAll() error {
	if _, err := i.ImportProducts(); err != nil {
		return err
	}
	if _, err := i.ImportCustomers(); err != nil {
		return err
	}
	if _, err := i.ImportOrders(); err != nil {
		return err
	}
	if _, err := i.ImportPurchaseOrders(); err != nil {
		return err
	}
	return nil
}

// Report aggregates the outcome of one import group. Skipped rows failed
// a per-row constraint; NotFound counts enrichment rows with no matching
// canonical entity.
type Report struct {
	mu sync.Mutex

	Imported   int
	Skipped    int
	NotFound   int
	FailedKeys []string
}

func (r *Report) imported() {
	r.mu.Lock()
	r.Imported++
	r.mu.Unlock()
}

func (r *Report) skip(key string) {
	r.mu.Lock()
	r.Skipped++
	r.FailedKeys = append(r.FailedKeys, key)
	r.mu.Unlock()
}

func (r *Report) notFound() {
	r.mu.Lock()
	r.NotFound++
	r.mu.Unlock()
}
