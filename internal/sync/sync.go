// Package sync drives the one-way push of canonical entities onto the
// commerce platform. The state machine is keyed on the stored remote id:
// entities without one take the create path and get stamped on success,
// entities with one only ever take the update path. Batches fan out
// through the bounded pool and report per-key outcomes.
package sync

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"vinsync/internal/logger"
	"vinsync/internal/models"
	"vinsync/internal/pool"
	"vinsync/internal/shopify"
	"vinsync/internal/store"
)

// Client is the remote platform surface the synchronizer drives.
type Client interface {
	CreateProduct(product *models.Product) (*shopify.Product, error)
	UpdateProductMetafields(product *models.Product, shopifyID int64) error
	UpdateProductStatus(shopifyID int64, status string) error
	UploadImage(shopifyID int64, image, alt string) (*shopify.Image, error)
	SetInventoryLevel(shopifyID int64, locationID string, available int) error
	ListProductIDs() ([]int64, error)
	CreateCustomer(customer *models.Customer) (*shopify.Customer, error)
	CreateOrder(order *models.Order, shippingAddress *models.Address) (*shopify.Order, error)
	FulfillOrder(order *models.Order) (string, error)
	CreateSmartCollection(title string) (*shopify.SmartCollection, error)
}

type Synchronizer struct {
	client     Client
	store      *store.Store
	logger     *logger.Logger
	events     *Publisher
	workers    int
	locationID string
}

func New(client Client, st *store.Store, log *logger.Logger, events *Publisher, workers int, locationID string) *Synchronizer {
	return &Synchronizer{
		client:     client,
		store:      st,
		logger:     log,
		events:     events,
		workers:    workers,
		locationID: locationID,
	}
}

// Products creates every product that has no remote id yet. Success stamps
// the id, then chains the roomset image upload and the inventory level;
// a failed chain step is logged but never reverts the stamped id.
func (s *Synchronizer) Products() (*pool.Report, error) {
	products, err := s.store.UnsyncedProducts()
	if err != nil {
		return nil, err
	}

	tasks := make([]pool.Task, 0, len(products))
	for i := range products {
		product := products[i]
		tasks = append(tasks, pool.Task{
			Key: fmt.Sprintf("product %s", product.SKU),
			Run: func() error { return s.createProduct(&product) },
		})
	}
	report := pool.Run(s.workers, tasks)
	s.logger.Info("Synced %d/%d products", report.Succeeded(), report.Completed)
	return report, nil
}

func (s *Synchronizer) createProduct(product *models.Product) error {
	created, err := s.client.CreateProduct(product)
	if err != nil {
		s.logger.Error("Product %s: %v", product.SKU, err)
		return err
	}

	remoteID := strconv.FormatInt(created.ID, 10)
	if err := s.store.StampProductShopifyID(product.SKU, remoteID); err != nil {
		return err
	}
	s.logger.Info("Product %d has been created successfully", created.ID)
	s.events.Publish("product", product.SKU, remoteID)

	if product.Roomset != "" {
		if _, err := s.client.UploadImage(created.ID, product.Roomset, product.Name); err != nil {
			s.logger.Error("Product %s image: %v", product.SKU, err)
		}
	}
	if err := s.client.SetInventoryLevel(created.ID, s.locationID, product.Quantity); err != nil {
		s.logger.Error("Product %s inventory: %v", product.SKU, err)
	}
	return nil
}

// UpdateProducts refreshes metafields and inventory on products that are
// already live.
func (s *Synchronizer) UpdateProducts() (*pool.Report, error) {
	products, err := s.store.SyncedProducts()
	if err != nil {
		return nil, err
	}

	tasks := make([]pool.Task, 0, len(products))
	for i := range products {
		product := products[i]
		tasks = append(tasks, pool.Task{
			Key: fmt.Sprintf("product %s", product.SKU),
			Run: func() error {
				remoteID, err := strconv.ParseInt(*product.ShopifyID, 10, 64)
				if err != nil {
					return fmt.Errorf("product %s has invalid remote id %q", product.SKU, *product.ShopifyID)
				}
				if err := s.client.UpdateProductMetafields(&product, remoteID); err != nil {
					s.logger.Error("Product %s: %v", product.SKU, err)
					return err
				}
				return s.client.SetInventoryLevel(remoteID, s.locationID, product.Quantity)
			},
		})
	}
	report := pool.Run(s.workers, tasks)
	s.logger.Info("Updated %d/%d products", report.Succeeded(), report.Completed)
	return report, nil
}

// Customers creates every customer that has no remote id yet.
func (s *Synchronizer) Customers() (*pool.Report, error) {
	customers, err := s.store.UnsyncedCustomers()
	if err != nil {
		return nil, err
	}

	tasks := make([]pool.Task, 0, len(customers))
	for i := range customers {
		customer := customers[i]
		tasks = append(tasks, pool.Task{
			Key: fmt.Sprintf("customer %d", customer.CustomerID),
			Run: func() error {
				created, err := s.client.CreateCustomer(&customer)
				if err != nil {
					s.logger.Error("Customer %d: %v", customer.CustomerID, err)
					return err
				}
				remoteID := strconv.FormatInt(created.ID, 10)
				if err := s.store.StampCustomerShopifyID(customer.CustomerID, remoteID); err != nil {
					return err
				}
				s.logger.Info("Customer %d has been created successfully", created.ID)
				s.events.Publish("customer", strconv.Itoa(customer.CustomerID), remoteID)
				return nil
			},
		})
	}
	report := pool.Run(s.workers, tasks)
	s.logger.Info("Synced %d/%d customers", report.Succeeded(), report.Completed)
	return report, nil
}

// Orders creates every order that has no remote id yet, recording the
// remote order number alongside the id. Orders whose customer has not
// synced are skipped until a later run.
func (s *Synchronizer) Orders() (*pool.Report, error) {
	orders, err := s.store.UnsyncedOrders()
	if err != nil {
		return nil, err
	}

	tasks := make([]pool.Task, 0, len(orders))
	for i := range orders {
		order := orders[i]
		tasks = append(tasks, pool.Task{
			Key: fmt.Sprintf("order %d", order.OrderID),
			Run: func() error { return s.createOrder(&order) },
		})
	}
	report := pool.Run(s.workers, tasks)
	s.logger.Info("Synced %d/%d orders", report.Succeeded(), report.Completed)
	return report, nil
}

func (s *Synchronizer) createOrder(order *models.Order) error {
	if order.Customer == nil || !order.Customer.Synced() {
		s.logger.Warn("Order %d: customer %d not synced yet", order.OrderID, order.CustomerID)
		return fmt.Errorf("customer %d not synced", order.CustomerID)
	}

	var shippingAddress *models.Address
	if order.ShippingAddressID != nil {
		address, err := s.store.FindAddress(*order.ShippingAddressID)
		if err != nil {
			return err
		}
		shippingAddress = address
	}

	created, err := s.client.CreateOrder(order, shippingAddress)
	if err != nil {
		s.logger.Error("Order %d: %v", order.OrderID, err)
		return err
	}

	remoteID := strconv.FormatInt(created.ID, 10)
	orderNumber := ""
	if created.OrderNumber != 0 {
		orderNumber = strconv.FormatInt(created.OrderNumber, 10)
	}
	if err := s.store.StampOrderShopifyID(order.OrderID, remoteID, orderNumber); err != nil {
		return err
	}
	s.logger.Info("Order %d has been created successfully", created.ID)
	s.events.Publish("order", strconv.Itoa(order.OrderID), remoteID)
	return nil
}

// Inventory pushes the stocked quantity of every synced product to the
// configured location.
func (s *Synchronizer) Inventory() (*pool.Report, error) {
	products, err := s.store.SyncedProducts()
	if err != nil {
		return nil, err
	}

	tasks := make([]pool.Task, 0, len(products))
	for i := range products {
		product := products[i]
		tasks = append(tasks, pool.Task{
			Key: fmt.Sprintf("product %s", product.SKU),
			Run: func() error {
				remoteID, err := strconv.ParseInt(*product.ShopifyID, 10, 64)
				if err != nil {
					return fmt.Errorf("product %s has invalid remote id %q", product.SKU, *product.ShopifyID)
				}
				return s.client.SetInventoryLevel(remoteID, s.locationID, product.Quantity)
			},
		})
	}
	report := pool.Run(s.workers, tasks)
	s.logger.Info("Updated inventory for %d/%d products", report.Succeeded(), report.Completed)
	return report, nil
}

// CollectionTitles is the deduplicated union of tag and type names across
// the catalog, sorted for a stable batch order.
func (s *Synchronizer) CollectionTitles() ([]string, error) {
	products, err := s.store.AllProducts()
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	for _, product := range products {
		for _, tag := range product.Tags {
			seen[tag.Name] = true
		}
		if product.TypeName != nil && *product.TypeName != "" {
			seen[*product.TypeName] = true
		}
	}

	titles := make([]string, 0, len(seen))
	for title := range seen {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles, nil
}

// Collections creates one smart collection per title with a single
// tag-equality rule. The batch is not incremental: titles that already
// exist remotely fail their task and the rest continue.
func (s *Synchronizer) Collections() (*pool.Report, error) {
	titles, err := s.CollectionTitles()
	if err != nil {
		return nil, err
	}

	tasks := make([]pool.Task, 0, len(titles))
	for _, title := range titles {
		tasks = append(tasks, pool.Task{
			Key: fmt.Sprintf("collection %s", title),
			Run: func() error {
				created, err := s.client.CreateSmartCollection(title)
				if err != nil {
					s.logger.Error("Collection %s: %v", title, err)
					return err
				}
				s.logger.Info("Collection %d (%s) has been created successfully", created.ID, title)
				return nil
			},
		})
	}
	report := pool.Run(s.workers, tasks)
	s.logger.Info("Created %d/%d collections", report.Succeeded(), report.Completed)
	return report, nil
}

// StatusCounts tallies one remote status reconciliation walk.
type StatusCounts struct {
	Active   int
	Draft    int
	Archived int
}

// classifyStatus maps a canonical product onto the remote status model. A
// remote product with no canonical counterpart is archived; an inactive
// product still on open orders stays reachable as a draft.
func classifyStatus(product *models.Product, openLines int64) string {
	if product == nil {
		return "archived"
	}
	if product.Status {
		return "active"
	}
	if openLines > 0 {
		return "draft"
	}
	return "archived"
}

// ReconcileStatus walks every remote product, classifies it from canonical
// state and pushes the resulting status.
func (s *Synchronizer) ReconcileStatus() (*StatusCounts, *pool.Report, error) {
	ids, err := s.client.ListProductIDs()
	if err != nil {
		return nil, nil, err
	}

	counts := &StatusCounts{}
	var mu sync.Mutex

	tasks := make([]pool.Task, 0, len(ids))
	for _, id := range ids {
		tasks = append(tasks, pool.Task{
			Key: fmt.Sprintf("product %d", id),
			Run: func() error {
				product, err := s.store.ProductByShopifyID(strconv.FormatInt(id, 10))
				if err != nil {
					return err
				}

				var openLines int64
				if product != nil && !product.Status {
					openLines, err = s.store.OpenLineItemCount(product.SKU)
					if err != nil {
						return err
					}
				}

				status := classifyStatus(product, openLines)
				if err := s.client.UpdateProductStatus(id, status); err != nil {
					s.logger.Error("Product %d: %v", id, err)
					return err
				}

				mu.Lock()
				switch status {
				case "active":
					counts.Active++
				case "draft":
					counts.Draft++
				default:
					counts.Archived++
				}
				mu.Unlock()

				s.logger.Debug("Updated product %d status to %s", id, status)
				return nil
			},
		})
	}
	report := pool.Run(s.workers, tasks)

	s.logger.Info("Active: %d, Draft: %d, Archived: %d", counts.Active, counts.Draft, counts.Archived)
	return counts, report, nil
}

// Fulfillments runs the two-step fulfillment flow on every synced order
// that has shipped lines. Orders with nothing shipped are not tasks at
// all; orders whose open fulfillment has no qualifying lines no-op inside
// the client.
func (s *Synchronizer) Fulfillments() (*pool.Report, error) {
	orders, err := s.store.SyncedOrders()
	if err != nil {
		return nil, err
	}

	var tasks []pool.Task
	for i := range orders {
		order := orders[i]
		if !hasShippedLines(&order) {
			continue
		}
		tasks = append(tasks, pool.Task{
			Key: fmt.Sprintf("order %d", order.OrderID),
			Run: func() error {
				fulfillmentID, err := s.client.FulfillOrder(&order)
				if err != nil {
					s.logger.Error("Order %d: %v", order.OrderID, err)
					return err
				}
				if fulfillmentID != "" {
					s.logger.Info("Order %d fulfilled (%s)", order.OrderID, fulfillmentID)
				}
				return nil
			},
		})
	}
	report := pool.Run(s.workers, tasks)
	s.logger.Info("Fulfilled %d/%d orders", report.Succeeded(), report.Completed)
	return report, nil
}

func hasShippedLines(order *models.Order) bool {
	for _, line := range order.LineItems {
		if line.Shipped > 0 {
			return true
		}
	}
	return false
}
