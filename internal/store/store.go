// Package store is the repository layer over the canonical database. The
// importer owns entity creation and deletion; the synchronizer only ever
// stamps remote identifiers. Upserts preserve a previously stamped remote
// id so a re-import never un-syncs an entity.
package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vinsync/internal/models"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// --- Products ---

// FindProductBySKU returns (nil, nil) on a lookup miss; a miss is expected
// control flow, not an error.
func (s *Store) FindProductBySKU(sku string) (*models.Product, error) {
	var product models.Product
	err := s.db.Preload("Categories").Preload("Tags").First(&product, "sku = ?", sku).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Store) SaveProduct(product *models.Product) error {
	existing, err := s.FindProductBySKU(product.SKU)
	if err != nil {
		return err
	}
	if existing != nil && existing.Synced() && product.ShopifyID == nil {
		product.ShopifyID = existing.ShopifyID
	}

	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(product).Error; err != nil {
		return err
	}
	if err := s.db.Model(product).Association("Categories").Replace(product.Categories); err != nil {
		return err
	}
	return s.db.Model(product).Association("Tags").Replace(product.Tags)
}

// UpdateProductFields writes only the named columns, leaving importer-owned
// fields untouched. Used by the spreadsheet enrichment merge.
func (s *Store) UpdateProductFields(sku string, fields map[string]interface{}) error {
	return s.db.Model(&models.Product{}).Where("sku = ?", sku).Updates(fields).Error
}

func (s *Store) UnsyncedProducts() ([]models.Product, error) {
	var products []models.Product
	err := s.db.Preload("Categories").Preload("Tags").Preload("Type").
		Where("shopify_id IS NULL OR shopify_id = ''").Find(&products).Error
	return products, err
}

func (s *Store) SyncedProducts() ([]models.Product, error) {
	var products []models.Product
	err := s.db.Preload("Categories").Preload("Tags").Preload("Type").
		Where("shopify_id IS NOT NULL AND shopify_id <> ''").Find(&products).Error
	return products, err
}

func (s *Store) AllProducts() ([]models.Product, error) {
	var products []models.Product
	err := s.db.Preload("Categories").Preload("Tags").Preload("Type").Find(&products).Error
	return products, err
}

func (s *Store) StampProductShopifyID(sku, shopifyID string) error {
	return s.db.Model(&models.Product{}).Where("sku = ?", sku).
		Update("shopify_id", shopifyID).Error
}

// ProductByShopifyID resolves a remote id back to its canonical product.
func (s *Store) ProductByShopifyID(shopifyID string) (*models.Product, error) {
	var product models.Product
	err := s.db.First(&product, "shopify_id = ?", shopifyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// --- Customers & addresses ---

func (s *Store) FindCustomer(customerID int) (*models.Customer, error) {
	var customer models.Customer
	err := s.db.Preload("Addresses").First(&customer, "customer_id = ?", customerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (s *Store) SaveCustomer(customer *models.Customer) error {
	existing, err := s.FindCustomer(customer.CustomerID)
	if err != nil {
		return err
	}
	if existing != nil && existing.Synced() && customer.ShopifyID == nil {
		customer.ShopifyID = existing.ShopifyID
	}
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(customer).Error
}

func (s *Store) SaveAddress(address *models.Address) error {
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(address).Error
}

func (s *Store) FindAddress(addressID int) (*models.Address, error) {
	var address models.Address
	err := s.db.Preload("Customer").First(&address, "address_id = ?", addressID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func (s *Store) UnsyncedCustomers() ([]models.Customer, error) {
	var customers []models.Customer
	err := s.db.Preload("Addresses").
		Where("shopify_id IS NULL OR shopify_id = ''").Find(&customers).Error
	return customers, err
}

func (s *Store) StampCustomerShopifyID(customerID int, shopifyID string) error {
	return s.db.Model(&models.Customer{}).Where("customer_id = ?", customerID).
		Update("shopify_id", shopifyID).Error
}

// --- Orders ---

func (s *Store) FindOrder(orderID int) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Customer").Preload("LineItems").Preload("LineItems.Product").
		First(&order, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Store) SaveOrder(order *models.Order) error {
	existing, err := s.FindOrder(order.OrderID)
	if err != nil {
		return err
	}
	if existing != nil && existing.Synced() && order.ShopifyID == nil {
		order.ShopifyID = existing.ShopifyID
		order.ShopifyOrderNumber = existing.ShopifyOrderNumber
	}
	return s.db.Omit("LineItems").Clauses(clause.OnConflict{UpdateAll: true}).Create(order).Error
}

// ReplaceOrderLineItems rebuilds an order's line items as a point-in-time
// copy of the source rows.
func (s *Store) ReplaceOrderLineItems(orderID int, items []models.LineItem) error {
	if err := s.db.Where("order_id = ?", orderID).Delete(&models.LineItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return s.db.Create(&items).Error
}

func (s *Store) UnsyncedOrders() ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Preload("Customer").Preload("LineItems").Preload("LineItems.Product").
		Where("shopify_id IS NULL OR shopify_id = ''").Find(&orders).Error
	return orders, err
}

func (s *Store) SyncedOrders() ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Preload("Customer").Preload("LineItems").Preload("LineItems.Product").
		Where("shopify_id IS NOT NULL AND shopify_id <> ''").Find(&orders).Error
	return orders, err
}

func (s *Store) AllOrders() ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Preload("Customer").Preload("LineItems").Preload("LineItems.Product").
		Find(&orders).Error
	return orders, err
}

func (s *Store) StampOrderShopifyID(orderID int, shopifyID, orderNumber string) error {
	updates := map[string]interface{}{"shopify_id": shopifyID}
	if orderNumber != "" {
		updates["shopify_order_number"] = orderNumber
	}
	return s.db.Model(&models.Order{}).Where("order_id = ?", orderID).Updates(updates).Error
}

// OpenLineItemCount counts line items of a product on orders still in
// flight; used by the remote status reconciliation.
func (s *Store) OpenLineItemCount(sku string) (int64, error) {
	var count int64
	err := s.db.Model(&models.LineItem{}).
		Joins("JOIN orders ON orders.order_id = line_items.order_id").
		Where("line_items.product_sku = ?", sku).
		Where("orders.status IN ?", []string{
			models.OrderStatusPartialShipment,
			models.OrderStatusPending,
			models.OrderStatusProcessing,
		}).
		Count(&count).Error
	return count, err
}

// --- Purchase orders ---

func (s *Store) SavePurchaseOrder(po *models.PurchaseOrder) error {
	return s.db.Omit("Details").Clauses(clause.OnConflict{UpdateAll: true}).Create(po).Error
}

func (s *Store) SavePurchaseOrderDetail(detail *models.PurchaseOrderDetail) error {
	return s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(detail).Error
}

func (s *Store) AllPurchaseOrderDetails() ([]models.PurchaseOrderDetail, error) {
	var details []models.PurchaseOrderDetail
	err := s.db.Preload("PurchaseOrder").Preload("PurchaseOrder.Vendor").Preload("Product").
		Find(&details).Error
	return details, err
}

func (s *Store) AllVendors() ([]models.Vendor, error) {
	var vendors []models.Vendor
	err := s.db.Order("name").Find(&vendors).Error
	return vendors, err
}

// --- Generation markers ---

// DeleteStale removes rows left over from earlier runs once a full import
// generation has landed. A crashed partial run keeps the previous
// generation's rows intact, so reruns are safe.
func (s *Store) DeleteStale(runID string) error {
	for _, model := range []interface{}{
		&models.LineItem{},
		&models.Order{},
		&models.Address{},
		&models.Customer{},
		&models.PurchaseOrderDetail{},
		&models.PurchaseOrder{},
		&models.Product{},
	} {
		if err := s.db.Where("run_id <> ? AND run_id <> ''", runID).Delete(model).Error; err != nil {
			return fmt.Errorf("failed to delete stale rows: %w", err)
		}
	}
	return nil
}

// DeleteStaleProducts limits stale cleanup to the product generation; used
// when only the product group was re-imported.
func (s *Store) DeleteStaleProducts(runID string) error {
	return s.db.Where("run_id <> ? AND run_id <> ''", runID).Delete(&models.Product{}).Error
}

func (s *Store) DeleteStaleCustomers(runID string) error {
	if err := s.db.Where("run_id <> ? AND run_id <> ''", runID).Delete(&models.Address{}).Error; err != nil {
		return err
	}
	return s.db.Where("run_id <> ? AND run_id <> ''", runID).Delete(&models.Customer{}).Error
}

func (s *Store) DeleteStaleOrders(runID string) error {
	if err := s.db.Where("run_id <> ? AND run_id <> ''", runID).Delete(&models.LineItem{}).Error; err != nil {
		return err
	}
	return s.db.Where("run_id <> ? AND run_id <> ''", runID).Delete(&models.Order{}).Error
}

func (s *Store) DeleteStalePurchaseOrders(runID string) error {
	if err := s.db.Where("run_id <> ? AND run_id <> ''", runID).Delete(&models.PurchaseOrderDetail{}).Error; err != nil {
		return err
	}
	return s.db.Where("run_id <> ? AND run_id <> ''", runID).Delete(&models.PurchaseOrder{}).Error
}
