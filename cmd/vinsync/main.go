package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vinsync/internal/config"
	"vinsync/internal/database"
	"vinsync/internal/export"
	"vinsync/internal/feed"
	"vinsync/internal/importer"
	"vinsync/internal/legacy"
	"vinsync/internal/logger"
	"vinsync/internal/pool"
	"vinsync/internal/shipping"
	"vinsync/internal/shopify"
	"vinsync/internal/store"
	syncer "vinsync/internal/sync"
)

const usage = `usage: vinsync <command> <operations...>

commands:
  import   products | customers | orders | purchase-orders | all
  sync     products | customers | orders | inventory | collections |
           status | fulfillments | shipping-attributes
  export   suppliers | purchase-orders | shipment
  delete   products | customers | orders
`

// datasheetColumns binds the product datasheet's header texts to the
// enrichment field names.
var datasheetColumns = map[string]string{
	"sku":         "Id",
	"status":      "Status",
	"pre_arrival": "Pre-Arrival",
	"vintage":     "Vintage",
	"name":        "Name",
	"type":        `New "Type"`,
	"varietal":    `New: "Varietal"`,
	"region":      `New: "Region"`,
	"sub_region":  `New "Sub Region"`,
	"vineyard":    `New "Vineyard"`,
	"size":        `New: "Size"`,
	"disgorged":   `New "Disgorged"`,
	"dosage":      `New "Dosage"`,
	"alc":         `New: "Alc %"`,
	"image_2":     "Image #2 Location",
}

type app struct {
	config *config.Config
	logger *logger.Logger
	store  *store.Store
}

func main() {
	if len(os.Args) < 3 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel)

	// Initialize canonical database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	a := &app{config: cfg, logger: log, store: store.New(db.DB)}

	command, operations := os.Args[1], os.Args[2:]
	switch command {
	case "import":
		err = a.runImport(operations)
	case "sync":
		err = a.runSync(operations)
	case "export":
		err = a.runExport(operations)
	case "delete":
		err = a.runDelete(operations)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatal("%s failed: %v", command, err)
	}
}

func (a *app) shopifyClient() *shopify.Client {
	return shopify.NewClient(
		a.config.ShopifyBaseURL,
		a.config.ShopifyAPIVersion,
		a.config.ShopifyAPIToken,
		a.config.ShopifyThreadTokens,
		a.logger,
	)
}

func (a *app) runImport(operations []string) error {
	source, err := legacy.Connect(a.config.MySQLDSN())
	if err != nil {
		return err
	}
	defer source.Close()

	imp := importer.New(source, a.store, a.logger, a.config.WorkerCount)

	for _, op := range operations {
		switch op {
		case "all":
			if err := imp.ImportAll(); err != nil {
				return err
			}
			a.enrichFromDatasheet(imp)
		case "products":
			if _, err := imp.ImportProducts(); err != nil {
				return err
			}
			a.enrichFromDatasheet(imp)
		case "customers":
			if _, err := imp.ImportCustomers(); err != nil {
				return err
			}
		case "orders":
			if _, err := imp.ImportOrders(); err != nil {
				return err
			}
		case "purchase-orders":
			if _, err := imp.ImportPurchaseOrders(); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown import operation %q", op)
		}
	}
	return nil
}

// enrichFromDatasheet merges the product datasheet when one is present in
// FILE_DIR; a missing sheet is not an error, imports run without it.
func (a *app) enrichFromDatasheet(imp *importer.Importer) {
	path := filepath.Join(a.config.FileDir, "product-details.xlsx")
	if _, err := os.Stat(path); err != nil {
		a.logger.Warn("No datasheet at %s, skipping enrichment", path)
		return
	}

	rows, err := feed.Read(path, feed.Options{
		HeaderRow: 1,
		ColumnMap: datasheetColumns,
	})
	if err != nil {
		a.logger.Error("Failed to read datasheet: %v", err)
		return
	}
	if _, err := imp.EnrichProducts(rows); err != nil {
		a.logger.Error("Failed to enrich products: %v", err)
	}
}

func (a *app) runSync(operations []string) error {
	client := a.shopifyClient()

	var brokers []string
	if a.config.KafkaBrokers != "" {
		brokers = strings.Split(a.config.KafkaBrokers, ",")
	}
	events := syncer.NewPublisher(brokers, "sync-events", a.logger)
	defer events.Close()

	s := syncer.New(client, a.store, a.logger, events, a.config.WorkerCount, a.config.ShopifyLocationID)

	for _, op := range operations {
		var err error
		switch op {
		case "products":
			if _, err = s.Products(); err == nil {
				_, err = s.UpdateProducts()
			}
		case "customers":
			_, err = s.Customers()
		case "orders":
			_, err = s.Orders()
		case "inventory":
			_, err = s.Inventory()
		case "collections":
			_, err = s.Collections()
		case "status":
			_, _, err = s.ReconcileStatus()
		case "fulfillments":
			_, err = s.Fulfillments()
		case "shipping-attributes":
			err = a.syncShippingAttributes()
		default:
			return fmt.Errorf("unknown sync operation %q", op)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *app) syncShippingAttributes() error {
	client := shipping.NewClient(
		a.config.ShippingAPIBaseURL,
		a.config.ShippingAPIKey,
		time.Duration(a.config.ShippingAPIDelayMS)*time.Millisecond,
		a.logger,
	)

	products, err := a.store.AllProducts()
	if err != nil {
		return err
	}

	updated := 0
	for i := range products {
		pushed, err := client.SyncProduct(&products[i])
		if err != nil {
			a.logger.Error("Product %s shipping attributes: %v", products[i].SKU, err)
			continue
		}
		if pushed {
			updated++
		}
	}
	a.logger.Info("Updated shipping attributes for %d/%d products", updated, len(products))
	return nil
}

func (a *app) runExport(operations []string) error {
	exporter := export.New(a.store, a.logger, a.config.FileDir)

	for _, op := range operations {
		var err error
		switch op {
		case "suppliers":
			_, err = exporter.Suppliers()
		case "purchase-orders":
			_, err = exporter.PurchaseOrders()
		case "shipment":
			_, err = exporter.OrderShipments()
		default:
			return fmt.Errorf("unknown export operation %q", op)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// runDelete wipes remote entities wholesale. Canonical rows keep their
// stamped ids, so this is for resetting a store before a full re-sync.
func (a *app) runDelete(operations []string) error {
	client := a.shopifyClient()

	for _, op := range operations {
		var ids []int64
		var err error
		var remove func(id int64) error

		switch op {
		case "products":
			ids, err = client.ListProductIDs()
			remove = client.DeleteProduct
		case "customers":
			ids, err = client.ListCustomerIDs()
			remove = client.DeleteCustomer
		case "orders":
			ids, err = client.ListOrderIDs()
			remove = client.DeleteOrder
		default:
			return fmt.Errorf("unknown delete operation %q", op)
		}
		if err != nil {
			return err
		}

		tasks := make([]pool.Task, 0, len(ids))
		for _, id := range ids {
			tasks = append(tasks, pool.Task{
				Key: fmt.Sprintf("%s %d", op, id),
				Run: func() error {
					if err := remove(id); err != nil {
						a.logger.Error("Delete %s %d: %v", op, id, err)
						return err
					}
					return nil
				},
			})
		}
		report := pool.Run(a.config.WorkerCount, tasks)
		a.logger.Info("Deleted %d/%d %s", report.Succeeded(), report.Completed, op)
	}
	return nil
}
