package app

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-pos/internal/documents"
	"github.com/odyssey-erp/odyssey-pos/internal/masterdata/products"
	"github.com/odyssey-erp/odyssey-pos/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-pos/internal/procurement"
	"github.com/odyssey-erp/odyssey-pos/internal/returns"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/customers"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/invoices"
	"github.com/odyssey-erp/odyssey-pos/internal/sales/quotations"
	"github.com/odyssey-erp/odyssey-pos/report"
)

const catalogNamespace = "odyssey:catalog"

// Services holds the domain services shared by the server and the worker.
type Services struct {
	Products    *products.Service
	Customers   *customers.Service
	Invoices    *invoices.Service
	Quotations  *quotations.Service
	Procurement *procurement.Service
	Returns     *returns.Service
}

// NewServices wires every domain service over pool. redisClient may be nil,
// which disables the catalog cache. notifier may be nil.
func NewServices(cfg *Config, pool *pgxpool.Pool, redisClient *redis.Client, notifier documents.Notifier, logger *slog.Logger) *Services {
	if notifier == nil {
		notifier = documents.Nop{}
	}
	catalogCache := cache.NewJSON(redisClient, catalogNamespace, cfg.CatalogCacheTTL)

	productService := products.NewService(products.NewRepository(pool), catalogCache, cfg.TierPolicy, logger)
	customerService := customers.NewService(customers.NewRepository(pool))

	opts := invoices.Options{
		Policy:           cfg.TierPolicy,
		DefaultSurcharge: cfg.DefaultSurcharge,
		Notifier:         notifier,
		Logger:           logger,
	}
	invoiceService := invoices.NewService(invoices.NewRepository(pool), productService, customerService, opts)
	quotationService := quotations.NewService(quotations.NewRepository(pool), productService, customerService, invoiceService, opts)

	return &Services{
		Products:    productService,
		Customers:   customerService,
		Invoices:    invoiceService,
		Quotations:  quotationService,
		Procurement: procurement.NewService(procurement.NewRepository(pool), notifier, logger),
		Returns:     returns.NewService(returns.NewRepository(pool), invoiceService, notifier, logger),
	}
}

// DocumentSource exposes the services as a printable document source.
func (s *Services) DocumentSource() *report.Source {
	return &report.Source{
		Invoices:   s.Invoices,
		Quotations: s.Quotations,
		Purchases:  s.Procurement,
		Returns:    s.Returns,
		Customers:  s.Customers,
	}
}
