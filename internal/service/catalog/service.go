// internal/service/catalog/service.go
package catalog

import (
	"context"
	"strings"

	"tishe-service/internal/cache"
	"tishe-service/internal/domain/catalog"
	"tishe-service/internal/store"

	xerrors "tishe-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// Service serves the catalog reference collections through the shared
// fetch-once cache. Categories and products are each read from the document
// store at most once per process lifetime, however many views consume them.
type Service struct {
	docs   store.DocumentStore
	logger *zap.Logger

	categories *cache.Collection[catalog.Category]
	products   *cache.Collection[catalog.Product]
}

func NewService(docs store.DocumentStore, logger *zap.Logger) *Service {
	s := &Service{
		docs:   docs,
		logger: logger,
	}
	s.categories = cache.NewCollection(store.CollectionCategories, s.fetchCategories)
	s.products = cache.NewCollection(store.CollectionProducts, s.fetchProducts)
	return s
}

// Categories exposes the raw category cache (admin views see hidden
// categories too).
func (s *Service) Categories() *cache.Collection[catalog.Category] {
	return s.categories
}

// Products exposes the product cache.
func (s *Service) Products() *cache.Collection[catalog.Product] {
	return s.products
}

// VisibleCategories waits for the category collection and filters out the
// explicitly deactivated ones.
func (s *Service) VisibleCategories(ctx context.Context) ([]catalog.Category, error) {
	snap := s.categories.Wait(ctx)
	if snap.Status != cache.StatusReady {
		return nil, snapshotErr(snap.Err)
	}
	return catalog.VisibleCategories(snap.Items), nil
}

// CategoryBySlug resolves a routing slug to its visible category.
func (s *Service) CategoryBySlug(ctx context.Context, slug string) (*catalog.Category, error) {
	snap := s.categories.Wait(ctx)
	if snap.Status != cache.StatusReady {
		return nil, snapshotErr(snap.Err)
	}
	for _, c := range snap.Items {
		if c.Visible() && strings.EqualFold(c.Slug, slug) {
			return &c, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

// AllProducts waits for the product collection.
func (s *Service) AllProducts(ctx context.Context) ([]catalog.Product, error) {
	snap := s.products.Wait(ctx)
	if snap.Status != cache.StatusReady {
		return nil, snapshotErr(snap.Err)
	}
	return snap.Items, nil
}

// ProductsInCategory returns the products associated with a category slug.
// The pseudo-slug "all" returns everything, matching the storefront's
// "view all" route.
func (s *Service) ProductsInCategory(ctx context.Context, slug string) ([]catalog.Product, error) {
	products, err := s.AllProducts(ctx)
	if err != nil {
		return nil, err
	}
	if slug == "all" {
		return products, nil
	}
	filtered := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if strings.EqualFold(p.Category, slug) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// ProductByID resolves a product routing id.
func (s *Service) ProductByID(ctx context.Context, id string) (*catalog.Product, error) {
	products, err := s.AllProducts(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

// CreateCategory writes a new category document. The category cache is
// deliberately not refreshed here: the collections are fetch-once for the
// process lifetime and carry no invalidation policy.
func (s *Service) CreateCategory(ctx context.Context, id string, req *catalog.CreateCategoryRequest) error {
	doc := store.Document{
		"name":        req.Name,
		"slug":        req.Slug,
		"description": req.Description,
		"image":       req.Image,
	}
	if req.IsActive != nil {
		doc["isActive"] = *req.IsActive
	}
	if err := s.docs.SetDocument(ctx, store.CollectionCategories, id, doc); err != nil {
		return xerrors.Wrap(err, "failed to create category")
	}
	s.logger.Info("category created", zap.String("id", id), zap.String("slug", req.Slug))
	return nil
}

// CreateProduct writes a new product document.
func (s *Service) CreateProduct(ctx context.Context, id string, req *catalog.CreateProductRequest) error {
	doc := store.Document{
		"name":        req.Name,
		"description": req.Description,
		"price":       req.Price,
		"image":       req.Image,
		"category":    req.Category,
	}
	if err := s.docs.SetDocument(ctx, store.CollectionProducts, id, doc); err != nil {
		return xerrors.Wrap(err, "failed to create product")
	}
	s.logger.Info("product created", zap.String("id", id), zap.String("name", req.Name))
	return nil
}

func (s *Service) fetchCategories(ctx context.Context) ([]catalog.Category, error) {
	docs, err := s.docs.ListCollection(ctx, store.CollectionCategories)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to load categories")
	}
	categories := make([]catalog.Category, 0, len(docs))
	for _, d := range docs {
		categories = append(categories, decodeCategory(d))
	}
	return categories, nil
}

func (s *Service) fetchProducts(ctx context.Context) ([]catalog.Product, error) {
	docs, err := s.docs.ListCollection(ctx, store.CollectionProducts)
	if err != nil {
		return nil, xerrors.Wrap(err, "failed to load products")
	}
	products := make([]catalog.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, decodeProduct(d))
	}
	return products, nil
}

// decodeCategory maps a schemaless document to the closed Category type.
func decodeCategory(d store.Document) catalog.Category {
	return catalog.Category{
		ID:          d.String("id"),
		Name:        d.String("name"),
		Slug:        d.String("slug"),
		Description: d.String("description"),
		Image:       d.String("image"),
		IsActive:    d.Bool("isActive"),
	}
}

func decodeProduct(d store.Document) catalog.Product {
	return catalog.Product{
		ID:          d.String("id"),
		Name:        d.String("name"),
		Description: d.String("description"),
		Price:       d.Float("price"),
		Image:       d.String("image"),
		Category:    d.String("category"),
	}
}

func snapshotErr(err error) error {
	if err == nil {
		return xerrors.ErrInternal
	}
	return err
}
