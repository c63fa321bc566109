package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ridloal/pc-store-commerce/internal/compat/domain"
	"github.com/ridloal/pc-store-commerce/internal/compat/repository"
	"github.com/ridloal/pc-store-commerce/internal/platform/logger"
	product "github.com/ridloal/pc-store-commerce/internal/product/domain"
	productRepo "github.com/ridloal/pc-store-commerce/internal/product/repository"
)

var (
	ErrSelfPair                 = errors.New("a product cannot be compatible with itself")
	ErrInvalidComponentCategory = errors.New("product is not a component")
	ErrMissingRequiredComponent = errors.New("build is missing a required component type")
	ErrGpuRequired              = errors.New("processor without integrated graphics requires a GPU")
	ErrIncompatibleComponents   = errors.New("components are not compatible")
)

type CompatService interface {
	AddPair(ctx context.Context, req domain.PairRequest) error
	RemovePair(ctx context.Context, req domain.PairRequest) error
	IsPairCompatible(ctx context.Context, productAID, productBID string) (bool, error)
	ListCompatible(ctx context.Context, productID string) ([]product.Product, error)
	// ValidateBuild memutuskan apakah kandidat komponen sah membentuk satu rakitan.
	// Semua kegagalan menyebut nama produk/tipe yang bermasalah.
	ValidateBuild(ctx context.Context, components []domain.BuildComponent) error
}

type compatServiceImpl struct {
	compatRepo  repository.CompatRepository
	productRepo productRepo.ProductRepository
}

func NewCompatService(cr repository.CompatRepository, pr productRepo.ProductRepository) CompatService {
	return &compatServiceImpl{compatRepo: cr, productRepo: pr}
}

func (s *compatServiceImpl) AddPair(ctx context.Context, req domain.PairRequest) error {
	if req.ProductAID == req.ProductBID {
		return ErrSelfPair
	}

	products, err := s.productRepo.GetByIDs(ctx, []string{req.ProductAID, req.ProductBID})
	if err != nil {
		return err
	}
	if len(products) != 2 {
		return productRepo.ErrProductNotFound
	}
	for _, p := range products {
		if !p.IsComponent() {
			return fmt.Errorf("%w: %s", ErrInvalidComponentCategory, p.Name)
		}
	}

	return s.compatRepo.AddPair(ctx, req.ProductAID, req.ProductBID)
}

func (s *compatServiceImpl) RemovePair(ctx context.Context, req domain.PairRequest) error {
	if req.ProductAID == req.ProductBID {
		return ErrSelfPair
	}
	return s.compatRepo.RemovePair(ctx, req.ProductAID, req.ProductBID)
}

func (s *compatServiceImpl) IsPairCompatible(ctx context.Context, productAID, productBID string) (bool, error) {
	if productAID == productBID {
		return false, ErrSelfPair
	}
	return s.compatRepo.ArePairCompatible(ctx, productAID, productBID)
}

func (s *compatServiceImpl) ListCompatible(ctx context.Context, productID string) ([]product.Product, error) {
	ids, err := s.compatRepo.ListCompatibleIDs(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []product.Product{}, nil
	}
	return s.productRepo.GetByIDs(ctx, ids)
}

func (s *compatServiceImpl) ValidateBuild(ctx context.Context, components []domain.BuildComponent) error {
	// 1. Semua kandidat harus produk kategori Komponen.
	typesPresent := map[string]bool{}
	for _, c := range components {
		if !c.Product.IsComponent() {
			return fmt.Errorf("%w: %s", ErrInvalidComponentCategory, c.Product.Name)
		}
		typesPresent[c.ComponentType()] = true
	}

	// 2. Cakupan tipe komponen wajib.
	for _, required := range domain.RequiredComponentTypes {
		if !typesPresent[required] {
			return fmt.Errorf("%w: %s", ErrMissingRequiredComponent, required)
		}
	}

	// 3. Processor tanpa iGPU butuh minimal satu GPU.
	for _, c := range components {
		if c.ComponentType() == domain.TypeProcessor && !c.Product.HasIGPU && !typesPresent[domain.TypeGPU] {
			return fmt.Errorf("%w: %s", ErrGpuRequired, c.Product.Name)
		}
	}

	// 4. Setiap pasangan kandidat yang berbeda harus punya edge kompatibilitas.
	// O(n²) tapi ukuran rakitan kecil (<= ~10 komponen).
	ids := make([]string, 0, len(components))
	for _, c := range components {
		ids = append(ids, c.Product.ID)
	}
	pairs, err := s.compatRepo.ListPairsAmong(ctx, ids)
	if err != nil {
		logger.Error("Svc.ValidateBuild: failed to load compatibility pairs", err, nil)
		return err
	}
	edge := map[string]bool{}
	for _, p := range pairs {
		edge[p.ProductID+"|"+p.CompatibleWithID] = true
	}
	hasEdge := func(a, b string) bool {
		return edge[a+"|"+b] || edge[b+"|"+a]
	}

	for i := 0; i < len(components); i++ {
		for j := i + 1; j < len(components); j++ {
			a, b := components[i].Product, components[j].Product
			if a.ID == b.ID {
				continue // produk tidak dibandingkan dengan dirinya sendiri
			}
			if !hasEdge(a.ID, b.ID) {
				return fmt.Errorf("%w: %s dan %s", ErrIncompatibleComponents, a.Name, b.Name)
			}
		}
	}
	return nil
}
