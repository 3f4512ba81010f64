package service

import (
	"context"

	"nelaglow/internal/dto"
	"nelaglow/internal/model"
	"nelaglow/internal/repository"

	"github.com/google/uuid"
)

type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	var parentID *uuid.UUID
	if req.ParentProductID != nil {
		pid, err := uuid.Parse(*req.ParentProductID)
		if err != nil {
			return nil, ErrProductNotFound
		}
		parent, err := s.repo.FindByID(ctx, pid)
		if err != nil {
			return nil, ErrProductNotFound
		}
		// One level only: a variant cannot itself have variants.
		if parent.ParentProductID != nil {
			return nil, ErrNestedVariant
		}
		parentID = &pid
	}

	p := &model.Product{
		Name:              req.Name,
		Color:             req.Color,
		Price:             req.Price,
		CostPrice:         req.CostPrice,
		LowStockThreshold: req.LowStockThreshold,
		ParentProductID:   parentID,
		Active:            true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	rows := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		rows = append(rows, productToResponse(&products[i]))
	}
	return &dto.ProductListResponse{
		Data:  rows,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Color != nil {
		p.Color = req.Color
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.CostPrice != nil {
		p.CostPrice = req.CostPrice
	}
	if req.LowStockThreshold != nil {
		p.LowStockThreshold = *req.LowStockThreshold
	}
	// Stock is deliberately not updatable here: every stock change goes
	// through the movement ledger.
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return ErrProductNotFound
	}
	return s.repo.SoftDelete(ctx, id)
}

func (s *productService) Reactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return ErrProductNotFound
	}
	return s.repo.Reactivate(ctx, id)
}

func productToResponse(p *model.Product) dto.ProductResponse {
	resp := dto.ProductResponse{
		ID:                p.ID.String(),
		Name:              p.Name,
		Color:             p.Color,
		Price:             p.Price,
		CostPrice:         p.CostPrice,
		Stock:             p.Stock,
		LowStockThreshold: p.LowStockThreshold,
		IsParent:          p.IsParent(),
		Active:            p.Active,
		CreatedAt:         p.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if p.ParentProductID != nil {
		id := p.ParentProductID.String()
		resp.ParentProductID = &id
	}
	if p.IsParent() {
		// Parent stock is always the aggregate over its variants.
		resp.Stock = p.VariantStock()
		for i := range p.Variants {
			resp.Variants = append(resp.Variants, productToResponse(&p.Variants[i]))
		}
	}
	return resp
}
