package service

import (
	"context"
	"errors"

	"nelaglow/internal/dto"
	"nelaglow/internal/model"
	"nelaglow/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrDocumentoTaken = errors.New("ya existe un cliente con ese documento")

type ClientService interface {
	Create(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error)
	List(ctx context.Context, filter dto.ClientFilter) (*dto.ClientListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateClientRequest) (*dto.ClientResponse, error)
}

type clientService struct {
	repo repository.ClientRepository
}

func NewClientService(repo repository.ClientRepository) ClientService {
	return &clientService{repo: repo}
}

func (s *clientService) Create(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error) {
	if req.Documento != nil && *req.Documento != "" {
		if _, err := s.repo.FindByDocumento(ctx, *req.Documento); err == nil {
			return nil, ErrDocumentoTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	c := &model.Client{
		Name:      req.Name,
		Documento: req.Documento,
		Phone:     req.Phone,
		Email:     req.Email,
		Address:   req.Address,
		District:  req.District,
		City:      req.City,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	resp := clientToResponse(c)
	return &resp, nil
}

func (s *clientService) Get(ctx context.Context, id uuid.UUID) (*dto.ClientResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrClientNotFound
	}
	resp := clientToResponse(c)
	return &resp, nil
}

func (s *clientService) List(ctx context.Context, filter dto.ClientFilter) (*dto.ClientListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	clients, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	rows := make([]dto.ClientResponse, 0, len(clients))
	for i := range clients {
		rows = append(rows, clientToResponse(&clients[i]))
	}
	return &dto.ClientListResponse{
		Data:  rows,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *clientService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrClientNotFound
	}
	if req.Documento != nil && *req.Documento != "" {
		if existing, err := s.repo.FindByDocumento(ctx, *req.Documento); err == nil && existing.ID != c.ID {
			return nil, ErrDocumentoTaken
		}
		c.Documento = req.Documento
	}
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Phone != nil {
		c.Phone = req.Phone
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.Address != nil {
		c.Address = req.Address
	}
	if req.District != nil {
		c.District = req.District
	}
	if req.City != nil {
		c.City = req.City
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	resp := clientToResponse(c)
	return &resp, nil
}

func clientToResponse(c *model.Client) dto.ClientResponse {
	return dto.ClientResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Documento: c.Documento,
		Phone:     c.Phone,
		Email:     c.Email,
		Address:   c.Address,
		District:  c.District,
		City:      c.City,
		CreatedAt: c.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
