package service

import (
	"context"
	"errors"
	"time"

	"github.com/FelipeGerardo/centenoloyalty/internal/dto"
	"github.com/FelipeGerardo/centenoloyalty/internal/model"
	"github.com/FelipeGerardo/centenoloyalty/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClienteService interface {
	Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	BuscarPorTelefono(ctx context.Context, telefono string) (*dto.ClienteResponse, error)
	Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type clienteService struct {
	repo repository.ClienteRepository
}

func NewClienteService(repo repository.ClienteRepository) ClienteService {
	return &clienteService{repo: repo}
}

func (s *clienteService) Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	if err := s.checkTelefonoLibre(ctx, req.Telefono); err != nil {
		return nil, err
	}

	cliente := &model.Cliente{
		Nombre:          req.Nombre,
		ApellidoPaterno: req.ApellidoPaterno,
		ApellidoMaterno: req.ApellidoMaterno,
		Telefono:        req.Telefono,
		Email:           req.Email,
	}
	if err := s.repo.Create(ctx, cliente); err != nil {
		return nil, err
	}
	return clienteToResponse(cliente), nil
}

func (s *clienteService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	cliente, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClienteNoEncontrado
		}
		return nil, err
	}
	return clienteToResponse(cliente), nil
}

func (s *clienteService) BuscarPorTelefono(ctx context.Context, telefono string) (*dto.ClienteResponse, error) {
	cliente, err := s.repo.FindByTelefono(ctx, telefono)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClienteNoEncontrado
		}
		return nil, err
	}
	return clienteToResponse(cliente), nil
}

func (s *clienteService) Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}
	clientes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ClienteResponse, 0, len(clientes))
	for i := range clientes {
		data = append(data, *clienteToResponse(&clientes[i]))
	}
	return &dto.ClienteListResponse{
		Data:  data,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *clienteService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error) {
	cliente, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClienteNoEncontrado
		}
		return nil, err
	}

	if req.Telefono != "" && req.Telefono != cliente.Telefono {
		if err := s.checkTelefonoLibre(ctx, req.Telefono); err != nil {
			return nil, err
		}
		cliente.Telefono = req.Telefono
	}
	if req.Nombre != "" {
		cliente.Nombre = req.Nombre
	}
	if req.ApellidoPaterno != nil {
		cliente.ApellidoPaterno = *req.ApellidoPaterno
	}
	if req.ApellidoMaterno != nil {
		cliente.ApellidoMaterno = *req.ApellidoMaterno
	}
	if req.Email != nil {
		cliente.Email = req.Email
	}

	if err := s.repo.Update(ctx, cliente); err != nil {
		return nil, err
	}
	return clienteToResponse(cliente), nil
}

func (s *clienteService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClienteNoEncontrado
		}
		return err
	}
	// Cascades to ventas and visitas.
	return s.repo.Delete(ctx, id)
}

// checkTelefonoLibre fails with ErrTelefonoRegistrado when another cliente
// already owns the number.
func (s *clienteService) checkTelefonoLibre(ctx context.Context, telefono string) error {
	_, err := s.repo.FindByTelefono(ctx, telefono)
	if err == nil {
		return ErrTelefonoRegistrado
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

func clienteToResponse(c *model.Cliente) *dto.ClienteResponse {
	var ultimaVisita *string
	if c.UltimaVisita != nil {
		s := c.UltimaVisita.UTC().Format(time.RFC3339)
		ultimaVisita = &s
	}
	return &dto.ClienteResponse{
		ID:              c.ID.String(),
		Nombre:          c.Nombre,
		ApellidoPaterno: c.ApellidoPaterno,
		ApellidoMaterno: c.ApellidoMaterno,
		NombreCompleto:  c.NombreCompleto(),
		Telefono:        c.Telefono,
		Email:           c.Email,
		Puntos:          c.Puntos,
		Sobrante:        c.Sobrante,
		Visitas:         c.Visitas,
		UltimaVisita:    ultimaVisita,
		CreatedAt:       c.CreatedAt.UTC().Format(time.RFC3339),
	}
}
