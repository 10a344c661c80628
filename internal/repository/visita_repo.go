package repository

import (
	"context"
	"errors"

	"github.com/FelipeGerardo/centenoloyalty/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VisitaRepository interface {
	// ExistsForFecha reports whether the cliente already has a visita
	// recorded under the given UTC day key (YYYY-MM-DD).
	ExistsForFecha(ctx context.Context, clienteID uuid.UUID, fecha string) (bool, error)
	Create(ctx context.Context, tx *gorm.DB, v *model.Visita) error
	ListByCliente(ctx context.Context, clienteID uuid.UUID) ([]model.Visita, error)
}

type visitaRepo struct{ db *gorm.DB }

func NewVisitaRepository(db *gorm.DB) VisitaRepository { return &visitaRepo{db: db} }

func (r *visitaRepo) ExistsForFecha(ctx context.Context, clienteID uuid.UUID, fecha string) (bool, error) {
	var v model.Visita
	err := r.db.WithContext(ctx).
		Where("cliente_id = ? AND fecha = ?", clienteID, fecha).
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *visitaRepo) Create(ctx context.Context, tx *gorm.DB, v *model.Visita) error {
	return tx.WithContext(ctx).Create(v).Error
}

func (r *visitaRepo) ListByCliente(ctx context.Context, clienteID uuid.UUID) ([]model.Visita, error) {
	var visitas []model.Visita
	err := r.db.WithContext(ctx).
		Where("cliente_id = ?", clienteID).
		Order("fecha DESC").
		Find(&visitas).Error
	return visitas, err
}
