package repository

import (
	"context"

	"github.com/FelipeGerardo/centenoloyalty/internal/dto"
	"github.com/FelipeGerardo/centenoloyalty/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClienteRepository interface {
	Create(ctx context.Context, c *model.Cliente) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error)
	FindByTelefono(ctx context.Context, telefono string) (*model.Cliente, error)
	List(ctx context.Context, filter dto.ClienteFilter) ([]model.Cliente, int64, error)
	Update(ctx context.Context, c *model.Cliente) error
	// UpdateCampos is the partial field update used by the settlement flow.
	UpdateCampos(ctx context.Context, tx *gorm.DB, id uuid.UUID, campos map[string]interface{}) error
	// Delete removes the cliente and all of its ventas and visitas.
	Delete(ctx context.Context, id uuid.UUID) error
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) DB() *gorm.DB { return r.db }

func (r *clienteRepo) Create(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *clienteRepo) FindByTelefono(ctx context.Context, telefono string) (*model.Cliente, error) {
	var c model.Cliente
	err := r.db.WithContext(ctx).Where("telefono = ?", telefono).First(&c).Error
	return &c, err
}

func (r *clienteRepo) List(ctx context.Context, filter dto.ClienteFilter) ([]model.Cliente, int64, error) {
	var clientes []model.Cliente
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Cliente{})
	if filter.Q != "" {
		like := "%" + filter.Q + "%"
		q = q.Where(
			"telefono LIKE ? OR LOWER(CONCAT_WS(' ', nombre, apellido_paterno, apellido_materno)) LIKE LOWER(?)",
			like, like,
		)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("nombre ASC").Offset(offset).Limit(filter.Limit).Find(&clientes).Error
	return clientes, total, err
}

func (r *clienteRepo) Update(ctx context.Context, c *model.Cliente) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *clienteRepo) UpdateCampos(ctx context.Context, tx *gorm.DB, id uuid.UUID, campos map[string]interface{}) error {
	return tx.WithContext(ctx).Model(&model.Cliente{}).Where("id = ?", id).Updates(campos).Error
}

func (r *clienteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	// Child rows first: the FK constraints cascade on databases that honor
	// them, but the explicit deletes keep the behavior portable.
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cliente_id = ?", id).Delete(&model.Venta{}).Error; err != nil {
			return err
		}
		if err := tx.Where("cliente_id = ?", id).Delete(&model.Visita{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Cliente{}, id).Error
	})
}
