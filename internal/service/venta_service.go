package service

import (
	"context"
	"errors"
	"time"

	"github.com/FelipeGerardo/centenoloyalty/internal/dto"
	"github.com/FelipeGerardo/centenoloyalty/internal/loyalty"
	"github.com/FelipeGerardo/centenoloyalty/internal/model"
	"github.com/FelipeGerardo/centenoloyalty/internal/repository"
	"github.com/FelipeGerardo/centenoloyalty/internal/worker"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// visitaCacheTTL keeps the day key cached past midnight so a same-day
// settlement never hits the DB existence query twice.
const visitaCacheTTL = 48 * time.Hour

const fechaVisita = "2006-01-02"

type VentaService interface {
	RegistrarVenta(ctx context.Context, clienteID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	ListVentas(ctx context.Context, clienteID uuid.UUID, filter dto.VentaFilter) (*dto.VentaListResponse, error)
	ListVisitas(ctx context.Context, clienteID uuid.UUID) ([]dto.VisitaResponse, error)
}

type ventaService struct {
	clienteRepo repository.ClienteRepository
	ventaRepo   repository.VentaRepository
	visitaRepo  repository.VisitaRepository
	reglas      loyalty.Reglas
	rdb         *redis.Client
	dispatcher  *worker.Dispatcher
	locks       *clienteLocks
}

func NewVentaService(
	clienteRepo repository.ClienteRepository,
	ventaRepo repository.VentaRepository,
	visitaRepo repository.VisitaRepository,
	reglas loyalty.Reglas,
	rdb *redis.Client,
	dispatcher *worker.Dispatcher,
) VentaService {
	return &ventaService{
		clienteRepo: clienteRepo,
		ventaRepo:   ventaRepo,
		visitaRepo:  visitaRepo,
		reglas:      reglas,
		rdb:         rdb,
		dispatcher:  dispatcher,
		locks:       newClienteLocks(),
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── RegistrarVenta ────────────────────────────────────────────────────────────
// Settlement sequence, serialized per cliente:
//   1. Read the cliente ledger (puntos, sobrante)
//   2. Run the pure settlement arithmetic (internal/loyalty)
//   3. Check whether today's visita already exists (Redis day-key cache,
//      then the visitas table)
//   4. TX: update ledger fields, insert the venta, insert the visita if first
//      of the day
//   5. (async) enqueue the resumen email when the cliente has an email

func (s *ventaService) RegistrarVenta(ctx context.Context, clienteID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	// Same-cliente settlements must not interleave: both would read the same
	// puntos/sobrante and the second write would silently drop a delta.
	s.locks.lock(clienteID)
	defer s.locks.unlock(clienteID)

	cliente, err := s.clienteRepo.FindByID(ctx, clienteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClienteNoEncontrado
		}
		return nil, err
	}

	if req.Total == nil {
		return nil, loyalty.ErrMontoInvalido
	}
	total := *req.Total

	liq, err := s.reglas.Liquidar(
		loyalty.Estado{Puntos: cliente.Puntos, Sobrante: cliente.Sobrante},
		total,
		req.PuntosUsar,
	)
	if err != nil {
		return nil, err
	}

	ahora := time.Now().UTC()
	hoy := ahora.Format(fechaVisita)

	visitaExiste, err := s.visitaYaRegistrada(ctx, clienteID, hoy)
	if err != nil {
		return nil, err
	}

	venta := model.Venta{
		ClienteID:     clienteID,
		Total:         total,
		TotalPagado:   liq.TotalPagado,
		PuntosUsados:  liq.PuntosUsados,
		PuntosGanados: liq.PuntosGanados,
	}

	txErr := runTx(ctx, s.clienteRepo.DB(), func(tx *gorm.DB) error {
		campos := map[string]interface{}{
			"puntos":   liq.PuntosNuevos,
			"sobrante": liq.SobranteNuevo,
		}
		if !visitaExiste {
			campos["visitas"] = cliente.Visitas + 1
			campos["ultima_visita"] = ahora
		}
		if err := s.clienteRepo.UpdateCampos(ctx, tx, clienteID, campos); err != nil {
			return err
		}

		if err := s.ventaRepo.Create(ctx, tx, &venta); err != nil {
			return err
		}

		if !visitaExiste {
			return s.visitaRepo.Create(ctx, tx, &model.Visita{
				ClienteID: clienteID,
				Fecha:     hoy,
			})
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	if !visitaExiste {
		s.cacheVisita(clienteID, hoy)
	}

	// Resumen por correo — best effort, fire & forget
	if s.dispatcher != nil && cliente.Email != nil && *cliente.Email != "" {
		payload := worker.ResumenJobPayload{
			ToEmail:       *cliente.Email,
			NombreCliente: cliente.NombreCompleto(),
			Total:         venta.Total.StringFixed(2),
			TotalPagado:   venta.TotalPagado.StringFixed(2),
			PuntosUsados:  liq.PuntosUsados,
			PuntosGanados: liq.PuntosGanados,
			PuntosNuevos:  liq.PuntosNuevos,
		}
		if err := s.dispatcher.EnqueueResumen(ctx, payload); err != nil {
			log.Warn().Err(err).Str("cliente_id", clienteID.String()).Msg("no se pudo encolar el resumen")
		}
	}

	fecha := venta.CreatedAt
	if fecha.IsZero() {
		fecha = ahora
	}
	return &dto.VentaResponse{
		ID:               venta.ID.String(),
		Total:            venta.Total,
		TotalPagado:      venta.TotalPagado,
		PuntosUsados:     liq.PuntosUsados,
		PuntosGanados:    liq.PuntosGanados,
		PuntosNuevos:     liq.PuntosNuevos,
		SobranteNuevo:    liq.SobranteNuevo,
		VisitaRegistrada: !visitaExiste,
		Fecha:            fecha.UTC().Format(time.RFC3339),
	}, nil
}

// visitaYaRegistrada resolves the daily-visit check. The Redis key is only
// written after a visita row is committed, so a cache hit is always safe;
// a miss falls through to the table.
func (s *ventaService) visitaYaRegistrada(ctx context.Context, clienteID uuid.UUID, fecha string) (bool, error) {
	if s.rdb != nil {
		if err := s.rdb.Get(ctx, visitaCacheKey(clienteID, fecha)).Err(); err == nil {
			return true, nil
		}
	}
	return s.visitaRepo.ExistsForFecha(ctx, clienteID, fecha)
}

func (s *ventaService) cacheVisita(clienteID uuid.UUID, fecha string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Set(context.Background(), visitaCacheKey(clienteID, fecha), "1", visitaCacheTTL).Err(); err != nil {
		log.Debug().Err(err).Msg("no se pudo cachear la visita del dia")
	}
}

func visitaCacheKey(clienteID uuid.UUID, fecha string) string {
	return "visita:" + clienteID.String() + ":" + fecha
}

// ── Historial ─────────────────────────────────────────────────────────────────

func (s *ventaService) ListVentas(ctx context.Context, clienteID uuid.UUID, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}

	if _, err := s.clienteRepo.FindByID(ctx, clienteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClienteNoEncontrado
		}
		return nil, err
	}

	ventas, total, err := s.ventaRepo.ListByCliente(ctx, clienteID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]dto.VentaHistorialItem, 0, len(ventas))
	for _, v := range ventas {
		items = append(items, dto.VentaHistorialItem{
			ID:            v.ID.String(),
			Total:         v.Total,
			TotalPagado:   v.TotalPagado,
			PuntosUsados:  v.PuntosUsados,
			PuntosGanados: v.PuntosGanados,
			Fecha:         v.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return &dto.VentaListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *ventaService) ListVisitas(ctx context.Context, clienteID uuid.UUID) ([]dto.VisitaResponse, error) {
	if _, err := s.clienteRepo.FindByID(ctx, clienteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClienteNoEncontrado
		}
		return nil, err
	}

	visitas, err := s.visitaRepo.ListByCliente(ctx, clienteID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.VisitaResponse, 0, len(visitas))
	for _, v := range visitas {
		resp = append(resp, dto.VisitaResponse{
			Fecha:      v.Fecha,
			RecordedAt: v.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return resp, nil
}
