package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/FelipeGerardo/centenoloyalty/internal/dto"
	"github.com/FelipeGerardo/centenoloyalty/internal/loyalty"
	"github.com/FelipeGerardo/centenoloyalty/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ─── In-memory stubs ─────────────────────────────────────────────────────────

type stubClienteRepo struct {
	mu       sync.Mutex
	clientes map[uuid.UUID]*model.Cliente
}

func newStubClienteRepo() *stubClienteRepo {
	return &stubClienteRepo{clientes: map[uuid.UUID]*model.Cliente{}}
}

func (r *stubClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	cp := *c
	r.clientes[c.ID] = &cp
	return nil
}

func (r *stubClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubClienteRepo) FindByTelefono(_ context.Context, telefono string) (*model.Cliente, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clientes {
		if c.Telefono == telefono {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubClienteRepo) List(_ context.Context, _ dto.ClienteFilter) ([]model.Cliente, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Cliente, 0, len(r.clientes))
	for _, c := range r.clientes {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubClienteRepo) Update(_ context.Context, c *model.Cliente) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clientes[c.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *c
	r.clientes[c.ID] = &cp
	return nil
}

func (r *stubClienteRepo) UpdateCampos(_ context.Context, _ *gorm.DB, id uuid.UUID, campos map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clientes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range campos {
		switch k {
		case "puntos":
			c.Puntos = v.(int)
		case "sobrante":
			c.Sobrante = v.(decimal.Decimal)
		case "visitas":
			c.Visitas = v.(int)
		case "ultima_visita":
			t := v.(time.Time)
			c.UltimaVisita = &t
		}
	}
	return nil
}

func (r *stubClienteRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clientes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.clientes, id)
	return nil
}

func (r *stubClienteRepo) DB() *gorm.DB { return nil }

func (r *stubClienteRepo) get(id uuid.UUID) *model.Cliente {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *r.clientes[id]
	return &cp
}

type stubVentaRepo struct {
	mu     sync.Mutex
	ventas []model.Venta
}

func (r *stubVentaRepo) Create(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.CreatedAt = time.Now()
	r.ventas = append(r.ventas, *v)
	return nil
}

func (r *stubVentaRepo) ListByCliente(_ context.Context, clienteID uuid.UUID, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Venta
	for i := len(r.ventas) - 1; i >= 0; i-- { // newest first
		if r.ventas[i].ClienteID == clienteID {
			out = append(out, r.ventas[i])
		}
	}
	return out, int64(len(out)), nil
}

type stubVisitaRepo struct {
	mu      sync.Mutex
	visitas map[string]model.Visita // key: clienteID|fecha
}

func newStubVisitaRepo() *stubVisitaRepo {
	return &stubVisitaRepo{visitas: map[string]model.Visita{}}
}

func visitaKey(clienteID uuid.UUID, fecha string) string {
	return clienteID.String() + "|" + fecha
}

func (r *stubVisitaRepo) ExistsForFecha(_ context.Context, clienteID uuid.UUID, fecha string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.visitas[visitaKey(clienteID, fecha)]
	return ok, nil
}

func (r *stubVisitaRepo) Create(_ context.Context, _ *gorm.DB, v *model.Visita) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.CreatedAt = time.Now()
	r.visitas[visitaKey(v.ClienteID, v.Fecha)] = *v
	return nil
}

func (r *stubVisitaRepo) ListByCliente(_ context.Context, clienteID uuid.UUID) ([]model.Visita, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Visita
	for _, v := range r.visitas {
		if v.ClienteID == clienteID {
			out = append(out, v)
		}
	}
	return out, nil
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func newVentaServiceForTest(t *testing.T) (VentaService, *stubClienteRepo, *stubVentaRepo, *stubVisitaRepo, uuid.UUID) {
	t.Helper()
	clienteRepo := newStubClienteRepo()
	ventaRepo := &stubVentaRepo{}
	visitaRepo := newStubVisitaRepo()

	cliente := &model.Cliente{
		Nombre:   "Maria",
		Telefono: "5512345678",
	}
	require.NoError(t, clienteRepo.Create(context.Background(), cliente))

	svc := NewVentaService(clienteRepo, ventaRepo, visitaRepo, loyalty.ReglasDefault, nil, nil)
	return svc, clienteRepo, ventaRepo, visitaRepo, cliente.ID
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decP(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// ─── Tests ───────────────────────────────────────────────────────────────────

func TestRegistrarVenta_AcumulaPuntosYSobrante(t *testing.T) {
	svc, clienteRepo, _, _, id := newVentaServiceForTest(t)
	ctx := context.Background()

	resp, err := svc.RegistrarVenta(ctx, id, dto.RegistrarVentaRequest{Total: decP("45")})
	require.NoError(t, err)

	assert.Equal(t, 0, resp.PuntosUsados)
	assert.Equal(t, 2, resp.PuntosGanados)
	assert.Equal(t, 2, resp.PuntosNuevos)
	assert.True(t, resp.SobranteNuevo.Equal(dec("5")))
	assert.True(t, resp.TotalPagado.Equal(dec("45")))
	assert.True(t, resp.VisitaRegistrada)

	c := clienteRepo.get(id)
	assert.Equal(t, 2, c.Puntos)
	assert.True(t, c.Sobrante.Equal(dec("5")))
	assert.Equal(t, 1, c.Visitas)
	require.NotNil(t, c.UltimaVisita)
}

func TestRegistrarVenta_RedencionTotalNoAcumula(t *testing.T) {
	svc, clienteRepo, _, _, id := newVentaServiceForTest(t)
	ctx := context.Background()

	c := clienteRepo.get(id)
	c.Puntos = 10
	c.Sobrante = dec("15")
	require.NoError(t, clienteRepo.Update(ctx, c))

	resp, err := svc.RegistrarVenta(ctx, id, dto.RegistrarVentaRequest{
		Total:      decP("10"),
		PuntosUsar: dec("10"),
	})
	require.NoError(t, err)

	assert.Equal(t, 10, resp.PuntosUsados)
	assert.True(t, resp.TotalPagado.IsZero())
	assert.Equal(t, 0, resp.PuntosGanados)
	assert.Equal(t, 0, resp.PuntosNuevos)
	assert.True(t, resp.SobranteNuevo.Equal(dec("15")))
}

func TestRegistrarVenta_RecortaPuntosSolicitados(t *testing.T) {
	svc, clienteRepo, _, _, id := newVentaServiceForTest(t)
	ctx := context.Background()

	c := clienteRepo.get(id)
	c.Puntos = 3
	require.NoError(t, clienteRepo.Update(ctx, c))

	resp, err := svc.RegistrarVenta(ctx, id, dto.RegistrarVentaRequest{
		Total:      decP("100"),
		PuntosUsar: dec("5"), // solo hay 3
	})
	require.NoError(t, err)

	assert.Equal(t, 3, resp.PuntosUsados)
	assert.True(t, resp.TotalPagado.Equal(dec("97")))
	assert.Equal(t, 4, resp.PuntosGanados)
	assert.Equal(t, 4, resp.PuntosNuevos)
	assert.True(t, resp.SobranteNuevo.Equal(dec("17")))
}

func TestRegistrarVenta_VentaCero(t *testing.T) {
	svc, clienteRepo, ventaRepo, _, id := newVentaServiceForTest(t)
	ctx := context.Background()

	// Total cero es valido: no paga nada, no gana puntos, pero si cuenta
	// como visita del dia.
	resp, err := svc.RegistrarVenta(ctx, id, dto.RegistrarVentaRequest{Total: decP("0")})
	require.NoError(t, err)

	assert.True(t, resp.Total.IsZero())
	assert.True(t, resp.TotalPagado.IsZero())
	assert.Equal(t, 0, resp.PuntosUsados)
	assert.Equal(t, 0, resp.PuntosGanados)
	assert.True(t, resp.VisitaRegistrada)

	c := clienteRepo.get(id)
	assert.Equal(t, 0, c.Puntos)
	assert.Equal(t, 1, c.Visitas)
	assert.Len(t, ventaRepo.ventas, 1)
}

func TestRegistrarVenta_SinTotal(t *testing.T) {
	svc, clienteRepo, ventaRepo, _, id := newVentaServiceForTest(t)

	_, err := svc.RegistrarVenta(context.Background(), id, dto.RegistrarVentaRequest{})
	assert.ErrorIs(t, err, loyalty.ErrMontoInvalido)

	c := clienteRepo.get(id)
	assert.Equal(t, 0, c.Visitas)
	assert.Empty(t, ventaRepo.ventas)
}

func TestRegistrarVenta_ClienteNoEncontrado(t *testing.T) {
	svc, _, _, _, _ := newVentaServiceForTest(t)

	_, err := svc.RegistrarVenta(context.Background(), uuid.New(), dto.RegistrarVentaRequest{Total: decP("10")})
	assert.ErrorIs(t, err, ErrClienteNoEncontrado)
}

func TestRegistrarVenta_TotalInvalidoNoTocaElEstado(t *testing.T) {
	svc, clienteRepo, ventaRepo, _, id := newVentaServiceForTest(t)
	ctx := context.Background()

	_, err := svc.RegistrarVenta(ctx, id, dto.RegistrarVentaRequest{Total: decP("-5")})
	assert.ErrorIs(t, err, loyalty.ErrMontoInvalido)

	c := clienteRepo.get(id)
	assert.Equal(t, 0, c.Puntos)
	assert.True(t, c.Sobrante.IsZero())
	assert.Equal(t, 0, c.Visitas)
	assert.Empty(t, ventaRepo.ventas)
}

func TestRegistrarVenta_UnaVisitaPorDia(t *testing.T) {
	svc, clienteRepo, _, visitaRepo, id := newVentaServiceForTest(t)
	ctx := context.Background()

	primera, err := svc.RegistrarVenta(ctx, id, dto.RegistrarVentaRequest{Total: decP("20")})
	require.NoError(t, err)
	assert.True(t, primera.VisitaRegistrada)

	segunda, err := svc.RegistrarVenta(ctx, id, dto.RegistrarVentaRequest{Total: decP("20")})
	require.NoError(t, err)
	assert.False(t, segunda.VisitaRegistrada)

	c := clienteRepo.get(id)
	assert.Equal(t, 1, c.Visitas)
	assert.Len(t, visitaRepo.visitas, 1)

	// Los puntos de ambas ventas si se acumulan
	assert.Equal(t, 2, c.Puntos)
}

func TestRegistrarVenta_ConcurrenciaSerializadaPorCliente(t *testing.T) {
	svc, clienteRepo, ventaRepo, _, id := newVentaServiceForTest(t)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.RegistrarVenta(ctx, id, dto.RegistrarVentaRequest{Total: decP("20")})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Cada venta de $20 gana exactamente 1 punto: sin serializacion las
	// lecturas intercaladas perderian deltas.
	c := clienteRepo.get(id)
	assert.Equal(t, n, c.Puntos)
	assert.True(t, c.Sobrante.IsZero())
	assert.Equal(t, 1, c.Visitas)
	assert.Len(t, ventaRepo.ventas, n)
}

func TestListVentas_OrdenYPaginacion(t *testing.T) {
	svc, _, _, _, id := newVentaServiceForTest(t)
	ctx := context.Background()

	for _, total := range []string{"10", "20", "30"} {
		_, err := svc.RegistrarVenta(ctx, id, dto.RegistrarVentaRequest{Total: decP(total)})
		require.NoError(t, err)
	}

	resp, err := svc.ListVentas(ctx, id, dto.VentaFilter{Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(3), resp.Total)
	require.Len(t, resp.Data, 3)
	// Mas reciente primero
	assert.True(t, resp.Data[0].Total.Equal(dec("30")))
	assert.True(t, resp.Data[2].Total.Equal(dec("10")))
}

func TestListVentas_LimiteAcotado(t *testing.T) {
	svc, _, _, _, id := newVentaServiceForTest(t)
	ctx := context.Background()

	// El tope de 200 vive en el servicio: un limit descomunal del query
	// string no debe llegar al repositorio.
	resp, err := svc.ListVentas(ctx, id, dto.VentaFilter{Page: 1, Limit: 100000})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Limit)
}

func TestListVentas_ClienteNoEncontrado(t *testing.T) {
	svc, _, _, _, _ := newVentaServiceForTest(t)

	_, err := svc.ListVentas(context.Background(), uuid.New(), dto.VentaFilter{})
	assert.ErrorIs(t, err, ErrClienteNoEncontrado)
}

func TestListVisitas(t *testing.T) {
	svc, _, _, _, id := newVentaServiceForTest(t)
	ctx := context.Background()

	_, err := svc.RegistrarVenta(ctx, id, dto.RegistrarVentaRequest{Total: decP("20")})
	require.NoError(t, err)

	visitas, err := svc.ListVisitas(ctx, id)
	require.NoError(t, err)
	require.Len(t, visitas, 1)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), visitas[0].Fecha)
}
