package controllers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/tenantgate/modules/core/domain/entities/tenant"
	"github.com/iota-uz/tenantgate/internal/testutil/memory"
	coreservices "github.com/iota-uz/tenantgate/modules/core/services"
	"github.com/iota-uz/tenantgate/modules/workspace/domain/entities/integration"
	"github.com/iota-uz/tenantgate/modules/workspace/domain/entities/product"
	"github.com/iota-uz/tenantgate/modules/workspace/infrastructure/persistence"
	"github.com/iota-uz/tenantgate/modules/workspace/presentation/controllers"
	"github.com/iota-uz/tenantgate/modules/workspace/services"
	"github.com/iota-uz/tenantgate/pkg/composables"
	"github.com/iota-uz/tenantgate/pkg/eventbus"
	"github.com/iota-uz/tenantgate/pkg/identity"
	"github.com/iota-uz/tenantgate/pkg/identity/inmem"
	"github.com/iota-uz/tenantgate/pkg/logging"
	"github.com/iota-uz/tenantgate/pkg/middleware"
)

const upgradeURL = "https://billing.test/upgrade"

// schemaStore keeps rows per bound schema so tests can observe isolation.
type schemaStore[T any] struct {
	mu   sync.Mutex
	rows map[string][]T
}

func (s *schemaStore[T]) schema(ctx context.Context) (string, error) {
	binding, ok := composables.UseSchemaBinding(ctx)
	if !ok {
		return "", composables.ErrNoTenantScope
	}
	return binding.Schema, nil
}

type productRepo struct {
	schemaStore[product.Product]
}

func (r *productRepo) List(ctx context.Context) ([]product.Product, error) {
	schema, err := r.schema(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]product.Product{}, r.rows[schema]...), nil
}

func (r *productRepo) Create(ctx context.Context, p product.Product) (product.Product, error) {
	schema, err := r.schema(ctx)
	if err != nil {
		return product.Product{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows[schema] {
		if existing.SKU == p.SKU {
			return product.Product{}, persistence.ErrDuplicateSKU
		}
	}
	p.ID = uint(len(r.rows[schema]) + 1)
	r.rows[schema] = append(r.rows[schema], p)
	return p, nil
}

func (r *productRepo) Delete(ctx context.Context, id uint) error {
	schema, err := r.schema(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.rows[schema] {
		if p.ID == id {
			r.rows[schema] = append(r.rows[schema][:i], r.rows[schema][i+1:]...)
			return nil
		}
	}
	return persistence.ErrProductNotFound
}

func (r *productRepo) DeleteAll(ctx context.Context) (int64, error) {
	schema, err := r.schema(ctx)
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.rows[schema]))
	delete(r.rows, schema)
	return n, nil
}

type integrationRepo struct {
	schemaStore[integration.Integration]
}

func (r *integrationRepo) List(ctx context.Context) ([]integration.Integration, error) {
	schema, err := r.schema(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]integration.Integration{}, r.rows[schema]...), nil
}

func (r *integrationRepo) Create(ctx context.Context, i integration.Integration) (integration.Integration, error) {
	schema, err := r.schema(ctx)
	if err != nil {
		return integration.Integration{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	i.ID = uint(len(r.rows[schema]) + 1)
	r.rows[schema] = append(r.rows[schema], i)
	return i, nil
}

func (r *integrationRepo) Delete(ctx context.Context, id uint) error {
	return persistence.ErrIntegrationNotFound
}

type fixture struct {
	idp          *inmem.Provider
	counter      *memory.EntityCounter
	products     *productRepo
	integrations *integrationRepo
	router       *mux.Router
}

func newFixture(t *testing.T, seed ...*tenant.Tenant) *fixture {
	t.Helper()
	f := &fixture{
		idp:          inmem.New(),
		products:     &productRepo{schemaStore[product.Product]{rows: map[string][]product.Product{}}},
		integrations: &integrationRepo{schemaStore[integration.Integration]{rows: map[string][]integration.Integration{}}},
	}
	tenants := memory.NewTenantRepository(seed...)
	users := memory.NewUserRepository()
	f.counter = memory.NewEntityCounter(users)
	bus := eventbus.NewEventPublisher(logging.ConsoleLogger(logrus.ErrorLevel))
	limits := coreservices.NewEntityLimitService(f.counter, upgradeURL)

	pipeline, err := middleware.TenantPipeline(middleware.PipelineOptions{
		Identity: f.idp,
		Tenants:  coreservices.NewTenantService(tenants, users, memory.NewSchemaProvisioner(), tenant.DefaultCatalog(), f.idp, bus),
		Users:    coreservices.NewUserService(users, limits, bus),
		Pool:     memory.NewPool(),
	})
	require.NoError(t, err)
	stack := &middleware.TenantStack{
		Pipeline: pipeline,
		Guards:   middleware.NewGuards(tenant.DefaultCatalog(), upgradeURL, limits),
	}

	f.router = mux.NewRouter()
	controllers.NewProductsController(stack, services.NewProductService(f.products)).Register(f.router)
	controllers.NewIntegrationsController(stack, services.NewIntegrationService(f.integrations)).Register(f.router)
	return f
}

func (f *fixture) member(token, userID, organizationID, role string) {
	f.idp.AddSession(token, identity.Session{UserID: userID, SessionID: "sess_" + userID})
	f.idp.AddMembership(identity.Membership{
		OrganizationID: organizationID,
		UserID:         userID,
		Role:           role,
		Email:          userID + "@example.com",
	})
}

func (f *fixture) call(method, path, token, organizationID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(middleware.DefaultOrganizationHeader, organizationID)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func newTenant(organizationID string, tier tenant.Tier) *tenant.Tenant {
	return tenant.New(organizationID, "Acme "+organizationID,
		tenant.WithTier(tier),
		tenant.WithPlan(tenant.DefaultCatalog().Plan(tier)),
	)
}

func TestProductsController_CreateAndListStayInTenant(t *testing.T) {
	f := newFixture(t, newTenant("org_a", tenant.TierStarter), newTenant("org_b", tenant.TierStarter))
	f.member("tok_a", "user_a", "org_a", "org:member")
	f.member("tok_b", "user_b", "org_b", "org:member")

	rec := f.call(http.MethodPost, "/api/products", "tok_a", "org_a", `{"name":" Widget ","sku":"wid-1","priceCents":1200}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	assert.Equal(t, "Widget", created["name"])
	assert.Equal(t, "WID-1", created["sku"])

	rec = f.call(http.MethodGet, "/api/products", "tok_a", "org_a", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["items"], 1)

	rec = f.call(http.MethodGet, "/api/products", "tok_b", "org_b", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["items"])
}

func TestProductsController_ViewerCannotCreate(t *testing.T) {
	f := newFixture(t, newTenant("org_a", tenant.TierStarter))
	f.member("tok", "user_1", "org_a", "org:viewer")

	require.Equal(t, http.StatusOK, f.call(http.MethodGet, "/api/products", "tok", "org_a", "").Code)

	rec := f.call(http.MethodPost, "/api/products", "tok", "org_a", `{"name":"Widget","sku":"W1"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, middleware.CodeInsufficientPermissions, body["code"])
	assert.Equal(t, "member", body["requiredRole"])
}

func TestProductsController_CapacityReached(t *testing.T) {
	acme := newTenant("org_a", tenant.TierStarter)
	f := newFixture(t, acme)
	f.member("tok", "user_1", "org_a", "org:admin")
	f.counter.Set(acme.ID(), tenant.EntityProducts, 100)

	rec := f.call(http.MethodPost, "/api/products", "tok", "org_a", `{"name":"Widget","sku":"W1"}`)

	require.Equal(t, http.StatusForbidden, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, coreservices.CodeEntityLimitReached, body["code"])
	assert.Equal(t, "products", body["entityType"])
	assert.Equal(t, upgradeURL, body["upgradeUrl"])
	assert.Empty(t, f.products.rows)
}

func TestProductsController_Validation(t *testing.T) {
	f := newFixture(t, newTenant("org_a", tenant.TierStarter))
	f.member("tok", "user_1", "org_a", "org:member")

	rec := f.call(http.MethodPost, "/api/products", "tok", "org_a", `{"name":"","sku":"W1"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "invalid_input", body["code"])
	assert.Contains(t, body["message"], "Name")

	rec = f.call(http.MethodPost, "/api/products", "tok", "org_a", `{"name":"Widget","colour":"red"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	require.Equal(t, http.StatusCreated, f.call(http.MethodPost, "/api/products", "tok", "org_a", `{"name":"Widget","sku":"W1"}`).Code)
	rec = f.call(http.MethodPost, "/api/products", "tok", "org_a", `{"name":"Other","sku":"w1"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "duplicate_sku", decode(t, rec)["code"])
}

func TestProductsController_Delete(t *testing.T) {
	f := newFixture(t, newTenant("org_a", tenant.TierStarter))
	f.member("member", "user_1", "org_a", "org:member")
	f.member("admin", "user_2", "org_a", "org:admin")

	require.Equal(t, http.StatusCreated, f.call(http.MethodPost, "/api/products", "member", "org_a", `{"name":"Widget","sku":"W1"}`).Code)

	assert.Equal(t, http.StatusForbidden, f.call(http.MethodDelete, "/api/products/1", "member", "org_a", "").Code)
	assert.Equal(t, http.StatusNoContent, f.call(http.MethodDelete, "/api/products/1", "admin", "org_a", "").Code)

	rec := f.call(http.MethodDelete, "/api/products/1", "admin", "org_a", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "product_not_found", decode(t, rec)["code"])
}

func TestProductsController_PurgeIsOwnerOnly(t *testing.T) {
	f := newFixture(t, newTenant("org_a", tenant.TierStarter))
	f.member("admin", "user_1", "org_a", "org:admin")
	f.member("owner", "user_2", "org_a", "org:owner")

	require.Equal(t, http.StatusCreated, f.call(http.MethodPost, "/api/products", "admin", "org_a", `{"name":"Widget","sku":"W1"}`).Code)

	rec := f.call(http.MethodDelete, "/api/products", "admin", "org_a", "")
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "owner", decode(t, rec)["requiredRole"])

	rec = f.call(http.MethodDelete, "/api/products", "owner", "org_a", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 1, decode(t, rec)["deleted"], 0)
}

func TestIntegrationsController_FeatureGate(t *testing.T) {
	f := newFixture(t, newTenant("org_s", tenant.TierStarter), newTenant("org_p", tenant.TierProfessional))
	f.member("tok_s", "user_s", "org_s", "org:admin")
	f.member("tok_p", "user_p", "org_p", "org:admin")
	payload := `{"provider":"quickbooks","name":"Books"}`

	rec := f.call(http.MethodPost, "/api/integrations", "tok_s", "org_s", payload)
	require.Equal(t, http.StatusForbidden, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, middleware.CodeFeatureNotAvailable, body["code"])
	assert.Equal(t, "professional", body["requiredTier"])
	assert.Equal(t, "starter", body["currentTier"])

	rec = f.call(http.MethodPost, "/api/integrations", "tok_p", "org_p", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "quickbooks", decode(t, rec)["provider"])
}

func TestIntegrationsController_MemberCannotConnect(t *testing.T) {
	f := newFixture(t, newTenant("org_e", tenant.TierEnterprise))
	f.member("tok", "user_1", "org_e", "org:member")

	require.Equal(t, http.StatusOK, f.call(http.MethodGet, "/api/integrations", "tok", "org_e", "").Code)
	rec := f.call(http.MethodPost, "/api/integrations", "tok", "org_e", `{"provider":"xero","name":"Ledger"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, middleware.CodeInsufficientPermissions, decode(t, rec)["code"])
}

func TestIntegrationsController_DeleteMissing(t *testing.T) {
	f := newFixture(t, newTenant("org_e", tenant.TierEnterprise))
	f.member("tok", "user_1", "org_e", "org:admin")

	rec := f.call(http.MethodDelete, "/api/integrations/9", "tok", "org_e", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "integration_not_found", decode(t, rec)["code"])
}
