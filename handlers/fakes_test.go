package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront/api/analytics"
	"storefront/api/apperr"
	"storefront/api/mailer"
	"storefront/api/media"
	"storefront/api/middleware"
	"storefront/api/models"
	"storefront/api/utils"
)

// --- analytics ---

type fakeAnalyticsStore struct {
	mu     sync.Mutex
	events map[string]models.AnalyticsEvent
	scans  int
	err    error
}

func newFakeAnalyticsStore() *fakeAnalyticsStore {
	return &fakeAnalyticsStore{events: map[string]models.AnalyticsEvent{}}
}

func (f *fakeAnalyticsStore) InsertAnalyticsEvents(_ context.Context, events []models.AnalyticsEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, e := range events {
		f.events[e.ID] = e
	}
	return nil
}

func (f *fakeAnalyticsStore) GetAnalyticsEvent(_ context.Context, id string) (*models.AnalyticsEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, apperr.NotFound("Not found")
	}
	return &e, nil
}

func (f *fakeAnalyticsStore) DeleteAnalyticsEvent(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[id]; !ok {
		return apperr.NotFound("Not found")
	}
	delete(f.events, id)
	return nil
}

func (f *fakeAnalyticsStore) ScanVisits(_ context.Context, fn func(analytics.Visit) error) error {
	f.mu.Lock()
	f.scans++
	if f.err != nil {
		f.mu.Unlock()
		return f.err
	}
	visits := make([]analytics.Visit, 0, len(f.events))
	for _, e := range f.events {
		visits = append(visits, analytics.Visit{VisitorID: e.VisitorID, Timestamp: *e.Timestamp})
	}
	f.mu.Unlock()

	for _, v := range visits {
		if err := fn(v); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeAnalyticsStore) GetEventCountsOverTime(_ context.Context, interval string, _, _ time.Time, _ string) ([]models.EventCountByTime, error) {
	if !utils.IsValidInterval(interval) {
		return nil, apperr.InvalidArgument("invalid interval: " + interval)
	}
	return []models.EventCountByTime{}, nil
}

func (f *fakeAnalyticsStore) GetTopNPagePaths(_ context.Context, _, _ time.Time, limit uint64) ([]models.TopPathResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[string]uint64{}
	for _, e := range f.events {
		if e.Type == models.EventTypePageview {
			counts[e.Path]++
		}
	}
	out := []models.TopPathResult{}
	for p, n := range counts {
		out = append(out, models.TopPathResult{Path: p, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if uint64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- users, otps, tokens ---

type fakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[int64]*models.User{}}
}

func (f *fakeUserStore) CreateUser(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email || existing.Username == u.Username {
			return nil, apperr.Validation("Email or username already registered")
		}
	}
	f.nextID++
	created := *u
	created.ID = f.nextID
	f.users[created.ID] = &created
	return &created, nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.Email == email })
}

func (f *fakeUserStore) GetUserByIdentifier(_ context.Context, email, username string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.Email == email || u.Username == username })
}

func (f *fakeUserStore) find(match func(*models.User) bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}

func (f *fakeUserStore) ListUsers(context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.User{}
	for _, u := range f.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUserStore) UpdateUser(_ context.Context, id int64, up models.UserUpdate) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	if up.Name != nil {
		u.Name = *up.Name
	}
	if up.Email != nil {
		u.Email = *up.Email
	}
	if up.Username != nil {
		u.Username = *up.Username
	}
	if up.Role != nil {
		u.Role = *up.Role
	}
	if up.HashedPassword != nil {
		u.HashedPassword = up.HashedPassword
	}
	cp := *u
	return &cp, nil
}

type fakeOTPStore struct {
	mu   sync.Mutex
	otps map[string]models.OTP
}

func newFakeOTPStore() *fakeOTPStore { return &fakeOTPStore{otps: map[string]models.OTP{}} }

func (f *fakeOTPStore) UpsertOTP(_ context.Context, otp models.OTP) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.otps[otp.Email] = otp
	return nil
}

func (f *fakeOTPStore) GetOTP(_ context.Context, email string) (*models.OTP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	otp, ok := f.otps[email]
	if !ok || time.Now().After(otp.ExpiresAt) {
		return nil, apperr.NotFound("Invalid or expired OTP")
	}
	return &otp, nil
}

func (f *fakeOTPStore) DeleteOTP(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.otps, email)
	return nil
}

type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

func newFakeTokenStore() *fakeTokenStore { return &fakeTokenStore{tokens: map[string]time.Time{}} }

func (f *fakeTokenStore) BlacklistToken(_ context.Context, token string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = expiresAt
	return nil
}

func (f *fakeTokenStore) IsBlacklisted(_ context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.tokens[token]
	return ok, nil
}

// --- catalog and queries ---

type fakeCategoryStore struct {
	mu         sync.Mutex
	categories map[primitive.ObjectID]models.Category
}

func newFakeCategoryStore() *fakeCategoryStore {
	return &fakeCategoryStore{categories: map[primitive.ObjectID]models.Category{}}
}

func (f *fakeCategoryStore) CreateCategory(_ context.Context, c *models.Category) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = primitive.NewObjectID()
	f.categories[c.ID] = *c
	return c, nil
}

func (f *fakeCategoryStore) ListCategories(context.Context) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Category{}
	for _, c := range f.categories {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCategoryStore) GetCategory(_ context.Context, id string) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound("Category not found")
	}
	c, ok := f.categories[oid]
	if !ok {
		return nil, apperr.NotFound("Category not found")
	}
	return &c, nil
}

func (f *fakeCategoryStore) UpdateCategory(ctx context.Context, id string, in models.CategoryInput) (*models.Category, error) {
	c, err := f.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	f.mu.Lock()
	f.categories[c.ID] = *c
	f.mu.Unlock()
	return c, nil
}

func (f *fakeCategoryStore) DeleteCategory(ctx context.Context, id string) error {
	c, err := f.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	f.mu.Lock()
	delete(f.categories, c.ID)
	f.mu.Unlock()
	return nil
}

type fakeProductStore struct {
	mu       sync.Mutex
	products map[string]models.Product
	filters  []models.ProductFilter
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: map[string]models.Product{}}
}

func (f *fakeProductStore) CreateProduct(_ context.Context, p *models.Product) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = primitive.NewObjectID()
	f.products[p.ID.Hex()] = *p
	return p, nil
}

func (f *fakeProductStore) ListProducts(_ context.Context, filter models.ProductFilter) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	out := []models.Product{}
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProductStore) GetProduct(_ context.Context, id string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, apperr.NotFound("Product not found")
	}
	return &p, nil
}

func (f *fakeProductStore) UpdateProduct(ctx context.Context, id string, in models.ProductInput) (*models.Product, error) {
	p, err := f.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	f.mu.Lock()
	f.products[id] = *p
	f.mu.Unlock()
	return p, nil
}

func (f *fakeProductStore) DeleteProduct(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return apperr.NotFound("Product not found")
	}
	delete(f.products, id)
	return nil
}

type fakeQueryStore struct {
	mu      sync.Mutex
	queries map[string]models.Query
}

func newFakeQueryStore() *fakeQueryStore { return &fakeQueryStore{queries: map[string]models.Query{}} }

func (f *fakeQueryStore) CreateQuery(_ context.Context, q *models.Query) (*models.Query, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q.ID = primitive.NewObjectID()
	q.CreatedAt = time.Now()
	f.queries[q.ID.Hex()] = *q
	return q, nil
}

func (f *fakeQueryStore) ListQueries(context.Context) ([]models.Query, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Query{}
	for _, q := range f.queries {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeQueryStore) GetQuery(_ context.Context, id string) (*models.Query, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.queries[id]
	if !ok {
		return nil, apperr.NotFound("Query not found")
	}
	return &q, nil
}

func (f *fakeQueryStore) UpdateQueryStatus(ctx context.Context, id, status string) (*models.Query, error) {
	q, err := f.GetQuery(ctx, id)
	if err != nil {
		return nil, err
	}
	q.Status = status
	f.mu.Lock()
	f.queries[id] = *q
	f.mu.Unlock()
	return q, nil
}

func (f *fakeQueryStore) DeleteQuery(ctx context.Context, id string) (*models.Query, error) {
	q, err := f.GetQuery(ctx, id)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	delete(f.queries, id)
	f.mu.Unlock()
	return q, nil
}

// --- mail and media ---

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	fail map[string]error
}

func newFakeMailer() *fakeMailer { return &fakeMailer{fail: map[string]error{}} }

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[msg.To]; err != nil {
		return err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) Sent() []mailer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mailer.Message(nil), f.sent...)
}

type fakeImageHost struct {
	uploads   []string
	destroyed []string
}

func (f *fakeImageHost) Upload(_ context.Context, file io.Reader, filename string) (*media.Uploaded, error) {
	if !media.IsAllowedFormat(filename) {
		return nil, apperr.Validation("Unsupported image format")
	}
	if _, err := io.ReadAll(file); err != nil {
		return nil, err
	}
	f.uploads = append(f.uploads, filename)
	return &media.Uploaded{URL: "https://cdn.test/products/" + filename, PublicID: "products/" + filename}, nil
}

func (f *fakeImageHost) Destroy(_ context.Context, publicID string) (string, error) {
	f.destroyed = append(f.destroyed, publicID)
	return "ok", nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

// --- harness ---

type testEnv struct {
	router     *gin.Engine
	tokens     *utils.TokenManager
	analytics  *fakeAnalyticsStore
	users      *fakeUserStore
	otps       *fakeOTPStore
	blacklist  *fakeTokenStore
	categories *fakeCategoryStore
	products   *fakeProductStore
	queries    *fakeQueryStore
	mail       *fakeMailer
	images     *fakeImageHost
}

const (
	testInbox  = "inbox@shop.test"
	testNotify = "admin@shop.test"
)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	env := &testEnv{
		tokens:     utils.NewTokenManager("test-secret", time.Hour, "storefront-test"),
		analytics:  newFakeAnalyticsStore(),
		users:      newFakeUserStore(),
		otps:       newFakeOTPStore(),
		blacklist:  newFakeTokenStore(),
		categories: newFakeCategoryStore(),
		products:   newFakeProductStore(),
		queries:    newFakeQueryStore(),
		mail:       newFakeMailer(),
		images:     &fakeImageHost{},
	}

	h := Set{
		Analytics:  NewAnalyticsHandlers(env.analytics, analytics.NewEngine(env.analytics), 5*time.Second, log),
		Auth:       NewAuthHandlers(env.users, env.otps, env.blacklist, env.tokens, env.mail, 10*time.Minute, log),
		Users:      NewUserHandlers(env.users, log),
		Categories: NewCategoryHandlers(env.categories, log),
		Products:   NewProductHandlers(env.products, env.categories, log),
		Queries:    NewQueryHandlers(env.queries, env.mail, testNotify, log),
		Media:      NewMediaHandlers(env.images, log),
		Contact:    NewContactHandlers(env.mail, testInbox, log),
		Health:     NewHealthHandlers(map[string]Pinger{"postgres": fakePinger{}}, log),
	}

	env.router = gin.New()
	RegisterRoutes(env.router, h, middleware.AuthRequired(env.tokens, env.blacklist, env.users, log))
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]any](t, w)["error"].(string)
}
