package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/electrokart/electrokart_api/internal/catalog"
	"github.com/electrokart/electrokart_api/internal/config"
	"github.com/electrokart/electrokart_api/internal/models"
	"github.com/electrokart/electrokart_api/internal/service"
	"github.com/electrokart/electrokart_api/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubCatalog is an in-memory product store for handler tests.
type stubCatalog struct {
	items []models.Product
	err   error
}

func (s *stubCatalog) Find(_ context.Context, q catalog.Query) ([]models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	return q.Run(append([]models.Product(nil), s.items...)), nil
}

func (s *stubCatalog) GetByID(_ context.Context, id int) (*models.Product, error) {
	for _, p := range s.items {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, utils.ErrProductNotFound
}

func (s *stubCatalog) Count(_ context.Context, f catalog.Filter) (int, error) {
	return len(catalog.Apply(f, s.items)), nil
}

func (s *stubCatalog) Create(_ context.Context, p *models.Product) error {
	p.ID = len(s.items) + 1
	s.items = append(s.items, *p)
	return nil
}

func (s *stubCatalog) Update(context.Context, *models.Product) error { return nil }
func (s *stubCatalog) Delete(context.Context, int) error             { return nil }

type noReviews struct{}

func (noReviews) ListByProduct(context.Context, int) ([]models.Review, error) { return nil, nil }
func (noReviews) Add(context.Context, *models.Review) error                  { return nil }

func testCatalog() *stubCatalog {
	return &stubCatalog{items: []models.Product{
		{ID: 1, Name: "Pavilion Gaming", Brand: "HP", Price: 75000, Description: "gaming laptop",
			Category: &models.CategoryRef{ID: 1, Name: "Laptops"}, Rating: 4, Image: "/images/1.png"},
		{ID: 2, Name: "Galaxy S23", Brand: "Samsung", Price: 70000, Description: "android phone",
			Category: &models.CategoryRef{ID: 2, Name: "Smartphones"}, Rating: 5, Image: "/images/2.png"},
	}}
}

func serve(r *gin.Engine, method, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *utils.ErrorInfo
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestChatbotHandler(t *testing.T) {
	store := testCatalog()
	kb := service.NewKnowledgeBase(store)
	_, err := kb.Refresh(context.Background())
	require.NoError(t, err)
	h := NewChatbotHandler(service.NewChatbotService(store, kb, service.NewConversationStore()))

	r := gin.New()
	r.POST("/chat", h.Chat)
	r.GET("/history/:userId", h.GetHistory)
	r.DELETE("/history/:userId", h.ClearHistory)
	r.DELETE("/history", h.ClearHistory)
	r.GET("/suggestions", h.GetSuggestions)

	w := serve(r, http.MethodPost, "/chat", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodPost, "/chat", `{"message":"show me laptops","userId":"u1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var chat service.ChatResult
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &chat))
	assert.NotEmpty(t, chat.Response)
	require.NotEmpty(t, chat.Recommendations)
	assert.Equal(t, 1, chat.Recommendations[0].ID)

	w = serve(r, http.MethodGet, "/history/u1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		History []models.ConversationEntry `json:"history"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &history))
	require.Len(t, history.History, 1)
	assert.Equal(t, "show me laptops", history.History[0].UserMessage)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodDelete, "/history/u1", "").Code)
	w = serve(r, http.MethodGet, "/history/u1", "")
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &history))
	assert.Empty(t, history.History)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodDelete, "/history", "").Code)
	assert.Contains(t, serve(r, http.MethodGet, "/suggestions", "").Body.String(), "suggestions")
}

func TestChatbotHandler_CatalogFailure(t *testing.T) {
	store := testCatalog()
	kb := service.NewKnowledgeBase(store)
	store.err = errors.New("connection refused")
	h := NewChatbotHandler(service.NewChatbotService(store, kb, service.NewConversationStore()))
	r := gin.New()
	r.POST("/chat", h.Chat)

	w := serve(r, http.MethodPost, "/chat", `{"message":"show me laptops"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var chat service.ChatResult
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &chat))
	assert.Empty(t, chat.Recommendations)
	assert.Equal(t, service.ChatErrorMessage, chat.Message)
}

func imageUpload(t *testing.T, filename, contentType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func newVisualRouter(t *testing.T, store *stubCatalog) (*gin.Engine, string) {
	t.Helper()
	kb := service.NewKnowledgeBase(store)
	dir := t.TempDir()
	cfg := config.VisualSearchConfig{UploadDir: dir, MaxBytes: 1024, DefaultLimit: 12, MaxLimit: 50}
	h := NewVisualSearchHandler(service.NewVisualSearchService(store, kb, cfg.DefaultLimit), cfg)
	r := gin.New()
	r.POST("/search", h.Search)
	r.GET("/suggestions", h.GetSuggestions)
	r.POST("/update-features/:productId", h.UpdateFeatures)
	return r, dir
}

func TestVisualSearchHandler_Search(t *testing.T) {
	r, dir := newVisualRouter(t, testCatalog())

	body, ct := imageUpload(t, "hp-pavilion-laptop.png", "image/png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/search?limit=1", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var result service.VisualSearchResult
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &result))
	require.Len(t, result.Products, 1)
	assert.Equal(t, 1, result.Products[0].ID)
	assert.Equal(t, "hp", result.Analysis.Brand)
	assert.Equal(t, "visual", result.SearchType)

	left, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestVisualSearchHandler_Rejects(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		size        int
		code        string
	}{
		{"not an image", "notes.txt", "text/plain", 10, "INVALID_IMAGE"},
		{"wrong mime", "photo.png", "application/pdf", 10, "INVALID_IMAGE"},
		{"too large", "photo.png", "image/png", 2048, "INVALID_IMAGE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, dir := newVisualRouter(t, testCatalog())
			body, ct := imageUpload(t, tt.filename, tt.contentType, bytes.Repeat([]byte("x"), tt.size))
			req := httptest.NewRequest(http.MethodPost, "/search", body)
			req.Header.Set("Content-Type", ct)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			env := decode(t, w)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			left, _ := os.ReadDir(dir)
			assert.Empty(t, left)
		})
	}

	r, _ := newVisualRouter(t, testCatalog())
	w := serve(r, http.MethodPost, "/search", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVisualSearchHandler_UpdateFeatures(t *testing.T) {
	r, _ := newVisualRouter(t, testCatalog())

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/update-features/1", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodPost, "/update-features/9", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPost, "/update-features/abc", "").Code)
	assert.Contains(t, serve(r, http.MethodGet, "/suggestions", "").Body.String(), "suggestions")
}

func TestProductHandler(t *testing.T) {
	store := testCatalog()
	kb := service.NewKnowledgeBase(store)
	products := service.NewProductService(store, noReviews{}, nil, nil, kb)
	h := NewProductHandler(products, nil)

	r := gin.New()
	r.GET("/products", h.GetProducts)
	r.GET("/products/search", h.SearchProducts)
	r.POST("/products/filtered-products", h.FilterProducts)
	r.GET("/products/:id", h.GetProduct)
	r.POST("/products", h.CreateProduct)

	w := serve(r, http.MethodGet, "/products?keyword=galaxy", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalItems":1`)

	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/products/search", "").Code)
	assert.Contains(t, serve(r, http.MethodGet, "/products/search?q=laptops", "").Body.String(), `"count":1`)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/products/2", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/products/9", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/products/x", "").Code)

	w = serve(r, http.MethodPost, "/products/filtered-products", `{"checked":[2],"radio":[0,80000]}`)
	require.Equal(t, http.StatusOK, w.Code)
	var filtered []models.Product
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &filtered))
	require.Len(t, filtered, 1)
	assert.Equal(t, 2, filtered[0].ID)

	w = serve(r, http.MethodPost, "/products", `{"name":"Pixel 8","brand":"Google","price":60000}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Description is required")

	w = serve(r, http.MethodPost, "/products", `{"name":"Pixel 8","brand":"Google","description":"android phone","price":60000,"category":2,"countInStock":4}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	_, ok := kb.Entry(3)
	assert.True(t, ok)
}

func TestHealthHandler(t *testing.T) {
	kb := service.NewKnowledgeBase(testCatalog())
	_, err := kb.Refresh(context.Background())
	require.NoError(t, err)

	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: refused") }

	r := gin.New()
	r.GET("/healthy", NewHealthHandler(kb, map[string]HealthCheck{"database": ok, "redis": ok}).GetHealth)
	r.GET("/degraded", NewHealthHandler(kb, map[string]HealthCheck{"database": ok, "redis": down}).GetHealth)

	w := serve(r, http.MethodGet, "/healthy", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"products":2`)

	w = serve(r, http.MethodGet, "/degraded", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"disconnected"`)
}
