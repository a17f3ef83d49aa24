package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"stockroom/internal/service"
	"stockroom/internal/store/localstore"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	recordStore, err := localstore.New(localstore.NewMemoryMedium(), zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}

	images, err := service.NewDiskImageStore(t.TempDir(), 5_000_000)
	if err != nil {
		t.Fatalf("failed to create image store: %v", err)
	}

	logger := zap.NewNop()
	products := service.NewProductService(recordStore, nil, images, logger)

	router := chi.NewRouter()
	NewProductHandler(products, logger).RegisterRoutes(router)
	NewUploadHandler(images, 5_000_000, logger).RegisterRoutes(router)
	NewHealthHandler(nil, "json-file", map[string]string{"backend": "json-file"}, logger).RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router chi.Router, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("response is not JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return rec, decoded
}

func TestListCategoriesEnvelope(t *testing.T) {
	router := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodGet, "/api/categories", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if body["success"] != true {
		t.Fatalf("expected success envelope, got %v", body)
	}
	if _, ok := body["categories"].([]interface{}); !ok {
		t.Fatalf("missing categories list: %v", body)
	}
}

func TestListProductsFiltersAndPaginates(t *testing.T) {
	router := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodGet, "/api/products?search=robinet&page=1&limit=50", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	products := body["products"].([]interface{})
	if len(products) != 1 {
		t.Fatalf("expected exactly one match, got %d", len(products))
	}
	match := products[0].(map[string]interface{})
	if match["name"] != "Robinet mélangeur" {
		t.Fatalf("unexpected match: %v", match["name"])
	}

	pagination := body["pagination"].(map[string]interface{})
	if pagination["totalItems"].(float64) != 1 || pagination["itemsPerPage"].(float64) != 50 {
		t.Fatalf("unexpected pagination: %v", pagination)
	}
}

func TestGetProductNotFound(t *testing.T) {
	router := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodGet, "/api/products/9999", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if body["success"] != false || body["error"] != "Product not found" {
		t.Fatalf("unexpected error envelope: %v", body)
	}
}

func TestCreateUpdateDeleteFlow(t *testing.T) {
	router := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodPost, "/api/products", map[string]interface{}{
		"name":           "Clé à molette",
		"purchase_price": 4.0,
		"selling_price":  8.5,
	})
	if rec.Code != http.StatusOK || body["success"] != true {
		t.Fatalf("create failed: %d %v", rec.Code, body)
	}
	id := int64(body["id"].(float64))

	rec, body = doJSON(t, router, http.MethodPut, "/api/products", map[string]interface{}{
		"id":             id,
		"name":           "Clé à molette 250mm",
		"purchase_price": 4.5,
		"selling_price":  9.5,
	})
	if rec.Code != http.StatusOK || body["success"] != true {
		t.Fatalf("update failed: %d %v", rec.Code, body)
	}

	rec, body = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/products/%d", id), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get failed: %d", rec.Code)
	}
	product := body["product"].(map[string]interface{})
	if product["name"] != "Clé à molette 250mm" {
		t.Fatalf("update not visible: %v", product["name"])
	}

	rec, body = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/products?id=%d", id), nil)
	if rec.Code != http.StatusOK || body["success"] != true {
		t.Fatalf("delete failed: %d %v", rec.Code, body)
	}

	rec, _ = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/products/%d", id), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("deleted product still readable: %d", rec.Code)
	}
}

func TestCreateRejectsMissingFields(t *testing.T) {
	router := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodPost, "/api/products", map[string]interface{}{
		"description": "orphelin",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if body["success"] != false {
		t.Fatalf("unexpected envelope: %v", body)
	}
}

func TestUpdateMissingProductIs404(t *testing.T) {
	router := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodPut, "/api/products", map[string]interface{}{
		"id":             9999,
		"name":           "fantôme",
		"purchase_price": 1.0,
		"selling_price":  2.0,
	})
	if rec.Code != http.StatusNotFound || body["error"] != "Product not found" {
		t.Fatalf("unexpected response: %d %v", rec.Code, body)
	}
}

func TestUploadWithoutFileIs400(t *testing.T) {
	router := newTestRouter(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if rec.Code != http.StatusBadRequest || body["error"] != "No file uploaded" {
		t.Fatalf("unexpected response: %d %v", rec.Code, body)
	}
}

func TestUploadRoundTrip(t *testing.T) {
	router := newTestRouter(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="photo.png"`)
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create part: %v", err)
	}
	part.Write([]byte("fake png bytes"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if rec.Code != http.StatusOK || body["success"] != true {
		t.Fatalf("upload failed: %d %v", rec.Code, body)
	}

	imageURL, _ := body["imageUrl"].(string)
	if !strings.HasPrefix(imageURL, "/uploads/") || !strings.HasSuffix(imageURL, ".png") {
		t.Fatalf("unexpected imageUrl: %q", imageURL)
	}

	// Deleting twice still succeeds: a missing file is not an error.
	for i := 0; i < 2; i++ {
		rec, delBody := doJSON(t, router, http.MethodDelete, "/api/upload", map[string]string{"imageUrl": imageURL})
		if rec.Code != http.StatusOK || delBody["success"] != true {
			t.Fatalf("image delete %d failed: %d %v", i, rec.Code, delBody)
		}
	}
}

func TestHealthWithoutDatabase(t *testing.T) {
	router := newTestRouter(t)

	rec, body := doJSON(t, router, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK || body["success"] != true {
		t.Fatalf("health failed: %d %v", rec.Code, body)
	}
	if body["database"] != "not configured" {
		t.Fatalf("unexpected database state: %v", body["database"])
	}
}
