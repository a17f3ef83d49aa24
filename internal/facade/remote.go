package facade

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"time"

	"stockroom/internal/domain"
	"stockroom/internal/query"
	"stockroom/internal/service"
)

// Remote is the networked backend as seen by the facade. Every call returns
// either a value, an *AppError, or a *TransportError; the tag is what the
// facade branches on.
type Remote interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListProducts(ctx context.Context, params query.Params) ([]domain.Product, query.Pagination, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, input service.ProductInput) (int64, error)
	UpdateProduct(ctx context.Context, id int64, input service.ProductInput) error
	DeleteProduct(ctx context.Context, id int64) error
	UploadImage(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
	DeleteImage(ctx context.Context, imageURL string) error
}

// HTTPRemote talks to the API server over HTTP.
type HTTPRemote struct {
	baseURL string
	client  *http.Client
}

// NewHTTPRemote creates a remote against baseURL (e.g. "http://localhost:3001").
func NewHTTPRemote(baseURL string, client *http.Client) *HTTPRemote {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPRemote{baseURL: baseURL, client: client}
}

// envelope is the common wire shape shared by all endpoints.
type envelope struct {
	Success    bool              `json:"success"`
	Error      string            `json:"error"`
	ID         int64             `json:"id"`
	ImageURL   string            `json:"imageUrl"`
	Product    *domain.Product   `json:"product"`
	Products   []domain.Product  `json:"products"`
	Categories []domain.Category `json:"categories"`
	Pagination *query.Pagination `json:"pagination"`
	Warnings   []service.Warning `json:"warnings"`
}

// do issues the request and classifies the outcome. Anything that prevents
// decoding a well-formed envelope is a transport failure; a decoded
// {success:false} is an application error carried verbatim.
func (r *HTTPRemote) do(ctx context.Context, method, path string, contentType string, body io.Reader) (*envelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("malformed response: %w", err)}
	}

	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &AppError{Status: resp.StatusCode, Message: msg}
	}
	return &env, nil
}

func (r *HTTPRemote) doJSON(ctx context.Context, method, path string, payload interface{}) (*envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	return r.do(ctx, method, path, "application/json", bytes.NewReader(data))
}

func (r *HTTPRemote) ListCategories(ctx context.Context) ([]domain.Category, error) {
	env, err := r.do(ctx, http.MethodGet, "/api/categories", "", nil)
	if err != nil {
		return nil, err
	}
	return env.Categories, nil
}

func (r *HTTPRemote) ListProducts(ctx context.Context, params query.Params) ([]domain.Product, query.Pagination, error) {
	q := url.Values{}
	q.Set("search", params.Search)
	q.Set("category", params.Category)
	q.Set("page", strconv.Itoa(params.Page))
	q.Set("limit", strconv.Itoa(params.PageSize))
	q.Set("sortBy", params.SortBy)
	q.Set("sortOrder", string(params.SortOrder))

	env, err := r.do(ctx, http.MethodGet, "/api/products?"+q.Encode(), "", nil)
	if err != nil {
		return nil, query.Pagination{}, err
	}

	pagination := query.Pagination{}
	if env.Pagination != nil {
		pagination = *env.Pagination
	}
	return env.Products, pagination, nil
}

func (r *HTTPRemote) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	env, err := r.do(ctx, http.MethodGet, "/api/products/"+strconv.FormatInt(id, 10), "", nil)
	if err != nil {
		return nil, err
	}
	if env.Product == nil {
		return nil, &TransportError{Err: fmt.Errorf("malformed response: missing product")}
	}
	return env.Product, nil
}

// createRequest mirrors the POST/PUT body: the update variant carries the id.
type createRequest struct {
	ID int64 `json:"id,omitempty"`
	service.ProductInput
}

func (r *HTTPRemote) CreateProduct(ctx context.Context, input service.ProductInput) (int64, error) {
	env, err := r.doJSON(ctx, http.MethodPost, "/api/products", createRequest{ProductInput: input})
	if err != nil {
		return 0, err
	}
	return env.ID, nil
}

func (r *HTTPRemote) UpdateProduct(ctx context.Context, id int64, input service.ProductInput) error {
	_, err := r.doJSON(ctx, http.MethodPut, "/api/products", createRequest{ID: id, ProductInput: input})
	return err
}

func (r *HTTPRemote) DeleteProduct(ctx context.Context, id int64) error {
	_, err := r.do(ctx, http.MethodDelete, "/api/products?id="+strconv.FormatInt(id, 10), "", nil)
	return err
}

func (r *HTTPRemote) UploadImage(ctx context.Context, filename, contentType string, payload io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	if _, err := io.Copy(part, payload); err != nil {
		return "", &TransportError{Err: err}
	}
	if err := writer.Close(); err != nil {
		return "", &TransportError{Err: err}
	}

	env, err := r.do(ctx, http.MethodPost, "/api/upload", writer.FormDataContentType(), &body)
	if err != nil {
		return "", err
	}
	return env.ImageURL, nil
}

func (r *HTTPRemote) DeleteImage(ctx context.Context, imageURL string) error {
	_, err := r.doJSON(ctx, http.MethodDelete, "/api/upload", map[string]string{"imageUrl": imageURL})
	return err
}
