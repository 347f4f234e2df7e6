package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rodrigo-augusto/customer-api/internal/domain"
	"github.com/rodrigo-augusto/customer-api/internal/service"
	apperrors "github.com/rodrigo-augusto/customer-api/pkg/errors"
	"github.com/rodrigo-augusto/customer-api/pkg/httputil"
	"github.com/rodrigo-augusto/customer-api/pkg/logger"
)

// CustomerHandler handles HTTP requests for customer endpoints.
type CustomerHandler struct {
	service *service.CustomerService
	logger  *slog.Logger
	bare    bool
}

// NewCustomerHandler creates a new customer HTTP handler.
func NewCustomerHandler(svc *service.CustomerService, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: svc,
		logger:  logger,
	}
}

// Legacy returns a copy of h for the /cliente routes. Successful answers carry
// the bare customer or list and deletes answer with an empty body; errors keep
// the standard envelope.
func (h *CustomerHandler) Legacy() *CustomerHandler {
	l := *h
	l.bare = true
	return &l
}

// --- Request DTOs ---

// CustomerRequest is the body accepted by create and update. "nome" is an
// alias for "name"; when both are present "name" wins. Favorites are never
// read from the body: they only enter through the catalog.
type CustomerRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Nome  string `json:"nome"`
}

func (req CustomerRequest) toDomain() domain.Customer {
	name := req.Name
	if name == "" {
		name = req.Nome
	}
	return domain.Customer{
		Email:            strings.TrimSpace(req.Email),
		Name:             name,
		FavoriteProducts: []domain.Product{},
	}
}

// --- Handlers ---

// List handles GET /api/v1/customers
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	h.writeResult(w, r, h.service.List(r.Context()))
}

// Create handles POST /api/v1/customers
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCustomer(w, r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeResult(w, r, h.service.Create(r.Context(), req.toDomain()))
}

// Update handles PUT /api/v1/customers/{email}. The path email identifies
// the record; an email in the body is ignored. The favorites list is reset.
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	email, err := pathParam(r, "email")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	req, err := decodeCustomer(w, r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	c := req.toDomain()
	c.Email = email
	h.writeResult(w, r, h.service.Update(r.Context(), c))
}

// AddFavorite handles PUT /api/v1/customers/{email}/products/{productId}
func (h *CustomerHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	email, err := pathParam(r, "email")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	productID, err := pathParam(r, "productId")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.writeResult(w, r, h.service.AddFavorite(r.Context(), email, productID))
}

// Delete handles DELETE /api/v1/customers/{email}
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	email, err := pathParam(r, "email")
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	res := h.service.Delete(r.Context(), email)
	if res.HasError() {
		h.writeResult(w, r, res)
		return
	}

	if h.bare {
		w.WriteHeader(res.Status)
		return
	}
	httputil.WriteData(w, res.Status, map[string]string{"email": email, "status": "deleted"})
}

func (h *CustomerHandler) writeResult(w http.ResponseWriter, r *http.Request, res service.Result) {
	if res.HasError() {
		httputil.WriteError(w, r, res.Err, h.logger)
		return
	}
	if h.bare {
		httputil.WriteJSON(w, res.Status, res.Data)
		return
	}
	httputil.WriteData(w, res.Status, res.Data)
}

func writeStatus(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	httputil.WriteJSON(w, status, httputil.Response{
		Error: &httputil.ErrorResponse{
			Code:      code,
			Message:   message,
			RequestID: logger.CorrelationIDFromContext(r.Context()),
		},
	})
}

// decodeCustomer reads a JSON or form-encoded customer body. A missing or
// empty body is invalid input.
func decodeCustomer(w http.ResponseWriter, r *http.Request) (CustomerRequest, error) {
	var req CustomerRequest

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		r.Body = http.MaxBytesReader(w, r.Body, httputil.MaxBodyBytes)
		if err := r.ParseForm(); err != nil {
			return req, apperrors.InvalidInput("invalid form body")
		}
		if len(r.PostForm) == 0 {
			return req, apperrors.InvalidInput("request body is required")
		}
		req.Email = r.PostForm.Get("email")
		req.Name = r.PostForm.Get("name")
		req.Nome = r.PostForm.Get("nome")
		return req, nil
	}

	if err := httputil.DecodeObject(r, &req); err != nil {
		return req, err
	}
	return req, nil
}

// pathParam returns the decoded route parameter. chi matches on RawPath when
// the request has one, so only then is the value still escaped.
func pathParam(r *http.Request, name string) (string, error) {
	v := chi.URLParam(r, name)
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(v)
		if err != nil {
			return "", apperrors.InvalidInput("invalid " + name + " path parameter")
		}
		v = unescaped
	}
	if strings.TrimSpace(v) == "" {
		return "", apperrors.InvalidInput(name + " is required")
	}
	return v, nil
}
