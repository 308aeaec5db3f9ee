package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-replenishment-service/internal/auth"
	"github.com/fekuna/omnipos-replenishment-service/internal/inventory"
	"github.com/fekuna/omnipos-replenishment-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-replenishment-service/internal/model"
	orderdto "github.com/fekuna/omnipos-replenishment-service/internal/order/dto"
	productdto "github.com/fekuna/omnipos-replenishment-service/internal/product/dto"
	"github.com/fekuna/omnipos-replenishment-service/internal/response"
	"github.com/fekuna/omnipos-replenishment-service/pkg/logger"
)

const maxBodyBytes = 1 << 20

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

// RegisterRoutes mounts every tenant-scoped route behind protect.
func (h *InventoryHandler) RegisterRoutes(mux *http.ServeMux, protect func(http.Handler) http.Handler) {
	routes := map[string]http.HandlerFunc{
		"POST /products":                  h.RegisterProduct,
		"GET /products":                   h.ListProducts,
		"GET /products/search":            h.SearchProducts,
		"GET /products/expiry":            h.ExpiryReport,
		"DELETE /products/{batch}":        h.RemoveProduct,
		"POST /orders":                    h.CreateOrder,
		"GET /orders":                     h.ListOrders,
		"GET /orders/drafts":              h.ListDraftOrders,
		"PUT /orders/{order_id}":          h.UpdateOrder,
		"POST /orders/{order_id}/confirm": h.ConfirmOrder,
		"POST /supplier/receive":          h.ReceiveStock,
		"POST /supplier/recieve":          h.ReceiveStock,
	}
	for pattern, fn := range routes {
		mux.Handle(pattern, protect(fn))
	}
}

func (h *InventoryHandler) RegisterProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterProductRequest
	if err := decodeBody(r, &req, true); err != nil {
		response.Error(w, r, err)
		return
	}

	res, err := h.uc.RegisterProduct(r.Context(), &productdto.CreateProductInput{
		TenantID:   auth.GetTenantID(r.Context()),
		Name:       req.Name,
		Price:      req.Price,
		Quantity:   req.Quantity,
		Batch:      req.Batch,
		ExpiryDate: req.ExpiryDate,
	})
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, res)
}

func (h *InventoryHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.uc.ListProducts(r.Context(), auth.GetTenantID(r.Context()))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, products)
}

func (h *InventoryHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.uc.SearchProducts(r.Context(), auth.GetTenantID(r.Context()), r.URL.Query().Get("q"))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, products)
}

func (h *InventoryHandler) ExpiryReport(w http.ResponseWriter, r *http.Request) {
	entries, err := h.uc.ExpiryReport(r.Context(), auth.GetTenantID(r.Context()))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, entries)
}

func (h *InventoryHandler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	res, err := h.uc.RemoveProduct(r.Context(), auth.GetTenantID(r.Context()), r.PathValue("batch"))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, res)
}

func (h *InventoryHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOrderRequest
	if err := decodeBody(r, &req, false); err != nil {
		response.Error(w, r, err)
		return
	}
	q := r.URL.Query()
	if v := q.Get("batch"); v != "" {
		req.Batch = v
	}
	if err := queryInt(q.Get("quantity"), &req.Quantity); err != nil {
		response.Error(w, r, err)
		return
	}

	res, err := h.uc.CreateOrder(r.Context(), &orderdto.CreateOrderInput{
		TenantID: auth.GetTenantID(r.Context()),
		Batch:    req.Batch,
		Quantity: req.Quantity,
	})
	if err != nil {
		response.Error(w, r, err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	response.JSON(w, status, res)
}

type listOrdersResponse struct {
	Orders []model.Order `json:"orders"`
	Count  int           `json:"count"`
}

func (h *InventoryHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, count, err := h.uc.ListOrders(r.Context(), auth.GetTenantID(r.Context()))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, listOrdersResponse{Orders: orders, Count: count})
}

func (h *InventoryHandler) ListDraftOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.uc.ListDraftOrders(r.Context(), auth.GetTenantID(r.Context()))
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, orders)
}

type orderResponse struct {
	Message string      `json:"message"`
	Order   model.Order `json:"order"`
}

func (h *InventoryHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateOrderRequest
	if err := decodeBody(r, &req, false); err != nil {
		response.Error(w, r, err)
		return
	}
	if err := queryInt(r.URL.Query().Get("quantity"), &req.Quantity); err != nil {
		response.Error(w, r, err)
		return
	}

	orderID := r.PathValue("order_id")
	o, err := h.uc.UpdateOrder(r.Context(), &orderdto.UpdateOrderInput{
		TenantID: auth.GetTenantID(r.Context()),
		OrderID:  orderID,
		Quantity: req.Quantity,
	})
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, orderResponse{Message: fmt.Sprintf("Order %s updated", orderID), Order: *o})
}

func (h *InventoryHandler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("order_id")
	o, err := h.uc.ConfirmOrder(r.Context(), auth.GetTenantID(r.Context()), orderID)
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, orderResponse{Message: fmt.Sprintf("Order %s confirmed", orderID), Order: *o})
}

func (h *InventoryHandler) ReceiveStock(w http.ResponseWriter, r *http.Request) {
	var req dto.ReceiveStockRequest
	if err := decodeBody(r, &req, false); err != nil {
		response.Error(w, r, err)
		return
	}
	q := r.URL.Query()
	if v := q.Get("batch"); v != "" {
		req.Batch = v
	}
	if err := queryInt(q.Get("received_quantity"), &req.ReceivedQuantity); err != nil {
		response.Error(w, r, err)
		return
	}

	res, err := h.uc.ReceiveStock(r.Context(), &productdto.ReceiveStockInput{
		TenantID:         auth.GetTenantID(r.Context()),
		Batch:            req.Batch,
		ReceivedQuantity: req.ReceivedQuantity,
	})
	if err != nil {
		response.Error(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, res)
}

// decodeBody decodes a JSON body into v. An empty body is accepted unless required.
func decodeBody(r *http.Request, v any, required bool) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return model.ErrInvalidRequestBody.Wrap(err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		if required {
			return model.ErrInvalidRequestBody
		}
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return model.ErrInvalidRequestBody.Wrap(err)
	}
	return nil
}

// queryInt overwrites dst with raw when raw is present.
func queryInt(raw string, dst *int) error {
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return model.ErrInvalidQuantity.Withf("quantity must be an integer")
	}
	*dst = n
	return nil
}
