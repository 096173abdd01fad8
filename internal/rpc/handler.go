package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mkravets/products-service/internal/metrics"
	"github.com/mkravets/products-service/internal/service"
)

// Command names understood by the router. They are shared with the calling
// services and must not change.
const (
	CmdCreateProduct    = "create-product"
	CmdFindAllProducts  = "find-all-products"
	CmdFindOneProduct   = "find-one-product"
	CmdUpdateProduct    = "update-product"
	CmdRemoveProduct    = "remove-product"
	CmdValidateProducts = "validate-products"
)

// HandlerFunc handles a single command payload. An error return is
// normalized into a Fault by the router.
type HandlerFunc func(ctx context.Context, payload []byte) (any, error)

// Router maps command names to handlers and turns every outcome, success or
// failure, into exactly one response.
type Router struct {
	handlers map[string]HandlerFunc
}

// NewRouter builds the handler table for the product service commands.
func NewRouter(products *service.ProductService) *Router {
	r := &Router{handlers: map[string]HandlerFunc{}}
	r.register(CmdCreateProduct, createProductHandler(products))
	r.register(CmdFindAllProducts, findAllProductsHandler(products))
	r.register(CmdFindOneProduct, findOneProductHandler(products))
	r.register(CmdUpdateProduct, updateProductHandler(products))
	r.register(CmdRemoveProduct, removeProductHandler(products))
	r.register(CmdValidateProducts, validateProductsHandler(products))
	return r
}

func (r *Router) register(command string, handler HandlerFunc) {
	r.handlers[command] = handler
}

// Response is the normalized reply for one dispatched command. IsFault tells
// the transport how to tag the reply so callers can discriminate.
type Response struct {
	Body    []byte
	IsFault bool
}

// Dispatch routes a command to its handler. It never panics through and never
// returns without a body: unknown commands, handler errors and encoding
// failures all produce a marshaled Fault.
func (r *Router) Dispatch(ctx context.Context, command string, payload []byte) Response {
	handler, ok := r.handlers[command]
	if !ok {
		return faultResponse(command, NewFault(http.StatusBadRequest, fmt.Sprintf("Unknown command %q", command)))
	}

	result, err := handler(ctx, payload)
	if err != nil {
		return faultResponse(command, FaultFromError(err))
	}

	body, err := json.Marshal(result)
	if err != nil {
		slog.Error("failed to encode command response", slog.Any("err", err), slog.String("command", command))
		return faultResponse(command, NewFault(http.StatusInternalServerError, "failed to encode response"))
	}

	metrics.RPCRequests.WithLabelValues(command, "ok").Inc()
	slog.Debug("command handled", slog.String("command", command))
	return Response{Body: body}
}

func faultResponse(command string, fault *Fault) Response {
	metrics.RPCRequests.WithLabelValues(command, "fault").Inc()
	slog.Debug("command faulted",
		slog.String("command", command),
		slog.Int("status", fault.Status),
		slog.String("message", fault.Message),
	)

	body, err := json.Marshal(fault)
	if err != nil {
		body = []byte(`{"status":500,"message":"failed to encode fault"}`)
	}
	return Response{Body: body, IsFault: true}
}

func createProductHandler(products *service.ProductService) HandlerFunc {
	return func(ctx context.Context, payload []byte) (any, error) {
		var req CreateProductRequest
		if fault := decodeRequest(payload, &req); fault != nil {
			return nil, fault
		}
		return products.Create(ctx, req.Name, req.Description, *req.Price)
	}
}

func findAllProductsHandler(products *service.ProductService) HandlerFunc {
	return func(ctx context.Context, payload []byte) (any, error) {
		var req FindAllProductsRequest
		if fault := decodeRequest(payload, &req); fault != nil {
			return nil, fault
		}
		return products.FindAll(ctx, req.Pagination())
	}
}

func findOneProductHandler(products *service.ProductService) HandlerFunc {
	return func(ctx context.Context, payload []byte) (any, error) {
		var req ProductIDRequest
		if fault := decodeRequest(payload, &req); fault != nil {
			return nil, fault
		}
		return products.FindOne(ctx, req.ID)
	}
}

func updateProductHandler(products *service.ProductService) HandlerFunc {
	return func(ctx context.Context, payload []byte) (any, error) {
		var req UpdateProductRequest
		if fault := decodeRequest(payload, &req); fault != nil {
			return nil, fault
		}
		return products.Update(ctx, req.ID, req.Fields())
	}
}

func removeProductHandler(products *service.ProductService) HandlerFunc {
	return func(ctx context.Context, payload []byte) (any, error) {
		var req ProductIDRequest
		if fault := decodeRequest(payload, &req); fault != nil {
			return nil, fault
		}
		return products.Remove(ctx, req.ID)
	}
}

func validateProductsHandler(products *service.ProductService) HandlerFunc {
	return func(ctx context.Context, payload []byte) (any, error) {
		var ids []int64
		if err := json.Unmarshal(payload, &ids); err != nil {
			return nil, NewFault(http.StatusBadRequest, "invalid payload: expected an array of product ids")
		}
		return products.ValidateProducts(ctx, ids)
	}
}
