package rpc

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// SettlementServiceHandler is implemented by the settlement service.
type SettlementServiceHandler interface {
	RecordSettlement(context.Context, *connect.Request[RecordSettlementRequest]) (*connect.Response[RecordSettlementResponse], error)
	GetSettlement(context.Context, *connect.Request[GetSettlementRequest]) (*connect.Response[GetSettlementResponse], error)
	UpdateSettlement(context.Context, *connect.Request[UpdateSettlementRequest]) (*connect.Response[UpdateSettlementResponse], error)
	DeleteSettlement(context.Context, *connect.Request[DeleteSettlementRequest]) (*connect.Response[DeleteSettlementResponse], error)
	ListSettlements(context.Context, *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error)
}

// NewSettlementServiceHandler builds an HTTP handler for every settlement procedure.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = HandlerOptions(opts...)
	return route(SettlementServiceName, map[string]http.Handler{
		SettlementServiceRecordSettlementProcedure: connect.NewUnaryHandler(SettlementServiceRecordSettlementProcedure, svc.RecordSettlement, opts...),
		SettlementServiceGetSettlementProcedure:    connect.NewUnaryHandler(SettlementServiceGetSettlementProcedure, svc.GetSettlement, opts...),
		SettlementServiceUpdateSettlementProcedure: connect.NewUnaryHandler(SettlementServiceUpdateSettlementProcedure, svc.UpdateSettlement, opts...),
		SettlementServiceDeleteSettlementProcedure: connect.NewUnaryHandler(SettlementServiceDeleteSettlementProcedure, svc.DeleteSettlement, opts...),
		SettlementServiceListSettlementsProcedure:  connect.NewUnaryHandler(SettlementServiceListSettlementsProcedure, svc.ListSettlements, opts...),
	})
}

// SettlementServiceClient calls the settlement service.
type SettlementServiceClient struct {
	recordSettlement *connect.Client[RecordSettlementRequest, RecordSettlementResponse]
	getSettlement    *connect.Client[GetSettlementRequest, GetSettlementResponse]
	updateSettlement *connect.Client[UpdateSettlementRequest, UpdateSettlementResponse]
	deleteSettlement *connect.Client[DeleteSettlementRequest, DeleteSettlementResponse]
	listSettlements  *connect.Client[ListSettlementsRequest, ListSettlementsResponse]
}

// NewSettlementServiceClient creates a client for the server at baseURL.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SettlementServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = ClientOptions(opts...)
	return &SettlementServiceClient{
		recordSettlement: connect.NewClient[RecordSettlementRequest, RecordSettlementResponse](httpClient, baseURL+SettlementServiceRecordSettlementProcedure, opts...),
		getSettlement:    connect.NewClient[GetSettlementRequest, GetSettlementResponse](httpClient, baseURL+SettlementServiceGetSettlementProcedure, opts...),
		updateSettlement: connect.NewClient[UpdateSettlementRequest, UpdateSettlementResponse](httpClient, baseURL+SettlementServiceUpdateSettlementProcedure, opts...),
		deleteSettlement: connect.NewClient[DeleteSettlementRequest, DeleteSettlementResponse](httpClient, baseURL+SettlementServiceDeleteSettlementProcedure, opts...),
		listSettlements:  connect.NewClient[ListSettlementsRequest, ListSettlementsResponse](httpClient, baseURL+SettlementServiceListSettlementsProcedure, opts...),
	}
}

func (c *SettlementServiceClient) RecordSettlement(ctx context.Context, req *connect.Request[RecordSettlementRequest]) (*connect.Response[RecordSettlementResponse], error) {
	return c.recordSettlement.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) GetSettlement(ctx context.Context, req *connect.Request[GetSettlementRequest]) (*connect.Response[GetSettlementResponse], error) {
	return c.getSettlement.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) UpdateSettlement(ctx context.Context, req *connect.Request[UpdateSettlementRequest]) (*connect.Response[UpdateSettlementResponse], error) {
	return c.updateSettlement.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) DeleteSettlement(ctx context.Context, req *connect.Request[DeleteSettlementRequest]) (*connect.Response[DeleteSettlementResponse], error) {
	return c.deleteSettlement.CallUnary(ctx, req)
}

func (c *SettlementServiceClient) ListSettlements(ctx context.Context, req *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}
