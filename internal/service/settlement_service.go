package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/rpc"
	"github.com/mmynk/groupledger/internal/storage"
)

// Ensure SettlementService implements rpc.SettlementServiceHandler
var _ rpc.SettlementServiceHandler = (*SettlementService)(nil)

// SettlementService implements the Connect SettlementService
type SettlementService struct {
	store storage.Store
}

// NewSettlementService creates a new SettlementService with the given storage backend.
func NewSettlementService(store storage.Store) *SettlementService {
	return &SettlementService{store: store}
}

// checkSettlement validates a settlement. Membership of both parties is
// enforced by the store in the same transaction as the write.
func checkSettlement(settlement *models.Settlement) error {
	if err := settlement.Validate(); err != nil {
		return invalidArgument(err)
	}
	return nil
}

// RecordSettlement records a direct payment between two members.
func (s *SettlementService) RecordSettlement(ctx context.Context, req *connect.Request[rpc.RecordSettlementRequest]) (*connect.Response[rpc.RecordSettlementResponse], error) {
	slog.Info("RecordSettlement request received",
		"group_id", req.Msg.GroupID,
		"from_user_id", req.Msg.FromUserID,
		"to_user_id", req.Msg.ToUserID,
		"amount", req.Msg.Amount.String(),
	)

	settlement := &models.Settlement{
		GroupID:    req.Msg.GroupID,
		FromUserID: req.Msg.FromUserID,
		ToUserID:   req.Msg.ToUserID,
		Amount:     req.Msg.Amount,
		Note:       req.Msg.Note,
		CreatedBy:  req.Msg.CreatedBy,
	}
	if err := checkSettlement(settlement); err != nil {
		slog.Warn("RecordSettlement rejected", "group_id", settlement.GroupID, "error", err)
		return nil, err
	}

	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		slog.Error("RecordSettlement failed", "error", err)
		return nil, storageError(err)
	}

	slog.Info("Settlement recorded",
		"settlement_id", settlement.ID,
		"group_id", settlement.GroupID,
		"note", settlement.NoteText(),
	)

	return connect.NewResponse(&rpc.RecordSettlementResponse{Settlement: settlement}), nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SettlementService) GetSettlement(ctx context.Context, req *connect.Request[rpc.GetSettlementRequest]) (*connect.Response[rpc.GetSettlementResponse], error) {
	slog.Info("GetSettlement request received", "settlement_id", req.Msg.SettlementID)

	if req.Msg.SettlementID == "" {
		return nil, required("settlement_id")
	}

	settlement, err := s.store.GetSettlement(ctx, req.Msg.SettlementID)
	if err != nil {
		slog.Error("GetSettlement failed", "settlement_id", req.Msg.SettlementID, "error", err)
		return nil, storageError(err)
	}

	return connect.NewResponse(&rpc.GetSettlementResponse{Settlement: settlement}), nil
}

// UpdateSettlement replaces the parties, amount and note of a settlement.
func (s *SettlementService) UpdateSettlement(ctx context.Context, req *connect.Request[rpc.UpdateSettlementRequest]) (*connect.Response[rpc.UpdateSettlementResponse], error) {
	slog.Info("UpdateSettlement request received", "settlement_id", req.Msg.SettlementID)

	if req.Msg.SettlementID == "" {
		return nil, required("settlement_id")
	}

	settlement, err := s.store.GetSettlement(ctx, req.Msg.SettlementID)
	if err != nil {
		slog.Error("UpdateSettlement failed", "settlement_id", req.Msg.SettlementID, "error", err)
		return nil, storageError(err)
	}

	settlement.FromUserID = req.Msg.FromUserID
	settlement.ToUserID = req.Msg.ToUserID
	settlement.Amount = req.Msg.Amount
	settlement.Note = req.Msg.Note
	if err := checkSettlement(settlement); err != nil {
		slog.Warn("UpdateSettlement rejected", "settlement_id", settlement.ID, "error", err)
		return nil, err
	}

	if err := s.store.UpdateSettlement(ctx, settlement); err != nil {
		slog.Error("UpdateSettlement failed", "settlement_id", settlement.ID, "error", err)
		return nil, storageError(err)
	}

	slog.Info("Settlement updated", "settlement_id", settlement.ID)

	return connect.NewResponse(&rpc.UpdateSettlementResponse{Settlement: settlement}), nil
}

// DeleteSettlement removes a settlement by ID.
func (s *SettlementService) DeleteSettlement(ctx context.Context, req *connect.Request[rpc.DeleteSettlementRequest]) (*connect.Response[rpc.DeleteSettlementResponse], error) {
	slog.Info("DeleteSettlement request received", "settlement_id", req.Msg.SettlementID)

	if req.Msg.SettlementID == "" {
		return nil, required("settlement_id")
	}

	if err := s.store.DeleteSettlement(ctx, req.Msg.SettlementID); err != nil {
		slog.Error("DeleteSettlement failed", "settlement_id", req.Msg.SettlementID, "error", err)
		return nil, storageError(err)
	}

	slog.Info("Settlement deleted", "settlement_id", req.Msg.SettlementID)

	return connect.NewResponse(&rpc.DeleteSettlementResponse{}), nil
}

// ListSettlements retrieves a group's settlements, newest first.
func (s *SettlementService) ListSettlements(ctx context.Context, req *connect.Request[rpc.ListSettlementsRequest]) (*connect.Response[rpc.ListSettlementsResponse], error) {
	slog.Info("ListSettlements request received", "group_id", req.Msg.GroupID)

	if req.Msg.GroupID == "" {
		return nil, required("group_id")
	}

	// Verify group exists
	if _, err := s.store.GetGroup(ctx, req.Msg.GroupID); err != nil {
		slog.Error("ListSettlements failed - group not found", "group_id", req.Msg.GroupID, "error", err)
		return nil, storageError(err)
	}

	settlements, err := s.store.ListSettlementsByGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("ListSettlements failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, storageError(err)
	}

	slog.Info("ListSettlements successful", "group_id", req.Msg.GroupID, "count", len(settlements))

	return connect.NewResponse(&rpc.ListSettlementsResponse{Settlements: settlements}), nil
}
