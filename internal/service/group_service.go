package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/groupledger/internal/calculator"
	"github.com/mmynk/groupledger/internal/ledger"
	"github.com/mmynk/groupledger/internal/metrics"
	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/rpc"
	"github.com/mmynk/groupledger/internal/storage"
)

// Ensure GroupService implements rpc.GroupServiceHandler
var _ rpc.GroupServiceHandler = (*GroupService)(nil)

// GroupService implements the Connect GroupService
type GroupService struct {
	store  storage.Store
	engine *ledger.Engine
}

// NewGroupService creates a new GroupService with the given storage backend
// and balance engine.
func NewGroupService(store storage.Store, engine *ledger.Engine) *GroupService {
	return &GroupService{store: store, engine: engine}
}

// CreateGroup creates a new group. Members without a user id get a generated one.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[rpc.CreateGroupRequest]) (*connect.Response[rpc.CreateGroupResponse], error) {
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	group := &models.Group{
		Name:    req.Msg.Name,
		Members: append([]models.Member(nil), req.Msg.Members...),
	}
	group.AssignMemberIDs()
	if err := group.Validate(); err != nil {
		return nil, invalidArgument(err)
	}

	generated := 0
	for _, m := range group.Members {
		if models.IsGeneratedMemberID(m.UserID) {
			generated++
		}
	}

	// Save to storage (generates ID and timestamps)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, storageError(err)
	}

	slog.Info("Group created", "group_id", group.ID, "generated_member_ids", generated)

	return connect.NewResponse(&rpc.CreateGroupResponse{Group: group}), nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[rpc.GetGroupRequest]) (*connect.Response[rpc.GetGroupResponse], error) {
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	if req.Msg.GroupID == "" {
		return nil, required("group_id")
	}

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, storageError(err)
	}

	slog.Info("GetGroup successful", "group_id", group.ID, "name", group.Name)

	return connect.NewResponse(&rpc.GetGroupResponse{Group: group}), nil
}

// ListGroups retrieves all groups, or the groups of one member.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[rpc.ListGroupsRequest]) (*connect.Response[rpc.ListGroupsResponse], error) {
	slog.Info("ListGroups request received", "member_id", req.Msg.MemberID)

	var (
		groups []*models.Group
		err    error
	)
	if req.Msg.MemberID != "" {
		groups, err = s.store.ListGroupsForMember(ctx, req.Msg.MemberID)
	} else {
		groups, err = s.store.ListGroups(ctx)
	}
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, storageError(err)
	}

	slog.Info("ListGroups successful", "count", len(groups))

	return connect.NewResponse(&rpc.ListGroupsResponse{Groups: groups}), nil
}

// UpdateGroup renames a group and replaces its roster. A member that an
// expense or settlement refers to cannot be removed or re-keyed.
func (s *GroupService) UpdateGroup(ctx context.Context, req *connect.Request[rpc.UpdateGroupRequest]) (*connect.Response[rpc.UpdateGroupResponse], error) {
	slog.Info("UpdateGroup request received",
		"group_id", req.Msg.GroupID,
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
	)

	if req.Msg.GroupID == "" {
		return nil, required("group_id")
	}

	group := &models.Group{
		ID:      req.Msg.GroupID,
		Name:    req.Msg.Name,
		Members: append([]models.Member(nil), req.Msg.Members...),
	}
	group.AssignMemberIDs()
	if err := group.Validate(); err != nil {
		return nil, invalidArgument(err)
	}

	current, err := s.store.GetGroup(ctx, group.ID)
	if err != nil {
		slog.Error("UpdateGroup failed", "group_id", group.ID, "error", err)
		return nil, storageError(err)
	}

	// Update in storage
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		if errors.Is(err, models.ErrMemberInUse) {
			slog.Warn("UpdateGroup rejected - member in use", "group_id", group.ID, "error", err)
		} else {
			slog.Error("UpdateGroup failed", "error", err)
		}
		return nil, storageError(err)
	}
	group.CreatedAt = current.CreatedAt

	slog.Info("Group updated", "group_id", group.ID)

	return connect.NewResponse(&rpc.UpdateGroupResponse{Group: group}), nil
}

// DeleteGroup removes a group by ID, with all of its expenses and settlements.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[rpc.DeleteGroupRequest]) (*connect.Response[rpc.DeleteGroupResponse], error) {
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	if req.Msg.GroupID == "" {
		return nil, required("group_id")
	}

	if err := s.store.DeleteGroup(ctx, req.Msg.GroupID); err != nil {
		slog.Error("DeleteGroup failed", "error", err)
		return nil, storageError(err)
	}

	slog.Info("Group deleted", "group_id", req.Msg.GroupID)

	return connect.NewResponse(&rpc.DeleteGroupResponse{}), nil
}

// GetGroupBalances computes every member's balance and the payments that
// would settle the group.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[rpc.GetGroupBalancesRequest]) (*connect.Response[rpc.GroupBalances], error) {
	groupID := req.Msg.GroupID
	slog.Info("GetGroupBalances request received", "group_id", groupID)

	if groupID == "" {
		return nil, required("group_id")
	}

	balances, err := s.balances(ctx, groupID)
	if err != nil {
		slog.Error("GetGroupBalances failed", "group_id", groupID, "error", err)
		return nil, storageError(err)
	}

	slog.Info("GetGroupBalances successful",
		"group_id", groupID,
		"members_count", len(balances.Balances),
		"suggestions_count", len(balances.Suggestions),
		"skipped_count", len(balances.Skipped),
	)

	return connect.NewResponse(balances), nil
}

func (s *GroupService) balances(ctx context.Context, groupID string) (*rpc.GroupBalances, error) {
	_, snapshot, err := loadSnapshot(ctx, s.store, groupID)
	if err != nil {
		return nil, err
	}
	return &rpc.GroupBalances{GroupID: groupID, Report: s.engine.Evaluate(snapshot)}, nil
}

// GetGroupSummary totals a group's spending by payer, category and month.
func (s *GroupService) GetGroupSummary(ctx context.Context, req *connect.Request[rpc.GetGroupSummaryRequest]) (*connect.Response[rpc.GetGroupSummaryResponse], error) {
	groupID := req.Msg.GroupID
	slog.Info("GetGroupSummary request received", "group_id", groupID)

	if groupID == "" {
		return nil, required("group_id")
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		slog.Error("GetGroupSummary failed - group not found", "group_id", groupID, "error", err)
		return nil, storageError(err)
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		slog.Error("GetGroupSummary failed - could not list expenses", "group_id", groupID, "error", err)
		return nil, storageError(err)
	}

	summary := calculator.Summarize(expenses, group.Members)

	slog.Info("GetGroupSummary successful",
		"group_id", groupID,
		"expenses_count", summary.ExpenseCount,
		"total", calculator.FormatAmount(summary.TotalAmount),
	)

	return connect.NewResponse(&rpc.GetGroupSummaryResponse{GroupID: groupID, Summary: summary}), nil
}

// WatchGroupBalances streams the group's balances once immediately and
// again after every committed change to the group. Changes that arrive while
// a message is being built are coalesced into the next message. The stream
// ends when the client goes away, or with NotFound once the group is deleted.
func (s *GroupService) WatchGroupBalances(ctx context.Context, req *connect.Request[rpc.WatchGroupBalancesRequest], stream *connect.ServerStream[rpc.GroupBalances]) error {
	groupID := req.Msg.GroupID
	slog.Info("WatchGroupBalances request received", "group_id", groupID)

	if groupID == "" {
		return required("group_id")
	}

	// Subscribe before the first read so no change is missed in between.
	changes := s.store.Watch(ctx, groupID)

	metrics.WatchSubscribers.Inc()
	defer metrics.WatchSubscribers.Dec()

	send := func() error {
		balances, err := s.balances(ctx, groupID)
		if err != nil {
			return storageError(err)
		}
		return stream.Send(balances)
	}

	if err := send(); err != nil {
		slog.Error("WatchGroupBalances failed", "group_id", groupID, "error", err)
		return err
	}

	sent := 1
	for {
		select {
		case <-ctx.Done():
			slog.Info("WatchGroupBalances ended", "group_id", groupID, "messages", sent)
			return nil
		case _, ok := <-changes:
			if !ok {
				slog.Info("WatchGroupBalances ended - store closed", "group_id", groupID, "messages", sent)
				return nil
			}
			drain(changes)
			if err := send(); err != nil {
				slog.Warn("WatchGroupBalances stopped", "group_id", groupID, "error", err)
				return err
			}
			sent++
		}
	}
}

// drain discards changes that are already buffered.
func drain(changes <-chan storage.Change) {
	for {
		select {
		case _, ok := <-changes:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
