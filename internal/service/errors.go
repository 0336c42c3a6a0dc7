package service

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/mmynk/groupledger/internal/ledger"
	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/storage"
)

// storageError maps a storage failure to a Connect error code.
func storageError(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, models.ErrNotMember):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, models.ErrMemberInUse):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

func invalidArgument(err error) error {
	return connect.NewError(connect.CodeInvalidArgument, err)
}

func required(field string) error {
	return invalidArgument(fmt.Errorf("%s required", field))
}

// loadSnapshot reads a group and every record the balance pipeline needs.
func loadSnapshot(ctx context.Context, store storage.Store, groupID string) (*models.Group, ledger.Snapshot, error) {
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, ledger.Snapshot{}, err
	}

	expenses, err := store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return nil, ledger.Snapshot{}, err
	}

	settlements, err := store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		return nil, ledger.Snapshot{}, err
	}

	return group, ledger.Snapshot{
		Members:     group.Members,
		Expenses:    expenses,
		Settlements: settlements,
	}, nil
}
