package models

import "errors"

var (
	ErrEmptyName        = errors.New("name can't be empty")
	ErrEmptyDescription = errors.New("description can't be empty")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrMissingPayer     = errors.New("paid_by is required")
	ErrEmptySharedBy    = errors.New("shared_by must name at least one member")
	ErrMissingGroup     = errors.New("group_id is required")
	ErrMissingParty     = errors.New("from_user_id and to_user_id are required")
	ErrSelfSettlement   = errors.New("a member can't settle up with themselves")
	ErrEmptyMemberID    = errors.New("member user_id can't be empty")
	ErrDuplicateMember  = errors.New("member user_id must be unique within a group")
	ErrInvalidDate      = errors.New("date must be formatted as YYYY-MM-DD")
	ErrNotMember        = errors.New("not a member of the group")
	ErrMemberInUse      = errors.New("member is referenced by expenses or settlements")
)
