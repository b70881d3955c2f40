package me

import (
	"context"
	"errors"
	"strings"

	"globalstay/internal/app/dto"
	handlersupport "globalstay/internal/app/handlers/support"
	"globalstay/internal/app/queries"
	"globalstay/internal/app/uow"
	domainuser "globalstay/internal/domain/user"
)

const getProfileKey = "me.profile.get"

type GetProfileQuery struct {
	UserID string
}

func (q GetProfileQuery) Key() string { return getProfileKey }

type GetProfileHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetProfileHandler) Handle(ctx context.Context, q GetProfileQuery) (dto.UserProfile, error) {
	userID := strings.TrimSpace(q.UserID)
	if userID == "" {
		return dto.UserProfile{}, errors.New("user id is required")
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.UserProfile{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	user, err := unit.Users().ByID(execCtx, domainuser.ID(userID))
	if err != nil {
		return dto.UserProfile{}, err
	}
	return dto.MapUserProfile(user), nil
}

var _ queries.Handler[GetProfileQuery, dto.UserProfile] = (*GetProfileHandler)(nil)
