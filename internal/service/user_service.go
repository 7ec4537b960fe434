package service

import (
	"context"
	"fmt"

	"go-packet-inventory/internal/model"
	"go-packet-inventory/internal/repository"
	"go-packet-inventory/pkg/validator"

	"github.com/google/uuid"
)

// ProfileService lets an authenticated owner read and edit their account.
type ProfileService interface {
	GetProfile(ctx context.Context, ownerID uuid.UUID) (*model.UserResponse, error)
	UpdateProfile(ctx context.Context, ownerID uuid.UUID, req *UpdateProfileRequest) (*model.UserResponse, error)
}

type UpdateProfileRequest struct {
	FullName *string `json:"full_name,omitempty" validate:"omitempty,min=1,max=255"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6"`
}

type profileService struct {
	userRepo repository.UserRepository
}

func NewProfileService(userRepo repository.UserRepository) ProfileService {
	return &profileService{userRepo: userRepo}
}

func (s *profileService) GetProfile(ctx context.Context, ownerID uuid.UUID) (*model.UserResponse, error) {
	if ownerID == uuid.Nil {
		return nil, model.ErrUnauthorized
	}
	user, err := s.userRepo.FindByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, ownerID uuid.UUID, req *UpdateProfileRequest) (*model.UserResponse, error) {
	if ownerID == uuid.Nil {
		return nil, model.ErrUnauthorized
	}
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Password != nil {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}
	user.UpdatedBy = ownerID.String()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	resp := user.ToResponse()
	return &resp, nil
}
