package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/debopam-roy/swaadly-frontend-sub000/internal/models"
	"github.com/go-playground/validator/v10"
)

// AddressBackend is the subset of the API client used for address book management
type AddressBackend interface {
	GetAddresses(ctx context.Context) ([]models.Address, error)
	CreateAddress(ctx context.Context, req models.AddressRequest) (*models.Address, error)
	UpdateAddress(ctx context.Context, id string, req models.AddressRequest) (*models.Address, error)
	DeleteAddress(ctx context.Context, id string) error
	SetDefaultAddress(ctx context.Context, id string) (*models.Address, error)
}

// AddressBook is notified after the saved addresses change
type AddressBook interface {
	ReloadAddresses(ctx context.Context) error
}

// AddressService validates address input and keeps checkout's address list in sync
type AddressService struct {
	backend  AddressBackend
	book     AddressBook
	validate *validator.Validate
}

// NewAddressService creates a new address service. book may be nil.
func NewAddressService(backend AddressBackend, book AddressBook) *AddressService {
	return &AddressService{
		backend:  backend,
		book:     book,
		validate: newValidator(),
	}
}

func (s *AddressService) List(ctx context.Context) ([]models.Address, error) {
	return s.backend.GetAddresses(ctx)
}

// Create validates and saves a new address
func (s *AddressService) Create(ctx context.Context, req models.AddressRequest) (*models.Address, error) {
	req = normalizeAddress(req)
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}

	address, err := s.backend.CreateAddress(ctx, req)
	if err != nil {
		return nil, err
	}
	s.reload(ctx)
	return address, nil
}

// Update validates and replaces an existing address
func (s *AddressService) Update(ctx context.Context, id string, req models.AddressRequest) (*models.Address, error) {
	req = normalizeAddress(req)
	if err := validateRequest(s.validate, req); err != nil {
		return nil, err
	}

	address, err := s.backend.UpdateAddress(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.reload(ctx)
	return address, nil
}

func (s *AddressService) Delete(ctx context.Context, id string) error {
	if err := s.backend.DeleteAddress(ctx, id); err != nil {
		return err
	}
	s.reload(ctx)
	return nil
}

func (s *AddressService) SetDefault(ctx context.Context, id string) (*models.Address, error) {
	address, err := s.backend.SetDefaultAddress(ctx, id)
	if err != nil {
		return nil, err
	}
	s.reload(ctx)
	return address, nil
}

// reload refreshes checkout's copy; failures only affect the checkout view
func (s *AddressService) reload(ctx context.Context) {
	if s.book == nil {
		return
	}
	if err := s.book.ReloadAddresses(ctx); err != nil {
		slog.Warn("Failed to reload addresses after change", "error", err)
	}
}

func normalizeAddress(req models.AddressRequest) models.AddressRequest {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Phone = NormalizePhone(req.Phone)
	req.AddressLine1 = strings.TrimSpace(req.AddressLine1)
	req.AddressLine2 = strings.TrimSpace(req.AddressLine2)
	req.Landmark = strings.TrimSpace(req.Landmark)
	req.City = strings.TrimSpace(req.City)
	req.State = strings.TrimSpace(req.State)
	req.Pincode = strings.TrimSpace(req.Pincode)
	req.AddressType = strings.ToUpper(strings.TrimSpace(req.AddressType))
	return req
}
