package driver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"delivery-dispatch/internal/apperr"
	"delivery-dispatch/internal/domain"
	"delivery-dispatch/internal/logx"
)

// Service coordinates driver registration and lookups.
type Service struct {
	repo             driverRepository
	operationTimeout time.Duration
	logger           logx.Logger
}

// NewService creates and configures a driver Service.
func NewService(r driverRepository, timeout time.Duration, logger logx.Logger) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{repo: r, operationTimeout: timeout, logger: logger}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// validateRegister validates a driver for registration.
func validateRegister(name, phone string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required: %w", apperr.ErrInvalid)
	}
	if !domain.ValidatePhone(phone) {
		return fmt.Errorf("phone %q: %w", phone, apperr.ErrInvalid)
	}
	return nil
}

// Register adds a new available driver.
func (s *Service) Register(ctx context.Context, name, phone string) (domain.Driver, error) {
	name, phone = strings.TrimSpace(name), strings.TrimSpace(phone)
	if err := validateRegister(name, phone); err != nil {
		return domain.Driver{}, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	d := domain.Driver{Name: name, Phone: phone}
	if err := s.repo.CreateDriver(ctx, &d); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return domain.Driver{}, fmt.Errorf("phone %s already registered: %w", phone, apperr.ErrConflict)
		}
		return domain.Driver{}, err
	}

	s.logger.Info("driver registered",
		logx.String("event", "driver_registered"),
		logx.Int64("driver_id", d.ID),
	)
	return d, nil
}

// Get retrieves a driver by its ID.
func (s *Service) Get(ctx context.Context, id int64) (domain.Driver, error) {
	if id <= 0 {
		return domain.Driver{}, apperr.ErrInvalid
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	d, err := s.repo.GetDriver(ctx, id)
	if err != nil {
		return domain.Driver{}, err
	}
	if d == nil {
		return domain.Driver{}, fmt.Errorf("driver %d: %w", id, apperr.ErrNotFound)
	}
	return *d, nil
}

// List returns drivers with optional availability filter and pagination.
func (s *Service) List(ctx context.Context, f domain.DriverFilter) ([]domain.Driver, error) {
	if (f.Limit != nil && *f.Limit < 0) || (f.Offset != nil && *f.Offset < 0) {
		return nil, apperr.ErrInvalid
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.repo.ListDrivers(ctx, f)
}
