package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KabriAcid/ammamricemill-sub002/internal/apperrors"
	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	portsrepo "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/repositories"
	portssvc "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/services"
)

// ReferenceValidator checks kind-specific rules before an entity is written.
type ReferenceValidator[T domain.Referenced] func(ctx context.Context, entity T) error

// referenceService implements the CRUD shared by categories, products,
// stores, designations, parties, account heads and employees.
type referenceService[T domain.Referenced] struct {
	BaseService
	kind     domain.ReferenceKind
	repo     portsrepo.ReferenceRepository[T]
	validate ReferenceValidator[T]
	newID    func() string
	now      func() time.Time
}

// NewReferenceService creates the service for one reference kind. validate may be nil.
func NewReferenceService[T domain.Referenced](kind domain.ReferenceKind, repo portsrepo.ReferenceRepository[T], validate ReferenceValidator[T]) portssvc.ReferenceSvc[T] {
	return newReferenceService(kind, repo, validate, uuid.NewString, func() time.Time { return time.Now().UTC() })
}

func newReferenceService[T domain.Referenced](kind domain.ReferenceKind, repo portsrepo.ReferenceRepository[T], validate ReferenceValidator[T], newID func() string, now func() time.Time) *referenceService[T] {
	return &referenceService[T]{kind: kind, repo: repo, validate: validate, newID: newID, now: now}
}

var _ portssvc.ReferenceSvc[*domain.Category] = (*referenceService[*domain.Category])(nil)

func (s *referenceService[T]) Create(ctx context.Context, entity T, userID string) (T, error) {
	var zero T
	base := entity.Ref()
	base.ID = s.newID()
	base.Name = strings.TrimSpace(base.Name)
	if base.Status == "" {
		base.Status = domain.LifecycleActive
	}
	base.AuditFields = domain.NewAuditFields(userID, s.now())

	if err := s.check(ctx, entity); err != nil {
		return zero, err
	}
	if err := s.repo.Save(ctx, entity); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) && !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to save reference", slog.String("kind", string(s.kind)))
		}
		return zero, err
	}

	s.LogInfo(ctx, "Reference created", slog.String("kind", string(s.kind)), slog.String("id", base.ID))
	return entity, nil
}

func (s *referenceService[T]) Get(ctx context.Context, id string) (T, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *referenceService[T]) List(ctx context.Context, filter domain.ReferenceFilter) ([]T, int, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list references", slog.String("kind", string(s.kind)))
		return nil, 0, err
	}
	return items, total, nil
}

func (s *referenceService[T]) Update(ctx context.Context, id string, changes portssvc.ReferenceChanges[T], userID string) (T, error) {
	var zero T
	entity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return zero, err
	}

	changes.ApplyTo(entity)
	base := entity.Ref()
	base.ID = id
	base.Name = strings.TrimSpace(base.Name)
	if !base.Status.IsValid() {
		return zero, apperrors.NewValidationError("unknown status %q", base.Status)
	}
	base.Touch(userID, s.now())

	if err := s.check(ctx, entity); err != nil {
		return zero, err
	}
	if err := s.repo.Update(ctx, entity); err != nil {
		return zero, err
	}

	s.LogInfo(ctx, "Reference updated", slog.String("kind", string(s.kind)), slog.String("id", id))
	return entity, nil
}

func (s *referenceService[T]) Deactivate(ctx context.Context, ids []string, userID string) error {
	if len(ids) == 0 {
		return apperrors.NewValidationError("at least one id is required")
	}
	if err := s.repo.Deactivate(ctx, ids, userID, s.now()); err != nil {
		return err
	}
	s.LogInfo(ctx, "References deactivated", slog.String("kind", string(s.kind)), slog.Int("count", len(ids)))
	return nil
}

// check runs the name rules and the kind validator. Only active rows take part
// in name uniqueness.
func (s *referenceService[T]) check(ctx context.Context, entity T) error {
	base := entity.Ref()
	if base.Name == "" {
		return apperrors.NewValidationError("name is required")
	}
	if s.validate != nil {
		if err := s.validate(ctx, entity); err != nil {
			return err
		}
	}
	if base.Status != domain.LifecycleActive {
		return nil
	}
	exists, err := s.repo.ActiveNameExists(ctx, base.Name, base.ID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: an active %s named %q already exists", apperrors.ErrDuplicate, s.kind, base.Name)
	}
	return nil
}

// requireActive fails with a validation error when the referenced row is
// missing or inactive.
func requireActive[P domain.Referenced](ctx context.Context, repo portsrepo.ReferenceReader[P], kind domain.ReferenceKind, id string) error {
	parent, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewValidationError("%s %s does not exist", kind, id)
		}
		return err
	}
	if parent.Ref().Status != domain.LifecycleActive {
		return apperrors.NewValidationError("%s %s is inactive", kind, parent.Ref().Name)
	}
	return nil
}

// ProductValidator requires an active category and a known price basis.
func ProductValidator(categories portsrepo.ReferenceReader[*domain.Category]) ReferenceValidator[*domain.Product] {
	return func(ctx context.Context, p *domain.Product) error {
		if p.PriceBasis == "" {
			p.PriceBasis = domain.PriceByQuantity
		}
		if !p.PriceBasis.IsValid() {
			return apperrors.NewValidationError("unknown price basis %q", p.PriceBasis)
		}
		if strings.TrimSpace(p.CategoryID) == "" {
			return apperrors.NewValidationError("categoryId is required")
		}
		return requireActive(ctx, categories, domain.KindCategory, p.CategoryID)
	}
}

// GodownValidator rejects a negative capacity.
func GodownValidator() ReferenceValidator[*domain.Godown] {
	return func(_ context.Context, g *domain.Godown) error {
		if g.Capacity.IsNegative() {
			return apperrors.NewValidationError("capacity cannot be negative")
		}
		return nil
	}
}

// SiloValidator requires the parent godown, when set, to be active.
func SiloValidator(godowns portsrepo.ReferenceReader[*domain.Godown]) ReferenceValidator[*domain.Silo] {
	return func(ctx context.Context, s *domain.Silo) error {
		if s.Capacity.IsNegative() {
			return apperrors.NewValidationError("capacity cannot be negative")
		}
		if s.GodownID == nil || *s.GodownID == "" {
			s.GodownID = nil
			return nil
		}
		return requireActive(ctx, godowns, domain.KindGodown, *s.GodownID)
	}
}

// PartyValidator checks the party type. The balance column is never written
// through this path.
func PartyValidator() ReferenceValidator[*domain.Party] {
	return func(_ context.Context, p *domain.Party) error {
		if !p.PartyType.IsValid() {
			return apperrors.NewValidationError("unknown party type %q", p.PartyType)
		}
		return nil
	}
}

// AccountHeadValidator checks the head type set by the route.
func AccountHeadValidator() ReferenceValidator[*domain.AccountHead] {
	return func(_ context.Context, h *domain.AccountHead) error {
		if !h.HeadType.IsValid() {
			return apperrors.NewValidationError("unknown head type %q", h.HeadType)
		}
		return nil
	}
}

// EmployeeValidator requires a non-negative wage and an active designation when one is set.
func EmployeeValidator(designations portsrepo.ReferenceReader[*domain.Designation]) ReferenceValidator[*domain.Employee] {
	return func(ctx context.Context, e *domain.Employee) error {
		if e.DailyWage.IsNegative() {
			return apperrors.NewValidationError("dailyWage cannot be negative")
		}
		if e.JoinDate != nil {
			d := domain.TruncateToDate(*e.JoinDate)
			e.JoinDate = &d
		}
		if e.DesignationID == nil || *e.DesignationID == "" {
			e.DesignationID = nil
			return nil
		}
		return requireActive(ctx, designations, domain.KindDesignation, *e.DesignationID)
	}
}
