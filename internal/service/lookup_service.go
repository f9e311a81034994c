package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AhmedTrying/malaysiasafd/internal/apperrors"
	"github.com/AhmedTrying/malaysiasafd/internal/models"
	"github.com/AhmedTrying/malaysiasafd/internal/repository"
	"github.com/AhmedTrying/malaysiasafd/pkg/validator"
)

// Resolution is the outcome of mapping free-text category names to catalog ids
type Resolution struct {
	ScamTypeID   *int
	ScamTypeName string
	StateID      *int
	StateName    string
	Unresolved   bool
}

// LookupService provides the scam type and state catalogs
type LookupService struct {
	lookupRepo LookupStore
	audit      *AuditService
}

// NewLookupService creates a new lookup service
func NewLookupService(lookupRepo LookupStore, audit *AuditService) *LookupService {
	return &LookupService{lookupRepo: lookupRepo, audit: audit}
}

// ScamTypes lists the scam type catalog
func (s *LookupService) ScamTypes(ctx context.Context) ([]models.ScamType, error) {
	types, err := s.lookupRepo.ListScamTypes(ctx)
	if err != nil {
		return nil, apperrors.Persistence("list scam types", err)
	}
	return types, nil
}

// States lists the state catalog
func (s *LookupService) States(ctx context.Context) ([]models.State, error) {
	states, err := s.lookupRepo.ListStates(ctx)
	if err != nil {
		return nil, apperrors.Persistence("list states", err)
	}
	return states, nil
}

// Resolve maps names onto catalog ids, case-insensitively. Unknown names do
// not fail: the id stays nil and the result is flagged for the reviewer.
func (s *LookupService) Resolve(ctx context.Context, scamType, state string) (Resolution, error) {
	var res Resolution

	st, err := s.lookupRepo.FindScamTypeByName(ctx, scamType)
	switch {
	case errors.Is(err, repository.ErrLookupNotFound):
		res.Unresolved = true
		slog.Warn("Unknown scam type in submission", "scam_type", scamType)
	case err != nil:
		return res, apperrors.Persistence("resolve scam type", err)
	default:
		res.ScamTypeID = &st.ID
		res.ScamTypeName = st.Name
	}

	loc, err := s.lookupRepo.FindStateByName(ctx, state)
	switch {
	case errors.Is(err, repository.ErrLookupNotFound):
		res.Unresolved = true
		slog.Warn("Unknown state in submission", "state", state)
	case err != nil:
		return res, apperrors.Persistence("resolve state", err)
	default:
		res.StateID = &loc.ID
		res.StateName = loc.Name
	}

	return res, nil
}

// ScamTypeInput is the editable part of a scam type
type ScamTypeInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

func (in *ScamTypeInput) normalize() error {
	in.Name = validator.SanitizeString(in.Name)
	in.Description = validator.SanitizeString(in.Description)
	return validationError(validator.ValidateStruct(in))
}

// CreateScamType adds a catalog entry
func (s *LookupService) CreateScamType(ctx context.Context, actor models.Actor, in ScamTypeInput) (*models.ScamType, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	st := &models.ScamType{Name: in.Name, Description: in.Description}
	if err := s.lookupRepo.CreateScamType(ctx, st); err != nil {
		if errors.Is(err, repository.ErrLookupExists) {
			return nil, apperrors.Conflict(fmt.Sprintf("scam type %q already exists", in.Name), err)
		}
		return nil, apperrors.Persistence("create scam type", err)
	}

	s.audit.Log(ctx, actor, "scam_type.create", "scam_type", fmt.Sprintf("id=%d name=%s", st.ID, st.Name))
	return st, nil
}

// UpdateScamType renames or re-describes a catalog entry
func (s *LookupService) UpdateScamType(ctx context.Context, actor models.Actor, id int, in ScamTypeInput) (*models.ScamType, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	st, err := s.lookupRepo.GetScamType(ctx, id)
	if err != nil {
		return nil, lookupError(err, id, "get scam type")
	}

	st.Name = in.Name
	st.Description = in.Description
	if err := s.lookupRepo.UpdateScamType(ctx, st); err != nil {
		if errors.Is(err, repository.ErrLookupExists) {
			return nil, apperrors.Conflict(fmt.Sprintf("scam type %q already exists", in.Name), err)
		}
		return nil, lookupError(err, id, "update scam type")
	}

	s.audit.Log(ctx, actor, "scam_type.update", "scam_type", fmt.Sprintf("id=%d name=%s", st.ID, st.Name))
	return st, nil
}

// DeleteScamType removes an entry no report refers to
func (s *LookupService) DeleteScamType(ctx context.Context, actor models.Actor, id int) error {
	if err := s.lookupRepo.DeleteScamType(ctx, id); err != nil {
		if errors.Is(err, repository.ErrLookupInUse) {
			return apperrors.Conflict("scam type is referenced by existing reports", err)
		}
		return lookupError(err, id, "delete scam type")
	}

	s.audit.Log(ctx, actor, "scam_type.delete", "scam_type", fmt.Sprintf("id=%d", id))
	return nil
}

func lookupError(err error, id int, op string) error {
	if errors.Is(err, repository.ErrLookupNotFound) {
		return apperrors.NotFound("scam type", fmt.Sprint(id))
	}
	return apperrors.Persistence(op, err)
}
