package usecase

import (
	"context"
	"net/mail"
	"slices"
	"strings"

	"automarket/internal/domain/entities"
	"automarket/internal/usecase/interfaces"
)

type IProfileUseCase interface {
	Upsert(ctx context.Context, p entities.Profile) (entities.Profile, error)
	Get(ctx context.Context, id string) (entities.Profile, error)
}

type ProfileUseCase struct {
	repo interfaces.IProfileRepository
}

var _ IProfileUseCase = (*ProfileUseCase)(nil)

func NewProfileUseCase(repo interfaces.IProfileRepository) *ProfileUseCase {
	return &ProfileUseCase{repo: repo}
}

func (u *ProfileUseCase) Upsert(ctx context.Context, p entities.Profile) (entities.Profile, error) {
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		return entities.Profile{}, ErrInvalidID
	}
	switch p.Role {
	case entities.RoleCustomer, entities.RolePro, entities.RoleSupplier, entities.RoleStaff:
	default:
		return entities.Profile{}, ErrInvalidRequestData
	}
	p.Email = strings.TrimSpace(p.Email)
	if p.Email != "" {
		if _, err := mail.ParseAddress(p.Email); err != nil {
			return entities.Profile{}, ErrInvalidRequestData
		}
	}
	p.CategoryIDs = normalizeSet(p.CategoryIDs)
	p.ZipCodes = normalizeSet(p.ZipCodes)

	saved, err := u.repo.Upsert(ctx, p)
	if err != nil {
		return entities.Profile{}, storageFailure(err)
	}
	return saved, nil
}

func (u *ProfileUseCase) Get(ctx context.Context, id string) (entities.Profile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Profile{}, ErrInvalidID
	}
	p, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Profile{}, storageFailure(err)
	}
	if p.ID == "" {
		return entities.Profile{}, ErrProfileNotFound
	}
	return p, nil
}

func normalizeSet(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
