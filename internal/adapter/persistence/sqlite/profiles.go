package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"automarket/internal/domain/entities"
	"automarket/internal/usecase/interfaces"
)

const profileColumns = `id,role,name,email,category_ids,zip_codes,active`

type ProfileRepository struct {
	db *sql.DB
}

var _ interfaces.IProfileRepository = (*ProfileRepository)(nil)

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func scanProfile(row scanner) (entities.Profile, error) {
	var (
		p          entities.Profile
		cats, zips string
	)
	if err := row.Scan(&p.ID, &p.Role, &p.Name, &p.Email, &cats, &zips, &p.Active); err != nil {
		return entities.Profile{}, err
	}
	if err := json.Unmarshal([]byte(cats), &p.CategoryIDs); err != nil {
		return entities.Profile{}, err
	}
	if err := json.Unmarshal([]byte(zips), &p.ZipCodes); err != nil {
		return entities.Profile{}, err
	}
	return p, nil
}

func marshalSet(in []string) (string, error) {
	if in == nil {
		in = []string{}
	}
	b, err := json.Marshal(in)
	return string(b), err
}

func (s *ProfileRepository) Upsert(ctx context.Context, p entities.Profile) (entities.Profile, error) {
	cats, err := marshalSet(p.CategoryIDs)
	if err != nil {
		return entities.Profile{}, err
	}
	zips, err := marshalSet(p.ZipCodes)
	if err != nil {
		return entities.Profile{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO profiles(`+profileColumns+`) VALUES (?,?,?,?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET role=excluded.role, name=excluded.name, email=excluded.email,
		   category_ids=excluded.category_ids, zip_codes=excluded.zip_codes, active=excluded.active`,
		p.ID, p.Role, p.Name, p.Email, cats, zips, p.Active)
	if err != nil {
		return entities.Profile{}, err
	}
	return p, nil
}

func (s *ProfileRepository) GetByID(ctx context.Context, id string) (entities.Profile, error) {
	p, err := scanProfile(s.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return entities.Profile{}, nil
	}
	return p, err
}

func (s *ProfileRepository) ListEligiblePros(ctx context.Context, categoryID, zip string) ([]entities.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles p
		WHERE p.role=? AND p.active=1
		  AND EXISTS (SELECT 1 FROM json_each(p.category_ids) WHERE value=?)
		  AND EXISTS (SELECT 1 FROM json_each(p.zip_codes) WHERE value=?)
		ORDER BY p.id`,
		entities.RolePro, categoryID, zip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []entities.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	return res, rows.Err()
}
