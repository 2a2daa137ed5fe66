package repositories

import (
	"context"
	"fmt"

	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/db"
	"github.com/yigit/unimag/internal/pkg/logger"
)

// RoleRepository reads and seeds the roles table
type RoleRepository struct {
	db db.Querier
}

// NewRoleRepository creates a new RoleRepository
func NewRoleRepository(q db.Querier) *RoleRepository {
	return &RoleRepository{db: q}
}

// GetAll returns the stored role definitions ordered by ID
func (r *RoleRepository) GetAll(ctx context.Context) ([]models.RoleDefinition, error) {
	sql, args, err := psql.Select("role_id", "role_code", "role_name", "COALESCE(description, '')").
		From("roles").
		OrderBy("role_id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get roles SQL")
		return nil, err
	}

	rows, err := conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing get roles query")
		return nil, fmt.Errorf("error retrieving roles: %w", err)
	}
	defer rows.Close()

	roles := make([]models.RoleDefinition, 0, 4)
	for rows.Next() {
		var def models.RoleDefinition
		if err := rows.Scan(&def.ID, &def.Code, &def.Name, &def.Description); err != nil {
			return nil, fmt.Errorf("error scanning role: %w", err)
		}
		roles = append(roles, def)
	}
	return roles, rows.Err()
}

// Upsert writes a role definition keyed by its ID
func (r *RoleRepository) Upsert(ctx context.Context, def models.RoleDefinition) error {
	sql, args, err := psql.Insert("roles").
		Columns("role_id", "role_code", "role_name", "description").
		Values(def.ID, def.Code, def.Name, def.Description).
		Suffix("ON CONFLICT (role_id) DO UPDATE SET role_code = EXCLUDED.role_code, role_name = EXCLUDED.role_name, description = EXCLUDED.description").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert role SQL")
		return err
	}

	if _, err := conn(ctx, r.db).Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("role", def.Code).Msg("Error executing upsert role query")
		return fmt.Errorf("error saving role %s: %w", def.Code, err)
	}
	return nil
}
