// Package repository implements PostgreSQL persistence for the domain
// entities.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/evaristomat/lol-v2/internal/database"
	"github.com/evaristomat/lol-v2/internal/models"
)

// TeamRepository persists teams and their provider-name aliases
type TeamRepository struct {
	db *database.DB
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *database.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// GetOrCreate returns the team with the given canonical name, creating
// it when missing.
func (r *TeamRepository) GetOrCreate(ctx context.Context, name string) (*models.Team, error) {
	query := `
		INSERT INTO teams (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at`

	var team models.Team
	err := r.db.Pool.QueryRow(ctx, query, name).Scan(&team.ID, &team.Name, &team.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create team: %w", err)
	}
	return &team, nil
}

// GetByName returns the team with the given canonical name
func (r *TeamRepository) GetByName(ctx context.Context, name string) (*models.Team, error) {
	query := `SELECT id, name, created_at FROM teams WHERE name = $1`

	var team models.Team
	err := r.db.Pool.QueryRow(ctx, query, name).Scan(&team.ID, &team.Name, &team.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return &team, nil
}

// SeedAliases replaces the alias mapping with the configured one.
// Idempotent, called at startup.
func (r *TeamRepository) SeedAliases(ctx context.Context, aliases map[string]string) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for alias, canonical := range aliases {
			_, err := tx.Exec(ctx, `
				INSERT INTO team_aliases (alias, canonical)
				VALUES ($1, $2)
				ON CONFLICT (alias) DO UPDATE SET canonical = EXCLUDED.canonical`,
				alias, canonical)
			if err != nil {
				return fmt.Errorf("failed to seed alias %q: %w", alias, err)
			}
		}
		return nil
	})
}

// Aliases returns the full alias map
func (r *TeamRepository) Aliases(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT alias, canonical FROM team_aliases`)
	if err != nil {
		return nil, fmt.Errorf("failed to list aliases: %w", err)
	}
	defer rows.Close()

	aliases := make(map[string]string)
	for rows.Next() {
		var alias, canonical string
		if err := rows.Scan(&alias, &canonical); err != nil {
			return nil, fmt.Errorf("failed to scan alias: %w", err)
		}
		aliases[alias] = canonical
	}
	return aliases, rows.Err()
}
