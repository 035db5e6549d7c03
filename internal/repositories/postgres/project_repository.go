package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"crowdfund-go/internal/model"
	"crowdfund-go/internal/repositories"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const projectColumns = `p.id, p.title, p.category, p.creator_id, p.created_at, p.pledge_goal, p.collected, p.description, p.active,
	COALESCE((SELECT array_agg(b.user_id ORDER BY b.backed_at, b.user_id) FROM project_backers b WHERE b.project_id = p.id), '{}')`

type ProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

func (r *ProjectRepository) List(ctx context.Context) ([]model.Project, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+projectColumns+` FROM projects p ORDER BY p.seq`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return collectProjects(rows)
}

func (r *ProjectRepository) ListByCategory(ctx context.Context, category string) ([]model.Project, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+projectColumns+` FROM projects p WHERE p.category = $1 ORDER BY p.seq`, category)
	if err != nil {
		return nil, fmt.Errorf("list projects by category: %w", err)
	}
	return collectProjects(rows)
}

func (r *ProjectRepository) Get(ctx context.Context, id string) (model.Project, error) {
	project, err := getProject(ctx, r.pool, id)
	if err != nil {
		return model.Project{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT poster_id, body, posted_at FROM project_comments WHERE project_id = $1 ORDER BY id`, id)
	if err != nil {
		return model.Project{}, fmt.Errorf("list comments: %w", err)
	}
	comments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Comment, error) {
		var c model.Comment
		err := row.Scan(&c.PosterID, &c.Text, &c.PostedAt)
		return c, err
	})
	if err != nil {
		return model.Project{}, fmt.Errorf("scan comments: %w", err)
	}
	project.Comments = comments
	return project, nil
}

func (r *ProjectRepository) Create(ctx context.Context, input model.ProjectCreate) (model.Project, error) {
	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `INSERT INTO projects (id, title, category, creator_id, created_at, pledge_goal, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, input.Title, input.Category, input.CreatorID, createdAt, input.PledgeGoal, input.Description,
	)
	if err != nil {
		return model.Project{}, fmt.Errorf("insert project: %w", err)
	}
	return getProject(ctx, r.pool, id)
}

func (r *ProjectRepository) Update(ctx context.Context, id string, input model.ProjectUpdate) (model.Project, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE projects SET title = $2, category = $3, pledge_goal = $4, description = $5 WHERE id = $1`,
		id, input.Title, input.Category, input.PledgeGoal, input.Description,
	)
	if err != nil {
		return model.Project{}, fmt.Errorf("update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.Project{}, repositories.ErrNotFound
	}
	return getProject(ctx, r.pool, id)
}

func (r *ProjectRepository) Donate(ctx context.Context, id string, amount float64, backerID string) (model.Project, error) {
	var project model.Project
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE projects SET collected = collected + $2 WHERE id = $1 AND active`, id, amount)
		if err != nil {
			return fmt.Errorf("increment collected: %w", err)
		}
		if tag.RowsAffected() == 0 {
			var active bool
			err := tx.QueryRow(ctx, `SELECT active FROM projects WHERE id = $1`, id).Scan(&active)
			if errors.Is(err, pgx.ErrNoRows) {
				return repositories.ErrNotFound
			}
			if err != nil {
				return fmt.Errorf("load project state: %w", err)
			}
			return repositories.ErrInactive
		}

		if _, err := tx.Exec(ctx, `INSERT INTO project_backers (project_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, id, backerID); err != nil {
			return fmt.Errorf("record backer: %w", err)
		}

		project, err = getProject(ctx, tx, id)
		return err
	})
	if err != nil {
		return model.Project{}, err
	}
	return project, nil
}

func (r *ProjectRepository) AddComment(ctx context.Context, id string, comment model.Comment) (model.Comment, error) {
	if comment.PostedAt.IsZero() {
		comment.PostedAt = time.Now()
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO project_comments (project_id, poster_id, body, posted_at) VALUES ($1, $2, $3, $4)`,
		id, comment.PosterID, comment.Text, comment.PostedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" && pgErr.ConstraintName == "project_comments_project_id_fkey" {
		return model.Comment{}, repositories.ErrNotFound
	}
	if err != nil {
		return model.Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	return comment, nil
}

func (r *ProjectRepository) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE projects SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set project active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func getProject(ctx context.Context, db DBTX, id string) (model.Project, error) {
	row := db.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects p WHERE p.id = $1`, id)
	project, err := scanProject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Project{}, repositories.ErrNotFound
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("get project: %w", err)
	}
	return project, nil
}

func collectProjects(rows pgx.Rows) ([]model.Project, error) {
	projects, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Project, error) {
		return scanProject(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan projects: %w", err)
	}
	return projects, nil
}

func scanProject(row pgx.Row) (model.Project, error) {
	var p model.Project
	err := row.Scan(&p.ID, &p.Title, &p.Category, &p.CreatorID, &p.CreatedAt, &p.PledgeGoal, &p.Collected, &p.Description, &p.Active, &p.Backers)
	if err != nil {
		return model.Project{}, err
	}
	p.Comments = []model.Comment{}
	return p, nil
}
