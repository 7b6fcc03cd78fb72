package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/QinlinChen/StuHub/core"
	"github.com/QinlinChen/StuHub/core/course"
)

const courseColumns = "id, user_id, name, term, category, credit, score, created_at, updated_at"

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo courseRepository) normalize(crs course.Course) course.Course {
	crs.CreatedAt = crs.CreatedAt.UTC()
	crs.UpdatedAt = crs.UpdatedAt.UTC()
	return crs
}

func (repo courseRepository) CreateCourses(ctx context.Context, courses []course.Course) ([]course.Course, error) {
	if len(courses) == 0 {
		return []course.Course{}, nil
	}

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	q := "INSERT INTO courses (" + courseColumns + ") " +
		"VALUES (:id, :user_id, :name, :term, :category, :credit, :score, :created_at, :updated_at)"
	created := make([]course.Course, 0, len(courses))
	for _, crs := range courses {
		crs.ID = uuid.New().String()
		crs = repo.normalize(crs)
		if _, err = tx.NamedExecContext(ctx, q, crs); err != nil {
			return nil, errors.Wrap(err, "inserting course")
		}
		created = append(created, crs)
	}

	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "committing courses")
	}
	return created, nil
}

func (repo courseRepository) where(filter course.QueryFilter) (string, []interface{}) {
	conds := []string{"user_id = ?"}
	args := []interface{}{filter.UserID}
	if filter.Terms.From > 0 {
		conds = append(conds, "term >= ?")
		args = append(args, filter.Terms.From)
	}
	if filter.Terms.To > 0 {
		conds = append(conds, "term <= ?")
		args = append(args, filter.Terms.To)
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (repo courseRepository) QueryCourses(ctx context.Context, filter course.QueryFilter, pagination *core.Pagination) ([]course.Course, int, error) {
	where, args := repo.where(filter)

	var total int
	if err := repo.db.GetContext(ctx, &total, repo.db.Rebind("SELECT COUNT(*) FROM courses"+where), args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting courses")
	}

	q := "SELECT " + courseColumns + " FROM courses" + where + " ORDER BY term DESC, created_at ASC, id ASC"
	if pagination != nil {
		q += " LIMIT ? OFFSET ?"
		args = append(args, pagination.Limit(), pagination.Offset())
	}

	courses := make([]course.Course, 0)
	if err := repo.db.SelectContext(ctx, &courses, repo.db.Rebind(q), args...); err != nil {
		return nil, 0, errors.Wrap(err, "querying courses")
	}
	for i := range courses {
		courses[i] = repo.normalize(courses[i])
	}
	return courses, total, nil
}

func (repo courseRepository) GetCourse(ctx context.Context, userID, id string) (course.Course, error) {
	if _, err := uuid.Parse(id); err != nil {
		return course.Course{}, course.ErrNotFound
	}

	var crs course.Course
	q := "SELECT " + courseColumns + " FROM courses WHERE id = ? AND user_id = ?"
	if err := repo.db.GetContext(ctx, &crs, repo.db.Rebind(q), id, userID); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "finding course")
	}
	return repo.normalize(crs), nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	crs = repo.normalize(crs)
	q := `UPDATE courses
SET name = :name, term = :term, category = :category, credit = :credit, score = :score, updated_at = :updated_at
WHERE id = :id AND user_id = :user_id`

	res, err := repo.db.NamedExecContext(ctx, q, crs)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return crs, nil
}

func (repo courseRepository) DeleteCourse(ctx context.Context, userID, id string) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM courses WHERE id = ? AND user_id = ?"), id, userID)
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "deleting course")
	}
	if n == 0 {
		return course.ErrNotFound
	}
	return nil
}
