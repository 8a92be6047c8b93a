package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jaekwang-park/todo-app/internal/model"
)

// ErrEmptyPatch is returned by Update when the patch carries no fields.
var ErrEmptyPatch = errors.New("empty patch")

const todoColumns = `id, user_id, text, description, completed, priority, status, due_date, created_at`

type PostgresTodoRepository struct {
	db *sql.DB
}

func NewPostgresTodo(db *sql.DB) *PostgresTodoRepository {
	return &PostgresTodoRepository{db: db}
}

func (r *PostgresTodoRepository) Select(ctx context.Context, userID string) ([]model.Todo, error) {
	query := `
		SELECT ` + todoColumns + `
		FROM todos
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select todos: %w", err)
	}
	defer rows.Close()

	todos := []model.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}

	return todos, nil
}

func (r *PostgresTodoRepository) Insert(ctx context.Context, todo model.Todo) (model.Todo, error) {
	query := `
		INSERT INTO todos (user_id, text, description, completed, priority, status, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + todoColumns

	row := r.db.QueryRowContext(ctx, query,
		todo.UserID, todo.Text, todo.Description, todo.Completed,
		todo.Priority, todo.Status, todo.DueDate,
	)

	return scanTodo(row)
}

func (r *PostgresTodoRepository) Update(ctx context.Context, userID, todoID string, patch model.TodoPatch) (model.Todo, error) {
	query, args, err := buildUpdate(userID, todoID, patch)
	if err != nil {
		return model.Todo{}, err
	}

	row := r.db.QueryRowContext(ctx, query, args...)
	return scanTodo(row)
}

func (r *PostgresTodoRepository) Delete(ctx context.Context, userID, todoID string) error {
	query := `DELETE FROM todos WHERE id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, todoID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// buildUpdate renders an UPDATE statement touching only the patch's fields.
func buildUpdate(userID, todoID string, patch model.TodoPatch) (string, []any, error) {
	if patch.IsEmpty() {
		return "", nil, ErrEmptyPatch
	}

	var sets []string
	var args []any
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Text != nil {
		set("text", *patch.Text)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Completed != nil {
		set("completed", *patch.Completed)
	}
	if patch.Priority != nil {
		set("priority", string(*patch.Priority))
	}
	if patch.Status != nil {
		set("status", string(*patch.Status))
	}
	if patch.ClearDueDate {
		sets = append(sets, "due_date = NULL")
	} else if patch.DueDate != nil {
		set("due_date", *patch.DueDate)
	}

	args = append(args, todoID, userID)
	query := fmt.Sprintf(`
		UPDATE todos
		SET %s
		WHERE id = $%d AND user_id = $%d
		RETURNING %s`,
		strings.Join(sets, ", "), len(args)-1, len(args), todoColumns)

	return query, args, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanTodo(row scannable) (model.Todo, error) {
	var t model.Todo
	var description sql.NullString
	var dueDate sql.NullTime
	err := row.Scan(
		&t.ID, &t.UserID, &t.Text, &description, &t.Completed,
		&t.Priority, &t.Status, &dueDate, &t.CreatedAt,
	)
	if err != nil {
		return model.Todo{}, fmt.Errorf("failed to scan todo: %w", err)
	}
	t.Description = description.String
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	return t, nil
}

// ensure compile-time interface compliance
var _ TodoRepository = (*PostgresTodoRepository)(nil)
