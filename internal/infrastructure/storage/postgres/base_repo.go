package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"gelateria/internal/core/apperror"
	"gelateria/internal/core/id"
	"gelateria/internal/domain"
)

// baseRepo provides common CRUD operations for catalog entities
// (products, materials, clients). Concrete repositories embed it and
// add their own finders and stock mutations.
type baseRepo[T any] struct {
	tm    *TxManager
	table string
	cols  []string

	// searchCols are ILIKE'd against ListFilter.Search
	searchCols []string

	// categoryCol enables ListFilter.Category filtering when set
	categoryCol string

	defaultOrder string

	newFn func() T
}

func newBaseRepo[T any](tm *TxManager, table string, newFn func() T) *baseRepo[T] {
	return &baseRepo[T]{
		tm:           tm,
		table:        table,
		cols:         ExtractDBColumns[T](),
		searchCols:   []string{"name"},
		defaultOrder: "name",
		newFn:        newFn,
	}
}

// Builder returns a squirrel builder with PostgreSQL placeholders.
func (r *baseRepo[T]) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Create inserts a new entity using its "db" tags.
func (r *baseRepo[T]) Create(ctx context.Context, entity T) error {
	data := StructToMap(entity)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	q := r.Builder().
		Insert(r.table).
		SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.tm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewConflict("duplicate value").
				WithDetail("entity", r.table).
				WithCause(err)
		}
		return fmt.Errorf("insert %s: %w", r.table, err)
	}
	return nil
}

// Update modifies an existing entity with optimistic locking. The row
// version must match the entity's; on mismatch the update touches zero
// rows and ConcurrentModification is returned.
func (r *baseRepo[T]) Update(ctx context.Context, entity T) error {
	data := StructToMap(entity)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in entity")
	}

	entityID, ok := data["id"]
	if !ok {
		return fmt.Errorf("entity has no 'id' field with db tag")
	}
	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("entity has no 'version' field or it is not an int")
	}
	delete(data, "id")
	delete(data, "version")
	delete(data, "created_at")
	delete(data, "updated_at")

	q := r.Builder().
		Update(r.table).
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": entityID}).
		Where(squirrel.Eq{"version": version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.tm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.NewConflict("duplicate value").
				WithDetail("entity", r.table).
				WithCause(err)
		}
		return fmt.Errorf("update %s: %w", r.table, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(r.table, entityID)
	}
	return nil
}

func (r *baseRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(r.cols...).
		From(r.table)
}

// GetByID retrieves entity by ID.
func (r *baseRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	entity := r.newFn()

	q := r.baseSelect().
		Where(squirrel.Eq{"id": entityID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.tm.GetQuerier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity, apperror.NewNotFound(r.table, entityID.String())
		}
		return entity, fmt.Errorf("get by id: %w", err)
	}
	return entity, nil
}

// List retrieves entities with filtering and pagination.
func (r *baseRepo[T]) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[T], error) {
	filter.Normalize()
	result := domain.ListResult[T]{
		Page:  filter.Page,
		Limit: filter.Limit,
	}

	q := r.baseSelect()

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		or := make(squirrel.Or, 0, len(r.searchCols))
		for _, col := range r.searchCols {
			or = append(or, squirrel.ILike{col: pattern})
		}
		q = q.Where(or)
	}
	if filter.Category != "" && r.categoryCol != "" {
		q = q.Where(squirrel.Eq{r.categoryCol: filter.Category})
	}
	if len(filter.IDs) > 0 {
		q = q.Where(squirrel.Eq{"id": filter.IDs})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.DateTo})
	}

	// Count before pagination
	countQ := r.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub")

	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.tm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.Total); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := r.parseOrderBy(filter.OrderBy)
	if err != nil {
		return result, err
	}
	q = q.OrderBy(orderBy).
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset()))

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list: %w", err)
	}
	return result, nil
}

// Exists checks if entity with given ID exists.
func (r *baseRepo[T]) Exists(ctx context.Context, entityID id.ID) (bool, error) {
	q := r.Builder().
		Select("1").
		From(r.table).
		Where(squirrel.Eq{"id": entityID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists int
	err = r.tm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}
	return true, nil
}

// Delete performs physical removal from the database.
func (r *baseRepo[T]) Delete(ctx context.Context, entityID id.ID) error {
	q := r.Builder().
		Delete(r.table).
		Where(squirrel.Eq{"id": entityID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.tm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NewConflict("cannot delete: record is referenced elsewhere").
				WithDetail("entity", r.table).
				WithDetail("id", entityID.String()).
				WithCause(err)
		}
		return fmt.Errorf("delete %s: %w", r.table, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.table, entityID.String())
	}
	return nil
}

// FindOne executes a SELECT and returns a single entity.
func (r *baseRepo[T]) FindOne(ctx context.Context, q squirrel.SelectBuilder) (T, error) {
	entity := r.newFn()

	sql, args, err := q.ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.tm.GetQuerier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity, apperror.NewNotFound(r.table, "matching query")
		}
		return entity, fmt.Errorf("find one: %w", err)
	}
	return entity, nil
}

// parseOrderBy validates orderBy against the column whitelist.
// "-field" sorts descending.
func (r *baseRepo[T]) parseOrderBy(orderBy string) (string, error) {
	if orderBy == "" {
		return r.defaultOrder + " ASC", nil
	}

	direction := "ASC"
	field := orderBy
	if strings.HasPrefix(orderBy, "-") {
		direction = "DESC"
		field = strings.TrimPrefix(orderBy, "-")
	} else if strings.HasPrefix(orderBy, "+") {
		field = strings.TrimPrefix(orderBy, "+")
	}

	field = strings.TrimSpace(field)
	allowed := false
	for _, col := range r.cols {
		if col == field {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", apperror.NewValidation("invalid orderBy").
			WithDetail("orderBy", orderBy).
			WithDetail("field", field)
	}
	return field + " " + direction, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
