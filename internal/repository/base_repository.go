package repository

import (
	"context"
	"errors"
	"fmt"

	appErr "github.com/stackhook/engine/pkg/errors"
	"gorm.io/gorm"
)

// BaseRepository defines common CRUD operations.
type BaseRepository[T any] interface {
	Create(ctx context.Context, obj *T) error
	GetByID(ctx context.Context, id any, dest *T) error
	Delete(ctx context.Context, id any) error
}

type baseRepository[T any] struct {
	db     *gorm.DB
	entity string
}

// NewBaseRepository returns CRUD helpers for T; entity names T in error messages.
func NewBaseRepository[T any](db *gorm.DB, entity string) BaseRepository[T] {
	return newBaseRepository[T](db, entity)
}

func newBaseRepository[T any](db *gorm.DB, entity string) *baseRepository[T] {
	return &baseRepository[T]{db: db, entity: entity}
}

func (r *baseRepository[T]) Create(ctx context.Context, obj *T) error {
	if err := r.db.WithContext(ctx).Create(obj).Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, fmt.Sprintf("create %s failed", r.entity))
	}
	return nil
}

func (r *baseRepository[T]) GetByID(ctx context.Context, id any, dest *T) error {
	return r.first(ctx, dest, "id = ?", id)
}

func (r *baseRepository[T]) Delete(ctx context.Context, id any) error {
	var t T
	res := r.db.WithContext(ctx).Delete(&t, "id = ?", id)
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, fmt.Sprintf("delete %s failed", r.entity))
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, fmt.Sprintf("%s %v not found", r.entity, id))
	}
	return nil
}

// first loads the first row matching query into dest.
func (r *baseRepository[T]) first(ctx context.Context, dest *T, query string, args ...any) error {
	if err := r.db.WithContext(ctx).Where(query, args...).First(dest).Error; err != nil {
		return notFoundOr(err, r.entity+" not found", "get "+r.entity+" failed")
	}
	return nil
}

// notFoundOr maps gorm.ErrRecordNotFound to CodeNotFound and anything else
// to CodeInternal.
func notFoundOr(err error, notFound, internal string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return appErr.New(appErr.CodeNotFound, notFound)
	}
	return appErr.Wrap(err, appErr.CodeInternal, internal)
}
