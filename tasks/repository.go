package tasks

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"
	"github.com/uptrace/bun"

	auth "github.com/goliatone/go-task-auth"
)

// CodeTasksStore tags wrapped task storage failures
const CodeTasksStore = "TASKS_STORE_FAILED"

// ErrNotFound is returned for missing tasks and tasks owned by someone else
var ErrNotFound = auth.ErrNotFound

// Repository is the owner scoped task store
type Repository interface {
	Create(ctx context.Context, task *Task) (*Task, error)
	GetOwned(ctx context.Context, ownerID uuid.UUID, id string) (*Task, error)
	ListOwned(ctx context.Context, ownerID uuid.UUID, q Query) ([]*Task, error)
	UpdateOwned(ctx context.Context, ownerID uuid.UUID, task *Task) (*Task, error)
	DeleteOwned(ctx context.Context, ownerID uuid.UUID, id string) (*Task, error)
}

type repository struct {
	db  bun.IDB
	now func() time.Time
}

var _ Repository = (*repository)(nil)

// NewRepository returns a bun backed Repository
func NewRepository(db bun.IDB) Repository {
	return &repository{db: db, now: time.Now}
}

func (r *repository) Create(ctx context.Context, task *Task) (*Task, error) {
	if err := prepareTaskForWrite(task); err != nil {
		return nil, err
	}
	if task.OwnerID == uuid.Nil {
		return nil, auth.ErrIdentityNotFound
	}
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	now := r.now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	if _, err := r.db.NewInsert().Model(task).Exec(ctx); err != nil {
		return nil, r.mapError(err, "create")
	}
	return task, nil
}

func (r *repository) GetOwned(ctx context.Context, ownerID uuid.UUID, id string) (*Task, error) {
	tid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	record := &Task{}
	err = r.db.NewSelect().
		Model(record).
		Apply(OwnedBy(ownerID)).
		Where("?TableAlias.id = ?", tid).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, r.mapError(err, "get")
	}
	return record, nil
}

func (r *repository) ListOwned(ctx context.Context, ownerID uuid.UUID, q Query) ([]*Task, error) {
	records := []*Task{}
	err := r.db.NewSelect().
		Model(&records).
		Apply(OwnedBy(ownerID)).
		Apply(q.Apply).
		Scan(ctx)
	if err != nil {
		return nil, r.mapError(err, "list")
	}
	return records, nil
}

func (r *repository) UpdateOwned(ctx context.Context, ownerID uuid.UUID, task *Task) (*Task, error) {
	if task == nil || task.ID == uuid.Nil {
		return nil, ErrNotFound
	}
	if err := prepareTaskForWrite(task); err != nil {
		return nil, err
	}
	task.UpdatedAt = r.now().UTC()

	res, err := r.db.NewUpdate().
		Model(task).
		Column("description", "completed", "picture_key", "updated_at").
		Where("id = ?", task.ID).
		Where("owner_id = ?", ownerID).
		Exec(ctx)
	if err != nil {
		return nil, r.mapError(err, "update")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return task, nil
}

func (r *repository) DeleteOwned(ctx context.Context, ownerID uuid.UUID, id string) (*Task, error) {
	task, err := r.GetOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	res, err := r.db.NewDelete().
		Model((*Task)(nil)).
		Where("id = ?", task.ID).
		Where("owner_id = ?", ownerID).
		Exec(ctx)
	if err != nil {
		return nil, r.mapError(err, "delete")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return task, nil
}

func (r *repository) mapError(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return oops.Code(CodeTasksStore).With("operation", op).Wrap(err)
}
