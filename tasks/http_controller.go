package tasks

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/samber/oops"

	auth "github.com/goliatone/go-task-auth"
	"github.com/goliatone/go-task-auth/imaging"
	"github.com/goliatone/go-task-auth/storage"
)

// Controller serves the task endpoints. Every handler runs behind the
// authentication gate and only ever sees the caller's tasks.
type Controller struct {
	Repo      Repository
	Objects   storage.Store
	Logger    auth.Logger
	MaxUpload int64
}

// CreateRequest is the task creation payload
type CreateRequest struct {
	Description string `json:"description" form:"description"`
	Completed   bool   `json:"completed" form:"completed"`
}

// NewController returns a controller
func NewController(repo Repository, objects storage.Store, logger auth.Logger) *Controller {
	if objects == nil {
		objects = storage.NewMemoryStore()
	}
	return &Controller{
		Repo:      repo,
		Objects:   objects,
		Logger:    logger,
		MaxUpload: imaging.DefaultMaxBytes,
	}
}

// RegisterRoutes mounts the task endpoints behind gate
func RegisterRoutes(app fiber.Router, gate fiber.Handler, tc *Controller) {
	group := app.Group("/tasks", gate)
	group.Post("/", tc.Create)
	group.Get("/", tc.List)
	group.Get("/:id", tc.Get)
	group.Patch("/:id", tc.Update)
	group.Delete("/:id", tc.Delete)
	group.Get("/:id/picture", tc.Picture)
}

func (tc *Controller) owner(c *fiber.Ctx) (uuid.UUID, error) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return uuid.Nil, auth.ErrIdentityNotFound
	}
	return user.ID, nil
}

func (tc *Controller) Create(c *fiber.Ctx) error {
	ownerID, err := tc.owner(c)
	if err != nil {
		return auth.WriteError(c, tc.Logger, err)
	}

	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return auth.WriteError(c, tc.Logger, auth.ErrUnableToParseData)
	}

	task := &Task{
		ID:          uuid.New(),
		Description: req.Description,
		Completed:   req.Completed,
		OwnerID:     ownerID,
	}

	if isMultipart(c) {
		if fh, ferr := c.FormFile("picture"); ferr == nil {
			data, err := auth.ReadUpload(fh, tc.MaxUpload)
			if err != nil {
				return auth.WriteError(c, tc.Logger, err)
			}
			if err := tc.storePicture(c.UserContext(), task, fh.Filename, data); err != nil {
				return auth.WriteError(c, tc.Logger, err)
			}
		}
	}

	created, err := tc.Repo.Create(c.UserContext(), task)
	if err != nil {
		tc.dropPicture(c.UserContext(), task)
		return auth.WriteError(c, tc.Logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(NewView(created))
}

func (tc *Controller) List(c *fiber.Ctx) error {
	ownerID, err := tc.owner(c)
	if err != nil {
		return auth.WriteError(c, tc.Logger, err)
	}

	q := ParseQuery(c.Query("completed"), c.Query("limit"), c.Query("skip"), c.Query("sortBy"))

	records, err := tc.Repo.ListOwned(c.UserContext(), ownerID, q)
	if err != nil {
		return auth.WriteError(c, tc.Logger, err)
	}

	out := make([]View, 0, len(records))
	for _, t := range records {
		out = append(out, NewView(t))
	}
	return c.JSON(out)
}

func (tc *Controller) Get(c *fiber.Ctx) error {
	ownerID, err := tc.owner(c)
	if err != nil {
		return auth.WriteError(c, tc.Logger, err)
	}

	task, err := tc.Repo.GetOwned(c.UserContext(), ownerID, c.Params("id"))
	if err != nil {
		return auth.WriteError(c, tc.Logger, err)
	}
	return c.JSON(NewView(task))
}

func (tc *Controller) Update(c *fiber.Ctx) error {
	ownerID, err := tc.owner(c)
	if err != nil {
		return auth.WriteError(c, tc.Logger, err)
	}

	updates := map[string]any{}
	if err := c.BodyParser(&updates); err != nil {
		return auth.WriteError(c, tc.Logger, auth.ErrUnableToParseData)
	}

	task, err := tc.Repo.GetOwned(c.UserContext(), ownerID, c.Params("id"))
	if err != nil {
		return auth.WriteError(c, tc.Logger, err)
	}

	if err := ApplyUpdates(task, updates); err != nil {
		return auth.WriteError(c, tc.Logger, err)
	}

	updated, err := tc.Repo.UpdateOwned(c.UserContext(), ownerID, task)
	if err != nil {
		return auth.WriteError(c, tc.Logger, err)
	}
	return c.JSON(NewView(updated))
}

func (tc *Controller) Delete(c *fiber.Ctx) error {
	ownerID, err := tc.owner(c)
	if err != nil {
		return auth.WriteError(c, tc.Logger, err)
	}

	task, err := tc.Repo.DeleteOwned(c.UserContext(), ownerID, c.Params("id"))
	if err != nil {
		return auth.WriteError(c, tc.Logger, err)
	}

	tc.dropPicture(c.UserContext(), task)
	return c.JSON(NewView(task))
}

func (tc *Controller) Picture(c *fiber.Ctx) error {
	ownerID, err := tc.owner(c)
	if err != nil {
		return auth.WriteError(c, tc.Logger, err)
	}

	task, err := tc.Repo.GetOwned(c.UserContext(), ownerID, c.Params("id"))
	if err != nil {
		return auth.WriteError(c, tc.Logger, err)
	}
	if !task.HasPicture() {
		return auth.WriteError(c, tc.Logger, ErrNotFound)
	}

	obj, err := tc.Objects.Get(c.UserContext(), task.PictureKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return auth.WriteError(c, tc.Logger, ErrNotFound)
		}
		return auth.WriteError(c, tc.Logger, err)
	}

	c.Set(fiber.HeaderContentType, obj.ContentType)
	return c.Send(obj.Data)
}

func (tc *Controller) storePicture(ctx context.Context, task *Task, filename string, data []byte) error {
	thumb, err := imaging.Thumbnail(filename, data, tc.MaxUpload)
	if err != nil {
		return err
	}

	key := "tasks/" + task.ID.String() + ".png"
	if err := tc.Objects.Put(ctx, key, storage.Object{Data: thumb, ContentType: imaging.ContentType}); err != nil {
		return oops.Code("TASK_PICTURE_STORE_FAILED").With("task_id", task.ID).Wrap(err)
	}
	task.PictureKey = key
	return nil
}

func (tc *Controller) dropPicture(ctx context.Context, task *Task) {
	if task == nil || task.PictureKey == "" {
		return
	}
	if err := tc.Objects.Delete(ctx, task.PictureKey); err != nil {
		auth.LogError(tc.Logger, "task picture cleanup failed", err)
	}
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}
