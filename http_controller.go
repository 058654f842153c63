package auth

import (
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"github.com/goliatone/go-task-auth/imaging"
)

// UserControllerRoutes holds the paths served by UserController
type UserControllerRoutes struct {
	Register  string
	Login     string
	Logout    string
	LogoutAll string
	Me        string
	MyAvatar  string
	Avatar    string
}

// UserController serves the account endpoints
type UserController struct {
	Logger    Logger
	Auther    *Auther
	Routes    *UserControllerRoutes
	Gate      fiber.Handler
	MaxUpload int64
}

// UserControllerOption configures a UserController
type UserControllerOption func(*UserController) *UserController

// WithControllerLogger sets the controller logger
func WithControllerLogger(l Logger) UserControllerOption {
	return func(uc *UserController) *UserController {
		uc.Logger = normalizeLogger(l)
		return uc
	}
}

// WithControllerGate overrides the authentication gate
func WithControllerGate(gate fiber.Handler) UserControllerOption {
	return func(uc *UserController) *UserController {
		if gate != nil {
			uc.Gate = gate
		}
		return uc
	}
}

// WithControllerMaxUpload bounds avatar uploads
func WithControllerMaxUpload(n int64) UserControllerOption {
	return func(uc *UserController) *UserController {
		uc.MaxUpload = n
		return uc
	}
}

// NewUserController returns a controller with the default routes
func NewUserController(auther *Auther, opts ...UserControllerOption) *UserController {
	uc := &UserController{
		Logger: defLogger{},
		Auther: auther,
		Routes: &UserControllerRoutes{
			Register:  "/users",
			Login:     "/users/login",
			Logout:    "/users/logout",
			LogoutAll: "/users/logoutAll",
			Me:        "/users/me",
			MyAvatar:  "/users/me/avatar",
			Avatar:    "/users/:id/avatar",
		},
		MaxUpload: imaging.DefaultMaxBytes,
	}

	for _, opt := range opts {
		if opt != nil {
			uc = opt(uc)
		}
	}

	if uc.Gate == nil {
		uc.Gate = auther.ProtectedRoute()
	}

	return uc
}

// RegisterUserRoutes mounts the account endpoints on app
func RegisterUserRoutes(app fiber.Router, auther *Auther, opts ...UserControllerOption) *UserController {
	uc := NewUserController(auther, opts...)

	app.Post(uc.Routes.Register, uc.RegisterPost)
	app.Post(uc.Routes.Login, uc.LoginPost)
	app.Post(uc.Routes.Logout, uc.Gate, uc.LogoutPost)
	app.Post(uc.Routes.LogoutAll, uc.Gate, uc.LogoutAllPost)
	app.Get(uc.Routes.Me, uc.Gate, uc.MeGet)
	app.Patch(uc.Routes.Me, uc.Gate, uc.MePatch)
	app.Delete(uc.Routes.Me, uc.Gate, uc.MeDelete)
	app.Post(uc.Routes.MyAvatar, uc.Gate, uc.AvatarPost)
	app.Delete(uc.Routes.MyAvatar, uc.Gate, uc.AvatarDelete)
	app.Get(uc.Routes.Avatar, uc.AvatarGet)

	return uc
}

// LoginRequest is the login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned by register and login
type SessionResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

func (uc *UserController) RegisterPost(c *fiber.Ctx) error {
	var msg RegisterUserMessage
	if err := c.BodyParser(&msg); err != nil {
		return WriteError(c, uc.Logger, ErrUnableToParseData)
	}

	user, token, err := uc.Auther.Register(c.UserContext(), msg)
	if err != nil {
		return WriteError(c, uc.Logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(SessionResponse{User: user, Token: token})
}

func (uc *UserController) LoginPost(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return WriteError(c, uc.Logger, ErrInvalidCredentials)
	}

	user, token, err := uc.Auther.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return WriteError(c, uc.Logger, err)
	}

	return c.JSON(SessionResponse{User: user, Token: token})
}

func (uc *UserController) LogoutPost(c *fiber.Ctx) error {
	user, token, err := uc.session(c)
	if err != nil {
		return WriteError(c, uc.Logger, err)
	}

	if err := uc.Auther.Logout(c.UserContext(), user, token); err != nil {
		return WriteError(c, uc.Logger, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (uc *UserController) LogoutAllPost(c *fiber.Ctx) error {
	user, _, err := uc.session(c)
	if err != nil {
		return WriteError(c, uc.Logger, err)
	}

	if err := uc.Auther.LogoutAll(c.UserContext(), user); err != nil {
		return WriteError(c, uc.Logger, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (uc *UserController) MeGet(c *fiber.Ctx) error {
	user, _, err := uc.session(c)
	if err != nil {
		return WriteError(c, uc.Logger, err)
	}
	return c.JSON(user)
}

func (uc *UserController) MePatch(c *fiber.Ctx) error {
	user, _, err := uc.session(c)
	if err != nil {
		return WriteError(c, uc.Logger, err)
	}

	updates := map[string]any{}
	if err := c.BodyParser(&updates); err != nil {
		return WriteError(c, uc.Logger, ErrUnableToParseData)
	}

	updated, err := uc.Auther.UpdateProfile(c.UserContext(), user, updates)
	if err != nil {
		return WriteError(c, uc.Logger, err)
	}
	return c.JSON(updated)
}

func (uc *UserController) MeDelete(c *fiber.Ctx) error {
	user, _, err := uc.session(c)
	if err != nil {
		return WriteError(c, uc.Logger, err)
	}

	if err := uc.Auther.DeleteAccount(c.UserContext(), user); err != nil {
		return WriteError(c, uc.Logger, err)
	}
	return c.JSON(user)
}

func (uc *UserController) AvatarPost(c *fiber.Ctx) error {
	user, _, err := uc.session(c)
	if err != nil {
		return WriteError(c, uc.Logger, err)
	}

	fh, err := c.FormFile("avatar")
	if err != nil {
		return WriteError(c, uc.Logger, imaging.ErrEmpty)
	}

	data, err := ReadUpload(fh, uc.MaxUpload)
	if err != nil {
		return WriteError(c, uc.Logger, err)
	}

	if _, err := uc.Auther.SetAvatar(c.UserContext(), user, fh.Filename, data); err != nil {
		return WriteError(c, uc.Logger, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (uc *UserController) AvatarDelete(c *fiber.Ctx) error {
	user, _, err := uc.session(c)
	if err != nil {
		return WriteError(c, uc.Logger, err)
	}

	if _, err := uc.Auther.RemoveAvatar(c.UserContext(), user); err != nil {
		return WriteError(c, uc.Logger, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (uc *UserController) AvatarGet(c *fiber.Ctx) error {
	obj, err := uc.Auther.Avatar(c.UserContext(), c.Params("id"))
	if err != nil {
		return WriteError(c, uc.Logger, err)
	}

	c.Set(fiber.HeaderContentType, obj.ContentType)
	return c.Send(obj.Data)
}

func (uc *UserController) session(c *fiber.Ctx) (*User, string, error) {
	user, ok := CurrentUser(c)
	if !ok {
		return nil, "", ErrIdentityNotFound
	}
	token, _ := CurrentToken(c)
	return user, token, nil
}

// ReadUpload validates the multipart file header and reads its content
func ReadUpload(fh *multipart.FileHeader, maxBytes int64) ([]byte, error) {
	if err := imaging.CheckUpload(fh.Filename, fh.Size, maxBytes); err != nil {
		return nil, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}
