package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/edumaster/apps/devapi/inmemdb"
	"github.com/trezcool/edumaster/core"
	"github.com/trezcool/edumaster/core/lesson"
	"github.com/trezcool/edumaster/core/user"
)

var errEmailTaken = core.NewValidationError(nil, core.FieldError{Field: "email", Error: "email already registered"})

type userApi struct {
	db       *inmemdb.DB
	conf     *core.Config
	validate *validator.Validate
}

func registerUserAPI(app *echo.Echo, authn echo.MiddlewareFunc, deps ServerDeps) {
	api := userApi{
		db:       deps.DB,
		conf:     deps.Conf,
		validate: deps.Validate,
	}

	// un-authed endpoints
	ag := app.Group("/auth")
	ag.POST("/signup", api.signup)
	ag.POST("/login", api.login)

	// authed endpoints
	pg := app.Group("/user", authn)
	pg.GET("/profile", api.profile)
	pg.PUT("/profile", api.updateProfile)
	pg.GET("/stats", api.stats)

	admins := roleMiddleware(user.RoleAdmin, user.RoleSuperAdmin)
	superAdmin := roleMiddleware(user.RoleSuperAdmin)

	adg := app.Group("/admin", authn)
	adg.POST("/create-admin", api.createAdmin, superAdmin)
	adg.GET("/all-admin", api.listAdmins, superAdmin)
	adg.GET("/all-user", api.listUsers, admins)
}

// Handlers

func (api *userApi) signup(ctx echo.Context) error {
	var data user.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr := inmemdb.User{Profile: user.Profile{
		FullName:    data.FullName,
		Email:       data.Email,
		PhoneNumber: data.PhoneNumber,
		ClassLevel:  lesson.NormalizeClassLevel(data.ClassLevel),
		Role:        user.RoleStudent,
	}}
	usr, err := api.create(usr, data.Password)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, dataResponse{Message: "user created successfully", Data: usr.Profile})
}

func (api *userApi) login(ctx echo.Context) error {
	var data user.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	token, err := authenticate(data.Email, data.Password, api.db, api.conf)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "login successful", "token": token})
}

func (api *userApi) profile(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, dataResponse{Data: usr.Profile})
}

func (api *userApi) updateProfile(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data user.UpdateProfile
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}
	data.ClassLevel = lesson.NormalizeClassLevel(data.ClassLevel)

	profile, err := api.db.UpdateProfile(usr.ID, data)
	if err != nil {
		if err == inmemdb.ErrEmailExists {
			return errEmailTaken
		}
		return errors.Wrap(err, "updating profile")
	}
	return ctx.JSON(http.StatusOK, dataResponse{Message: "profile updated", Data: profile})
}

func (api *userApi) stats(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, dataResponse{Data: api.db.Stats(usr.ID)})
}

func (api *userApi) createAdmin(ctx echo.Context) error {
	var data user.NewAdmin
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAdmin")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr := inmemdb.User{Profile: user.Profile{
		FullName:    data.FullName,
		Email:       data.Email,
		PhoneNumber: data.PhoneNumber,
		Role:        user.RoleAdmin,
		IsVerified:  true,
	}}
	usr, err := api.create(usr, data.Password)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, dataResponse{Message: "admin created successfully", Data: usr.Profile})
}

func (api *userApi) listAdmins(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, dataResponse{Data: api.db.Users(user.RoleAdmin, user.RoleSuperAdmin)})
}

func (api *userApi) listUsers(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, dataResponse{Data: api.db.Users()})
}

func (api *userApi) create(usr inmemdb.User, pwd string) (inmemdb.User, error) {
	if err := usr.SetPassword(pwd); err != nil {
		return inmemdb.User{}, errors.Wrap(err, "setting password")
	}
	usr, err := api.db.CreateUser(usr)
	if err != nil {
		if err == inmemdb.ErrEmailExists {
			return inmemdb.User{}, errEmailTaken
		}
		return inmemdb.User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

// SeedSuperAdmin creates the configured super-admin unless their email is already registered.
func SeedSuperAdmin(db *inmemdb.DB, conf *core.Config) (user.Profile, error) {
	if usr, err := db.UserByEmail(conf.DevAPI.SuperAdminEmail); err == nil {
		return usr.Profile, nil
	}

	usr := inmemdb.User{Profile: user.Profile{
		FullName:   "Super Admin",
		Email:      conf.DevAPI.SuperAdminEmail,
		Role:       user.RoleSuperAdmin,
		IsVerified: true,
	}}
	if err := usr.SetPassword(conf.DevAPI.SuperAdminPassword); err != nil {
		return user.Profile{}, errors.Wrap(err, "setting password")
	}
	usr, err := db.CreateUser(usr)
	if err != nil {
		return user.Profile{}, errors.Wrap(err, "creating super-admin")
	}
	return usr.Profile, nil
}
