package devbackend

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/prbusiness/dashboard/internal/core/domain"
)

const ctxUserID = "user_id"

type passwordLoginRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Password    string `json:"password" validate:"required"`
}

type passwordLoginResponse struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	UserID       string        `json:"userId"`
	Roles        []domain.Role `json:"roles"`
	CurrentRole  domain.Role   `json:"currentRole"`
	ExpiresIn    int           `json:"expiresIn"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

type switchRoleRequest struct {
	NewRole string `json:"newRole" validate:"required"`
}

type switchRoleResponse struct {
	AccessToken  string      `json:"accessToken"`
	CurrentRole  domain.Role `json:"currentRole"`
	LastUsedRole domain.Role `json:"lastUsedRole"`
}

// Server exposes a Directory over the REST contract the dashboard consumes.
type Server struct {
	dir    *Directory
	tokens *Issuer
	log    zerolog.Logger
}

func NewServer(dir *Directory, tokens *Issuer, log zerolog.Logger) *Server {
	return &Server{dir: dir, tokens: tokens, log: log}
}

// Router builds the echo instance with every route registered.
func (s *Server) Router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = newRequestValidator()
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())

	v1 := e.Group("/api/v1")
	v1.POST("/auth/password", s.PasswordLogin)
	v1.POST("/auth/refresh", s.Refresh)

	user := v1.Group("/user", s.bearer)
	user.GET("/me", s.Me)
	user.POST("/switch-role", s.SwitchRole)

	return e
}

// bearer validates the access token and injects the subject into context.
func (s *Server) bearer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return fail(c, http.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return fail(c, http.StatusUnauthorized, "invalid authorization header")
		}

		claims, err := s.tokens.Parse(parts[1], kindAccess)
		if err != nil {
			return fail(c, http.StatusUnauthorized, "invalid token")
		}

		c.Set(ctxUserID, claims.Subject)
		return next(c)
	}
}

func (s *Server) PasswordLogin(c echo.Context) error {
	var req passwordLoginRequest
	if err := bindValid(c, &req); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}

	user, err := s.dir.Authenticate(req.PhoneNumber, req.Password)
	if err != nil {
		return fail(c, http.StatusUnauthorized, err.Error())
	}

	access, err := s.tokens.Access(user.ID, string(user.CurrentRole))
	if err != nil {
		return err
	}
	refresh, err := s.tokens.Refresh(user.ID)
	if err != nil {
		return err
	}

	s.log.Info().Str("user_id", user.ID).Msg("password login")
	return c.JSON(http.StatusOK, passwordLoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		UserID:       user.ID,
		Roles:        user.Roles,
		CurrentRole:  user.CurrentRole,
		ExpiresIn:    int(s.tokens.AccessTTL().Seconds()),
	})
}

func (s *Server) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := bindValid(c, &req); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}

	claims, err := s.tokens.Parse(req.RefreshToken, kindRefresh)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "invalid refresh token")
	}
	user, err := s.dir.Get(claims.Subject)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "invalid refresh token")
	}

	access, err := s.tokens.Access(user.ID, string(user.CurrentRole))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, refreshResponse{
		AccessToken: access,
		ExpiresIn:   int(s.tokens.AccessTTL().Seconds()),
	})
}

func (s *Server) Me(c echo.Context) error {
	id, _ := c.Get(ctxUserID).(string)
	user, err := s.dir.Get(id)
	if err != nil {
		return fail(c, http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, user)
}

func (s *Server) SwitchRole(c echo.Context) error {
	var req switchRoleRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "malformed request body")
	}
	req.NewRole = strings.TrimSpace(req.NewRole)
	if err := c.Validate(&req); err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}

	id, _ := c.Get(ctxUserID).(string)
	user, err := s.dir.SwitchRole(id, domain.Role(req.NewRole))
	switch {
	case errors.Is(err, errRoleNotHeld):
		return fail(c, http.StatusForbidden, err.Error())
	case err != nil:
		return fail(c, http.StatusNotFound, err.Error())
	}

	access, err := s.tokens.Access(user.ID, string(user.CurrentRole))
	if err != nil {
		return err
	}

	s.log.Info().Str("user_id", user.ID).Str("role", string(user.CurrentRole)).Msg("role switched")
	return c.JSON(http.StatusOK, switchRoleResponse{
		AccessToken:  access,
		CurrentRole:  user.CurrentRole,
		LastUsedRole: user.LastUsedRole,
	})
}

func bindValid(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return errors.New("malformed request body")
	}
	return c.Validate(req)
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}
