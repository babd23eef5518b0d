package echoapi

import (
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/kitabu/core"
	"github.com/trezcool/kitabu/core/cover"
	"github.com/trezcool/kitabu/core/school"
)

// appJWTConfig is the default JWT auth middleware config.
var appJWTConfig = middleware.JWTConfig{
	SigningKey:    []byte(core.Conf.SecretKey),
	SigningMethod: middleware.AlgorithmHS256,
	ContextKey:    "consoleToken",
	Claims:        new(Claims),
}

// Claims represents the authorization claims transmitted via a JWT.
// A school token carries its school ID; an admin token carries IsAdmin.
type Claims struct {
	jwt.StandardClaims
	SchoolID   string `json:"school_id,omitempty"`
	SchoolName string `json:"school_name,omitempty"`
	IsAdmin    bool   `json:"is_admin,omitempty"` // -> CONSOLE ADMIN
}

// Role resolves the acting workflow role from the claims.
func (c Claims) Role() cover.Role {
	if c.IsAdmin {
		return cover.RoleAdmin
	}
	return cover.RoleClient
}

func GetSchoolClaims(sch school.School) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   sch.ID,
			Audience:  "Console",
			ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		SchoolID:   sch.ID,
		SchoolName: sch.Name,
	}
}

func GetAdminClaims(subject string) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   subject,
			Audience:  "Console",
			ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		IsAdmin: true,
	}
}

func authenticate(slug, accessCode string, svc school.ServiceInterface) (*Claims, error) {
	sch, err := svc.GetBySlug(slug)
	if err != nil {
		if errors.Cause(err) == school.ErrNotFound {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "finding school by slug")
	}
	if err = sch.CheckAccessCode(accessCode); err != nil {
		return nil, errAuthenticationFailed
	}
	if !sch.IsActive {
		return nil, errAccountDeactivated
	}
	return GetSchoolClaims(sch), nil
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}
