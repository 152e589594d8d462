package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/yatube/internal/web"
	"golang.org/x/crypto/bcrypt"
)

const (
	UserCtxKey = "user_data"
	CookieName = "token"
	bcryptCost = 12
)

var (
	NotAuthenticatedUser = xerrors.Message("Not authenticated user")
	InvalidToken         = xerrors.Message("Invalid token")
)

func (user *User) SetPassword(plainTextPassword string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), bcryptCost)
	if err != nil {
		return xerrors.New(err)
	}

	user.Password = hashedPassword
	return nil
}

func (user *User) IsPasswordMatch(plainTextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(user.Password, []byte(plainTextPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, xerrors.New(err)
	}

	return true, nil
}

// Auth issues and verifies the signed tokens that identify a user.
type Auth struct {
	secret       []byte
	ttl          time.Duration
	secureCookie bool
	now          func() time.Time
}

func New(secret string, ttl time.Duration, secureCookie bool) *Auth {
	return &Auth{
		secret:       []byte(secret),
		ttl:          ttl,
		secureCookie: secureCookie,
		now:          time.Now,
	}
}

func (auth *Auth) GenerateToken(user *User) (string, error) {
	now := auth.now()
	claim := UserClaim{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(now.Add(auth.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claim)
	signedString, err := token.SignedString(auth.secret)
	if err != nil {
		return "", xerrors.New(err)
	}
	return signedString, nil
}

func (auth *Auth) Authenticate(tokenString string) (*UserClaim, error) {
	parsedToken, err := jwt.ParseWithClaims(tokenString, &UserClaim{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, xerrors.New("unexpected signing method")
		}
		return auth.secret, nil
	}, jwt.WithTimeFunc(auth.now))

	if err != nil {
		return nil, xerrors.New(InvalidToken, err)
	}

	claim, ok := parsedToken.Claims.(*UserClaim)
	if !ok || !parsedToken.Valid || claim.Username == "" {
		return nil, xerrors.New(InvalidToken)
	}
	return claim, nil
}

// SetTokenCookie stores token in an HttpOnly cookie that expires with the token.
func (auth *Auth) SetTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  auth.now().Add(auth.ttl),
		HttpOnly: true,
		Secure:   auth.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (auth *Auth) ClearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   auth.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (auth *Auth) GetAuthenticatedUser(r *http.Request) (*User, error) {
	user, ok := web.GetValueFromContext[*User](r, UserCtxKey)
	if !ok {
		return nil, NotAuthenticatedUser
	}

	return user, nil
}

func (auth *Auth) SetAuthenticatedUser(r *http.Request, user *User) *http.Request {
	return web.AddValueToContext(r, UserCtxKey, user)
}

func (auth *Auth) IsUserAuthenticated(r *http.Request) bool {
	_, err := auth.GetAuthenticatedUser(r)
	return err == nil
}
