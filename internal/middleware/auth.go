package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"anoa.com/learnhub/internal/entity"
	"anoa.com/learnhub/pkg/apperror"
	"anoa.com/learnhub/pkg/response"
	"anoa.com/learnhub/pkg/token"
)

const accountKey = "account"

// AccountFinder loads the account named by a verified token.
type AccountFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)
}

type TokenVerifier interface {
	Verify(tokenString string) (token.Claims, error)
}

type AuthMiddleware struct {
	accounts AccountFinder
	tokens   TokenVerifier
}

func NewAuthMiddleware(accounts AccountFinder, tokens TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{accounts: accounts, tokens: tokens}
}

// RequireAuth rejects the request with 401 unless it carries a valid bearer
// token for an existing, active account.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := m.authenticate(c)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		c.Set(accountKey, account)
		c.Next()
	}
}

// OptionalAuth attaches the account when the request is authenticated and
// otherwise lets it through anonymously.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if account, err := m.authenticate(c); err == nil {
			c.Set(accountKey, account)
		}
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(roles ...entity.Role) gin.HandlerFunc {
	allowed := entity.NewRoleSet(roles...)
	return func(c *gin.Context) {
		account, ok := CurrentAccount(c)
		if !ok {
			response.ResponseError(c, apperror.Unauthorized("Authentication required"))
			return
		}
		if !allowed.Contains(account.Role) {
			response.ResponseError(c, apperror.Forbidden("Access denied. Insufficient permissions."))
			return
		}
		c.Next()
	}
}

// RequireSocketAuth is RequireAuth for websocket upgrades, where browsers
// cannot set headers: the token may also arrive as the "token" query value.
// Only mount it on upgrade routes.
func (m *AuthMiddleware) RequireSocketAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			raw = c.Query("token")
		}
		account, err := m.resolve(c.Request.Context(), raw)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		c.Set(accountKey, account)
		c.Next()
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context) (*entity.Account, error) {
	raw, _ := bearerToken(c.GetHeader("Authorization"))
	return m.resolve(c.Request.Context(), raw)
}

func (m *AuthMiddleware) resolve(ctx context.Context, raw string) (*entity.Account, error) {
	if raw == "" {
		return nil, apperror.Unauthorized("Access denied. No token provided.")
	}

	claims, err := m.tokens.Verify(raw)
	if err != nil {
		return nil, apperror.Unauthorized("Invalid or expired token")
	}
	if _, err := entity.ParseRole(claims.Role); err != nil {
		return nil, apperror.Unauthorized("Invalid or expired token")
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperror.Unauthorized("Invalid or expired token")
	}

	account, err := m.accounts.FindByID(ctx, id)
	if err != nil || account == nil {
		return nil, apperror.Unauthorized("Invalid token. User not found.")
	}
	if !account.IsActive {
		return nil, apperror.Unauthorized("Account is deactivated")
	}
	return account, nil
}

func bearerToken(header string) (string, bool) {
	scheme, value, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

// CurrentAccount returns the account attached by RequireAuth or OptionalAuth.
func CurrentAccount(c *gin.Context) (*entity.Account, bool) {
	v, exists := c.Get(accountKey)
	if !exists {
		return nil, false
	}
	account, ok := v.(*entity.Account)
	return account, ok && account != nil
}

// SetAccount attaches an account to the request; used by tests and websocket upgrades.
func SetAccount(c *gin.Context, account *entity.Account) {
	c.Set(accountKey, account)
}
