package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/xela07ax/brandpulse/internal/domain"
)

// IdentityResolver превращает bearer-токен в Identity.
// Реализация по умолчанию — HS256 (формат токенов hosted-провайдера).
type IdentityResolver interface {
	Resolve(tokenStr string) (domain.Identity, error)
}

// HSValidator проверяет JWT, подписанный симметричным секретом.
// Флаг Unlimited вычисляется здесь один раз — ниже по стеку email
// больше нигде не сравнивается.
type HSValidator struct {
	secret     []byte
	superusers map[string]struct{}
}

func NewHSValidator(secret string, superuserEmails []string) *HSValidator {
	su := make(map[string]struct{}, len(superuserEmails))
	for _, email := range superuserEmails {
		su[strings.ToLower(strings.TrimSpace(email))] = struct{}{}
	}
	return &HSValidator{secret: []byte(secret), superusers: su}
}

func (v *HSValidator) Resolve(tokenStr string) (domain.Identity, error) {
	tokenStr = strings.TrimSpace(tokenStr)

	token, err := jwt.ParseWithClaims(tokenStr, &domain.CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return domain.Identity{}, fmt.Errorf("auth: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*domain.CustomClaims)
	if !ok || claims.Subject == "" {
		return domain.Identity{}, fmt.Errorf("auth: invalid claims")
	}

	ident := domain.Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
		Plan:   parsePlan(claims.Plan),
	}
	if _, ok := v.superusers[strings.ToLower(claims.Email)]; ok {
		ident.Unlimited = true
		ident.Plan = domain.PlanTeam // суперпользователь всегда на максимальном тарифе
	}
	return ident, nil
}

func parsePlan(raw string) domain.Plan {
	switch domain.Plan(raw) {
	case domain.PlanPro:
		return domain.PlanPro
	case domain.PlanTeam:
		return domain.PlanTeam
	default:
		return domain.PlanFree
	}
}
