package domain

import "github.com/golang-jwt/jwt/v5"

// AnonymousUserID — фиксированный sentinel-владелец для запросов без токена.
const AnonymousUserID = "00000000-0000-0000-0000-000000000000"

type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
	PlanTeam Plan = "team"
)

// Identity — результат разбора токена, вычисляется один раз в middleware
// и дальше передается через контекст. Unlimited — явный capability-флаг
// (суперпользователь), а не повторное сравнение email по месту.
type Identity struct {
	UserID    string
	Email     string
	Plan      Plan
	Unlimited bool
}

func Anonymous() Identity {
	return Identity{UserID: AnonymousUserID, Plan: PlanFree}
}

func (i Identity) IsAnonymous() bool {
	return i.UserID == "" || i.UserID == AnonymousUserID
}

// CustomClaims — полезная нагрузка JWT. UserID берется из стандартного sub.
type CustomClaims struct {
	Email string `json:"email"`
	Plan  string `json:"plan"`
	jwt.RegisteredClaims
}
