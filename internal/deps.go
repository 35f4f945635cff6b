package internal

import (
	"iskacare/clinic-api/internal/service"
	"iskacare/clinic-api/internal/store"
	"iskacare/clinic-api/pkg/security"

	"gorm.io/gorm"
)

type Deps struct {
	DB       *gorm.DB
	Accounts *store.Accounts
	Auth     *service.AuthService
	Tokens   *security.TokenIssuer
}
