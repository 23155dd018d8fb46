package initializers

import (
	gormadapter "github.com/casbin/gorm-adapter/v3"

	"github.com/ProgramMysticxxx/blog-project/access"
	"github.com/ProgramMysticxxx/blog-project/models"
)

var AUTHZ *access.Authorizer

// InitCasbin loads the persisted policies, seeds the default ones and grants
// the admin role to the configured users.
func InitCasbin() {
	a, err := gormadapter.NewAdapterByDBWithCustomTable(DB, &models.CasbinRule{}, "casbin_rule")
	if err != nil {
		panic("Failed to create casbin adapter: " + err.Error())
	}

	AUTHZ, err = access.NewAuthorizer(a)
	if err != nil {
		panic("Failed to create casbin enforcer: " + err.Error())
	}

	for _, username := range SplitList(Cfg.Admins) {
		if err := AUTHZ.GrantRole(username, access.RoleAdmin); err != nil {
			panic("Failed to grant admin role: " + err.Error())
		}
		LOGGER.Info("Admin role granted", "username", username)
	}
}
