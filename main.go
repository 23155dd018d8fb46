package main

import (
	"github.com/ProgramMysticxxx/blog-project/initializers"
	"github.com/ProgramMysticxxx/blog-project/routers"
)

func init() {
	initializers.LoadEnvVar()
	initializers.InitLogger()
	initializers.ConnectToDB()
	initializers.ConnectToRedis()
	initializers.SyncDB()
	initializers.InitCasbin()
	initializers.InitStorage()
	initializers.InitServices()
	initializers.SeedCategories()
}

func main() {
	r := routers.New()
	if err := r.Run(":" + initializers.Cfg.ServerPort); err != nil {
		initializers.LOGGER.Error("Server stopped", "error", err)
	}
}
