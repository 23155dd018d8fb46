package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ProgramMysticxxx/blog-project/initializers"
	"github.com/ProgramMysticxxx/blog-project/utils"
)

// Subscribe subscribes (POST) or unsubscribes (DELETE) the current user to
// the profile named in the path.
func Subscribe(c *gin.Context) {
	p := utils.GetPrincipal(c)
	username := c.Param("username")

	var err error
	op, message := utils.OpCreate, "Subscribed successfully"
	if c.Request.Method == http.MethodDelete {
		err = initializers.PROFILES.Unsubscribe(c.Request.Context(), p, username)
		op, message = utils.OpDelete, "Unsubscribed successfully"
	} else {
		err = initializers.PROFILES.Subscribe(c.Request.Context(), p, username)
	}
	if err != nil {
		respondError(c, err, "Failed to update subscription")
		return
	}

	// [Prepare the object information for logging]
	objInfo := utils.ObjInfo{
		Op:    op,
		Table: "profile_subscriptions",
		Key:   username,
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
	})
	initializers.LOGGER.Info(message, "sub", utils.GetSubInfo(c), "obj", objInfo)
}
