package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ProgramMysticxxx/blog-project/initializers"
	"github.com/ProgramMysticxxx/blog-project/services"
	"github.com/ProgramMysticxxx/blog-project/utils"
)

// FetchProfiles lists the profiles the current user subscribed to. Listing
// without the subscribed flag is not allowed.
func FetchProfiles(c *gin.Context) {
	q := services.ProfileQuery{
		Subscribed: utils.QueryFlag(c, "subscribed"),
		Ordering:   c.Query("ordering"),
	}
	params, err := utils.GetPaginationParams(c)
	if err != nil {
		respondError(c, err, "Failed to list profiles")
		return
	}

	profiles, pagination, err := initializers.PROFILES.List(c.Request.Context(), utils.GetPrincipal(c), q, params)
	if err != nil {
		respondError(c, err, "Failed to list profiles")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Profiles retrieved successfully",
		"profiles":   profiles,
		"pagination": pagination,
	})
}

func FetchProfile(c *gin.Context) {
	profile, err := initializers.PROFILES.Get(c.Request.Context(), utils.GetPrincipal(c), c.Param("username"))
	if err != nil {
		respondError(c, err, "Failed to retrieve profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Profile retrieved successfully",
		"profile": profile,
	})
}

// ModifyProfile updates the profile of the current user.
func ModifyProfile(c *gin.Context) {
	var body services.ProfileInput
	if err := bindBody(c, &body); err != nil {
		respondError(c, err, "Failed to update profile")
		return
	}

	username := c.Param("username")
	partial := c.Request.Method == http.MethodPatch
	profile, err := initializers.PROFILES.Update(c.Request.Context(), utils.GetPrincipal(c), username, body, partial)
	if err != nil {
		respondError(c, err, "Failed to update profile")
		return
	}

	// [Prepare the object and data information for logging]
	objInfo := utils.ObjInfo{
		Op:    utils.OpUpdate,
		Table: "profiles",
		Key:   username,
	}
	params, _ := c.Get("params")
	newData, _ := params.(map[string]interface{})
	dataInfo := utils.DataInfo{
		NewData: newData,
	}

	message := "Profile updated successfully"
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"profile": profile,
	})
	initializers.LOGGER.Info(message, "sub", utils.GetSubInfo(c), "obj", objInfo, "data", dataInfo)
}

// RemoveProfile always fails: profiles go away with their account only.
func RemoveProfile(c *gin.Context) {
	err := initializers.PROFILES.Delete(c.Request.Context(), utils.GetPrincipal(c), c.Param("username"))
	if err != nil {
		respondError(c, err, "Failed to delete profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Profile deleted successfully",
	})
}
