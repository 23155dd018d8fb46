package controllers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/ProgramMysticxxx/blog-project/access"
	"github.com/ProgramMysticxxx/blog-project/initializers"
	"github.com/ProgramMysticxxx/blog-project/utils"
)

// PostCategory is an Admin API Endpoint that creates a category.
func PostCategory(c *gin.Context) {
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := bindBody(c, &body); err != nil {
		respondError(c, err, "Failed to create category")
		return
	}

	category, err := initializers.TAXONOMY.CreateCategory(c.Request.Context(), utils.GetPrincipal(c), body.Name)
	if err != nil {
		respondError(c, err, "Failed to create category")
		return
	}

	// [Prepare the object information for logging]
	objInfo := utils.ObjInfo{
		Op:    utils.OpCreate,
		Table: "categories",
		Key:   category.Name,
	}

	message := "Category created successfully"
	c.JSON(http.StatusCreated, gin.H{
		"message":  message,
		"category": category,
	})
	initializers.LOGGER.Info(message, "sub", utils.GetSubInfo(c), "obj", objInfo)
}

// RemoveCategory is an Admin API Endpoint that deletes a category. Its
// articles become uncategorised.
func RemoveCategory(c *gin.Context) {
	name := c.Param("name")
	if err := initializers.TAXONOMY.DeleteCategory(c.Request.Context(), utils.GetPrincipal(c), name); err != nil {
		respondError(c, err, "Failed to delete category")
		return
	}

	// [Prepare the object information for logging]
	objInfo := utils.ObjInfo{
		Op:    utils.OpDelete,
		Table: "categories",
		Key:   name,
	}

	message := "Category deleted successfully"
	c.JSON(http.StatusOK, gin.H{
		"message": message,
	})
	initializers.LOGGER.Warn(message, "sub", utils.GetSubInfo(c), "obj", objInfo)
}

// GetAdmins is an Admin API Endpoint that lists the users holding the admin
// role.
func GetAdmins(c *gin.Context) {
	admins, err := initializers.AUTHZ.UsersWithRole(access.RoleAdmin)
	if err != nil {
		respondError(c, err, "Failed to list admins")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Admins retrieved successfully",
		"admins":  admins,
	})
}

// AddAdmin is an Admin API Endpoint that grants the admin role to a user.
func AddAdmin(c *gin.Context) {
	var body struct {
		Username string `json:"username" binding:"required"`
	}
	if err := bindBody(c, &body); err != nil {
		respondError(c, err, "Failed to grant admin role")
		return
	}

	// Only existing users can be granted a role
	if _, err := initializers.PROFILES.Get(c.Request.Context(), utils.GetPrincipal(c), body.Username); err != nil {
		respondError(c, err, "Failed to grant admin role")
		return
	}
	if err := initializers.AUTHZ.GrantRole(body.Username, access.RoleAdmin); err != nil {
		respondError(c, err, "Failed to grant admin role")
		return
	}

	objInfo := utils.ObjInfo{
		Op:    utils.OpCreate,
		Table: "casbin_rule",
		Key:   access.UserSubject(body.Username),
	}

	message := "Admin role granted successfully"
	c.JSON(http.StatusOK, gin.H{
		"message": message,
	})
	initializers.LOGGER.Warn(message, "sub", utils.GetSubInfo(c), "obj", objInfo)
}

// DelAdmin is an Admin API Endpoint that takes the admin role away from a
// user.
func DelAdmin(c *gin.Context) {
	username := c.Param("username")
	if err := initializers.AUTHZ.RevokeRole(username, access.RoleAdmin); err != nil {
		respondError(c, err, "Failed to revoke admin role")
		return
	}

	objInfo := utils.ObjInfo{
		Op:    utils.OpDelete,
		Table: "casbin_rule",
		Key:   access.UserSubject(username),
	}

	message := "Admin role revoked successfully"
	c.JSON(http.StatusOK, gin.H{
		"message": message,
	})
	initializers.LOGGER.Warn(message, "sub", utils.GetSubInfo(c), "obj", objInfo)
}

// DownloadLogFile is an Admin API Endpoint that downloads the log file.
func DownloadLogFile(c *gin.Context) {
	// Get the log file path
	logFilePath := initializers.LogFilePath()

	// Check if the log file exists
	if logFilePath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Logs are written to stdout"})
		return
	}
	if _, err := os.Stat(logFilePath); os.IsNotExist(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Log file does not exist"})
		return
	}

	// Ensure log file download
	c.Header("Content-Disposition", "attachment; filename="+filepath.Base(logFilePath))
	c.Header("Content-Type", "application/force-download")
	// Disable the browser cache
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")

	// Return the log file as a download
	c.File(logFilePath)
}
