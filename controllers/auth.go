package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ProgramMysticxxx/blog-project/initializers"
	"github.com/ProgramMysticxxx/blog-project/services"
	"github.com/ProgramMysticxxx/blog-project/utils"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// bindCredentials reads the credentials and records the blurred body for the
// logs.
func bindCredentials(c *gin.Context) (credentials, error) {
	// [Get the filtered parsed body and save it to the context]
	rawBody := utils.GetRawBody(c)
	parsedBody := utils.GetParsedBody(rawBody)
	utils.BlurMap(parsedBody, "password")
	c.Set("params", parsedBody)

	var body credentials
	if err := c.ShouldBindJSON(&body); err != nil {
		return body, bindError(err)
	}
	return body, nil
}

// issueToken signs a token for user and sets it as a cookie as well.
func issueToken(c *gin.Context, user *services.UserView) (string, error) {
	expiry := time.Duration(initializers.Cfg.TokenExpiry) * time.Minute
	JWT, err := utils.GenerateToken(user.ID, initializers.Cfg.SecretKey, expiry)
	if err != nil {
		return "", err
	}

	// Set cookie with the JWT token
	c.SetSameSite(http.SameSiteLaxMode)                                           // Lax mode for CSRF protection
	c.SetCookie("Authorization", JWT, int(expiry.Seconds()), "", "", false, true) // HttpOnly true for XSS protection
	return JWT, nil
}

func Register(c *gin.Context) {
	body, err := bindCredentials(c)
	if err != nil {
		respondError(c, err, "Register failed")
		return
	}

	user, err := initializers.USERS.Register(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		respondError(c, err, "Register failed")
		initializers.LOGGER.Info("Register failed", "error", err, "ip", c.ClientIP(), "params", c.MustGet("params"))
		return
	}
	token, err := issueToken(c, user)
	if err != nil {
		respondError(c, err, "Failed to generate a JWT token")
		return
	}

	// Return a success response
	message := "User registered successfully"
	c.JSON(http.StatusCreated, gin.H{
		"message": message,
		"user":    user,
		"token":   token,
	})
	initializers.LOGGER.Info(message, "ip", c.ClientIP(), "username", user.Username)
}

func Login(c *gin.Context) {
	body, err := bindCredentials(c)
	if err != nil {
		respondError(c, err, "Login failed")
		return
	}

	user, err := initializers.USERS.Login(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		respondError(c, err, "Login failed")
		initializers.LOGGER.Info("Login failed", "error", err, "ip", c.ClientIP(), "params", c.MustGet("params"))
		return
	}
	token, err := issueToken(c, user)
	if err != nil {
		respondError(c, err, "Failed to generate a JWT token")
		return
	}

	// Return a success response
	message := "User logged in successfully"
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"user":    user,
		"token":   token,
	})
	initializers.LOGGER.Info(message, "ip", c.ClientIP(), "username", user.Username)
}

// Logout clears the token cookie. Bearer tokens simply stop being sent.
func Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("Authorization", "", -1, "", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"message": "User logged out successfully",
	})
}

// DeleteMe deletes the account of the current user with everything it owns.
func DeleteMe(c *gin.Context) {
	p := utils.GetPrincipal(c)
	if err := initializers.USERS.Delete(c.Request.Context(), p); err != nil {
		respondError(c, err, "Failed to delete account")
		return
	}
	utils.ForgetPrincipal(c.Request.Context(), initializers.RDB, p.ID)

	// [Prepare the object information for logging]
	objInfo := utils.ObjInfo{
		Op:    utils.OpDelete,
		Table: "users",
		ID:    p.ID,
	}

	message := "Account deleted successfully"
	c.SetCookie("Authorization", "", -1, "", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"message": message,
	})
	initializers.LOGGER.Warn(message, "sub", utils.GetSubInfo(c), "obj", objInfo)
}
