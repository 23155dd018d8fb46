package controllers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/ProgramMysticxxx/blog-project/services"
	"github.com/ProgramMysticxxx/blog-project/utils"
)

// pathID reads the :id path parameter. Ids that can't exist are not found.
func pathID(c *gin.Context, what string) (uint, error) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		return 0, fmt.Errorf("%s %w", what, services.ErrNotFound)
	}
	return id, nil
}

// bindBody decodes the JSON body into obj and keeps a copy for the audit log.
func bindBody(c *gin.Context, obj interface{}) error {
	// [Get the parsed body and save it to the context]
	c.Set("params", utils.GetParsedBody(utils.GetRawBody(c)))

	if err := c.ShouldBindJSON(obj); err != nil {
		return bindError(err)
	}
	return nil
}

type rateBody struct {
	IsPositive *bool `json:"is_positive" binding:"required"`
}
