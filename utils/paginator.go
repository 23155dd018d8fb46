package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ProgramMysticxxx/blog-project/services"
)

// GetPaginationParams returns the pagination parameters of the query string.
func GetPaginationParams(c *gin.Context) (services.PageParams, error) {
	verr := &services.ValidationError{}

	// Get pageNum and pageSize off the query string
	pageNum, err := strconv.Atoi(c.DefaultQuery("pageNum", "1"))
	if err != nil || pageNum < 1 {
		verr.Add("pageNum", "Invalid page: must be a positive integer.")
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(services.DefaultPageSize)))
	if err != nil || pageSize < 1 {
		verr.Add("pageSize", "Invalid page size: must be a positive integer.")
	}

	return services.PageParams{PageNum: pageNum, PageSize: pageSize}, verr.OrNil()
}
