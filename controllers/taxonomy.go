package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ProgramMysticxxx/blog-project/initializers"
	"github.com/ProgramMysticxxx/blog-project/services"
	"github.com/ProgramMysticxxx/blog-project/utils"
)

func taxonomyQuery(c *gin.Context) services.TaxonomyQuery {
	return services.TaxonomyQuery{
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
	}
}

func FetchCategories(c *gin.Context) {
	params, err := utils.GetPaginationParams(c)
	if err != nil {
		respondError(c, err, "Failed to list categories")
		return
	}
	categories, pagination, err := initializers.TAXONOMY.ListCategories(c.Request.Context(), utils.GetPrincipal(c), taxonomyQuery(c), params)
	if err != nil {
		respondError(c, err, "Failed to list categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Categories retrieved successfully",
		"categories": categories,
		"pagination": pagination,
	})
}

func FetchCategory(c *gin.Context) {
	category, err := initializers.TAXONOMY.GetCategory(c.Request.Context(), utils.GetPrincipal(c), c.Param("name"))
	if err != nil {
		respondError(c, err, "Failed to retrieve category")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Category retrieved successfully",
		"category": category,
	})
}

func FetchTags(c *gin.Context) {
	params, err := utils.GetPaginationParams(c)
	if err != nil {
		respondError(c, err, "Failed to list tags")
		return
	}
	tags, pagination, err := initializers.TAXONOMY.ListTags(c.Request.Context(), utils.GetPrincipal(c), taxonomyQuery(c), params)
	if err != nil {
		respondError(c, err, "Failed to list tags")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Tags retrieved successfully",
		"tags":       tags,
		"pagination": pagination,
	})
}

func FetchTag(c *gin.Context) {
	tag, err := initializers.TAXONOMY.GetTag(c.Request.Context(), utils.GetPrincipal(c), c.Param("name"))
	if err != nil {
		respondError(c, err, "Failed to retrieve tag")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Tag retrieved successfully",
		"tag":     tag,
	})
}
