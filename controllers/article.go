package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ProgramMysticxxx/blog-project/initializers"
	"github.com/ProgramMysticxxx/blog-project/services"
	"github.com/ProgramMysticxxx/blog-project/utils"
)

// articleQuery reads the filters of an article list off the query string.
func articleQuery(c *gin.Context) (services.ArticleQuery, error) {
	verr := &services.ValidationError{}
	q := services.ArticleQuery{
		Favorited:  utils.QueryFlag(c, "favorited"),
		Rated:      utils.QueryFlag(c, "rated"),
		Subscribed: utils.QueryFlag(c, "subscribed"),
		Search:     c.Query("search"),
		CreatedOn:  c.Query("created_at"),
		UpdatedOn:  c.Query("updated_at"),
		Author:     c.Query("author"),
		AuthorID:   utils.QueryID(c, "author_id", verr),
		Category:   c.Query("category"),
		Tags:       utils.QueryList(c, "tags"),
		Ordering:   c.Query("ordering"),
	}
	return q, verr.OrNil()
}

// FetchArticles retrieves the articles matching the query string.
func FetchArticles(c *gin.Context) {
	q, err := articleQuery(c)
	if err != nil {
		respondError(c, err, "Failed to list articles")
		return
	}
	// Get the pagination parameters
	params, err := utils.GetPaginationParams(c)
	if err != nil {
		respondError(c, err, "Failed to list articles")
		return
	}

	articles, pagination, err := initializers.ARTICLES.List(c.Request.Context(), utils.GetPrincipal(c), q, params)
	if err != nil {
		respondError(c, err, "Failed to list articles")
		return
	}

	// Return a success response
	c.JSON(http.StatusOK, gin.H{
		"message":    "Articles retrieved successfully",
		"articles":   articles,
		"pagination": pagination,
	})
}

func FetchArticle(c *gin.Context) {
	id, err := pathID(c, "article")
	if err != nil {
		respondError(c, err, "Failed to retrieve article")
		return
	}
	article, err := initializers.ARTICLES.Get(c.Request.Context(), utils.GetPrincipal(c), id)
	if err != nil {
		respondError(c, err, "Failed to retrieve article")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Article retrieved successfully",
		"article": article,
	})
}

// PostArticle creates an article authored by the current user.
func PostArticle(c *gin.Context) {
	var body services.ArticleInput
	if err := bindBody(c, &body); err != nil {
		respondError(c, err, "Failed to create article")
		return
	}

	article, err := initializers.ARTICLES.Create(c.Request.Context(), utils.GetPrincipal(c), body)
	if err != nil {
		respondError(c, err, "Failed to create article")
		return
	}

	// [Prepare the object information for logging]
	objInfo := utils.ObjInfo{
		Op:    utils.OpCreate,
		Table: "articles",
		ID:    article.ID,
	}

	// Return a success response
	message := "Article created successfully"
	c.JSON(http.StatusCreated, gin.H{
		"message": message,
		"article": article,
	})
	initializers.LOGGER.Info(message, "sub", utils.GetSubInfo(c), "obj", objInfo)
}

// PutArticle replaces an article. PATCH requests only touch the fields they
// carry.
func PutArticle(c *gin.Context) {
	id, err := pathID(c, "article")
	if err != nil {
		respondError(c, err, "Failed to update article")
		return
	}
	var body services.ArticleInput
	if err := bindBody(c, &body); err != nil {
		respondError(c, err, "Failed to update article")
		return
	}

	partial := c.Request.Method == http.MethodPatch
	article, err := initializers.ARTICLES.Update(c.Request.Context(), utils.GetPrincipal(c), id, body, partial)
	if err != nil {
		respondError(c, err, "Failed to update article")
		return
	}

	// [Prepare the object and data information for logging]
	objInfo := utils.ObjInfo{
		Op:    utils.OpUpdate,
		Table: "articles",
		ID:    id,
	}
	params, _ := c.Get("params")
	newData, _ := params.(map[string]interface{})
	dataInfo := utils.DataInfo{
		NewData: newData,
	}

	message := "Article updated successfully"
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"article": article,
	})
	initializers.LOGGER.Info(message, "sub", utils.GetSubInfo(c), "obj", objInfo, "data", dataInfo)
}

// RemoveArticle deletes an article with its comments, rates and favorites.
func RemoveArticle(c *gin.Context) {
	id, err := pathID(c, "article")
	if err != nil {
		respondError(c, err, "Failed to delete article")
		return
	}
	if err := initializers.ARTICLES.Delete(c.Request.Context(), utils.GetPrincipal(c), id); err != nil {
		respondError(c, err, "Failed to delete article")
		return
	}

	// [Prepare the object information for logging]
	objInfo := utils.ObjInfo{
		Op:    utils.OpDelete,
		Table: "articles",
		ID:    id,
	}

	message := "Article deleted successfully"
	c.JSON(http.StatusOK, gin.H{
		"message": message,
	})
	initializers.LOGGER.Warn(message, "sub", utils.GetSubInfo(c), "obj", objInfo)
}

// FavoriteArticle adds (POST) or removes (DELETE) an article from the
// favorites of the current user.
func FavoriteArticle(c *gin.Context) {
	id, err := pathID(c, "article")
	if err != nil {
		respondError(c, err, "Failed to update favorites")
		return
	}

	p := utils.GetPrincipal(c)
	message := "Article added to favorites"
	if c.Request.Method == http.MethodDelete {
		err = initializers.ARTICLES.Unfavorite(c.Request.Context(), p, id)
		message = "Article removed from favorites"
	} else {
		err = initializers.ARTICLES.Favorite(c.Request.Context(), p, id)
	}
	if err != nil {
		respondError(c, err, "Failed to update favorites")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}

// RateArticle rates (POST) or unrates (DELETE) an article.
func RateArticle(c *gin.Context) {
	id, err := pathID(c, "article")
	if err != nil {
		respondError(c, err, "Failed to rate article")
		return
	}

	p := utils.GetPrincipal(c)
	message := "Article unrated"
	if c.Request.Method == http.MethodDelete {
		err = initializers.ARTICLES.Unrate(c.Request.Context(), p, id)
	} else {
		var body rateBody
		if err := bindBody(c, &body); err != nil {
			respondError(c, err, "Failed to rate article")
			return
		}
		err = initializers.ARTICLES.Rate(c.Request.Context(), p, id, *body.IsPositive)
		message = "Article rated"
	}
	if err != nil {
		respondError(c, err, "Failed to rate article")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}
