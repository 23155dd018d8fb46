package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ProgramMysticxxx/blog-project/initializers"
	"github.com/ProgramMysticxxx/blog-project/services"
	"github.com/ProgramMysticxxx/blog-project/utils"
)

// commentQuery reads the filters of a comment list. reply_to=null keeps the
// top level comments only.
func commentQuery(c *gin.Context) (services.CommentQuery, error) {
	verr := &services.ValidationError{}
	q := services.CommentQuery{
		Article:  utils.QueryID(c, "article", verr),
		Author:   utils.QueryID(c, "author", verr),
		Ordering: c.Query("ordering"),
	}
	if c.Query("reply_to") == "null" {
		q.TopLevel = true
	} else {
		q.ReplyTo = utils.QueryID(c, "reply_to", verr)
	}
	return q, verr.OrNil()
}

func FetchComments(c *gin.Context) {
	q, err := commentQuery(c)
	if err != nil {
		respondError(c, err, "Failed to list comments")
		return
	}
	params, err := utils.GetPaginationParams(c)
	if err != nil {
		respondError(c, err, "Failed to list comments")
		return
	}

	comments, pagination, err := initializers.COMMENTS.List(c.Request.Context(), utils.GetPrincipal(c), q, params)
	if err != nil {
		respondError(c, err, "Failed to list comments")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "Comments retrieved successfully",
		"comments":   comments,
		"pagination": pagination,
	})
}

func FetchComment(c *gin.Context) {
	id, err := pathID(c, "comment")
	if err != nil {
		respondError(c, err, "Failed to retrieve comment")
		return
	}
	comment, err := initializers.COMMENTS.Get(c.Request.Context(), utils.GetPrincipal(c), id)
	if err != nil {
		respondError(c, err, "Failed to retrieve comment")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Comment retrieved successfully",
		"comment": comment,
	})
}

func PostComment(c *gin.Context) {
	var body services.CommentInput
	if err := bindBody(c, &body); err != nil {
		respondError(c, err, "Failed to create comment")
		return
	}

	comment, err := initializers.COMMENTS.Create(c.Request.Context(), utils.GetPrincipal(c), body)
	if err != nil {
		respondError(c, err, "Failed to create comment")
		return
	}

	// [Prepare the object information for logging]
	objInfo := utils.ObjInfo{
		Op:    utils.OpCreate,
		Table: "comments",
		ID:    comment.ID,
	}

	message := "Comment created successfully"
	c.JSON(http.StatusCreated, gin.H{
		"message": message,
		"comment": comment,
	})
	initializers.LOGGER.Info(message, "sub", utils.GetSubInfo(c), "obj", objInfo)
}

// PutComment edits the content of a comment, for PUT and PATCH alike.
func PutComment(c *gin.Context) {
	id, err := pathID(c, "comment")
	if err != nil {
		respondError(c, err, "Failed to update comment")
		return
	}
	var body services.CommentInput
	if err := bindBody(c, &body); err != nil {
		respondError(c, err, "Failed to update comment")
		return
	}

	partial := c.Request.Method == http.MethodPatch
	comment, err := initializers.COMMENTS.Update(c.Request.Context(), utils.GetPrincipal(c), id, body, partial)
	if err != nil {
		respondError(c, err, "Failed to update comment")
		return
	}

	// [Prepare the object information for logging]
	objInfo := utils.ObjInfo{
		Op:    utils.OpUpdate,
		Table: "comments",
		ID:    id,
	}

	message := "Comment updated successfully"
	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"comment": comment,
	})
	initializers.LOGGER.Info(message, "sub", utils.GetSubInfo(c), "obj", objInfo)
}

// RemoveComment deletes a comment and its replies.
func RemoveComment(c *gin.Context) {
	id, err := pathID(c, "comment")
	if err != nil {
		respondError(c, err, "Failed to delete comment")
		return
	}
	if err := initializers.COMMENTS.Delete(c.Request.Context(), utils.GetPrincipal(c), id); err != nil {
		respondError(c, err, "Failed to delete comment")
		return
	}

	// [Prepare the object information for logging]
	objInfo := utils.ObjInfo{
		Op:    utils.OpDelete,
		Table: "comments",
		ID:    id,
	}

	message := "Comment deleted successfully"
	c.JSON(http.StatusOK, gin.H{
		"message": message,
	})
	initializers.LOGGER.Warn(message, "sub", utils.GetSubInfo(c), "obj", objInfo)
}

// RateComment rates (POST) or unrates (DELETE) a comment.
func RateComment(c *gin.Context) {
	id, err := pathID(c, "comment")
	if err != nil {
		respondError(c, err, "Failed to rate comment")
		return
	}

	p := utils.GetPrincipal(c)
	message := "Comment unrated"
	if c.Request.Method == http.MethodDelete {
		err = initializers.COMMENTS.Unrate(c.Request.Context(), p, id)
	} else {
		var body rateBody
		if err := bindBody(c, &body); err != nil {
			respondError(c, err, "Failed to rate comment")
			return
		}
		err = initializers.COMMENTS.Rate(c.Request.Context(), p, id, *body.IsPositive)
		message = "Comment rated"
	}
	if err != nil {
		respondError(c, err, "Failed to rate comment")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}
