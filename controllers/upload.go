package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ProgramMysticxxx/blog-project/initializers"
	"github.com/ProgramMysticxxx/blog-project/services"
	"github.com/ProgramMysticxxx/blog-project/utils"
)

// formUpload reads the multipart file named field. The caller closes the
// returned body.
func formUpload(c *gin.Context, field string) (services.Upload, func(), error) {
	file, err := c.FormFile(field)
	if err != nil {
		verr := &services.ValidationError{}
		return services.Upload{}, nil, verr.Add(field, "No file was submitted.")
	}
	body, err := file.Open()
	if err != nil {
		return services.Upload{}, nil, err
	}
	u := services.Upload{
		Name:        file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		Body:        body,
	}
	return u, func() { body.Close() }, nil
}

// UploadImage stores an image of the current user. Its id can then be used as
// an article cover or a profile avatar.
func UploadImage(c *gin.Context) {
	p := utils.GetPrincipal(c)
	u, closeBody, err := formUpload(c, "image")
	if err != nil {
		respondError(c, err, "Failed to upload image")
		return
	}
	defer closeBody()

	image, err := initializers.UPLOADS.UploadImage(c.Request.Context(), p, u)
	if err != nil {
		respondError(c, err, "Failed to upload image")
		return
	}

	// [Prepare the object information for logging]
	objInfo := utils.ObjInfo{
		Op:    utils.OpCreate,
		Table: "uploaded_images",
		ID:    image.ID,
	}

	message := "Image uploaded successfully"
	c.JSON(http.StatusCreated, gin.H{
		"message": message,
		"image":   image,
	})
	initializers.LOGGER.Info(message, "sub", utils.GetSubInfo(c), "obj", objInfo)
}

func FetchImage(c *gin.Context) {
	id, err := pathID(c, "image")
	if err != nil {
		respondError(c, err, "Failed to retrieve image")
		return
	}
	image, err := initializers.UPLOADS.GetImage(c.Request.Context(), utils.GetPrincipal(c), id)
	if err != nil {
		respondError(c, err, "Failed to retrieve image")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Image retrieved successfully",
		"image":   image,
	})
}

// RemoveImage deletes an image of the current user along with its blob.
func RemoveImage(c *gin.Context) {
	id, err := pathID(c, "image")
	if err != nil {
		respondError(c, err, "Failed to delete image")
		return
	}
	if err := initializers.UPLOADS.DeleteImage(c.Request.Context(), utils.GetPrincipal(c), id); err != nil {
		respondError(c, err, "Failed to delete image")
		return
	}

	// [Prepare the object information for logging]
	objInfo := utils.ObjInfo{
		Op:    utils.OpDelete,
		Table: "uploaded_images",
		ID:    id,
	}

	message := "Image deleted successfully"
	c.JSON(http.StatusOK, gin.H{
		"message": message,
	})
	initializers.LOGGER.Warn(message, "sub", utils.GetSubInfo(c), "obj", objInfo)
}

func UploadFile(c *gin.Context) {
	p := utils.GetPrincipal(c)
	u, closeBody, err := formUpload(c, "file")
	if err != nil {
		respondError(c, err, "Failed to upload file")
		return
	}
	defer closeBody()

	file, err := initializers.UPLOADS.UploadFile(c.Request.Context(), p, u)
	if err != nil {
		respondError(c, err, "Failed to upload file")
		return
	}

	// [Prepare the object information for logging]
	objInfo := utils.ObjInfo{
		Op:    utils.OpCreate,
		Table: "uploaded_files",
		ID:    file.ID,
	}

	message := "File uploaded successfully"
	c.JSON(http.StatusCreated, gin.H{
		"message": message,
		"file":    file,
	})
	initializers.LOGGER.Info(message, "sub", utils.GetSubInfo(c), "obj", objInfo)
}

func FetchFile(c *gin.Context) {
	id, err := pathID(c, "file")
	if err != nil {
		respondError(c, err, "Failed to retrieve file")
		return
	}
	file, err := initializers.UPLOADS.GetFile(c.Request.Context(), utils.GetPrincipal(c), id)
	if err != nil {
		respondError(c, err, "Failed to retrieve file")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "File retrieved successfully",
		"file":    file,
	})
}
