package handlers

import (
	"strconv"

	"content-review-cms/middleware"
	"content-review-cms/models"

	"github.com/gin-gonic/gin"
)

// HeaderContentPassword carries the password of PASSWORD protected content.
const HeaderContentPassword = "X-Content-Password"

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func parseContentParam(c *gin.Context) (models.ContentIdentity, error) {
	contentType, err := models.ParseContentType(c.Param("type"))
	if err != nil {
		return models.ContentIdentity{}, err
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return models.ContentIdentity{}, strconv.ErrSyntax
	}
	return models.ContentIdentity{ContentID: id, ContentType: contentType}, nil
}

// accessCredentials collects what the caller presented: an optional content
// password and, when authenticated, the caller's id.
func accessCredentials(c *gin.Context) models.ContentAccessCredentials {
	var creds models.ContentAccessCredentials
	if password := c.GetHeader(HeaderContentPassword); password != "" {
		creds.Password = &password
	}
	if user, ok := middleware.CurrentUser(c); ok {
		creds.User = models.UserIDCredential(user.ID)
	}
	return creds
}
