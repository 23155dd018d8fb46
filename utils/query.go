package utils

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ProgramMysticxxx/blog-project/services"
)

// ParseID parses a path or query id. Zero is never a valid id.
func ParseID(s string) (uint, bool) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// QueryFlag reports whether the flag key is present. Its value is ignored.
func QueryFlag(c *gin.Context, key string) bool {
	_, ok := c.GetQuery(key)
	return ok
}

// QueryID reads an optional id from the query string, recording a problem in
// verr when it is malformed.
func QueryID(c *gin.Context, key string, verr *services.ValidationError) *uint {
	value, ok := c.GetQuery(key)
	if !ok || value == "" {
		return nil
	}
	id, ok := ParseID(value)
	if !ok {
		verr.Add(key, "A valid integer is required.")
		return nil
	}
	return &id
}

// QueryList splits a comma separated query value.
func QueryList(c *gin.Context, key string) []string {
	var items []string
	for _, item := range strings.Split(c.Query(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
