package utils

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ProgramMysticxxx/blog-project/access"
)

// PrincipalKey is the context key of the principal resolved by the
// authentication middleware.
const PrincipalKey = "principal"

// GetPrincipal returns the principal of the request, anonymous when none was
// resolved.
func GetPrincipal(c *gin.Context) access.Principal {
	if p, ok := c.Get(PrincipalKey); ok {
		if principal, ok := p.(access.Principal); ok {
			return principal
		}
	}
	return access.Principal{}
}

// SubInfo is a struct that holds information about the subject of the request.
// It includes the user's IP address, ID, and username.
type SubInfo struct {
	IP       string `json:"ip"`
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// GetSubInfo returns a SubInfo struct from the context.
func GetSubInfo(c *gin.Context) *SubInfo {
	p := GetPrincipal(c)
	return &SubInfo{
		IP:       c.ClientIP(),
		ID:       p.ID,
		Username: p.Username,
	}
}

// GetRawBody returns the raw body string from the context.
func GetRawBody(c *gin.Context) string {
	bodyBytes, _ := io.ReadAll(c.Request.Body)
	// Reset the request body so it can be read in the handler
	c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	return string(bodyBytes)
}

// GetParsedBody returns the parsed body from the raw body string.
// If the string cannot be parsed to JSON, it returns nil.
func GetParsedBody(rawBody string) map[string]interface{} {
	rawBodyBytes := []byte(rawBody)
	var parsedBody map[string]interface{}
	if err := json.Unmarshal(rawBodyBytes, &parsedBody); err != nil {
		return nil
	}
	return parsedBody
}

// GetParsedQuery returns the parsed query from the context.
func GetParsedQuery(c *gin.Context) map[string]interface{} {
	parsedQuery := make(map[string]interface{})
	for key, values := range c.Request.URL.Query() {
		parsedQuery[key] = strings.Join(values, ",")
	}
	return parsedQuery
}

// ObjInfo is a struct that holds information about the object of the request.
type ObjInfo struct {
	Op    string `json:"op"`
	Table string `json:"table"`
	ID    uint   `json:"id,omitempty"`
	Key   string `json:"key,omitempty"`
}

// ObjInfo.Op is the operation type of the request.
// It can be one of the following values:
const (
	OpCreate = "CREATE"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

// DataInfo is a struct that holds information about the data of the request.
type DataInfo struct {
	OldData map[string]interface{} `json:"old_data"`
	NewData map[string]interface{} `json:"new_data"`
}
