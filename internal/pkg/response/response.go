package response

import "github.com/gin-gonic/gin"

// Every endpoint answers with the same envelope the capture surfaces expect:
// {"success": true, "data": ...} or {"success": false, "error": "..."}.

func Success(c *gin.Context, data interface{}) {
	if data == nil {
		c.JSON(200, gin.H{"success": true})
		return
	}
	c.JSON(200, gin.H{"success": true, "data": data})
}

func Error(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}
