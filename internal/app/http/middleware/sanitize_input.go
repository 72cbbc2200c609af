package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy = bluemonday.StrictPolicy()

	// Only entities for plain punctuation come back; &lt; and &gt; stay
	// encoded so nothing the policy escaped can turn back into a tag.
	plainText = strings.NewReplacer("&#39;", "'", "&#34;", `"`, "&amp;", "&")
)

// SanitizeAndCleanInputMiddleware strips markup from every string in a JSON
// object body, including nested objects and arrays. Password fields are left
// alone.
func SanitizeAndCleanInputMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost &&
			c.Request.Method != http.MethodPut &&
			c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		buf, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
			return
		}
		if len(bytes.TrimSpace(buf)) == 0 {
			c.Request.Body = io.NopCloser(bytes.NewReader(buf))
			c.Next()
			return
		}

		var body map[string]interface{}
		dec := json.NewDecoder(bytes.NewReader(buf))
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Malformed JSON"})
			return
		}

		for k, v := range body {
			body[k] = sanitizeValue(k, v)
		}

		newBody, _ := json.Marshal(body)
		c.Request.Body = io.NopCloser(bytes.NewBuffer(newBody))
		c.Request.ContentLength = int64(len(newBody))

		c.Next()
	}
}

func sanitizeValue(key string, v interface{}) interface{} {
	switch x := v.(type) {
	case string:
		if strings.Contains(strings.ToLower(key), "password") {
			return x
		}
		return plainText.Replace(strictPolicy.Sanitize(x))
	case map[string]interface{}:
		for k, inner := range x {
			x[k] = sanitizeValue(k, inner)
		}
		return x
	case []interface{}:
		for i, inner := range x {
			x[i] = sanitizeValue(key, inner)
		}
		return x
	default:
		return v
	}
}
