package routes

import (
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// Frontend serves the single-page app from dir for any unmatched GET. Unknown
// paths fall back to index.html so client-side routing keeps working.
func Frontend(dir string) func(c *gin.Context) {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}

		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+c.Request.URL.Path)))
		if serveFile(c, name) {
			return
		}
		if serveFile(c, filepath.Join(dir, "index.html")) {
			return
		}

		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	}
}

// serveFile writes an already resolved file. http.ServeFile is not used since
// it re-validates the raw request path, which would reject fallbacks for
// paths containing "..".
func serveFile(c *gin.Context, name string) bool {
	file, err := os.Open(name)
	if err != nil {
		return false
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Printf("failed to close %s: %v", name, err)
		}
	}()

	info, err := file.Stat()
	if err != nil || info.IsDir() {
		return false
	}

	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), file)
	return true
}
