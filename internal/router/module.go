package router

import "github.com/gin-gonic/gin"

// Module is a feature area (auth, contest, jury, admin) that mounts
// its routes on the shared /api group.
type Module interface {
	Register(rg *gin.RouterGroup)
}
