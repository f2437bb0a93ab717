package middleware

import (
	"github.com/code-100-precent/LingMeme/pkg/constants"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// InjectDB 注入数据库实例到 Gin 上下文
func InjectDB(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(constants.DbField, db)
		c.Next()
	}
}

// GetDB 从上下文取数据库实例，未注入时返回 nil
func GetDB(c *gin.Context) *gorm.DB {
	v, ok := c.Get(constants.DbField)
	if !ok {
		return nil
	}
	db, _ := v.(*gorm.DB)
	return db
}
