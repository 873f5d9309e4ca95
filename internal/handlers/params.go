package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

func parseUintParam(c *gin.Context, name string, out *uint) error {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return err
	}
	*out = uint(v)
	return nil
}
