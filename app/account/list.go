// Package account contains staff-only account endpoints
package account

import (
	"net/http"
	"strconv"

	"iskacare/clinic-api/app/respond"
	"iskacare/clinic-api/internal"

	"github.com/gin-gonic/gin"
)

// List returns a page of accounts, newest first
func List(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message":   "Page must be a number",
			"requestID": requestID,
		})
		return
	}

	if page < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"message":   "Page can't be negative",
			"requestID": requestID,
		})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message":   "Limit must be a number",
			"requestID": requestID,
		})
		return
	}

	if limit <= 0 || limit > 250 {
		c.JSON(http.StatusBadRequest, gin.H{
			"message":   "Limit must be between 1 and 250",
			"requestID": requestID,
		})
		return
	}

	accounts, err := d.Auth.Accounts(c.Request.Context(), limit, page*limit)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": accounts,
		"page":  page,
	})
}
