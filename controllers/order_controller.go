package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/petcode/petcode-api/config"
	"github.com/petcode/petcode-api/models"
	"gorm.io/gorm"
)

// UpdateAddressRequest represents the request body for an order address
// edit. The full address tuple is always required; partial updates are
// not supported.
type UpdateAddressRequest struct {
	Address    string `json:"address" binding:"required"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

// UpdateStatusRequest represents the request body for an admin status change
type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// GetMyOrders handles GET /api/v1/orders - lists the caller's QR orders, newest first
func GetMyOrders(c *gin.Context) {
	client, ok := loadCurrentClient(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var orders []models.QROrder
	if err := db.Where("client_id = ?", client.ID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load orders",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// UpdateOrderAddress handles PUT /api/v1/orders/:id/address - owner edit
// of the shipping address, allowed only while the order is still pending
func UpdateOrderAddress(c *gin.Context) {
	client, ok := loadCurrentClient(c)
	if !ok {
		return
	}

	var req UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Address, city, postal code and country are all required",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	var order models.QROrder
	if err := db.Where("id = ? AND client_id = ?", c.Param("id"), client.ID).
		First(&order).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ORDER_NOT_FOUND",
					"message": "Order not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load order",
			},
		})
		return
	}

	// The address is frozen once the QR code goes to print
	if !order.Status.AllowsAddressEdit() {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ADDRESS_LOCKED",
				"message": "The shipping address can only be changed while the order is pending",
			},
		})
		return
	}

	updates := map[string]interface{}{
		"client_address":     req.Address,
		"client_city":        req.City,
		"client_postal_code": req.PostalCode,
		"client_country":     req.Country,
	}
	if err := db.Model(&order).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update shipping address",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// requireAdmin resolves the caller and checks the administrator role.
// The role lives on the client record, not in the token.
func requireAdmin(c *gin.Context) (*models.Client, bool) {
	client, ok := loadCurrentClient(c)
	if !ok {
		return nil, false
	}

	if !client.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Administrator access required",
			},
		})
		return nil, false
	}

	return client, true
}

// GetAllOrders handles GET /api/v1/admin/orders - lists every order for
// the fulfillment dashboard, with per-status counts and an optional
// ?status= filter
func GetAllOrders(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	db := config.GetDB()

	query := db.Model(&models.QROrder{}).Order("created_at DESC")
	if statusFilter := c.Query("status"); statusFilter != "" {
		status := models.OrderStatus(statusFilter)
		if !status.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_STATUS",
					"message": "Unknown order status",
				},
			})
			return
		}
		query = query.Where("status = ?", status)
	}

	var orders []models.QROrder
	if err := query.Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load orders",
			},
		})
		return
	}

	// Dashboard stats are always computed over all orders, regardless of
	// the active filter
	type statusCount struct {
		Status models.OrderStatus
		Count  int64
	}
	var counts []statusCount
	if err := db.Model(&models.QROrder{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&counts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load order stats",
			},
		})
		return
	}

	stats := gin.H{
		"total":     int64(0),
		"pendiente": int64(0),
		"impreso":   int64(0),
		"enviado":   int64(0),
		"cancelado": int64(0),
	}
	var total int64
	for _, sc := range counts {
		stats[string(sc.Status)] = sc.Count
		total += sc.Count
	}
	stats["total"] = total

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"orders": orders,
			"stats":  stats,
		},
	})
}

// UpdateOrderStatus handles PUT /api/v1/admin/orders/:id/status - moves
// an order through the fulfillment pipeline. Transitions only go
// forward; cancelado is the escape hatch from any non-terminal state.
func UpdateOrderStatus(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Status is required",
				"details": err.Error(),
			},
		})
		return
	}

	if !req.Status.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATUS",
				"message": "Unknown order status",
			},
		})
		return
	}

	db := config.GetDB()
	var order models.QROrder
	if err := db.First(&order, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ORDER_NOT_FOUND",
					"message": "Order not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load order",
			},
		})
		return
	}

	if !order.Status.CanTransitionTo(req.Status) {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_STATUS_TRANSITION",
				"message": "Cannot move order from '" + string(order.Status) + "' to '" + string(req.Status) + "'",
			},
		})
		return
	}

	if err := db.Model(&order).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update order status",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}
