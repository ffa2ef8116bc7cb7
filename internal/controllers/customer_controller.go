package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rmatrack/backend/internal/services"
)

type CustomerController struct {
	customers *services.CustomerService
}

func NewCustomerController(customers *services.CustomerService) *CustomerController {
	return &CustomerController{customers: customers}
}

func (cc *CustomerController) List(c *gin.Context) {
	customers, err := cc.customers.List(c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "customers": customers})
}

func (cc *CustomerController) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	customer, err := cc.customers.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "customer": customer})
}

type CustomerRequest struct {
	CustomerName string `json:"customerName" binding:"required"`
	ContactName  string `json:"contactName"`
	ContactEmail string `json:"contactEmail"`
}

func (cc *CustomerController) Create(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	customer, err := cc.customers.Create(services.CustomerInput{
		CustomerName: req.CustomerName,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Customer created", "customer": customer})
}

func (cc *CustomerController) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	customer, err := cc.customers.Update(id, services.CustomerInput{
		CustomerName: req.CustomerName,
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Customer updated", "customer": customer})
}

func (cc *CustomerController) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := cc.customers.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Customer deleted"})
}
