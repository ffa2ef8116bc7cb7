package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/rmatrack/backend/internal/models"
)

// CustomerService manages the customer directory.
type CustomerService struct {
	db *gorm.DB
}

// NewCustomerService creates a new customer service.
func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{db: db}
}

// List returns customers sorted by name, optionally filtered by a substring
// search on the name.
func (cs *CustomerService) List(search string) ([]models.Customer, error) {
	query := cs.db.Model(&models.Customer{})
	if search != "" {
		query = query.Where("LOWER(customer_name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	var customers []models.Customer
	if err := query.Order("customer_name ASC").Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

// Get loads one customer.
func (cs *CustomerService) Get(id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := cs.db.First(&customer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}
	return &customer, nil
}

// CustomerInput carries the editable customer fields.
type CustomerInput struct {
	CustomerName string
	ContactName  string
	ContactEmail string
}

// Create adds a customer. Names must be unique.
func (cs *CustomerService) Create(input CustomerInput) (*models.Customer, error) {
	name := strings.TrimSpace(input.CustomerName)
	if name == "" {
		return nil, validationErr("customerName", "customer name is required")
	}

	var existing models.Customer
	if err := cs.db.Where("customer_name = ?", name).First(&existing).Error; err == nil {
		return nil, validationErr("customerName", "customer name already exists")
	}

	customer := models.Customer{
		CustomerName: name,
		ContactName:  input.ContactName,
		ContactEmail: input.ContactEmail,
	}
	if err := cs.db.Create(&customer).Error; err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return &customer, nil
}

// Update overwrites the customer's fields.
func (cs *CustomerService) Update(id uint, input CustomerInput) (*models.Customer, error) {
	name := strings.TrimSpace(input.CustomerName)
	if name == "" {
		return nil, validationErr("customerName", "customer name is required")
	}

	customer, err := cs.Get(id)
	if err != nil {
		return nil, err
	}

	var conflict models.Customer
	if err := cs.db.Where("customer_name = ? AND id <> ?", name, id).First(&conflict).Error; err == nil {
		return nil, validationErr("customerName", "customer name already exists")
	}

	if err := cs.db.Model(customer).Updates(map[string]interface{}{
		"customer_name": name,
		"contact_name":  input.ContactName,
		"contact_email": input.ContactEmail,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	return customer, nil
}

// Delete removes a customer. Blocked while any RMA still references it.
func (cs *CustomerService) Delete(id uint) error {
	customer, err := cs.Get(id)
	if err != nil {
		return err
	}

	var count int64
	if err := cs.db.Model(&models.RMA{}).Where("customer_id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count customer RMAs: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("customer has %d RMAs: %w", count, ErrPreconditionFailed)
	}

	if err := cs.db.Delete(customer).Error; err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return nil
}
