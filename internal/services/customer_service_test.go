package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerCRUD(t *testing.T) {
	db := openTestDB(t)
	customers := NewCustomerService(db)

	created, err := customers.Create(CustomerInput{
		CustomerName: "Vandelay Industries",
		ContactName:  "Art Vandelay",
		ContactEmail: "art@vandelay.example",
	})
	require.NoError(t, err)

	var validation *ValidationError
	_, err = customers.Create(CustomerInput{CustomerName: "Vandelay Industries"})
	require.ErrorAs(t, err, &validation)
	_, err = customers.Create(CustomerInput{CustomerName: "   "})
	require.ErrorAs(t, err, &validation)

	updated, err := customers.Update(created.ID, CustomerInput{
		CustomerName: "Vandelay Industries Ltd",
		ContactEmail: "sales@vandelay.example",
	})
	require.NoError(t, err)
	assert.Equal(t, "Vandelay Industries Ltd", updated.CustomerName)

	listed, err := customers.List("vandelay")
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, customers.Delete(created.ID))
	_, err = customers.Get(created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCustomerDeleteBlockedByRMAs(t *testing.T) {
	f := newFixture(t)
	customers := NewCustomerService(f.db)

	rma := f.createRMA(t)
	err := customers.Delete(rma.CustomerID)
	assert.ErrorIs(t, err, ErrPreconditionFailed)

	require.NoError(t, f.rmas.Delete(rma.ID))
	require.NoError(t, customers.Delete(rma.CustomerID))
}
