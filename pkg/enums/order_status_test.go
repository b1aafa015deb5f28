package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("out_for_delivery")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusOutForDelivery, status)

	_, err = ParseOrderStatus("shipped")
	assert.Error(t, err)
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.True(t, OrderStatusDelivered.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.False(t, OrderStatusPending.IsTerminal())
	assert.False(t, OrderStatusOutForDelivery.IsTerminal())
}

func TestParsePaymentMethod(t *testing.T) {
	method, err := ParsePaymentMethod("mobile_money")
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodMobileMoney, method)

	_, err = ParsePaymentMethod("bitcoin")
	assert.Error(t, err)
}

func TestParseUserRole(t *testing.T) {
	role, err := ParseUserRole("vendor")
	require.NoError(t, err)
	assert.Equal(t, UserRoleVendor, role)

	_, err = ParseUserRole("admin")
	assert.Error(t, err)
}
