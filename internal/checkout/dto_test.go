package checkout

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmtolibas/cafeline-backend/pkg/enums"
)

func TestResultJSONCarriesOnlyConfirmationFields(t *testing.T) {
	cash := enums.PaymentMethodCash
	body, err := json.Marshal(Result{
		OrderCode:     "Maria00001",
		TotalAmount:   decimal.NewFromInt(240),
		Status:        enums.OrderStatusConfirmed,
		PaymentMethod: &cash,
		LineCount:     2,
		SkippedLines:  1,
	})
	require.NoError(t, err)

	// Line accounting stays on the operator path; the customer sees the
	// confirmation fields with the total at two decimal places.
	assert.JSONEq(t, `{"order_code":"Maria00001","total_amount":"240.00","status":"confirmed","payment_method":"cash"}`, string(body))
}

func TestResultJSONNullPaymentMethod(t *testing.T) {
	body, err := json.Marshal(Result{
		OrderCode:   "Maria00002",
		TotalAmount: decimal.NewFromFloat(99.5),
		Status:      enums.OrderStatusPending,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"order_code":"Maria00002","total_amount":"99.50","status":"pending","payment_method":null}`, string(body))
}
