package payments_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"woodlinks-backend/internal/models"
	"woodlinks-backend/internal/payments"
)

func TestPriceFor(t *testing.T) {
	tests := []struct {
		material models.Material
		quantity int
		total    int64
	}{
		{models.MaterialSugi, 1, 330},
		{models.MaterialSugi, 100, 33000},
		{models.MaterialHinoki, 3, 1320},
		{models.MaterialKeyaki, 250, 137500},
	}

	for _, tt := range tests {
		t.Run(string(tt.material), func(t *testing.T) {
			quote, err := payments.PriceFor(tt.material, tt.quantity)
			require.NoError(t, err)
			assert.Equal(t, tt.total, quote.Total)
			assert.Equal(t, tt.quantity, quote.Quantity)
		})
	}
}

func TestPriceFor_Errors(t *testing.T) {
	_, err := payments.PriceFor("oak", 1)
	assert.ErrorIs(t, err, payments.ErrUnknownMaterial)

	_, err = payments.PriceFor(models.MaterialSugi, 0)
	assert.Error(t, err)
}
