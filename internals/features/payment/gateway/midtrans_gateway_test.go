package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokoku_backend/internals/features/payment/gateway/rates"
)

type fixedRateFetcher struct {
	rate float64
}

func (f fixedRateFetcher) FetchUSDToIDR(ctx context.Context) (float64, error) {
	return f.rate, nil
}

func TestMapMidtransStatus(t *testing.T) {
	// capture tergantung fraud_status
	assert.Equal(t, StatusApproved, MapMidtransStatus("capture", "accept"))
	assert.Equal(t, StatusApproved, MapMidtransStatus("capture", ""))
	assert.Equal(t, StatusInProcess, MapMidtransStatus("capture", "challenge"))

	assert.Equal(t, StatusApproved, MapMidtransStatus("settlement", ""))
	assert.Equal(t, StatusPending, MapMidtransStatus("pending", ""))
	assert.Equal(t, StatusRejected, MapMidtransStatus("deny", ""))
	assert.Equal(t, StatusRejected, MapMidtransStatus("failure", ""))
	assert.Equal(t, StatusCancelled, MapMidtransStatus("cancel", ""))
	assert.Equal(t, StatusCancelled, MapMidtransStatus("expire", ""))
	assert.Equal(t, StatusRefunded, MapMidtransStatus("refund", ""))
	assert.Equal(t, StatusRefunded, MapMidtransStatus("partial_refund", ""))
	assert.Equal(t, StatusUnknown, MapMidtransStatus("authorize", ""))
}

func TestUsdToIDRUsesRateCache(t *testing.T) {
	cache := rates.NewCache(fixedRateFetcher{rate: 16000}, nil, time.Hour)
	g := NewMidtransGateway("SB-server-key", false, cache, "", "")

	require.Equal(t, int64(160000), g.UsdToIDR(context.Background(), 10))
	// Dibulatkan ke rupiah terdekat
	require.Equal(t, int64(168000), g.UsdToIDR(context.Background(), 10.5))
	require.Equal(t, int64(8000), g.UsdToIDR(context.Background(), 0.5))
}

func TestTruncateAndSafeItemID(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "abcde", truncate("abcdefgh", 5))
	assert.NotEmpty(t, safeItemID(""))
}
