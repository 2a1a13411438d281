package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNotification() *BookingNotification {
	return NewNotificationBuilder().
		WithType(TypePaymentRecorded).
		WithBooking(BookingSnapshot{
			ID:              uuid.New(),
			Reference:       "BK-000007",
			EventID:         uuid.New(),
			CustomerEmail:   "guest@example.com",
			Status:          "confirmed",
			PaymentStatus:   "paid",
			TotalAmount:     50000,
			AmountPaid:      50000,
			RemainingAmount: 0,
		}).
		WithPayment("PAY-000012", 30000, "card").
		Build()
}

func TestKafkaProducer_Publish(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	defer sp.Close()

	n := testNotification()
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got BookingNotification
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got.Type != TypePaymentRecorded || got.PaymentReference != "PAY-000012" {
			return errors.New("unexpected payload")
		}
		return nil
	})

	p := NewKafkaProducerWith(sp, DefaultKafkaProducerConfig())
	require.NoError(t, p.Publish(context.Background(), n))
}

func TestKafkaProducer_PublishFailure(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	defer sp.Close()
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewKafkaProducerWith(sp, DefaultKafkaProducerConfig())
	err := p.Publish(context.Background(), testNotification())

	require.Error(t, err)
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
}

func TestCreateHeaders(t *testing.T) {
	n := testNotification()
	headers := createHeaders(n)

	got := make(map[string]string, len(headers))
	for _, h := range headers {
		got[string(h.Key)] = string(h.Value)
	}
	assert.Equal(t, string(TypePaymentRecorded), got["notification_type"])
	assert.Equal(t, n.BookingID.String(), got["booking_id"])
	assert.Equal(t, n.BookingID.String(), n.GetPartitionKey())
}

func TestHealthCheck(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	defer sp.Close()

	assert.NoError(t, NewKafkaProducerWith(sp, DefaultKafkaProducerConfig()).HealthCheck(context.Background()))
	assert.Error(t, NewKafkaProducerWith(sp, &KafkaProducerConfig{}).HealthCheck(context.Background()))
	assert.NoError(t, NewLogProducer().Publish(context.Background(), testNotification()))
}
