package rabbitmq

import (
	"errors"
	"testing"

	json "github.com/goccy/go-json"
	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"laptopcatalog/internal/models"
)

// MockAcknowledger records how a delivery was settled.
type MockAcknowledger struct {
	mock.Mock
}

func (m *MockAcknowledger) Ack(tag uint64, multiple bool) error {
	return m.Called(tag, multiple).Error(0)
}

func (m *MockAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	return m.Called(tag, multiple, requeue).Error(0)
}

func (m *MockAcknowledger) Reject(tag uint64, requeue bool) error {
	return m.Called(tag, requeue).Error(0)
}

func delivery(t *testing.T, ack amqp.Acknowledger, body []byte) amqp.Delivery {
	t.Helper()
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: 7, Body: body}
}

func TestHandleDelivery_AcksHandledEvent(t *testing.T) {
	ack := new(MockAcknowledger)
	ack.On("Ack", uint64(7), false).Return(nil).Once()

	body, _ := json.Marshal(models.LaptopEvent{Type: models.LaptopDeleted, LaptopID: "abc"})
	c := &Client{logger: zap.NewNop()}

	var got models.LaptopEvent
	c.handleDelivery(delivery(t, ack, body), func(e models.LaptopEvent) error {
		got = e
		return nil
	})

	assert.Equal(t, models.LaptopDeleted, got.Type)
	assert.Equal(t, "abc", got.LaptopID)
	ack.AssertExpectations(t)
}

func TestHandleDelivery_RequeuesOnHandlerError(t *testing.T) {
	ack := new(MockAcknowledger)
	ack.On("Nack", uint64(7), false, true).Return(nil).Once()

	body, _ := json.Marshal(models.LaptopEvent{Type: models.LaptopCreated, LaptopID: "abc"})
	c := &Client{logger: zap.NewNop()}

	c.handleDelivery(delivery(t, ack, body), func(models.LaptopEvent) error {
		return errors.New("cache unavailable")
	})

	ack.AssertExpectations(t)
}

func TestHandleDelivery_DropsGarbage(t *testing.T) {
	ack := new(MockAcknowledger)
	ack.On("Nack", uint64(7), false, false).Return(nil).Once()

	c := &Client{logger: zap.NewNop()}
	called := false
	c.handleDelivery(delivery(t, ack, []byte("{not json")), func(models.LaptopEvent) error {
		called = true
		return nil
	})

	assert.False(t, called)
	ack.AssertExpectations(t)
}

func TestPublishWithoutChannel(t *testing.T) {
	c := &Client{logger: zap.NewNop()}
	err := c.PublishLaptopEvent(models.LaptopEvent{Type: models.LaptopCreated})
	assert.Error(t, err)
	assert.NoError(t, c.Close())
}
