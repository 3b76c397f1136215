package rabbitmq

import (
	"errors"
	"testing"

	"yamdb/pkg/mail"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAck struct {
	mock.Mock
}

func (m *mockAck) Ack(multiple bool) error {
	return m.Called(multiple).Error(0)
}

func (m *mockAck) Nack(multiple, requeue bool) error {
	return m.Called(multiple, requeue).Error(0)
}

func TestProcess_AcksDeliveredMessage(t *testing.T) {
	body, err := encode(mail.Message{To: "a@x.com", Subject: "code", Body: "123456"})
	require.NoError(t, err)

	var delivered mail.Message
	sender := mail.SenderFunc(func(m mail.Message) error {
		delivered = m
		return nil
	})

	ack := new(mockAck)
	ack.On("Ack", false).Return(nil).Once()

	process(ack, body, 1, sender)

	ack.AssertExpectations(t)
	assert.Equal(t, "a@x.com", delivered.To)
	assert.Equal(t, "123456", delivered.Body)
}

func TestProcess_RequeuesOnSendFailure(t *testing.T) {
	body, err := encode(mail.Message{To: "a@x.com"})
	require.NoError(t, err)

	ack := new(mockAck)
	ack.On("Nack", false, true).Return(nil).Once()

	process(ack, body, 2, mail.SenderFunc(func(mail.Message) error { return errors.New("smtp down") }))

	ack.AssertExpectations(t)
}

func TestProcess_DropsGarbage(t *testing.T) {
	ack := new(mockAck)
	ack.On("Nack", false, false).Return(nil).Twice()

	called := false
	sender := mail.SenderFunc(func(mail.Message) error { called = true; return nil })

	process(ack, []byte("not json"), 3, sender)
	process(ack, []byte(`{"subject":"no recipient"}`), 4, sender)

	ack.AssertExpectations(t)
	assert.False(t, called)
}
