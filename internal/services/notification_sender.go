package services

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/Maxiflexy/MonieBank/internal/dtos"
	"github.com/Maxiflexy/MonieBank/internal/utils"
)

const emailNotificationsTopic = "email-notifications"

// NotificationSender hands notification events to the delivery
// collaborator. The auth service never sends email itself.
type NotificationSender interface {
	SendEmailNotification(ctx context.Context, notification *dtos.EmailNotification) error
	Close() error
}

type kafkaNotificationSender struct {
	writer *kafka.Writer
}

func NewKafkaNotificationSender(brokers []string) NotificationSender {
	return &kafkaNotificationSender{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  emailNotificationsTopic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
	}
}

func (s *kafkaNotificationSender) SendEmailNotification(ctx context.Context, notification *dtos.EmailNotification) error {
	value, err := json.Marshal(notification)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(notification.RecipientEmail),
		Value: value,
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to publish %s notification", notification.NotificationType)
		return err
	}

	utils.Logger.Debugf("Published %s notification for %s", notification.NotificationType, notification.RecipientEmail)
	return nil
}

func (s *kafkaNotificationSender) Close() error {
	return s.writer.Close()
}
