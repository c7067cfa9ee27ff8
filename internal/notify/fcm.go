package notify

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCM implements Publisher over Firebase Cloud Messaging topics.
type FCM struct {
	client *messaging.Client
}

// NewFCM connects to the project's messaging service. With an empty
// credentialsFile the SDK falls back to application default credentials.
func NewFCM(ctx context.Context, projectID, credentialsFile string) (*FCM, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, &Error{Message: "failed to initialize Firebase app", Cause: err}
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, &Error{Message: "failed to create messaging client", Cause: err}
	}

	return &FCM{client: client}, nil
}

// Publish sends a topic message with a notification payload and opaque
// data for client-side deep-linking.
func (f *FCM) Publish(ctx context.Context, topic, title, body string, data map[string]string) error {
	_, err := f.client.Send(ctx, &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	})
	if err != nil {
		return &Error{Topic: topic, Message: "publish failed", Cause: err}
	}
	return nil
}
