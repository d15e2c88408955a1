package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type fakeSNSClient struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNSClient) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSNSPublisherSendSuccess(t *testing.T) {
	client := &fakeSNSClient{}
	pub := &snsPublisher{
		id:       "topic",
		topicARN: "arn:aws:sns:::topic",
		client:   client,
		log:      noopLogger{},
	}

	err := pub.Publish(context.Background(), Event{Action: "updated", ContactID: "c2"})
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if client.input == nil {
		t.Fatalf("client was not called")
	}
	if got := aws.ToString(client.input.TopicArn); got != "arn:aws:sns:::topic" {
		t.Fatalf("TopicArn = %s", got)
	}
	attr, ok := client.input.MessageAttributes["action"]
	if !ok || aws.ToString(attr.StringValue) != "updated" || aws.ToString(attr.DataType) != "String" {
		t.Fatalf("action attribute missing or wrong: %#v", attr)
	}
	if !strings.Contains(aws.ToString(client.input.Message), `"contact_id":"c2"`) {
		t.Fatalf("Message missing contact_id: %s", aws.ToString(client.input.Message))
	}
}

func TestSNSPublisherSendError(t *testing.T) {
	pub := &snsPublisher{
		id:       "topic",
		topicARN: "arn:aws:sns:::topic",
		client:   &fakeSNSClient{err: errors.New("boom")},
		log:      noopLogger{},
	}

	if err := pub.Publish(context.Background(), Event{ContactID: "c2"}); err == nil {
		t.Fatalf("expected error from Publish")
	}
}

func TestNewSNSPublisherWithStaticCredentials(t *testing.T) {
	pub, err := newSNSPublisher(context.Background(), SinkConfig{
		ID:   "topic",
		Type: TypeSNS,
		SNS: &SNSSinkConfig{
			TopicARN: "arn:aws:sns:us-east-1:000000000000:contacts",
			Region:   "us-east-1",
			Endpoint: "http://localhost:4566",
			Credentials: &AWSCredentials{
				AccessKeyID:     "test",
				SecretAccessKey: "test",
			},
		},
	}, nil)
	if err != nil {
		t.Fatalf("newSNSPublisher: %v", err)
	}
	if pub.Type() != TypeSNS || pub.ID() != "topic" {
		t.Fatalf("unexpected publisher %s/%s", pub.Type(), pub.ID())
	}
}
