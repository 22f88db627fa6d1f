package reporting

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/cloudboard/cloudboard/internal/errors"
)

// ResourceCounts is the deployed-resource tally shown on the dashboard.
type ResourceCounts struct {
	Lambdas int `json:"lambdas"`
	Tables  int `json:"tables"`
	Queues  int `json:"queues"`
	Streams int `json:"streams"`
}

type lambdaAPI interface {
	ListFunctions(ctx context.Context, in *lambda.ListFunctionsInput, opts ...func(*lambda.Options)) (*lambda.ListFunctionsOutput, error)
}

type tablesAPI interface {
	ListTables(ctx context.Context, in *dynamodb.ListTablesInput, opts ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error)
}

type queuesAPI interface {
	ListQueues(ctx context.Context, in *sqs.ListQueuesInput, opts ...func(*sqs.Options)) (*sqs.ListQueuesOutput, error)
}

type streamsAPI interface {
	ListStreams(ctx context.Context, in *kinesis.ListStreamsInput, opts ...func(*kinesis.Options)) (*kinesis.ListStreamsOutput, error)
}

// ResourceService counts deployed Lambda functions, DynamoDB tables, SQS
// queues, and Kinesis streams in the account.
type ResourceService struct {
	lambdas lambdaAPI
	tables  tablesAPI
	queues  queuesAPI
	streams streamsAPI
}

// NewResourceService creates a resource counter over an already-configured
// AWS config.
func NewResourceService(cfg aws.Config) *ResourceService {
	return &ResourceService{
		lambdas: lambda.NewFromConfig(cfg),
		tables:  dynamodb.NewFromConfig(cfg),
		queues:  sqs.NewFromConfig(cfg),
		streams: kinesis.NewFromConfig(cfg),
	}
}

// Counts tallies the four resource kinds concurrently. Any single listing
// failure fails the whole report.
func (s *ResourceService) Counts(ctx context.Context) (ResourceCounts, error) {
	var counts ResourceCounts

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.countLambdas(ctx)
		counts.Lambdas = n
		return err
	})
	g.Go(func() error {
		n, err := s.countTables(ctx)
		counts.Tables = n
		return err
	})
	g.Go(func() error {
		n, err := s.countQueues(ctx)
		counts.Queues = n
		return err
	})
	g.Go(func() error {
		n, err := s.countStreams(ctx)
		counts.Streams = n
		return err
	})
	if err := g.Wait(); err != nil {
		return ResourceCounts{}, err
	}
	return counts, nil
}

func (s *ResourceService) countLambdas(ctx context.Context) (int, error) {
	total := 0
	var marker *string
	for {
		out, err := s.lambdas.ListFunctions(ctx, &lambda.ListFunctionsInput{Marker: marker})
		if err != nil {
			return 0, apperrors.Wrap(err, apperrors.ErrCodeProvider, "list functions")
		}
		total += len(out.Functions)
		if out.NextMarker == nil {
			return total, nil
		}
		marker = out.NextMarker
	}
}

func (s *ResourceService) countTables(ctx context.Context) (int, error) {
	total := 0
	var start *string
	for {
		out, err := s.tables.ListTables(ctx, &dynamodb.ListTablesInput{ExclusiveStartTableName: start})
		if err != nil {
			return 0, apperrors.Wrap(err, apperrors.ErrCodeProvider, "list tables")
		}
		total += len(out.TableNames)
		if out.LastEvaluatedTableName == nil {
			return total, nil
		}
		start = out.LastEvaluatedTableName
	}
}

func (s *ResourceService) countQueues(ctx context.Context) (int, error) {
	total := 0
	var token *string
	for {
		out, err := s.queues.ListQueues(ctx, &sqs.ListQueuesInput{NextToken: token})
		if err != nil {
			return 0, apperrors.Wrap(err, apperrors.ErrCodeProvider, "list queues")
		}
		total += len(out.QueueUrls)
		if out.NextToken == nil {
			return total, nil
		}
		token = out.NextToken
	}
}

func (s *ResourceService) countStreams(ctx context.Context) (int, error) {
	total := 0
	var start *string
	for {
		out, err := s.streams.ListStreams(ctx, &kinesis.ListStreamsInput{ExclusiveStartStreamName: start})
		if err != nil {
			return 0, apperrors.Wrap(err, apperrors.ErrCodeProvider, "list streams")
		}
		total += len(out.StreamNames)
		if !aws.ToBool(out.HasMoreStreams) || len(out.StreamNames) == 0 {
			return total, nil
		}
		start = &out.StreamNames[len(out.StreamNames)-1]
	}
}
