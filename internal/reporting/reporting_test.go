package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdatypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/cloudboard/cloudboard/internal/errors"
)

type fakeCostAPI struct {
	fn func(*costexplorer.GetCostAndUsageInput) (*costexplorer.GetCostAndUsageOutput, error)
}

func (f *fakeCostAPI) GetCostAndUsage(_ context.Context, in *costexplorer.GetCostAndUsageInput, _ ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error) {
	return f.fn(in)
}

func TestCostService_MonthlyCosts(t *testing.T) {
	api := &fakeCostAPI{
		fn: func(in *costexplorer.GetCostAndUsageInput) (*costexplorer.GetCostAndUsageOutput, error) {
			assert.Equal(t, cetypes.GranularityMonthly, in.Granularity)
			assert.Equal(t, []string{"UnblendedCost"}, in.Metrics)
			// Trailing year ending at the current month boundary.
			assert.Equal(t, "2023-05-01", aws.ToString(in.TimePeriod.Start))
			assert.Equal(t, "2024-05-01", aws.ToString(in.TimePeriod.End))
			return &costexplorer.GetCostAndUsageOutput{
				ResultsByTime: []cetypes.ResultByTime{
					{
						TimePeriod: &cetypes.DateInterval{Start: aws.String("2024-03-01"), End: aws.String("2024-04-01")},
						Total: map[string]cetypes.MetricValue{
							"UnblendedCost": {Amount: aws.String("12.3456"), Unit: aws.String("USD")},
						},
					},
					{
						TimePeriod: &cetypes.DateInterval{Start: aws.String("2024-04-01"), End: aws.String("2024-05-01")},
						Total: map[string]cetypes.MetricValue{
							"UnblendedCost": {Amount: aws.String("8.50"), Unit: aws.String("USD")},
						},
					},
				},
			}, nil
		},
	}
	svc := &CostService{
		client: api,
		now:    func() time.Time { return time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC) },
	}

	costs, err := svc.MonthlyCosts(context.Background())
	require.NoError(t, err)
	require.Len(t, costs, 2)
	assert.Equal(t, "2024-03-01", costs[0].Month)
	assert.InDelta(t, 12.3456, costs[0].Amount, 1e-9)
	assert.Equal(t, "USD", costs[0].Unit)
	assert.InDelta(t, 8.50, costs[1].Amount, 1e-9)
}

func TestCostService_ProviderFailure(t *testing.T) {
	api := &fakeCostAPI{
		fn: func(in *costexplorer.GetCostAndUsageInput) (*costexplorer.GetCostAndUsageOutput, error) {
			return nil, errors.New("throttled")
		},
	}
	svc := &CostService{client: api, now: time.Now}

	_, err := svc.MonthlyCosts(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsProvider(err))
}

type fakeLambdaAPI struct {
	pages [][]lambdatypes.FunctionConfiguration
	calls int
}

func (f *fakeLambdaAPI) ListFunctions(_ context.Context, in *lambda.ListFunctionsInput, _ ...func(*lambda.Options)) (*lambda.ListFunctionsOutput, error) {
	page := f.calls
	f.calls++
	out := &lambda.ListFunctionsOutput{Functions: f.pages[page]}
	if page+1 < len(f.pages) {
		out.NextMarker = aws.String("marker")
	}
	return out, nil
}

type fakeTablesAPI struct{ names []string }

func (f *fakeTablesAPI) ListTables(_ context.Context, _ *dynamodb.ListTablesInput, _ ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error) {
	return &dynamodb.ListTablesOutput{TableNames: f.names}, nil
}

type fakeQueuesAPI struct {
	urls []string
	err  error
}

func (f *fakeQueuesAPI) ListQueues(_ context.Context, _ *sqs.ListQueuesInput, _ ...func(*sqs.Options)) (*sqs.ListQueuesOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.ListQueuesOutput{QueueUrls: f.urls}, nil
}

type fakeStreamsAPI struct{ names []string }

func (f *fakeStreamsAPI) ListStreams(_ context.Context, _ *kinesis.ListStreamsInput, _ ...func(*kinesis.Options)) (*kinesis.ListStreamsOutput, error) {
	return &kinesis.ListStreamsOutput{
		StreamNames:    f.names,
		HasMoreStreams: aws.Bool(false),
	}, nil
}

func TestResourceService_Counts(t *testing.T) {
	svc := &ResourceService{
		lambdas: &fakeLambdaAPI{pages: [][]lambdatypes.FunctionConfiguration{
			make([]lambdatypes.FunctionConfiguration, 50),
			make([]lambdatypes.FunctionConfiguration, 3),
		}},
		tables:  &fakeTablesAPI{names: []string{"albums", "events"}},
		queues:  &fakeQueuesAPI{urls: []string{"https://sqs/q1"}},
		streams: &fakeStreamsAPI{names: []string{"s1", "s2", "s3"}},
	}

	counts, err := svc.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ResourceCounts{Lambdas: 53, Tables: 2, Queues: 1, Streams: 3}, counts)
}

func TestResourceService_PartialFailureFailsReport(t *testing.T) {
	svc := &ResourceService{
		lambdas: &fakeLambdaAPI{pages: [][]lambdatypes.FunctionConfiguration{nil}},
		tables:  &fakeTablesAPI{},
		queues:  &fakeQueuesAPI{err: errors.New("access denied")},
		streams: &fakeStreamsAPI{},
	}

	_, err := svc.Counts(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsProvider(err))
}
