// Package dynamodb implements ledger.Ledger on Amazon DynamoDB.
//
// DynamoDB conditional writes give the ledger the compare-and-swap semantics
// needed for concurrent builders: every version of a dataset is written at
// most once.
//
// Table schema:
//   - Partition key: dataset (string)
//   - Sort key: version (number) - monotonically increasing version
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name cityroads-ledger \
//	  --attribute-definitions AttributeName=dataset,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=dataset,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/cityroads/ledger"
)

// Client is the interface for DynamoDB operations.
type Client interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Store implements ledger.Ledger.
type Store struct {
	client    Client
	tableName string
}

var _ ledger.Ledger = (*Store)(nil)

// New creates a Store using the default AWS credential chain.
func New(ctx context.Context, tableName string, optFns ...func(*config.LoadOptions) error) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("dynamodb: load aws config: %w", err)
	}
	return NewStore(dynamodb.NewFromConfig(cfg), tableName), nil
}

// NewStore creates a Store on an existing client.
func NewStore(client Client, tableName string) *Store {
	return &Store{client: client, tableName: tableName}
}

// Latest queries the newest entry of dataset.
func (s *Store) Latest(ctx context.Context, dataset string) (ledger.Entry, bool, error) {
	resp, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("dataset = :ds"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ds": &types.AttributeValueMemberS{Value: dataset},
		},
		ScanIndexForward: aws.Bool(false), // Descending order
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return ledger.Entry{}, false, fmt.Errorf("dynamodb: query %s: %w", dataset, err)
	}
	if len(resp.Items) == 0 {
		return ledger.Entry{}, false, nil
	}

	e, err := decodeItem(resp.Items[0])
	if err != nil {
		return ledger.Entry{}, false, err
	}
	return e, true, nil
}

// Record writes e as the version after the latest one. If another writer
// took that version first, ledger.ErrConcurrentModification is returned and
// nothing is written.
func (s *Store) Record(ctx context.Context, e ledger.Entry) (ledger.Entry, error) {
	latest, _, err := s.Latest(ctx, e.Dataset)
	if err != nil {
		return ledger.Entry{}, err
	}

	e.Version = latest.Version + 1
	if e.BuiltAt.IsZero() {
		e.BuiltAt = time.Now().UTC()
	}

	// Conditional put: only succeed if this version doesn't exist yet
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                encodeItem(e),
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ledger.Entry{}, ledger.ErrConcurrentModification
		}
		return ledger.Entry{}, fmt.Errorf("dynamodb: record %s v%d: %w", e.Dataset, e.Version, err)
	}
	return e, nil
}

func encodeItem(e ledger.Entry) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"dataset":  &types.AttributeValueMemberS{Value: e.Dataset},
		"version":  &types.AttributeValueMemberN{Value: strconv.FormatUint(e.Version, 10)},
		"key":      &types.AttributeValueMemberS{Value: e.Key},
		"ids":      &types.AttributeValueMemberN{Value: strconv.Itoa(e.IDs)},
		"bytes":    &types.AttributeValueMemberN{Value: strconv.FormatInt(e.Bytes, 10)},
		"checksum": &types.AttributeValueMemberN{Value: strconv.FormatUint(uint64(e.Checksum), 10)},
		"built_at": &types.AttributeValueMemberS{Value: e.BuiltAt.Format(time.RFC3339Nano)},
	}
}

func decodeItem(item map[string]types.AttributeValue) (ledger.Entry, error) {
	var (
		e   ledger.Entry
		err error
	)
	str := func(name string) string {
		if err != nil {
			return ""
		}
		v, ok := item[name].(*types.AttributeValueMemberS)
		if !ok {
			err = fmt.Errorf("dynamodb: invalid %s attribute", name)
			return ""
		}
		return v.Value
	}
	num := func(name string, bits int) uint64 {
		if err != nil {
			return 0
		}
		v, ok := item[name].(*types.AttributeValueMemberN)
		if !ok {
			err = fmt.Errorf("dynamodb: invalid %s attribute", name)
			return 0
		}
		n, perr := strconv.ParseUint(v.Value, 10, bits)
		if perr != nil {
			err = fmt.Errorf("dynamodb: parse %s: %w", name, perr)
		}
		return n
	}

	e.Dataset = str("dataset")
	e.Version = num("version", 64)
	e.Key = str("key")
	e.IDs = int(num("ids", 31))
	e.Bytes = int64(num("bytes", 63))
	e.Checksum = uint32(num("checksum", 32))
	builtAt := str("built_at")
	if err != nil {
		return ledger.Entry{}, err
	}
	if e.BuiltAt, err = time.Parse(time.RFC3339Nano, builtAt); err != nil {
		return ledger.Entry{}, fmt.Errorf("dynamodb: parse built_at: %w", err)
	}
	return e, nil
}
