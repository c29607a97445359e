package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type dynamoAPI interface {
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	TransactWriteItems(context.Context, *dynamodb.TransactWriteItemsInput, ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// dynamoMaxValueBytes keeps a document under DynamoDB's 400 KB item limit with
// room for the key and timestamp attributes.
const dynamoMaxValueBytes = 400*1024 - 1024

// ErrDocumentTooLarge means a collection outgrew what one DynamoDB item can hold.
var ErrDocumentTooLarge = errors.New("store: document exceeds the dynamodb item size limit")

// dynamoDocument is one row of the documents table, keyed by docKey.
type dynamoDocument struct {
	Key       string `dynamodbav:"docKey"`
	Value     string `dynamodbav:"value"`
	UpdatedAt string `dynamodbav:"updatedAt"`
}

// DynamoKV stores documents as items in a DynamoDB table with partition key "docKey".
type DynamoKV struct {
	client    dynamoAPI
	tableName string
}

// NewDynamoKV creates a DynamoDB backend.
func NewDynamoKV(client dynamoAPI, tableName string) *DynamoKV {
	if client == nil {
		panic("store: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("store: table name cannot be empty")
	}
	return &DynamoKV{client: client, tableName: tableName}
}

// Get reads one document with a consistent read.
func (d *DynamoKV) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.tableName),
		Key:            map[string]types.AttributeValue{"docKey": &types.AttributeValueMemberS{Value: key}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("store: dynamodb get %s: %w", key, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrKeyNotFound
	}
	var doc dynamoDocument
	if err := attributevalue.UnmarshalMap(out.Item, &doc); err != nil {
		return nil, fmt.Errorf("store: dynamodb unmarshal %s: %w", key, err)
	}
	return []byte(doc.Value), nil
}

// Commit puts every key in a single TransactWriteItems call.
func (d *DynamoKV) Commit(ctx context.Context, writes map[string][]byte) error {
	if len(writes) == 0 {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	items := make([]types.TransactWriteItem, 0, len(writes))
	for _, k := range sortedKeys(writes) {
		if n := len(writes[k]); n > dynamoMaxValueBytes {
			return fmt.Errorf("%w: %s is %d bytes", ErrDocumentTooLarge, k, n)
		}
		item, err := attributevalue.MarshalMap(dynamoDocument{Key: k, Value: string(writes[k]), UpdatedAt: now})
		if err != nil {
			return fmt.Errorf("store: dynamodb marshal %s: %w", k, err)
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{TableName: aws.String(d.tableName), Item: item},
		})
	}
	if _, err := d.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items}); err != nil {
		return fmt.Errorf("store: dynamodb commit: %w", err)
	}
	return nil
}
