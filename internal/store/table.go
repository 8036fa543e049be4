package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/kellyw/taskdeck/internal/apperror"
)

// Item is a raw store record. Records cross the adapter boundary as plain
// maps so the layers above stay free of SDK types; the translator in
// internal/model turns them into entities.
type Item = map[string]any

// keyAttr is the primary key attribute of every table, string-typed.
const keyAttr = "id"

// API is the subset of the DynamoDB client the adapter uses. Tests inject a
// fake; production wiring passes *dynamodb.Client.
type API interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, opts ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Table adapts one DynamoDB table. indexes maps a secondary-index name to
// the attribute it is keyed on; Query refuses names outside this set so a
// misconfigured lookup surfaces as a domain error instead of a raw SDK one.
type Table struct {
	client  API
	name    string
	indexes map[string]string
}

// NewTable creates an adapter for the named table. indexes may be nil for
// tables queried only by primary key.
func NewTable(client API, name string, indexes map[string]string) *Table {
	idx := make(map[string]string, len(indexes))
	for k, v := range indexes {
		idx[k] = v
	}
	return &Table{client: client, name: name, indexes: idx}
}

// Name returns the backing table name.
func (t *Table) Name() string {
	return t.name
}

// Put inserts or fully overwrites the record at the item's primary key.
func (t *Table) Put(ctx context.Context, item Item) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return apperror.StoreRejected("put", err)
	}

	_, err = t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(t.name),
		Item:      av,
	})
	if err != nil {
		return t.translate("put", err)
	}
	return nil
}

// PutIfAbsent inserts the record only when no record with the same primary
// key exists. An existing key means the id generator collided; that is a
// rejected write, not a domain conflict.
func (t *Table) PutIfAbsent(ctx context.Context, item Item) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return apperror.StoreRejected("put", err)
	}

	_, err = t.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(t.name),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{
			"#pk": keyAttr,
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return apperror.StoreRejected("put", fmt.Errorf("key already exists"))
		}
		return t.translate("put", err)
	}
	return nil
}

// Get returns the record at the given key, or (nil, nil) when absent.
// Absence is not an error at this layer.
func (t *Table) Get(ctx context.Context, id string) (Item, error) {
	out, err := t.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(t.name),
		Key:       primaryKey(id),
	})
	if err != nil {
		return nil, t.translate("get", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return unmarshalItem(out.Item)
}

// Query returns every record whose indexed attribute equals value, paging
// through the index to exhaustion. The index must be one the table was
// configured with.
func (t *Table) Query(ctx context.Context, indexName, value string) ([]Item, error) {
	attr, ok := t.indexes[indexName]
	if !ok {
		return nil, apperror.IndexNotConfigured(t.name, indexName)
	}

	var (
		items    []Item
		startKey map[string]types.AttributeValue
	)
	for {
		out, err := t.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(t.name),
			IndexName:              aws.String(indexName),
			KeyConditionExpression: aws.String("#k = :v"),
			ExpressionAttributeNames: map[string]string{
				"#k": attr,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":v": &types.AttributeValueMemberS{Value: value},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, t.translate("query", err)
		}

		for _, raw := range out.Items {
			item, err := unmarshalItem(raw)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return items, nil
}

// Scan returns all records in the table, following continuation keys until
// the result set is fully materialized. filter, when non-nil, restricts the
// result to records whose listed attributes equal the given values (joined
// with AND). A scan never returns partial results on success.
func (t *Table) Scan(ctx context.Context, filter map[string]string) ([]Item, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(t.name),
	}

	if len(filter) > 0 {
		names := make(map[string]string, len(filter))
		values := make(map[string]types.AttributeValue, len(filter))
		exprs := make([]string, 0, len(filter))

		for i, attr := range sortedKeys(filter) {
			n := fmt.Sprintf("#f%d", i)
			v := fmt.Sprintf(":v%d", i)
			names[n] = attr
			values[v] = &types.AttributeValueMemberS{Value: filter[attr]}
			exprs = append(exprs, fmt.Sprintf("%s = %s", n, v))
		}

		input.FilterExpression = aws.String(strings.Join(exprs, " AND "))
		input.ExpressionAttributeNames = names
		input.ExpressionAttributeValues = values
	}

	var items []Item
	for {
		out, err := t.client.Scan(ctx, input)
		if err != nil {
			return nil, t.translate("scan", err)
		}

		for _, raw := range out.Items {
			item, err := unmarshalItem(raw)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	return items, nil
}

// Update applies a partial update to the record at the given key and returns
// the full post-update record. Only the listed fields change. The write is
// conditioned on the key existing, so an absent record surfaces as NotFound
// instead of being silently created.
func (t *Table) Update(ctx context.Context, id string, assigns map[string]any) (Item, error) {
	if len(assigns) == 0 {
		return nil, apperror.StoreRejected("update", fmt.Errorf("no fields to assign"))
	}

	names := map[string]string{"#pk": keyAttr}
	values := make(map[string]types.AttributeValue, len(assigns))
	exprs := make([]string, 0, len(assigns))

	for i, field := range sortedAnyKeys(assigns) {
		av, err := attributevalue.Marshal(assigns[field])
		if err != nil {
			return nil, apperror.StoreRejected("update", err)
		}
		n := fmt.Sprintf("#f%d", i)
		v := fmt.Sprintf(":v%d", i)
		names[n] = field
		values[v] = av
		exprs = append(exprs, fmt.Sprintf("%s = %s", n, v))
	}

	out, err := t.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(t.name),
		Key:                       primaryKey(id),
		UpdateExpression:          aws.String("SET " + strings.Join(exprs, ", ")),
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, apperror.NotFound("record", id)
		}
		return nil, t.translate("update", err)
	}

	return unmarshalItem(out.Attributes)
}

// Delete removes the record at the given key. Deleting an absent key is a
// successful no-op.
func (t *Table) Delete(ctx context.Context, id string) error {
	_, err := t.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(t.name),
		Key:       primaryKey(id),
	})
	if err != nil {
		return t.translate("delete", err)
	}
	return nil
}

// translate maps SDK failures onto the two store error kinds: throttling and
// server-side faults are transient (callers may retry); validation, schema,
// and permission failures are not. Non-API errors (network, cancellation)
// count as transient.
func (t *Table) translate(op string, err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return apperror.StoreUnavailable(op, err)
	}

	switch apiErr.ErrorCode() {
	case "ProvisionedThroughputExceededException",
		"ThrottlingException",
		"RequestLimitExceeded",
		"InternalServerError",
		"ServiceUnavailable",
		"TransactionConflictException":
		return apperror.StoreUnavailable(op, err)
	default:
		return apperror.StoreRejected(op, err)
	}
}

func primaryKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		keyAttr: &types.AttributeValueMemberS{Value: id},
	}
}

func unmarshalItem(raw map[string]types.AttributeValue) (Item, error) {
	var item Item
	if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
		return nil, apperror.StoreRejected("unmarshal", err)
	}
	return item, nil
}

// Assignment order in expressions is deterministic so requests are stable
// and testable.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedAnyKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
